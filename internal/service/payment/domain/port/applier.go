// internal/service/payment/domain/port/applier.go
package port

import (
	"context"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
)

// ResourceApplier 把一笔通过全部校验的支付落到某类领域资源上。
// 捕获守卫按资源类型分发到对应的执行器, 支付服务自身不理解
// 刊登或广告单的内部状态。
type ResourceApplier interface {
	// RecomputeAmount 以服务端权威状态重算资源当前的应付金额(分),
	// 并返回关联的营销码(可为空)。免支付兑换与金额比对都以它为准。
	RecomputeAmount(ctx context.Context, resourceID string) (int64, string, error)

	// Apply 恰好一次地落账。实现必须自带"尚未支付"守卫,
	// 已经落过账时返回 domain.ErrAlreadyCaptured 而不是静默成功。
	Apply(ctx context.Context, ref *domain.OrderReference, transactionID string) error
}
