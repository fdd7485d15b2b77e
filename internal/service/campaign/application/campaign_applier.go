// internal/service/campaign/application/campaign_applier.go
package application

import (
	"context"

	paymentdomain "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
)

// CampaignApplier 把广告支付落到广告单上。
// 它是 ad-campaign 资源类型注册到捕获守卫的执行器。
type CampaignApplier struct {
	service *CampaignService
}

// NewCampaignApplier 创建一个新的广告单执行器
func NewCampaignApplier(service *CampaignService) *CampaignApplier {
	return &CampaignApplier{service: service}
}

// RecomputeAmount 以广告单的权威状态重算应付总额
func (a *CampaignApplier) RecomputeAmount(ctx context.Context, orderID string) (int64, string, error) {
	order, err := a.service.orders.FindByID(ctx, orderID)
	if err != nil {
		return 0, "", err
	}
	order.RecomputeTotals(a.service.lookupPromo(ctx, order))
	return order.GrandTotal, order.PromoCode, nil
}

// Apply 把广告单标记为已支付并记录支付方引用。
// 条件更新保证并发捕获最多一个成功, 已支付返回 ErrAlreadyCaptured。
func (a *CampaignApplier) Apply(ctx context.Context, ref *paymentdomain.OrderReference, transactionID string) error {
	return a.service.orders.MarkPaid(ctx, ref.ResourceID, transactionID)
}
