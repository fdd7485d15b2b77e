// internal/service/payment/domain/port/provider.go
package port

import "context"

// ProviderOrder 是支付方订单在本系统中的投影。
// CustomID 是下单时嵌入的结构化引用串, 捕获侧必须重新解析并交叉校验。
type ProviderOrder struct {
	ID       string
	Status   string // 支付方语义, COMPLETED 表示扣款完成
	Amount   int64  // 分
	Currency string
	CustomID string
}

// Completed 判断订单是否已经完成扣款
func (o *ProviderOrder) Completed() bool {
	return o.Status == "COMPLETED"
}

// PaymentProvider 抽象了外部支付方的订单接口。
// 捕获是不可逆的外部副作用, 实现方不做自动重试, 失败原样上抛由调用方定夺。
type PaymentProvider interface {
	// CreateOrder 以给定金额与引用串下单, 返回支付方订单号。
	CreateOrder(ctx context.Context, amount int64, currency, reference string) (string, error)

	// CaptureOrder 捕获一笔订单。对已完成的订单重复捕获是安全的,
	// 支付方会返回原订单的完成态。
	CaptureOrder(ctx context.Context, orderID string) (*ProviderOrder, error)

	// GetOrder 只读地取回订单, 用于客户端侧已完成捕获的升级流程复核。
	GetOrder(ctx context.Context, orderID string) (*ProviderOrder, error)
}
