// internal/service/payment/domain/port/events.go
package port

import "context"

const (
	EventTypePaymentApplied         = "payment.applied"
	EventTypeReconciliationRequired = "payment.reconciliation_required"
)

// PaymentEvent 是支付事件流上的统一载荷。
// 对账事件(捕获成功但领域落账失败)必须带全支付方订单号与资源号,
// 它是人工对账仅有的线索, 绝不允许静默丢失。
type PaymentEvent struct {
	EventType       string `json:"event_type"`
	ProviderOrderID string `json:"provider_order_id"`
	Kind            string `json:"kind"`
	ResourceID      string `json:"resource_id"`
	UserID          string `json:"user_id,omitempty"`
	Amount          int64  `json:"amount"`
	PromoCode       string `json:"promo_code,omitempty"`
	Reason          string `json:"reason,omitempty"`
	OccurredAt      int64  `json:"occurred_at"`
}

// EventPublisher 把支付事件发布到事件流。
// 发布失败只记日志不阻断主流程, 领域落账的结果不依赖事件投递。
type EventPublisher interface {
	PublishApplied(ctx context.Context, evt *PaymentEvent)
	PublishReconciliationRequired(ctx context.Context, evt *PaymentEvent)
}
