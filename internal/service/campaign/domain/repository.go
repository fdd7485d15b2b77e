// internal/service/campaign/domain/repository.go
package domain

import "context"

// OrderRepository 定义了广告单的持久化接口
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*CampaignOrder, error)
	Save(ctx context.Context, order *CampaignOrder) error

	// MarkPaid 把支付状态从 pending 条件更新为 paid 并记下支付方引用。
	// 已经是 paid 时必须区分出来, 并发捕获最多一个调用能成功。
	MarkPaid(ctx context.Context, orderID, paymentReference string) error

	// UpdateTotals 持久化重算后的折扣与应付总额
	UpdateTotals(ctx context.Context, order *CampaignOrder) error
}

// CampaignRepository 定义了投放记录的持久化接口
type CampaignRepository interface {
	// CreateFromOrder 为广告单生成投放记录。
	// campaign_order_id 上的唯一约束保证每单最多一条,
	// 命中重复时返回 ErrAlreadyActivated。
	CreateFromOrder(ctx context.Context, campaign *Campaign) error

	ExistsForOrder(ctx context.Context, orderID string) (bool, error)
}
