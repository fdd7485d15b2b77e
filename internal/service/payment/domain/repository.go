// internal/service/payment/domain/repository.go
package domain

import (
	"context"
	"time"
)

// OrderRepository 定义了支付订单影子记录的持久化接口
type OrderRepository interface {
	Save(ctx context.Context, order *PayableOrder) error
	FindByID(ctx context.Context, id string) (*PayableOrder, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// ListingRepository 定义了刊登支付切片的持久化接口
type ListingRepository interface {
	FindByID(ctx context.Context, id string) (*Listing, error)

	// MarkPaid 把支付状态从非 paid 条件更新为 paid。
	// 已经是 paid 时必须返回 ErrAlreadyCaptured, 检查与更新是同一条条件语句,
	// 并发捕获同一资源时最多只有一个调用能成功。
	MarkPaid(ctx context.Context, listingID string) error

	// SaveUpgrade 持久化 ApplyUpgrade 之后的档位、月费与订单号列表。
	// 订单号列表的追加以 orderID 未出现过为条件, 重复追加返回 ErrAlreadyCaptured。
	SaveUpgrade(ctx context.Context, listing *Listing, orderID string) error
}

// Transaction 是每笔已入账支付的审计台账行
type Transaction struct {
	ID              string
	ProviderOrderID string
	Kind            string
	ResourceID      string
	UserID          string
	Amount          int64 // 分
	PromoCode       string
	CreatedAt       time.Time
}

// TransactionRepository 只追加的交易台账
type TransactionRepository interface {
	Record(ctx context.Context, txn *Transaction) error
	FindByResource(ctx context.Context, resourceID string) ([]*Transaction, error)
}
