// internal/service/payment/infrastructure/gorm_model.go
package infrastructure

import "time"

// PayableOrderModel 对应数据库中的 payable_order 表。
// 主键直接用支付方订单号, expected_amount 在下单时固化,
// 捕获侧用它做金额比对的权威依据。
type PayableOrderModel struct {
	ID             string `gorm:"primaryKey;size:64"`
	Kind           string `gorm:"size:32;not null"`
	ResourceID     string `gorm:"index;size:64;not null"`
	UserID         string `gorm:"size:64;not null"`
	Tier           string `gorm:"size:16"`
	PromoCode      string `gorm:"size:64"`
	ExpectedAmount int64  `gorm:"not null"`
	Status         string `gorm:"size:16;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName 指定 GORM 应该使用的表名
func (PayableOrderModel) TableName() string {
	return "payable_order"
}

// ListingModel 对应 listing 表中本子系统拥有的字段切片。
// upgrade_transactions 以逗号分隔存储已入账的升级订单号,
// 它是升级支付的重放防线, 只追加不回收。
type ListingModel struct {
	ID                  string `gorm:"primaryKey;size:64"`
	OwnerID             string `gorm:"index;size:64;not null"`
	Category            string `gorm:"size:32;not null"`
	Tier                string `gorm:"size:16;not null"`
	PromoCode           string `gorm:"size:64"`
	PaymentStatus       string `gorm:"size:16;not null;default:pending"`
	MonthlyFee          int64  `gorm:"not null;default:0"`
	UpgradeTransactions string `gorm:"type:text"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName 指定 GORM 应该使用的表名
func (ListingModel) TableName() string {
	return "listing"
}

// TransactionModel 对应 payment_transaction 表, 只追加的审计台账。
// provider_order_id 上的唯一索引兜底保证一笔外部支付最多入账一次。
type TransactionModel struct {
	ID              string `gorm:"primaryKey;size:64"`
	ProviderOrderID string `gorm:"uniqueIndex;size:64;not null"`
	Kind            string `gorm:"size:32;not null"`
	ResourceID      string `gorm:"index;size:64;not null"`
	UserID          string `gorm:"size:64"`
	Amount          int64  `gorm:"not null"`
	PromoCode       string `gorm:"size:64"`
	CreatedAt       time.Time
}

// TableName 指定 GORM 应该使用的表名
func (TransactionModel) TableName() string {
	return "payment_transaction"
}
