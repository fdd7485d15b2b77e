// internal/service/campaign/infrastructure/gorm_model.go
package infrastructure

import "time"

// CampaignOrderModel 对应数据库中的 campaign_order 表
type CampaignOrderModel struct {
	ID               string `gorm:"primaryKey;size:64"`
	UserID           string `gorm:"index;size:64"`
	Email            string `gorm:"size:255"`
	CreationFee      int64  `gorm:"not null;default:0"`
	Subscription     int64  `gorm:"not null;default:0"`
	PromoCode        string `gorm:"size:64"`
	DiscountAmount   int64  `gorm:"not null;default:0"`
	GrandTotal       int64  `gorm:"not null;default:0"`
	ApprovalStatus   string `gorm:"size:32;not null;default:draft"`
	PaymentStatus    string `gorm:"size:16;not null;default:pending"`
	PaymentReference string `gorm:"size:64"`
	ImageURL         string `gorm:"size:512"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName 指定 GORM 应该使用的表名
func (CampaignOrderModel) TableName() string {
	return "campaign_order"
}

// CampaignModel 对应 campaign 表。
// campaign_order_id 上的唯一索引保证一个广告单最多生成一条投放记录,
// 激活的幂等性建立在这条约束上, 不依赖应用层的先查后写。
type CampaignModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	OrderID   string `gorm:"uniqueIndex;column:campaign_order_id;size:64;not null"`
	ImageURL  string `gorm:"size:512;not null"`
	StartsAt  time.Time
	EndsAt    time.Time
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (CampaignModel) TableName() string {
	return "campaign"
}
