// internal/service/promotion/infrastructure/gorm_model.go
package infrastructure

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// PromoCodeModel 对应数据库中的 promo_code 表
type PromoCodeModel struct {
	gorm.Model
	Code            string `gorm:"uniqueIndex;size:64"` // 统一大写存储
	Description     string `gorm:"size:255"`
	DiscountType    string `gorm:"size:32"`
	DiscountValue   int64
	CreationFeePct  int64
	SubscriptionPct int64
	MaxUses         sql.NullInt64
	UsedCount       int64 `gorm:"not null;default:0"`
	IsActive        bool  `gorm:"not null;default:true"`
	ValidFrom       time.Time
	ValidTo         sql.NullTime
	Contexts        string `gorm:"size:128"` // 逗号分隔: marketplace,advertising
	RuleDefinition  string `gorm:"type:text"`
}

// TableName 指定 GORM 应该使用的表名
func (PromoCodeModel) TableName() string {
	return "promo_code"
}

// PromoCodeUsageModel 对应数据库中的 promo_code_usage 表。
// 这是一张只追加的核销流水表, (promo_code_id, subject_id) 上的唯一索引
// 保证同一个资源不可能重复消费同一个营销码。
type PromoCodeUsageModel struct {
	ID          uint   `gorm:"primaryKey"`
	PromoCodeID int64  `gorm:"uniqueIndex:idx_promo_subject;not null"`
	SubjectID   string `gorm:"uniqueIndex:idx_promo_subject;size:64;not null"`
	UserID      string `gorm:"size:64"`
	CreatedAt   time.Time
}

// TableName 指定 GORM 应该使用的表名
func (PromoCodeUsageModel) TableName() string {
	return "promo_code_usage"
}
