// internal/service/promotion/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

// GormPromoRepository 是 domain.Repository 的 GORM 实现
type GormPromoRepository struct {
	db *gorm.DB
}

// NewGormPromoRepository 创建一个新的 GORM 仓储实例
func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

// FindByCode 使用 GORM 从数据库中查找营销码
func (r *GormPromoRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	var model PromoCodeModel
	err := r.db.WithContext(ctx).Where("code = ?", domain.NormalizeCode(code)).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPromoNotFound
		}
		return nil, err
	}
	return ToDomainPromoCode(&model), nil
}

// ConsumeUse 在一个事务里完成核销登记:
//  1. 插入一条使用流水。(promo_code_id, subject_id) 唯一索引保证同一资源不会重复核销,
//     命中重复键时整个事务回滚并返回 ErrPromoAlreadyApplied。
//  2. 用一条条件 UPDATE 把 used_count 加一, 余量检查与自增在同一条语句内完成,
//     两个并发核销逼近 max_uses 时只有一个能更新成功。影响行数为 0 视为
//     ErrPromoExhausted, 绝不能悄悄忽略。
func (r *GormPromoRepository) ConsumeUse(ctx context.Context, promoID int64, subjectID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		usage := PromoCodeUsageModel{
			PromoCodeID: promoID,
			SubjectID:   subjectID,
			UserID:      userID,
		}
		if err := tx.Create(&usage).Error; err != nil {
			if isDuplicateKey(err) {
				return domain.ErrPromoAlreadyApplied
			}
			return err
		}

		res := tx.Model(&PromoCodeModel{}).
			Where("id = ? AND is_active = ? AND (max_uses IS NULL OR used_count < max_uses)", promoID, true).
			UpdateColumn("used_count", gorm.Expr("used_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrPromoExhausted
		}
		return nil
	})
}

// HasUsage 查询某个 subject 是否已核销过该营销码
func (r *GormPromoRepository) HasUsage(ctx context.Context, promoID int64, subjectID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PromoCodeUsageModel{}).
		Where("promo_code_id = ? AND subject_id = ?", promoID, subjectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// isDuplicateKey 识别 MySQL 的唯一键冲突。
// gorm.ErrDuplicatedKey 依赖 translate error 特性, 这里再兜底匹配错误号 1062。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Error 1062") || strings.Contains(err.Error(), "Duplicate entry")
}
