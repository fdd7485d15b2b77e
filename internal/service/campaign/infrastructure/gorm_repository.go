// internal/service/campaign/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/campaign/domain"
	paymentdomain "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
)

// GormOrderRepository 是 domain.OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID 按 ID 查找广告单
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.CampaignOrder, error) {
	var model CampaignOrderModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return toDomainOrder(&model), nil
}

// Save 持久化广告单
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.CampaignOrder) error {
	return r.db.WithContext(ctx).Save(toOrderModel(order)).Error
}

// MarkPaid 把支付状态从 pending 条件更新为 paid 并记录支付方引用。
// 检查与更新在同一条语句内完成, 影响行数为 0 再区分不存在与已支付。
func (r *GormOrderRepository) MarkPaid(ctx context.Context, orderID, paymentReference string) error {
	res := r.db.WithContext(ctx).Model(&CampaignOrderModel{}).
		Where("id = ? AND payment_status = ?", orderID, string(domain.PaymentPending)).
		UpdateColumns(map[string]interface{}{
			"payment_status":    string(domain.PaymentPaid),
			"payment_reference": paymentReference,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&CampaignOrderModel{}).
			Where("id = ?", orderID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrOrderNotFound
		}
		return paymentdomain.ErrAlreadyCaptured
	}
	return nil
}

// UpdateTotals 持久化重算后的折扣与应付总额
func (r *GormOrderRepository) UpdateTotals(ctx context.Context, order *domain.CampaignOrder) error {
	return r.db.WithContext(ctx).Model(&CampaignOrderModel{}).
		Where("id = ?", order.ID).
		UpdateColumns(map[string]interface{}{
			"discount_amount": order.DiscountAmount,
			"grand_total":     order.GrandTotal,
		}).Error
}

// GormCampaignRepository 是 domain.CampaignRepository 的 GORM 实现
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository 创建一个新的 GORM 仓储实例
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// CreateFromOrder 生成投放记录, 唯一索引兜底幂等
func (r *GormCampaignRepository) CreateFromOrder(ctx context.Context, campaign *domain.Campaign) error {
	model := &CampaignModel{
		ID:        campaign.ID,
		OrderID:   campaign.OrderID,
		ImageURL:  campaign.ImageURL,
		StartsAt:  campaign.StartsAt,
		EndsAt:    campaign.EndsAt,
		Active:    campaign.Active,
		CreatedAt: campaign.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrAlreadyActivated
		}
		return err
	}
	return nil
}

// ExistsForOrder 查询广告单是否已生成过投放记录
func (r *GormCampaignRepository) ExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CampaignModel{}).
		Where("campaign_order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func toDomainOrder(m *CampaignOrderModel) *domain.CampaignOrder {
	return &domain.CampaignOrder{
		ID:               m.ID,
		UserID:           m.UserID,
		Email:            m.Email,
		CreationFee:      m.CreationFee,
		Subscription:     m.Subscription,
		PromoCode:        m.PromoCode,
		DiscountAmount:   m.DiscountAmount,
		GrandTotal:       m.GrandTotal,
		ApprovalStatus:   domain.ApprovalStatus(m.ApprovalStatus),
		PaymentStatus:    domain.PaymentStatus(m.PaymentStatus),
		PaymentReference: m.PaymentReference,
		ImageURL:         m.ImageURL,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toOrderModel(o *domain.CampaignOrder) *CampaignOrderModel {
	return &CampaignOrderModel{
		ID:               o.ID,
		UserID:           o.UserID,
		Email:            o.Email,
		CreationFee:      o.CreationFee,
		Subscription:     o.Subscription,
		PromoCode:        o.PromoCode,
		DiscountAmount:   o.DiscountAmount,
		GrandTotal:       o.GrandTotal,
		ApprovalStatus:   string(o.ApprovalStatus),
		PaymentStatus:    string(o.PaymentStatus),
		PaymentReference: o.PaymentReference,
		ImageURL:         o.ImageURL,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// isDuplicateKey 识别 MySQL 的唯一键冲突
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Error 1062") || strings.Contains(err.Error(), "Duplicate entry")
}
