// internal/service/payment/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
)

// GormOrderRepository 是 domain.OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save 持久化支付订单影子记录
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.PayableOrder) error {
	return r.db.WithContext(ctx).Create(ToOrderModel(order)).Error
}

// FindByID 按支付方订单号查找影子记录
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.PayableOrder, error) {
	var model PayableOrderModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return ToDomainOrder(&model), nil
}

// UpdateStatus 更新订单状态
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	return r.db.WithContext(ctx).Model(&PayableOrderModel{}).
		Where("id = ?", id).
		UpdateColumn("status", string(status)).Error
}

// GormListingRepository 是 domain.ListingRepository 的 GORM 实现
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository 创建一个新的 GORM 仓储实例
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID 按 ID 查找刊登
func (r *GormListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var model ListingModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, err
	}
	return ToDomainListing(&model), nil
}

// MarkPaid 用一条条件 UPDATE 把支付状态从非 paid 翻成 paid。
// 检查与更新在同一条语句内完成, 影响行数为 0 说明早已是 paid,
// 返回 ErrAlreadyCaptured 而不是静默成功。
func (r *GormListingRepository) MarkPaid(ctx context.Context, listingID string) error {
	res := r.db.WithContext(ctx).Model(&ListingModel{}).
		Where("id = ? AND payment_status <> ?", listingID, string(domain.PaymentPaid)).
		UpdateColumn("payment_status", string(domain.PaymentPaid))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.distinguishMissing(ctx, listingID)
	}
	return nil
}

// SaveUpgrade 持久化升级后的档位、月费与订单号列表。
// 订单号按逗号拼接存储, WHERE 条件给列两侧补上分隔符后整词排除,
// 子串关系的订单号不会被误判; 两个并发的同号入账最多只有一个能改到数据。
func (r *GormListingRepository) SaveUpgrade(ctx context.Context, listing *domain.Listing, orderID string) error {
	res := r.db.WithContext(ctx).Model(&ListingModel{}).
		Where("id = ? AND (upgrade_transactions IS NULL OR upgrade_transactions = '' OR CONCAT(',', upgrade_transactions, ',') NOT LIKE ?)",
			listing.ID, transactionPattern(orderID)).
		UpdateColumns(map[string]interface{}{
			"tier":                 string(listing.Tier),
			"monthly_fee":          listing.MonthlyFee,
			"upgrade_transactions": joinTransactions(listing.UpgradeTransactions),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyCaptured
	}
	return nil
}

// transactionPattern 生成对 CONCAT(',', upgrade_transactions, ',') 的整词匹配模式
func transactionPattern(orderID string) string {
	return "%," + orderID + ",%"
}

// distinguishMissing 把"影响行数为 0"细分为不存在与已支付两种结果
func (r *GormListingRepository) distinguishMissing(ctx context.Context, listingID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ListingModel{}).
		Where("id = ?", listingID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrResourceNotFound
	}
	return domain.ErrAlreadyCaptured
}

// GormTransactionRepository 是 domain.TransactionRepository 的 GORM 实现
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository 创建一个新的 GORM 仓储实例
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Record 追加一条交易台账
func (r *GormTransactionRepository) Record(ctx context.Context, txn *domain.Transaction) error {
	model := &TransactionModel{
		ID:              txn.ID,
		ProviderOrderID: txn.ProviderOrderID,
		Kind:            txn.Kind,
		ResourceID:      txn.ResourceID,
		UserID:          txn.UserID,
		Amount:          txn.Amount,
		PromoCode:       txn.PromoCode,
		CreatedAt:       txn.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByResource 查询某个资源名下的全部台账行
func (r *GormTransactionRepository) FindByResource(ctx context.Context, resourceID string) ([]*domain.Transaction, error) {
	var models []TransactionModel
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	txns := make([]*domain.Transaction, 0, len(models))
	for i := range models {
		txns = append(txns, ToDomainTransaction(&models[i]))
	}
	return txns, nil
}
