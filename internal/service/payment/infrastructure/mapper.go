// internal/service/payment/infrastructure/mapper.go
package infrastructure

import (
	"strings"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
)

// ToDomainOrder 将数据库模型转换为领域实体
func ToDomainOrder(m *PayableOrderModel) *domain.PayableOrder {
	return &domain.PayableOrder{
		ID:             m.ID,
		Kind:           pricing.ResourceKind(m.Kind),
		ResourceID:     m.ResourceID,
		UserID:         m.UserID,
		Tier:           pricing.Tier(m.Tier),
		PromoCode:      m.PromoCode,
		ExpectedAmount: m.ExpectedAmount,
		Status:         domain.Status(m.Status),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ToOrderModel 将领域实体转换为数据库模型
func ToOrderModel(o *domain.PayableOrder) *PayableOrderModel {
	return &PayableOrderModel{
		ID:             o.ID,
		Kind:           string(o.Kind),
		ResourceID:     o.ResourceID,
		UserID:         o.UserID,
		Tier:           string(o.Tier),
		PromoCode:      o.PromoCode,
		ExpectedAmount: o.ExpectedAmount,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// ToDomainListing 将数据库模型转换为领域实体
func ToDomainListing(m *ListingModel) *domain.Listing {
	return &domain.Listing{
		ID:                  m.ID,
		OwnerID:             m.OwnerID,
		Category:            pricing.Category(m.Category),
		Tier:                pricing.Tier(m.Tier),
		PromoCode:           m.PromoCode,
		PaymentStatus:       domain.PaymentState(m.PaymentStatus),
		MonthlyFee:          m.MonthlyFee,
		UpgradeTransactions: splitTransactions(m.UpgradeTransactions),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// ToDomainTransaction 将数据库模型转换为领域实体
func ToDomainTransaction(m *TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:              m.ID,
		ProviderOrderID: m.ProviderOrderID,
		Kind:            m.Kind,
		ResourceID:      m.ResourceID,
		UserID:          m.UserID,
		Amount:          m.Amount,
		PromoCode:       m.PromoCode,
		CreatedAt:       m.CreatedAt,
	}
}

func splitTransactions(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func joinTransactions(ids []string) string {
	return strings.Join(ids, ",")
}
