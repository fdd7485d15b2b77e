// internal/service/promotion/infrastructure/mapper.go
package infrastructure

import (
	"strings"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

// ToDomainPromoCode 将数据库模型转换为领域模型
func ToDomainPromoCode(model *PromoCodeModel) *domain.PromoCode {
	if model == nil {
		return nil
	}
	p := &domain.PromoCode{
		ID:              int64(model.ID),
		Code:            model.Code,
		Description:     model.Description,
		DiscountType:    domain.DiscountType(model.DiscountType),
		DiscountValue:   model.DiscountValue,
		CreationFeePct:  model.CreationFeePct,
		SubscriptionPct: model.SubscriptionPct,
		UsedCount:       model.UsedCount,
		IsActive:        model.IsActive,
		ValidFrom:       model.ValidFrom,
		RuleDefinition:  model.RuleDefinition,
	}
	if model.MaxUses.Valid {
		max := model.MaxUses.Int64
		p.MaxUses = &max
	}
	if model.ValidTo.Valid {
		to := model.ValidTo.Time
		p.ValidTo = &to
	}
	for _, c := range strings.Split(model.Contexts, ",") {
		if c = strings.TrimSpace(c); c != "" {
			p.Contexts = append(p.Contexts, domain.Context(c))
		}
	}
	return p
}
