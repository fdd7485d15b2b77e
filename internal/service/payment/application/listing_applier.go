// internal/service/payment/application/listing_applier.go
package application

import (
	"context"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
	promoapp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/application"
	promodomain "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

// ListingApplier 把刊登费支付落到刊登实体上。
// 它是 listing-fee 资源类型注册到捕获守卫的执行器。
type ListingApplier struct {
	listings domain.ListingRepository
	promo    *promoapp.PromotionService
}

// NewListingApplier 创建一个新的刊登费执行器
func NewListingApplier(listings domain.ListingRepository, promo *promoapp.PromotionService) *ListingApplier {
	return &ListingApplier{listings: listings, promo: promo}
}

// RecomputeAmount 以刊登行的权威状态重算刊登费。
// 营销码按当前时刻重新校验: 码在登记后失效时折扣归零,
// 之前签出的"免费"令牌会在兑换时因金额不再为零而被拒绝。
func (a *ListingApplier) RecomputeAmount(ctx context.Context, listingID string) (int64, string, error) {
	listing, err := a.listings.FindByID(ctx, listingID)
	if err != nil {
		return 0, "", err
	}

	base, exact := pricing.BaseAmount(listing.Category, listing.Tier)
	if !exact {
		logger.Ctx(ctx).Warn().
			Str("listing_id", listing.ID).
			Str("category", string(listing.Category)).
			Str("tier", string(listing.Tier)).
			Msg("unknown category/tier, falling back to cheapest defined tier")
	}
	tax := pricing.Tax(base)

	var discount int64
	if listing.PromoCode != "" {
		promo, err := a.promo.Validate(ctx, listing.PromoCode, promodomain.ContextMarketplace, promodomain.Fact{
			Category: string(listing.Category),
			Tier:     string(listing.Tier),
			UserID:   listing.OwnerID,
			Amount:   base,
		})
		if err != nil {
			logger.Ctx(ctx).Printf("Promo %s no longer valid for listing %s: %v", listing.PromoCode, listing.ID, err)
		} else {
			// 折扣以 基准价+税 为底, 100% 的码能把应付金额打到零
			discount = promo.DiscountFor(base + tax)
		}
	}

	quote, _, err := pricing.ListingQuote(listing.Category, listing.Tier, discount, listing.PromoCode)
	if err != nil {
		return 0, "", err
	}
	return quote.FinalAmount, listing.PromoCode, nil
}

// Apply 把刊登标记为已支付。
// 仓储的条件更新保证并发捕获同一刊登时最多一个能成功,
// 已支付的刊登返回 ErrAlreadyCaptured。
func (a *ListingApplier) Apply(ctx context.Context, ref *domain.OrderReference, transactionID string) error {
	return a.listings.MarkPaid(ctx, ref.ResourceID)
}
