// internal/service/pricing/domain/quote.go
package domain

// ResourceKind 标识一次计费动作的资源类型。
type ResourceKind string

const (
	KindListingFee     ResourceKind = "listing-fee"
	KindListingUpgrade ResourceKind = "listing-upgrade"
	KindRental         ResourceKind = "rental"
	KindAdCampaign     ResourceKind = "ad-campaign"
)

// PriceQuote 是一次计费动作的完整报价, 计算完成后不可变。
// 金额一律为分。客户端上送的金额只能用来和服务端重新计算的
// FinalAmount 做相等性比对, 永远不作为计算输入。
type PriceQuote struct {
	Kind           ResourceKind
	Category       Category
	Tier           Tier
	BaseAmount     int64
	TaxAmount      int64
	DiscountAmount int64
	PromoCode      string
	FinalAmount    int64
}

// NewQuote 组装一个报价并校验不变式: final = base + tax - discount 且不为负。
// 折扣超过 base+tax 的部分在这里截断, 单个营销码不可能把订单打成负数。
func NewQuote(kind ResourceKind, category Category, tier Tier, base, tax, discount int64, promoCode string) (*PriceQuote, error) {
	if base < 0 || tax < 0 || discount < 0 {
		return nil, ErrNegativeQuote
	}
	if discount > base+tax {
		discount = base + tax
	}
	q := &PriceQuote{
		Kind:           kind,
		Category:       category,
		Tier:           tier,
		BaseAmount:     base,
		TaxAmount:      tax,
		DiscountAmount: discount,
		PromoCode:      promoCode,
		FinalAmount:    base + tax - discount,
	}
	if q.FinalAmount < 0 {
		return nil, ErrNegativeQuote
	}
	return q, nil
}

// IsFree 判断报价是否应走免支付完成路径(严格为 0, 而不是"接近 0")。
func (q *PriceQuote) IsFree() bool {
	return q.FinalAmount == 0
}

// ListingQuote 计算新刊登费的报价: 税在打折前的基准价上计算。
func ListingQuote(category Category, tier Tier, discount int64, promoCode string) (*PriceQuote, bool, error) {
	base, exact := BaseAmount(category, tier)
	q, err := NewQuote(KindListingFee, category, tier, base, Tax(base), discount, promoCode)
	return q, exact, err
}

// UpgradeQuote 计算档位升级的报价: 基准价是目标档与当前档的差价, 税同样按打折前差价计算。
func UpgradeQuote(category Category, current, target Tier, discount int64, promoCode string) (*PriceQuote, error) {
	delta, err := UpgradeBase(category, current, target)
	if err != nil {
		return nil, err
	}
	return NewQuote(KindListingUpgrade, category, target, delta, Tax(delta), discount, promoCode)
}
