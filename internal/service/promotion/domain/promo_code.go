// internal/service/promotion/domain/promo_code.go
package domain

import (
	"strings"
	"time"
)

// Context 标识营销码的适用场景。
type Context string

const (
	ContextMarketplace Context = "marketplace"
	ContextAdvertising Context = "advertising"
)

// DiscountType 定义了优惠的计算方式。
type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"    // 按百分比折扣
	DiscountTypeFixedAmount  DiscountType = "fixedAmount"   // 立减固定金额(分)
	DiscountTypeWaiveFee     DiscountType = "waiveFee"      // 免除刊登费/创建费
	DiscountTypeFreeDuration DiscountType = "free-duration" // 免费时长(当期费用全免)
)

// PromoCode 是管理员签发的营销码。
// code 不区分大小写, 统一以大写形式存储和比较。
// UsedCount 只增不减, 每次成功核销恰好加一。
type PromoCode struct {
	ID            int64
	Code          string
	Description   string
	DiscountType  DiscountType
	DiscountValue int64 // percentage: 0-100; fixedAmount: 分; free-duration: 免费月数
	// 广告场景的分项折扣(百分比)。两项都为 0 时退回 DiscountType 的通用语义。
	CreationFeePct  int64
	SubscriptionPct int64

	MaxUses   *int64
	UsedCount int64
	IsActive  bool
	ValidFrom time.Time
	ValidTo   *time.Time // nil 表示没有截止时间
	Contexts  []Context

	// RuleDefinition 是可选的 CEL 表达式, 进一步限定适用条件。
	// 例如: category == "aircraft-sale" && amount >= 2500
	RuleDefinition string
}

// NormalizeCode 统一营销码的书写形式。
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateAt 校验营销码在给定时刻、给定场景下是否可用。
// 校验完整跑完并返回具体的错误种类, 不做任何写入。
func (p *PromoCode) ValidateAt(now time.Time, ctx Context) error {
	if !p.IsActive {
		return ErrPromoInactive
	}
	if now.Before(p.ValidFrom) {
		return ErrPromoNotStarted
	}
	if p.ValidTo != nil && now.After(*p.ValidTo) {
		return ErrPromoExpired
	}
	if !p.AppliesTo(ctx) {
		return ErrPromoWrongContext
	}
	if p.MaxUses != nil && p.UsedCount >= *p.MaxUses {
		return ErrPromoExhausted
	}
	return nil
}

// AppliesTo 判断营销码是否覆盖给定场景。
func (p *PromoCode) AppliesTo(ctx Context) bool {
	for _, c := range p.Contexts {
		if c == ctx {
			return true
		}
	}
	return false
}

// DiscountFor 计算营销码对一个基准金额(分)的折扣额。
// 固定立减会被截断到基准金额, 单个营销码不可能产生负的应付总额。
func (p *PromoCode) DiscountFor(baseCents int64) int64 {
	if baseCents <= 0 {
		return 0
	}
	switch p.DiscountType {
	case DiscountTypePercentage:
		pct := clampPct(p.DiscountValue)
		return (baseCents*pct + 50) / 100
	case DiscountTypeFixedAmount:
		if p.DiscountValue > baseCents {
			return baseCents
		}
		if p.DiscountValue < 0 {
			return 0
		}
		return p.DiscountValue
	case DiscountTypeWaiveFee, DiscountTypeFreeDuration:
		// 两者对当期费用的效果都是全免
		return baseCents
	default:
		return 0
	}
}

// AdDiscount 计算广告订单的分项折扣: 创建费与订阅费各自独立打折,
// 广告侧的档位价格本身已含税, 因此没有单独的税项参与。
func (p *PromoCode) AdDiscount(creationFeeCents, subscriptionCents int64) int64 {
	if p.CreationFeePct > 0 || p.SubscriptionPct > 0 {
		creation := (creationFeeCents*clampPct(p.CreationFeePct) + 50) / 100
		subscription := (subscriptionCents*clampPct(p.SubscriptionPct) + 50) / 100
		return creation + subscription
	}

	switch p.DiscountType {
	case DiscountTypeWaiveFee:
		return creationFeeCents
	default:
		return p.DiscountFor(creationFeeCents + subscriptionCents)
	}
}

func clampPct(v int64) int64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
