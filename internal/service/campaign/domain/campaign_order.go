// internal/service/campaign/domain/campaign_order.go
package domain

import (
	"time"

	promodomain "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/domain"
)

// ApprovalStatus 是广告单的审核状态
type ApprovalStatus string

const (
	ApprovalDraft         ApprovalStatus = "draft"
	ApprovalSent          ApprovalStatus = "sent"
	ApprovalPendingReview ApprovalStatus = "pending_review"
	ApprovalApproved      ApprovalStatus = "approved"
	ApprovalRejected      ApprovalStatus = "rejected"
)

// PaymentStatus 是广告单的支付状态
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// CampaignOrder 是广告订单。
// 广告侧的档位价格已含税, 金额上没有单独的税项;
// 折扣按创建费与订阅费分项计算, 两项独立打折后相加。
type CampaignOrder struct {
	ID               string
	UserID           string
	Email            string // 未登录投放流程用邮箱绑定免支付令牌
	CreationFee      int64  // 分
	Subscription     int64  // 分
	PromoCode        string
	DiscountAmount   int64
	GrandTotal       int64
	ApprovalStatus   ApprovalStatus
	PaymentStatus    PaymentStatus
	PaymentReference string // 支付方订单号或免支付交易号
	ImageURL         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RecomputeTotals 以当前营销码状态重算折扣与应付总额。
// promo 为 nil 表示没有码或码已失效, 折扣归零。
func (o *CampaignOrder) RecomputeTotals(promo *promodomain.PromoCode) {
	o.DiscountAmount = 0
	if promo != nil {
		o.DiscountAmount = promo.AdDiscount(o.CreationFee, o.Subscription)
	}
	if max := o.CreationFee + o.Subscription; o.DiscountAmount > max {
		o.DiscountAmount = max
	}
	o.GrandTotal = o.CreationFee + o.Subscription - o.DiscountAmount
}

// IsFree 判断当前应付总额是否为零
func (o *CampaignOrder) IsFree() bool {
	return o.GrandTotal == 0
}

// CanActivate 检查投放的全部前置条件, 每个失败原因都有具名错误,
// 调用方能给出可操作的提示而不是一个笼统的失败。
func (o *CampaignOrder) CanActivate() error {
	if o.PaymentStatus != PaymentPaid {
		return ErrUnpaidOrder
	}
	if o.PaymentReference == "" {
		return ErrMissingPaymentReference
	}
	if o.ApprovalStatus != ApprovalApproved {
		return ErrNotApproved
	}
	if o.ImageURL == "" {
		return ErrImageRequired
	}
	return nil
}

// Campaign 是由已支付、已审核的广告单生成的投放记录。
// 每个广告单最多生成一条, 幂等靠存在性检查而不是覆盖。
type Campaign struct {
	ID        string
	OrderID   string
	ImageURL  string
	StartsAt  time.Time
	EndsAt    time.Time
	Active    bool
	CreatedAt time.Time
}
