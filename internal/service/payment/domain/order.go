// internal/service/payment/domain/order.go
package domain

import (
	"time"

	"github.com/pkg/errors"

	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
)

// Status 定义了支付订单的生命周期状态
type Status string

const (
	StatusCreated  Status = "CREATED"  // 已向支付方下单, 等待用户支付
	StatusCaptured Status = "CAPTURED" // 支付方已完成扣款, 领域状态尚未落账
	StatusApplied  Status = "APPLIED"  // 扣款已恰好一次地作用到领域状态, 终态
	StatusFailed   Status = "FAILED"   // 下单或捕获失败
)

// PayableOrder 是支付方订单在本地的影子记录。
// ExpectedAmount 在下单时由服务端计算并固化, 捕获时作为金额比对的权威依据,
// 客户端上送的任何金额都只用于相等性检查, 绝不作为输入。
type PayableOrder struct {
	ID             string // 支付方订单号
	Kind           pricing.ResourceKind
	ResourceID     string
	UserID         string
	Tier           pricing.Tier
	PromoCode      string
	ExpectedAmount int64 // 分
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPayableOrder 创建一个新的支付订单影子记录
func NewPayableOrder(providerOrderID string, ref *OrderReference, expectedAmount int64) (*PayableOrder, error) {
	if providerOrderID == "" || ref == nil {
		return nil, errors.New("cannot create payable order without provider order id and reference")
	}
	if expectedAmount <= 0 {
		return nil, errors.New("payable order amount must be positive, free completions never create provider orders")
	}

	now := time.Now()
	return &PayableOrder{
		ID:             providerOrderID,
		Kind:           ref.Kind,
		ResourceID:     ref.ResourceID,
		UserID:         ref.UserID,
		Tier:           ref.Tier,
		PromoCode:      ref.PromoCode,
		ExpectedAmount: expectedAmount,
		Status:         StatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Reference 还原下单时嵌入支付方订单的引用
func (o *PayableOrder) Reference() *OrderReference {
	return &OrderReference{
		Kind:       o.Kind,
		ResourceID: o.ResourceID,
		UserID:     o.UserID,
		Tier:       o.Tier,
		PromoCode:  o.PromoCode,
	}
}

// MarkCaptured 登记支付方扣款完成。
// 只允许从 CREATED 流转, APPLIED 是终态。
func (o *PayableOrder) MarkCaptured() error {
	if o.Status == StatusApplied {
		return ErrAlreadyCaptured
	}
	if o.Status != StatusCreated && o.Status != StatusCaptured {
		return errors.Errorf("order %s cannot be captured from status %s", o.ID, o.Status)
	}
	o.Status = StatusCaptured
	o.UpdatedAt = time.Now()
	return nil
}

// MarkApplied 登记领域落账完成, 进入终态
func (o *PayableOrder) MarkApplied() error {
	if o.Status == StatusApplied {
		return ErrAlreadyCaptured
	}
	if o.Status != StatusCaptured {
		return errors.Errorf("order %s cannot be applied from status %s", o.ID, o.Status)
	}
	o.Status = StatusApplied
	o.UpdatedAt = time.Now()
	return nil
}

// MarkFailed 将订单标记为失败
func (o *PayableOrder) MarkFailed() {
	o.Status = StatusFailed
	o.UpdatedAt = time.Now()
}
