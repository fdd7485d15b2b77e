// internal/service/campaign/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	// ErrUnpaidOrder 广告单尚未支付
	ErrUnpaidOrder = errors.New("campaign order is not paid")
	// ErrMissingPaymentReference 已支付但缺少支付方引用, 数据不一致
	ErrMissingPaymentReference = errors.New("campaign order has no payment reference")
	// ErrNotApproved 审核未通过
	ErrNotApproved = errors.New("campaign order is not approved")
	// ErrImageRequired 缺少创意素材
	ErrImageRequired = errors.New("campaign order has no creative image")
	// ErrAlreadyActivated 该广告单已经生成过投放记录
	ErrAlreadyActivated = errors.New("campaign was already activated for this order")
	// ErrOrderNotFound 广告单不存在
	ErrOrderNotFound = errors.New("campaign order not found")
)
