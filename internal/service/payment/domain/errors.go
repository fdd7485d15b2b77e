// internal/service/payment/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	// ErrOrderResourceMismatch 订单内嵌的资源引用与调用方声称的资源不一致, 强欺诈信号
	ErrOrderResourceMismatch = errors.New("captured order does not reference the expected resource")
	// ErrAlreadyCaptured 这笔支付已经作用过领域状态, 不允许二次入账
	ErrAlreadyCaptured = errors.New("payment was already applied to this resource")
	// ErrAmountTampered 支付方上报的金额与服务端权威重算结果不一致
	ErrAmountTampered = errors.New("captured amount does not match the server-side amount")
	// ErrOrderNotCompleted 支付方订单不处于 COMPLETED 状态
	ErrOrderNotCompleted = errors.New("provider order is not completed")
	// ErrMalformedReference 订单引用串缺字段或格式非法
	ErrMalformedReference = errors.New("malformed order reference")
	// ErrInvalidToken 免支付完成令牌签名非法、类型不符、绑定不符或已过期
	ErrInvalidToken = errors.New("invalid free completion token")
	// ErrNotActuallyFree 兑换时重算的应付金额不为零
	ErrNotActuallyFree = errors.New("resource is not free at redemption time")
	// ErrResourceNotFound 订单引用的领域资源不存在
	ErrResourceNotFound = errors.New("referenced resource not found")
	// ErrUnknownResourceKind 没有注册能处理该资源类型的执行器
	ErrUnknownResourceKind = errors.New("no applier registered for resource kind")
	// ErrOrderNotFound 支付订单在本地台账中不存在
	ErrOrderNotFound = errors.New("payable order not found")
)
