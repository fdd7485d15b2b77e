// internal/service/pricing/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	// ErrInvalidUpgrade 目标档位不高于当前档位, 或档位未知
	ErrInvalidUpgrade = errors.New("target tier must be strictly higher than the current tier")
	// ErrNegativeQuote 报价各分项组合出了负的应付金额, 属于编程错误或数据被篡改
	ErrNegativeQuote = errors.New("quote final amount must not be negative")
)
