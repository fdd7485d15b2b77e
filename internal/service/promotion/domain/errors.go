// internal/service/promotion/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	ErrPromoNotFound       = errors.New("promo code not found")
	ErrPromoInactive       = errors.New("promo code is not active")
	ErrPromoNotStarted     = errors.New("promo code is not yet valid")
	ErrPromoExpired        = errors.New("promo code has expired")
	ErrPromoWrongContext   = errors.New("promo code does not apply to this context")
	ErrPromoExhausted      = errors.New("promo code has no remaining uses")
	ErrPromoAlreadyApplied = errors.New("promo code was already applied to this subject")
	ErrPromoRuleRejected   = errors.New("promo code rule rejected this redemption")
)
