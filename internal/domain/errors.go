package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for the failure modes handlers map to HTTP statuses.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCardFrozen        = errors.New("card is frozen")
	ErrQuoteUnavailable  = errors.New("price unavailable")
)

// LimitExceededError is returned when a card posting would exceed the
// card's monthly spending limit. Remaining carries the headroom left
// this month so the client can display it.
type LimitExceededError struct {
	Remaining decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("exceeds monthly limit: only $%s left", e.Remaining.StringFixed(2))
}

// IsLimitExceeded reports whether err is a LimitExceededError and
// returns it for access to the remaining headroom.
func IsLimitExceeded(err error) (*LimitExceededError, bool) {
	var le *LimitExceededError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
