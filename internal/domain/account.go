package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrackingAccountName is the name of the synthetic account that mirrors
// capital currently deployed in investments. It is created on demand,
// one per user, and is adjusted only by buy/sell settlements.
const TrackingAccountName = "Investment Portfolio"

// Account represents a money account owned by a user.
// Balance is USD-denominated regardless of display currency.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Type      string // free text: Checking, Savings, Investment, Crypto, ...
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if a.Name == "" {
		return errors.New("account name cannot be empty")
	}
	if a.Type == "" {
		return errors.New("account type cannot be empty")
	}
	if a.UserID == uuid.Nil {
		return errors.New("account must belong to a user")
	}
	return nil
}

// IsTracking reports whether this is the synthetic investment tracking account
func (a *Account) IsTracking() bool {
	return a.Name == TrackingAccountName
}
