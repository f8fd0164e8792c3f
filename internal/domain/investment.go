package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType represents the kind of asset a position holds
type AssetType string

const (
	AssetTypeStock  AssetType = "Stock"
	AssetTypeCrypto AssetType = "Crypto"
	AssetTypeETF    AssetType = "ETF"
)

// Investment represents an open position: a held quantity of a symbol
// at a recorded cost basis. The current market value is never persisted;
// it is recomputed on every read from a live quote lookup.
//
// A position is Open while Quantity > 0. A partial sell decrements the
// quantity and keeps it open; selling the full quantity closes it by
// deleting the record. No other transitions exist.
type Investment struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Symbol        string // uppercase, e.g. AAPL, TCS.NS, BTC
	Name          string
	Type          AssetType
	Quantity      decimal.Decimal
	PricePerShare decimal.Decimal // cost basis per share, USD
	TotalValue    decimal.Decimal // cost basis of the whole position at acquisition
	CreatedAt     time.Time
}

// Validate ensures the investment adheres to domain rules
func (i *Investment) Validate() error {
	if i.Symbol == "" {
		return errors.New("investment symbol cannot be empty")
	}
	if i.UserID == uuid.Nil {
		return errors.New("investment must belong to a user")
	}
	if i.Quantity.LessThanOrEqual(decimal.Zero) {
		return errors.New("investment quantity must be positive")
	}
	if i.PricePerShare.LessThanOrEqual(decimal.Zero) {
		return errors.New("investment price per share must be positive")
	}
	return nil
}

// CostBasis returns the total cost basis for a given quantity of shares
func (i *Investment) CostBasis(quantity decimal.Decimal) decimal.Decimal {
	return i.PricePerShare.Mul(quantity)
}

// IsIndianListing reports whether the symbol carries an NSE or BSE
// suffix, meaning quote providers return prices in INR.
func IsIndianListing(symbol string) bool {
	return strings.Contains(symbol, ".NS") || strings.Contains(symbol, ".BO")
}
