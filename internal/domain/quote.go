package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price for a symbol in the provider's native
// currency. Live is false when the price came from stored data after a
// provider failure or timeout, so callers can surface staleness.
type Quote struct {
	Symbol   string
	Price    decimal.Decimal
	Currency string // "USD" or "INR"
	Live     bool
}

// QuoteProvider fetches a current price for a symbol. Implementations
// must honor ctx cancellation so a hung upstream cannot block a
// settlement; callers bound each lookup with a timeout.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string, assetType AssetType) (*Quote, error)
}

// DailyChangeProvider reports the day-over-day percent change for a
// symbol. Best effort: a zero value is returned when unavailable.
type DailyChangeProvider interface {
	DailyChangePercent(ctx context.Context, symbol string) (decimal.Decimal, error)
}
