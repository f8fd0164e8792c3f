package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
)

// Finnhub is a keyed fallback for stock quotes
type Finnhub struct {
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewFinnhub creates a Finnhub provider. An empty apiKey disables it.
func NewFinnhub(client *http.Client, apiKey string) *Finnhub {
	return &Finnhub{
		BaseURL: "https://finnhub.io",
		apiKey:  apiKey,
		client:  client,
	}
}

func (f *Finnhub) Name() string { return "finnhub" }

func (f *Finnhub) Supports(assetType domain.AssetType) bool {
	return assetType == domain.AssetTypeStock || assetType == domain.AssetTypeETF
}

// Quote fetches the current price for a symbol
func (f *Finnhub) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	if f.apiKey == "" {
		return nil, errors.New("finnhub API key not configured")
	}

	url := fmt.Sprintf("%s/api/v1/quote?symbol=%s&token=%s", f.BaseURL, symbol, f.apiKey)
	data, err := getJSON(ctx, f.client, url, nil)
	if err != nil {
		return nil, err
	}

	// "c" is the current price; 0 means unknown symbol
	price, err := extractPrice(data, "$.c")
	if err != nil {
		return nil, err
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("finnhub has no price for %q", symbol)
	}

	return &domain.Quote{Symbol: symbol, Price: price, Currency: "USD", Live: true}, nil
}
