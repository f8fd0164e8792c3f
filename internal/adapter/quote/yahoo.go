package quote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
)

// Yahoo serves stock and ETF quotes. It needs no API key and handles
// both US and NSE/BSE listings; the latter are priced in INR.
type Yahoo struct {
	BaseURL string
	client  *http.Client
}

// NewYahoo creates a Yahoo Finance provider
func NewYahoo(client *http.Client) *Yahoo {
	return &Yahoo{
		BaseURL: "https://query1.finance.yahoo.com",
		client:  client,
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

func (y *Yahoo) Supports(assetType domain.AssetType) bool {
	return assetType == domain.AssetTypeStock || assetType == domain.AssetTypeETF
}

// Yahoo blocks requests without a browser user agent.
var yahooHeaders = map[string]string{"User-Agent": "Mozilla/5.0"}

func (y *Yahoo) chart(ctx context.Context, symbol string) (interface{}, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d", y.BaseURL, symbol)
	return getJSON(ctx, y.client, url, yahooHeaders)
}

// Quote fetches the regular market price for a symbol
func (y *Yahoo) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	data, err := y.chart(ctx, symbol)
	if err != nil {
		return nil, err
	}

	price, err := extractPrice(data, "$.chart.result[0].meta.regularMarketPrice")
	if err != nil {
		return nil, err
	}

	currency := "USD"
	if domain.IsIndianListing(symbol) {
		currency = "INR"
	}

	return &domain.Quote{Symbol: symbol, Price: price, Currency: currency, Live: true}, nil
}

// DailyChangePercent fetches the day-over-day percent change for a
// symbol. Best effort: errors bubble up and callers treat the change
// as unknown.
func (y *Yahoo) DailyChangePercent(ctx context.Context, symbol string) (decimal.Decimal, error) {
	data, err := y.chart(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	change, err := extractPrice(data, "$.chart.result[0].meta.regularMarketChangePercent")
	if err != nil {
		return decimal.Zero, err
	}
	return change, nil
}
