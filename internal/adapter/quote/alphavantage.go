package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/finbank/finbank-backend/internal/domain"
)

// AlphaVantage is the last fallback, kept mainly for Indian listings.
// It expects exchange suffixes in its own notation (.NSE/.BSE).
type AlphaVantage struct {
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewAlphaVantage creates an Alpha Vantage provider. An empty apiKey disables it.
func NewAlphaVantage(client *http.Client, apiKey string) *AlphaVantage {
	return &AlphaVantage{
		BaseURL: "https://www.alphavantage.co",
		apiKey:  apiKey,
		client:  client,
	}
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

func (a *AlphaVantage) Supports(assetType domain.AssetType) bool {
	return assetType == domain.AssetTypeStock || assetType == domain.AssetTypeETF
}

// Quote fetches the global quote price for a symbol
func (a *AlphaVantage) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	if a.apiKey == "" {
		return nil, errors.New("alpha vantage API key not configured")
	}

	avSymbol := strings.NewReplacer(".NS", ".NSE", ".BO", ".BSE").Replace(symbol)
	url := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s", a.BaseURL, avSymbol, a.apiKey)
	data, err := getJSON(ctx, a.client, url, nil)
	if err != nil {
		return nil, err
	}

	// A "Note" field signals rate limiting
	if note, _ := jsonpath.Get("$.Note", data); note != nil {
		return nil, errors.New("alpha vantage rate limited")
	}

	price, err := extractPrice(data, `$["Global Quote"]["05. price"]`)
	if err != nil {
		return nil, err
	}

	currency := "USD"
	if domain.IsIndianListing(symbol) {
		currency = "INR"
	}

	return &domain.Quote{Symbol: symbol, Price: price, Currency: currency, Live: true}, nil
}
