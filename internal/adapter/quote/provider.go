// Package quote implements the live price lookup chain: CoinGecko for
// crypto, then Yahoo Finance, Finnhub and Alpha Vantage for stocks.
// Providers return prices in their native currency; conversion is the
// caller's concern.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
)

// Provider is a single upstream quote source
type Provider interface {
	Name() string
	Supports(assetType domain.AssetType) bool
	Quote(ctx context.Context, symbol string) (*domain.Quote, error)
}

// getJSON performs an HTTP GET and unmarshals the JSON response
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return data, nil
}

// extractPrice reads a price at the given jsonpath. Providers encode
// prices either as JSON numbers or as numeric strings.
func extractPrice(data interface{}, path string) (decimal.Decimal, error) {
	v, err := jsonpath.Get(path, data)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price not found at %s: %w", path, err)
	}

	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid price %q: %w", n, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("unexpected price type %T at %s", v, path)
	}
}
