package quote

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
)

// DefaultTimeout bounds each upstream lookup so a hung provider cannot
// block a settlement.
const DefaultTimeout = 5 * time.Second

// Chain implements domain.QuoteProvider by trying each provider that
// supports the asset type in order, moving on after an error or
// timeout. It implements domain.DailyChangeProvider via Yahoo.
type Chain struct {
	providers []Provider
	yahoo     *Yahoo
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewChain builds the default provider chain: CoinGecko for crypto,
// then Yahoo, Finnhub and Alpha Vantage for stocks. Keyed providers
// with empty keys fail fast and the chain advances past them.
func NewChain(logger zerolog.Logger, finnhubKey, alphaVantageKey string) *Chain {
	client := &http.Client{}
	yahoo := NewYahoo(client)
	return &Chain{
		providers: []Provider{
			NewCoinGecko(client),
			yahoo,
			NewFinnhub(client, finnhubKey),
			NewAlphaVantage(client, alphaVantageKey),
		},
		yahoo:   yahoo,
		timeout: DefaultTimeout,
		logger:  logger.With().Str("component", "quote-chain").Logger(),
	}
}

// NewChainFrom builds a chain over explicit providers, used in tests
func NewChainFrom(logger zerolog.Logger, timeout time.Duration, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
	}
}

// Quote returns the first live price the chain produces, or
// domain.ErrQuoteUnavailable when every provider fails.
func (c *Chain) Quote(ctx context.Context, symbol string, assetType domain.AssetType) (*domain.Quote, error) {
	for _, p := range c.providers {
		if !p.Supports(assetType) {
			continue
		}

		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		q, err := p.Quote(pctx, symbol)
		cancel()

		if err != nil {
			c.logger.Warn().Err(err).Str("provider", p.Name()).Str("symbol", symbol).Msg("quote lookup failed, trying next provider")
			continue
		}
		if q.Price.LessThanOrEqual(decimal.Zero) {
			continue
		}
		return q, nil
	}

	return nil, domain.ErrQuoteUnavailable
}

// DailyChangePercent reports the day-over-day change via Yahoo; zero
// when unavailable.
func (c *Chain) DailyChangePercent(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if c.yahoo == nil {
		return decimal.Zero, nil
	}

	pctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	change, err := c.yahoo.DailyChangePercent(pctx, symbol)
	if err != nil {
		c.logger.Debug().Err(err).Str("symbol", symbol).Msg("daily change lookup failed")
		return decimal.Zero, nil
	}
	return change, nil
}
