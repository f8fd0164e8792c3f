package quote

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/finbank/finbank-backend/internal/domain"
)

// coinIDs maps ticker symbols (with and without the USDT pair suffix)
// to CoinGecko coin identifiers.
var coinIDs = map[string]string{
	"BTC": "bitcoin", "BTCUSDT": "bitcoin",
	"ETH": "ethereum", "ETHUSDT": "ethereum",
	"SOL": "solana", "SOLUSDT": "solana",
	"DOGE": "dogecoin", "DOGEUSDT": "dogecoin",
	"ADA": "cardano", "ADAUSDT": "cardano",
	"USDT": "tether", "BNB": "binancecoin",
	"XRP": "ripple",
}

// CoinGecko serves crypto quotes in USD
type CoinGecko struct {
	BaseURL string
	client  *http.Client
}

// NewCoinGecko creates a CoinGecko provider
func NewCoinGecko(client *http.Client) *CoinGecko {
	return &CoinGecko{
		BaseURL: "https://api.coingecko.com",
		client:  client,
	}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) Supports(assetType domain.AssetType) bool {
	return assetType == domain.AssetTypeCrypto
}

// Quote fetches the USD spot price for a crypto symbol
func (c *CoinGecko) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	base := strings.NewReplacer("USDT", "", "USD", "").Replace(strings.ToUpper(symbol))
	coinID, ok := coinIDs[base]
	if !ok {
		return nil, fmt.Errorf("unknown crypto symbol %q", symbol)
	}

	url := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd", c.BaseURL, coinID)
	data, err := getJSON(ctx, c.client, url, nil)
	if err != nil {
		return nil, err
	}

	price, err := extractPrice(data, fmt.Sprintf("$[%q].usd", coinID))
	if err != nil {
		return nil, err
	}

	return &domain.Quote{Symbol: symbol, Price: price, Currency: "USD", Live: true}, nil
}
