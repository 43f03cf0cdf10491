// Package price quotes native gas currencies so fee previews can show a
// fiat estimate.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Fetcher retrieves prices from CoinGecko.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string
}

// NewFetcher creates a fetcher quoting in currency (default usd).
func NewFetcher(currency string) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 5 * time.Second},
		baseURL:  defaultBaseURL,
		currency: strings.ToLower(currency),
	}
}

// Currency is the quote currency code.
func (f *Fetcher) Currency() string { return f.currency }

// coinGeckoIDs maps native currency symbols to CoinGecko coin IDs.
var coinGeckoIDs = map[string]string{
	"ETH":   "ethereum",
	"MATIC": "matic-network",
	"POL":   "matic-network",
}

// NativePrice returns the price of one unit of the native currency symbol.
func (f *Fetcher) NativePrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id, ok := coinGeckoIDs[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price source for %s", symbol)
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", f.baseURL, id, f.currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetching price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fetching price: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading price response: %w", err)
	}

	// Response: {"ethereum":{"usd":1234.56}}
	var raw map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &raw); err != nil {
		return decimal.Zero, fmt.Errorf("parsing price response: %w", err)
	}
	p, ok := raw[id][f.currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("price not available for %s", symbol)
	}
	return p, nil
}

// FeeValue converts a wei amount of the native currency into the quote
// currency, rounded to cents.
func FeeValue(wei *big.Int, unitPrice decimal.Decimal) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -18).Mul(unitPrice).Round(2)
}
