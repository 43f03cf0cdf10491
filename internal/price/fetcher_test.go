package price

import (
	"context"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// fixedTransport: replaces the HTTP client without needing a real server.
// ---------------------------------------------------------------------------

type fixedTransport struct {
	body string
	code int
	err  error
	last *http.Request
}

func (ft *fixedTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ft.last = r
	if ft.err != nil {
		return nil, ft.err
	}
	return &http.Response{
		StatusCode: ft.code,
		Body:       io.NopCloser(strings.NewReader(ft.body)),
		Header:     make(http.Header),
	}, nil
}

func newMockFetcher(body string, code int) (*Fetcher, *fixedTransport) {
	ft := &fixedTransport{body: body, code: code}
	f := NewFetcher("usd")
	f.client = &http.Client{Transport: ft}
	return f, ft
}

// ---------------------------------------------------------------------------
// NewFetcher
// ---------------------------------------------------------------------------

func TestNewFetcherDefaultCurrency(t *testing.T) {
	assert.Equal(t, "usd", NewFetcher("").Currency())
}

func TestNewFetcherLowercasesCurrency(t *testing.T) {
	assert.Equal(t, "eur", NewFetcher("EUR").Currency())
}

// ---------------------------------------------------------------------------
// NativePrice
// ---------------------------------------------------------------------------

func TestNativePriceETH(t *testing.T) {
	f, ft := newMockFetcher(`{"ethereum":{"usd":3000.50}}`, http.StatusOK)

	p, err := f.NativePrice(context.Background(), "eth")
	require.NoError(t, err)
	assert.Equal(t, "3000.5", p.String())
	require.NotNil(t, ft.last)
	assert.Contains(t, ft.last.URL.RawQuery, "ids=ethereum")
	assert.Contains(t, ft.last.URL.RawQuery, "vs_currencies=usd")
}

func TestNativePriceMaticAndPolShareID(t *testing.T) {
	for _, sym := range []string{"MATIC", "POL"} {
		f, _ := newMockFetcher(`{"matic-network":{"usd":0.85}}`, http.StatusOK)
		p, err := f.NativePrice(context.Background(), sym)
		require.NoError(t, err, sym)
		assert.Equal(t, "0.85", p.String())
	}
}

func TestNativePriceUnknownSymbol(t *testing.T) {
	f, ft := newMockFetcher("{}", http.StatusOK)
	_, err := f.NativePrice(context.Background(), "FAKE")
	assert.ErrorContains(t, err, "no price source")
	assert.Nil(t, ft.last, "no request for unknown symbols")
}

func TestNativePriceTransportError(t *testing.T) {
	f := NewFetcher("usd")
	f.client = &http.Client{Transport: &fixedTransport{err: errors.New("connection refused")}}
	_, err := f.NativePrice(context.Background(), "ETH")
	assert.ErrorContains(t, err, "fetching price")
}

func TestNativePriceRateLimited(t *testing.T) {
	f, _ := newMockFetcher(`{"status":{"error_code":429}}`, http.StatusTooManyRequests)
	_, err := f.NativePrice(context.Background(), "ETH")
	assert.ErrorContains(t, err, "HTTP 429")
}

func TestNativePriceInvalidJSON(t *testing.T) {
	f, _ := newMockFetcher("{not valid json", http.StatusOK)
	_, err := f.NativePrice(context.Background(), "ETH")
	assert.ErrorContains(t, err, "parsing price response")
}

func TestNativePriceMissingCurrency(t *testing.T) {
	f, _ := newMockFetcher(`{"ethereum":{"eur":2800}}`, http.StatusOK)
	_, err := f.NativePrice(context.Background(), "ETH")
	assert.ErrorContains(t, err, "price not available")
}

func TestNativePriceAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		w.Write([]byte(`{"ethereum":{"usd":2000}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcher("usd")
	f.baseURL = srv.URL
	p, err := f.NativePrice(context.Background(), "ETH")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(2000)))
}

// ---------------------------------------------------------------------------
// FeeValue
// ---------------------------------------------------------------------------

func TestFeeValue(t *testing.T) {
	// 21000 gas at 50 gwei = 0.00105 ETH.
	wei := new(big.Int).Mul(big.NewInt(21_000), big.NewInt(50_000_000_000))
	v := FeeValue(wei, decimal.NewFromInt(3000))
	assert.Equal(t, "3.15", v.StringFixed(2))
}

func TestFeeValueNil(t *testing.T) {
	assert.True(t, FeeValue(nil, decimal.NewFromInt(3000)).IsZero())
}
