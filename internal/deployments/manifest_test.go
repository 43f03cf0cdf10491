package deployments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenAddr = "0x8b185cE9B81A4ccD69F64b441986eD3c850A05A6"

func manifestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---------------------------------------------------------------------------
// Manifest
// ---------------------------------------------------------------------------

func TestManifestParseValid(t *testing.T) {
	data := `{
		"contracts": {
			"AndyCoin": {
				"sepolia": {"address": "0x8b185ce9b81a4ccd69f64b441986ed3c850a05a6", "block": 4100000}
			}
		}
	}`

	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(data), &m))
	assert.Equal(t, uint64(4100000), m.Contracts["AndyCoin"]["sepolia"].Block)

	addr, err := m.Address("andycoin", "Sepolia")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(tokenAddr), addr)
}

func TestManifestAddressNotDeployed(t *testing.T) {
	m := Manifest{Contracts: map[string]map[string]Entry{
		"andycoin": {"sepolia": {Address: tokenAddr}},
	}}

	_, err := m.Address("andycoin", "ethereum")
	assert.ErrorIs(t, err, ErrNotDeployed)

	_, err = m.Address("other", "sepolia")
	assert.ErrorIs(t, err, ErrNotDeployed)
}

func TestManifestAddressInvalid(t *testing.T) {
	m := Manifest{Contracts: map[string]map[string]Entry{
		"andycoin": {"sepolia": {Address: "0x1234"}},
	}}
	_, err := m.Address("andycoin", "sepolia")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotDeployed)
}

func TestManifestEmpty(t *testing.T) {
	var m Manifest
	_, err := m.Address("andycoin", "sepolia")
	assert.ErrorIs(t, err, ErrNotDeployed)
}

// ---------------------------------------------------------------------------
// Fetcher
// ---------------------------------------------------------------------------

func TestFetch(t *testing.T) {
	srv := manifestServer(t, http.StatusOK, `{"contracts":{"andycoin":{"localhost":{"address":"`+tokenAddr+`"}}}}`)

	m, err := NewFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	addr, err := m.Address("andycoin", "localhost")
	require.NoError(t, err)
	assert.Equal(t, tokenAddr, addr.Hex())
}

func TestFetchHTTPError(t *testing.T) {
	srv := manifestServer(t, http.StatusNotFound, "not found")
	_, err := NewFetcher().Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestFetchBadJSON(t *testing.T) {
	srv := manifestServer(t, http.StatusOK, "{not json")
	_, err := NewFetcher().Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "parsing manifest")
}

func TestFetchUnreachable(t *testing.T) {
	_, err := NewFetcher().Fetch(context.Background(), "http://127.0.0.1:1/deployments.json")
	assert.Error(t, err)
}

func TestFetchCancelled(t *testing.T) {
	srv := manifestServer(t, http.StatusOK, `{"contracts":{}}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFetcher().Fetch(ctx, srv.URL)
	assert.Error(t, err)
}
