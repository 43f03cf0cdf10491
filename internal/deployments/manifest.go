// Package deployments reads a published deployments manifest so the token
// address can follow redeploys without a new release.
package deployments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNotDeployed is returned when the manifest has no entry for a contract
// on a network.
var ErrNotDeployed = errors.New("contract not deployed on network")

// maxManifestBytes bounds the manifest body.
const maxManifestBytes = 1 << 20

// Manifest is the structure of a deployments.json manifest:
//
//	{"contracts": {"andycoin": {"sepolia": {"address": "0x..."}}}}
type Manifest struct {
	Contracts map[string]map[string]Entry `json:"contracts"`
}

// Entry is a single deployment.
type Entry struct {
	Address string `json:"address"`
	Block   uint64 `json:"block,omitempty"`
}

// Address returns where contract is deployed on network. Names are matched
// case-insensitively.
func (m *Manifest) Address(contract, network string) (common.Address, error) {
	for name, networks := range m.Contracts {
		if !strings.EqualFold(name, contract) {
			continue
		}
		for n, e := range networks {
			if !strings.EqualFold(n, network) {
				continue
			}
			if !common.IsHexAddress(e.Address) {
				return common.Address{}, fmt.Errorf("manifest: %s on %s: invalid address %q", contract, network, e.Address)
			}
			return common.HexToAddress(e.Address), nil
		}
	}
	return common.Address{}, fmt.Errorf("%w: %s on %s", ErrNotDeployed, contract, network)
}

// Fetcher downloads manifests.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with a 15s request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: 15 * time.Second}}
}

// Fetch downloads and parses the manifest at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching manifest: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
