package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrChainMismatch is returned when an endpoint serves a different chain ID
// than the network it was configured for.
var ErrChainMismatch = errors.New("endpoint serves a different chain")

// Client is an EVM JSON-RPC connection to one endpoint.
type Client struct {
	url string
	eth *ethclient.Client
}

// Dial connects to url. HTTP endpoints connect lazily on first call.
func Dial(ctx context.Context, url string) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &Client{url: url, eth: eth}, nil
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string { return c.url }

// Eth exposes the underlying go-ethereum client for contract bindings.
func (c *Client) Eth() *ethclient.Client { return c.eth }

// Close releases the connection.
func (c *Client) Close() { c.eth.Close() }

// Ping tests the endpoint and returns latency + head block number.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.eth.BlockNumber(ctx)
	latency = time.Since(start)
	if err != nil {
		return latency, 0, err
	}
	return latency, blockNum, nil
}

// ChainID returns the chain ID reported by the endpoint.
func (c *Client) ChainID(ctx context.Context) (int64, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}
	return id.Int64(), nil
}

// VerifyChainID fails with ErrChainMismatch when the endpoint is not on want.
func (c *Client) VerifyChainID(ctx context.Context, want int64) error {
	got, err := c.ChainID(ctx)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s reports %d, expected %d", ErrChainMismatch, c.url, got, want)
	}
	return nil
}
