package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/andycoin/internal/chain"
)

// probeTimeout bounds a single endpoint probe.
const probeTimeout = 5 * time.Second

// Probe is the outcome of testing one endpoint.
type Probe struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// ProbeAll tests every url in parallel. A non-zero chainID marks endpoints
// serving another chain as failed.
func ProbeAll(ctx context.Context, urls []string, chainID int64) []Probe {
	probes := make([]Probe, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			probes[idx] = probe(ctx, u, chainID)
		}(i, url)
	}
	wg.Wait()
	return probes
}

func probe(ctx context.Context, url string, chainID int64) Probe {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	p := Probe{URL: url}
	c, err := chain.Dial(ctx, url)
	if err != nil {
		p.Err = err
		return p
	}
	defer c.Close()

	p.Latency, p.BlockNumber, p.Err = c.Ping(ctx)
	if p.Err == nil && chainID != 0 {
		p.Err = c.VerifyChainID(ctx, chainID)
	}
	return p
}

// ToEndpoints converts probes to checked picker endpoints, keeping order.
func ToEndpoints(probes []Probe) []Endpoint {
	endpoints := make([]Endpoint, 0, len(probes))
	for _, p := range probes {
		endpoints = append(endpoints, Endpoint{
			URL:         p.URL,
			Latency:     p.Latency,
			BlockNumber: p.BlockNumber,
			Healthy:     p.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// HealthCheck probes url and reports it unhealthy when it fails, serves the
// wrong chain, or trails bestBlock by more than the stale threshold.
// Pass bestBlock 0 to skip the recency check.
func HealthCheck(ctx context.Context, url string, chainID int64, bestBlock uint64) (Endpoint, error) {
	p := probe(ctx, url, chainID)
	ep := Endpoint{
		URL:         url,
		Latency:     p.Latency,
		BlockNumber: p.BlockNumber,
		Healthy:     p.Err == nil,
		Checked:     true,
	}
	if p.Err == nil && bestBlock > 0 && bestBlock > p.BlockNumber && bestBlock-p.BlockNumber > staleBlockThreshold {
		ep.Healthy = false
	}
	return ep, p.Err
}
