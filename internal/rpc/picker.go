package rpc

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Nodes more than this many blocks behind the best are skipped.
	staleBlockThreshold = 3
	// A fastest-pick winner is reused for this long.
	cacheTTL = 5 * time.Minute
)

// Algorithms lists every selectable algorithm.
var Algorithms = []Algorithm{AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover}

// ParseAlgorithm validates name. Empty selects fastest.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return AlgorithmFastest, nil
	}
	for _, a := range Algorithms {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown RPC algorithm %q (want fastest, round-robin or failover)", name)
}

// Endpoint is one RPC endpoint with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked
	Checked     bool
}

// Picker selects an endpoint according to its algorithm.
type Picker struct {
	algo        Algorithm
	mu          sync.Mutex
	rrIndex     int
	cachedURL   string
	cacheExpiry time.Time
	now         func() time.Time
}

// NewPicker creates a Picker for algo.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo, now: time.Now}
}

// Pick selects an endpoint from endpoints.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.algo {
	case AlgorithmRoundRobin:
		return p.roundRobin(endpoints)
	case AlgorithmFailover:
		return failover(endpoints)
	default:
		return p.fastest(endpoints)
	}
}

func (p *Picker) fastest(endpoints []Endpoint) (*Endpoint, error) {
	if p.cachedURL != "" && p.now().Before(p.cacheExpiry) {
		for i := range endpoints {
			if endpoints[i].URL == p.cachedURL && eligible(&endpoints[i], endpoints) {
				return &endpoints[i], nil
			}
		}
	}

	head := headBlock(endpoints)
	var winner *Endpoint
	for _, e := range candidates(endpoints) {
		if head > 0 && head-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if winner == nil || e.Latency < winner.Latency ||
			(e.Latency == winner.Latency && e.BlockNumber > winner.BlockNumber) {
			winner = e
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}

	p.cachedURL = winner.URL
	p.cacheExpiry = p.now().Add(cacheTTL)
	return winner, nil
}

func (p *Picker) roundRobin(endpoints []Endpoint) (*Endpoint, error) {
	healthy := candidates(endpoints)
	if len(healthy) == 0 {
		return nil, ErrNoHealthyRPC
	}
	idx := p.rrIndex % len(healthy)
	p.rrIndex = idx + 1
	return healthy[idx], nil
}

// failover returns the first endpoint not known to be down, in list order.
func failover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		if e := &endpoints[i]; !e.Checked || e.Healthy {
			return e, nil
		}
	}
	return nil, ErrNoHealthyRPC
}

func headBlock(endpoints []Endpoint) uint64 {
	var head uint64
	for _, e := range endpoints {
		if e.BlockNumber > head {
			head = e.BlockNumber
		}
	}
	return head
}

// candidates drops checked endpoints that failed. With no health data at all
// every endpoint is a candidate.
func candidates(endpoints []Endpoint) []*Endpoint {
	out := make([]*Endpoint, 0, len(endpoints))
	for i := range endpoints {
		if e := &endpoints[i]; !e.Checked || e.Healthy {
			out = append(out, e)
		}
	}
	return out
}

func eligible(e *Endpoint, all []Endpoint) bool {
	if e.Checked && !e.Healthy {
		return false
	}
	head := headBlock(all)
	return head == 0 || head-e.BlockNumber <= staleBlockThreshold
}
