package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
)

// Event is a decoded contract log.
type Event struct {
	Name        string
	TxHash      common.Hash
	BlockNumber uint64
	Args        map[string]interface{}
}

// EventSubscription waits for one event. Unsubscribe is safe to call more
// than once and must be called when the caller is done.
type EventSubscription interface {
	Next(ctx context.Context, txHash common.Hash) (*Event, error)
	Unsubscribe()
}

// WatchEvent starts listening for name. It subscribes over the node's push
// channel when available and falls back to polling eth_getLogs from the
// current head otherwise.
func (t *Token) WatchEvent(ctx context.Context, name string) (EventSubscription, error) {
	ev, ok := t.abi.Events[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}

	logs, sub, err := t.bound.WatchLogs(&bind.WatchOpts{Context: ctx}, name)
	if err == nil {
		t.log.Debug().Str("event", name).Msg("subscribed to contract event")
		return &watchSub{token: t, name: name, logs: logs, sub: sub}, nil
	}
	if !errors.Is(err, rpc.ErrNotificationsUnsupported) {
		return nil, Classify(err)
	}

	head, err := t.backend.BlockNumber(ctx)
	if err != nil {
		return nil, Classify(err)
	}
	t.log.Debug().Str("event", name).Uint64("from", head).Msg("polling for contract event")
	return &pollSub{
		token: t,
		name:  name,
		query: ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(head),
			Addresses: []common.Address{t.address},
			Topics:    [][]common.Hash{{ev.ID}},
		},
		interval: t.pollInterval,
		done:     make(chan struct{}),
	}, nil
}

// decode unpacks a raw log emitted by the contract.
func (t *Token) decode(name string, l types.Log) (*Event, error) {
	args := make(map[string]interface{})
	if err := t.bound.UnpackLogIntoMap(args, name, l); err != nil {
		return nil, fmt.Errorf("decoding %s log: %w", name, err)
	}
	return &Event{Name: name, TxHash: l.TxHash, BlockNumber: l.BlockNumber, Args: args}, nil
}

// ── push subscription ───────────────────────────────────────────────────────

type watchSub struct {
	token *Token
	name  string
	logs  chan types.Log
	sub   event.Subscription
	once  sync.Once
}

func (s *watchSub) Next(ctx context.Context, txHash common.Hash) (*Event, error) {
	for {
		select {
		case l := <-s.logs:
			if l.Removed || l.TxHash != txHash {
				continue
			}
			return s.token.decode(s.name, l)
		case err := <-s.sub.Err():
			if err == nil {
				err = errors.New("event subscription closed")
			}
			return nil, Classify(err)
		case <-ctx.Done():
			return nil, Classify(ctx.Err())
		}
	}
}

func (s *watchSub) Unsubscribe() {
	s.once.Do(s.sub.Unsubscribe)
}

// ── polling subscription ────────────────────────────────────────────────────

type pollSub struct {
	token    *Token
	name     string
	query    ethereum.FilterQuery
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

func (s *pollSub) Next(ctx context.Context, txHash common.Hash) (*Event, error) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		logs, err := s.token.backend.FilterLogs(ctx, s.query)
		if err != nil && ctx.Err() == nil {
			s.token.log.Debug().Err(err).Str("event", s.name).Msg("log poll failed")
		}
		for _, l := range logs {
			if !l.Removed && l.TxHash == txHash {
				return s.token.decode(s.name, l)
			}
		}

		select {
		case <-ticker.C:
		case <-s.done:
			return nil, errors.New("event subscription closed")
		case <-ctx.Done():
			return nil, Classify(ctx.Err())
		}
	}
}

func (s *pollSub) Unsubscribe() {
	s.once.Do(func() { close(s.done) })
}
