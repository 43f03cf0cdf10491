package dapp_test

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/Mohsinsiddi/andycoin/internal/dapp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ownerAddr = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	otherAddr = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// ---------------------------------------------------------------------------
// provider
// ---------------------------------------------------------------------------

type fakeProvider struct {
	accounts   []common.Address
	accountErr error
	tokenErr   error
	token      *fakeToken
}

func (p *fakeProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	return p.accounts, p.accountErr
}

func (p *fakeProvider) Token(context.Context, bool) (dapp.Token, error) {
	if p.tokenErr != nil {
		return nil, p.tokenErr
	}
	return p.token, nil
}

// ---------------------------------------------------------------------------
// token
// ---------------------------------------------------------------------------

type sent struct {
	method string
	to     common.Address
	amount *big.Int
}

type fakeToken struct {
	mu      sync.Mutex
	owner   common.Address
	supply  *big.Int
	balance *big.Int
	readErr error
	sendErr error
	waitErr error

	// applied to supply when a transaction is mined
	supplyDelta *big.Int

	sent []sent
	subs []*fakeSub

	// events is handed to every new subscription; nil means the event
	// follows the receipt immediately.
	events chan struct{}
}

func newFakeToken() *fakeToken {
	return &fakeToken{
		owner:   ownerAddr,
		supply:  tokens(1000),
		balance: tokens(250),
	}
}

func (t *fakeToken) Name(context.Context) (string, error)   { return "Andy Coin", t.readErr }
func (t *fakeToken) Symbol(context.Context) (string, error) { return "ANDY", t.readErr }

func (t *fakeToken) Owner(context.Context) (common.Address, error) {
	return t.owner, t.readErr
}

func (t *fakeToken) TotalSupply(context.Context) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.supply), t.readErr
}

func (t *fakeToken) BalanceOf(context.Context, common.Address) (*big.Int, error) {
	return new(big.Int).Set(t.balance), t.readErr
}

func (t *fakeToken) Transfer(_ context.Context, to common.Address, amount *big.Int) (contract.PendingTx, error) {
	return t.send(sent{method: "transfer", to: to, amount: amount})
}

func (t *fakeToken) Burn(_ context.Context, amount *big.Int) (contract.PendingTx, error) {
	return t.send(sent{method: "burn", amount: amount})
}

func (t *fakeToken) Mint(_ context.Context, to common.Address, amount *big.Int) (contract.PendingTx, error) {
	return t.send(sent{method: "mint", to: to, amount: amount})
}

func (t *fakeToken) send(s sent) (contract.PendingTx, error) {
	if t.sendErr != nil {
		return nil, contract.Classify(t.sendErr)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, s)
	return &fakeTx{token: t, hash: common.BigToHash(big.NewInt(int64(len(t.sent))))}, nil
}

func (t *fakeToken) WatchEvent(_ context.Context, name string) (contract.EventSubscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sub := &fakeSub{name: name, release: t.events}
	t.subs = append(t.subs, sub)
	return sub, nil
}

func (t *fakeToken) sentTxs() []sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sent(nil), t.sent...)
}

func (t *fakeToken) lastSub() *fakeSub {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.subs) == 0 {
		return nil
	}
	return t.subs[len(t.subs)-1]
}

type fakeTx struct {
	token *fakeToken
	hash  common.Hash
}

func (x *fakeTx) Hash() common.Hash { return x.hash }

func (x *fakeTx) Wait(ctx context.Context) (*types.Receipt, error) {
	if x.token.waitErr != nil {
		return nil, contract.Classify(x.token.waitErr)
	}
	x.token.mu.Lock()
	if x.token.supplyDelta != nil {
		x.token.supply.Add(x.token.supply, x.token.supplyDelta)
	}
	x.token.mu.Unlock()
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: x.hash, BlockNumber: big.NewInt(7)}, nil
}

// ---------------------------------------------------------------------------
// subscription
// ---------------------------------------------------------------------------

type fakeSub struct {
	name         string
	release      chan struct{}
	unsubscribes atomic.Int32
}

func (s *fakeSub) Next(ctx context.Context, txHash common.Hash) (*contract.Event, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, contract.Classify(ctx.Err())
		}
	}
	return &contract.Event{Name: s.name, TxHash: txHash, BlockNumber: 7}, nil
}

func (s *fakeSub) Unsubscribe() { s.unsubscribes.Add(1) }
