package contract

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

const defaultPollInterval = 2 * time.Second

// Backend is the node access a token binding needs. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BlockNumber(ctx context.Context) (uint64, error)
}

// PendingTx is a broadcast transaction that has not been waited on yet.
type PendingTx interface {
	Hash() common.Hash
	Wait(ctx context.Context) (*types.Receipt, error)
}

// Token is a typed binding to an Andy Coin deployment.
type Token struct {
	address      common.Address
	abi          abi.ABI
	bound        *bind.BoundContract
	backend      Backend
	signer       *bind.TransactOpts
	pollInterval time.Duration
	log          zerolog.Logger
}

// Option configures a Token.
type Option func(*Token)

// WithSigner enables state-changing calls through opts.
func WithSigner(opts *bind.TransactOpts) Option {
	return func(t *Token) { t.signer = opts }
}

// WithPollInterval sets how often event polling queries logs when the node
// does not support subscriptions.
func WithPollInterval(d time.Duration) Option {
	return func(t *Token) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Token) { t.log = l }
}

// NewToken binds the Andy Coin ABI at address.
func NewToken(address common.Address, backend Backend, opts ...Option) (*Token, error) {
	kind, ok := GetBuiltin(AndyCoinID)
	if !ok {
		return nil, fmt.Errorf("builtin %s not registered", AndyCoinID)
	}
	t := &Token{
		address:      address,
		abi:          kind.ABI,
		backend:      backend,
		pollInterval: defaultPollInterval,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.bound = bind.NewBoundContract(address, t.abi, backend, backend, backend)
	return t, nil
}

// Address returns the bound contract address.
func (t *Token) Address() common.Address { return t.address }

// CanSign reports whether the binding can send transactions.
func (t *Token) CanSign() bool { return t.signer != nil }

// ── reads ───────────────────────────────────────────────────────────────────

// Name returns the token name.
func (t *Token) Name(ctx context.Context) (string, error) {
	out, err := t.call(ctx, "name")
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// Symbol returns the token symbol.
func (t *Token) Symbol(ctx context.Context) (string, error) {
	out, err := t.call(ctx, "symbol")
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// Owner returns the contract owner.
func (t *Token) Owner(ctx context.Context) (common.Address, error) {
	out, err := t.call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// TotalSupply returns the raw supply in base units.
func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	out, err := t.call(ctx, "totalSupply")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// BalanceOf returns the raw balance of account in base units.
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := t.call(ctx, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// ── writes ──────────────────────────────────────────────────────────────────

// Transfer sends amount base units to to.
func (t *Token) Transfer(ctx context.Context, to common.Address, amount *big.Int) (PendingTx, error) {
	return t.transact(ctx, "transfer", to, amount)
}

// Burn destroys amount base units held by the signer.
func (t *Token) Burn(ctx context.Context, amount *big.Int) (PendingTx, error) {
	return t.transact(ctx, "burn", amount)
}

// Mint creates amount base units for to. Only the owner may call it.
func (t *Token) Mint(ctx context.Context, to common.Address, amount *big.Int) (PendingTx, error) {
	return t.transact(ctx, "mint", to, amount)
}

func (t *Token) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := t.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		t.log.Debug().Err(err).Str("method", method).Msg("contract call failed")
		return nil, Classify(err)
	}
	if len(out) == 0 {
		return nil, &Error{Kind: KindUnknown, Message: fmt.Sprintf("%s returned no data", method)}
	}
	return out, nil
}

func (t *Token) transact(ctx context.Context, method string, args ...interface{}) (PendingTx, error) {
	if t.signer == nil {
		return nil, ErrReadOnly
	}
	opts := *t.signer
	opts.Context = ctx
	tx, err := t.bound.Transact(&opts, method, args...)
	if err != nil {
		t.log.Debug().Err(err).Str("method", method).Msg("transaction rejected")
		return nil, Classify(err)
	}
	t.log.Info().Str("method", method).Str("tx", tx.Hash().Hex()).Uint64("nonce", tx.Nonce()).Msg("transaction sent")
	return &Tx{tx: tx, backend: t.backend}, nil
}

// Tx is a transaction sent through a Token.
type Tx struct {
	tx      *types.Transaction
	backend bind.DeployBackend
}

// Hash returns the transaction hash.
func (x *Tx) Hash() common.Hash { return x.tx.Hash() }

// Wait blocks until the transaction is mined. A mined but failed transaction
// is reported as a revert.
func (x *Tx) Wait(ctx context.Context) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, x.backend, x.tx)
	if err != nil {
		return nil, Classify(err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, &Error{Kind: KindReverted, Message: "Transaction reverted on chain"}
	}
	return receipt, nil
}
