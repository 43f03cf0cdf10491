package dapp

import (
	"context"
	"errors"
	"math/big"

	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// Errors.
var (
	// ErrNoProvider means no wallet provider is available to connect to.
	ErrNoProvider = errors.New("no wallet provider available")
	// ErrActionInProgress is returned when an action is invoked while the
	// same action is still in flight.
	ErrActionInProgress = errors.New("action already in progress")
	// ErrNotConnected is returned by actions that need a connected account.
	ErrNotConnected = errors.New("wallet not connected")
)

// Provider hands out accounts and contract bindings.
type Provider interface {
	// RequestAccounts asks the wallet for its accounts. Wrap ErrNoProvider
	// when no wallet exists.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Token returns a binding to the token contract. A signing binding can
	// send transactions on behalf of the connected account.
	Token(ctx context.Context, signing bool) (Token, error)
}

// Token is the contract surface the controller uses.
type Token interface {
	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
	Owner(ctx context.Context) (common.Address, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)

	Transfer(ctx context.Context, to common.Address, amount *big.Int) (contract.PendingTx, error)
	Burn(ctx context.Context, amount *big.Int) (contract.PendingTx, error)
	Mint(ctx context.Context, to common.Address, amount *big.Int) (contract.PendingTx, error)

	WatchEvent(ctx context.Context, name string) (contract.EventSubscription, error)
}

var _ Token = (*contract.Token)(nil)
