package wallet

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/Mohsinsiddi/andycoin/internal/dapp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// ErrNoWallet means no wallet is configured.
var ErrNoWallet = fmt.Errorf("no wallet configured: %w", dapp.ErrNoProvider)

// Provider connects a local wallet to the token contract.
type Provider struct {
	wallet       *Wallet
	signer       *Signer
	backend      contract.Backend
	address      common.Address
	chainID      *big.Int
	approve      ApproveFunc
	pollInterval time.Duration
	log          zerolog.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithApprover asks approve before each signature.
func WithApprover(approve ApproveFunc) ProviderOption {
	return func(p *Provider) { p.approve = approve }
}

// WithEventPollInterval sets how often logs are polled when the node has
// no push subscriptions.
func WithEventPollInterval(d time.Duration) ProviderOption {
	return func(p *Provider) { p.pollInterval = d }
}

// WithProviderLogger attaches a logger.
func WithProviderLogger(l zerolog.Logger) ProviderOption {
	return func(p *Provider) { p.log = l }
}

// NewProvider binds w to the token at address. w may be nil, in which case
// RequestAccounts reports ErrNoWallet.
func NewProvider(w *Wallet, ks KeystoreBackend, backend contract.Backend, address common.Address, chainID *big.Int, opts ...ProviderOption) *Provider {
	p := &Provider{
		wallet:  w,
		backend: backend,
		address: address,
		chainID: chainID,
		log:     zerolog.Nop(),
	}
	if w != nil {
		p.signer = NewSigner(w, ks)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RequestAccounts returns the wallet's address.
func (p *Provider) RequestAccounts(context.Context) ([]common.Address, error) {
	if p.wallet == nil {
		return nil, ErrNoWallet
	}
	return []common.Address{p.wallet.Account()}, nil
}

// Token returns a contract binding. A signing binding resolves the private
// key on every call so a lock between actions takes effect.
func (p *Provider) Token(ctx context.Context, signing bool) (dapp.Token, error) {
	opts := []contract.Option{contract.WithLogger(p.log)}
	if p.pollInterval > 0 {
		opts = append(opts, contract.WithPollInterval(p.pollInterval))
	}
	if signing {
		if p.signer == nil {
			return nil, ErrNoWallet
		}
		txOpts, err := p.signer.TransactOpts(ctx, p.chainID, p.approve)
		if err != nil {
			return nil, err
		}
		opts = append(opts, contract.WithSigner(txOpts))
	}

	tok, err := contract.NewToken(p.address, p.backend, opts...)
	if err != nil {
		return nil, err
	}
	return tok, nil
}
