package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"

	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// EnvPrivateKey supplies a key for the selected wallet without the keychain.
const EnvPrivateKey = "ANDYCOIN_KEY"

// ApproveFunc is asked before each transaction is signed. Returning false
// rejects the transaction.
type ApproveFunc func(tx *types.Transaction) bool

// Signer signs transactions for a wallet.
type Signer struct {
	wallet *Wallet
	ks     KeystoreBackend
}

// NewSigner creates a signer for the given wallet.
func NewSigner(w *Wallet, ks KeystoreBackend) *Signer {
	return &Signer{wallet: w, ks: ks}
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return s.wallet.Account()
}

// privateKey resolves the key from the environment override or keystore.
func (s *Signer) privateKey() (*ecdsa.PrivateKey, error) {
	if env := os.Getenv(EnvPrivateKey); env != "" {
		key, err := crypto.HexToECDSA(normaliseHexKey(env))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvPrivateKey, ErrInvalidKey)
		}
		if crypto.PubkeyToAddress(key.PublicKey) != s.Address() {
			return nil, fmt.Errorf("%s does not belong to wallet %q", EnvPrivateKey, s.wallet.Name)
		}
		return key, nil
	}

	if !s.wallet.CanSign() {
		return nil, fmt.Errorf("%q: %w", s.wallet.Name, ErrWatchOnly)
	}
	hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return key, nil
}

// TransactOpts returns transaction options that sign for the wallet on
// chainID. approve, when set, gates every signature.
func (s *Signer) TransactOpts(ctx context.Context, chainID *big.Int, approve ApproveFunc) (*bind.TransactOpts, error) {
	key, err := s.privateKey()
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("building transactor: %w", err)
	}
	opts.Context = ctx

	sign := opts.Signer
	opts.Signer = func(from common.Address, tx *types.Transaction) (*types.Transaction, error) {
		if approve != nil && !approve(tx) {
			return nil, contract.ErrUserRejected
		}
		return sign(from, tx)
	}
	return opts, nil
}
