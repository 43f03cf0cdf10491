package wallet

import (
	"context"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/Mohsinsiddi/andycoin/internal/dapp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenAddr = common.HexToAddress("0x8b185cE9B81A4ccD69F64b441986eD3c850A05A6")

func TestProviderNoWallet(t *testing.T) {
	p := NewProvider(nil, nil, nil, tokenAddr, big.NewInt(1))

	_, err := p.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, dapp.ErrNoProvider)

	_, err = p.Token(context.Background(), true)
	assert.ErrorIs(t, err, ErrNoWallet)
}

func TestProviderRequestAccounts(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeWatchOnly}
	p := NewProvider(w, NewInMemoryKeystore(), nil, tokenAddr, big.NewInt(1))

	accounts, err := p.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress(testSignerAddr)}, accounts)
}

func TestProviderReadOnlyToken(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeWatchOnly}
	p := NewProvider(w, NewInMemoryKeystore(), nil, tokenAddr, big.NewInt(1))

	tok, err := p.Token(context.Background(), false)
	require.NoError(t, err)
	ct, ok := tok.(*contract.Token)
	require.True(t, ok)
	assert.Equal(t, tokenAddr, ct.Address())
	assert.False(t, ct.CanSign())

	_, err = p.Token(context.Background(), true)
	assert.ErrorIs(t, err, ErrWatchOnly)
}

func TestProviderSigningToken(t *testing.T) {
	w, ks := signingWallet(t)
	p := NewProvider(w, ks, nil, tokenAddr, big.NewInt(31337))

	tok, err := p.Token(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, tok.(*contract.Token).CanSign())
}
