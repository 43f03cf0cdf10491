package dapp_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/andycoin/internal/contract"
	"github.com/Mohsinsiddi/andycoin/internal/dapp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connected(t *testing.T, tok *fakeToken, opts ...dapp.Option) *dapp.Controller {
	t.Helper()
	p := &fakeProvider{accounts: []common.Address{ownerAddr}, token: tok}
	c := dapp.New(p, opts...)
	require.NoError(t, c.Start(context.Background()))
	return c
}

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

func TestStartConnectsAndLoadsToken(t *testing.T) {
	c := connected(t, newFakeToken())

	v := c.View()
	assert.True(t, v.Session.Connected)
	assert.Equal(t, ownerAddr, v.Session.Account)
	assert.True(t, v.TokenLoaded)
	assert.False(t, v.AppLoading)
	assert.False(t, v.LoadingTokenInfo)
	assert.Equal(t, "Andy Coin", v.Token.Name)
	assert.Equal(t, "ANDY", v.Token.Symbol)
	assert.Equal(t, "1000.0", v.Token.TotalSupply)
	assert.Equal(t, "250.0", v.Balance)
	assert.True(t, v.Token.IsOwner)
	assert.False(t, v.Notification.Visible)
}

func TestOwnerMatchIgnoresHexCase(t *testing.T) {
	tok := newFakeToken()
	tok.owner = common.HexToAddress(strings.ToLower(ownerAddr.Hex()))
	c := connected(t, tok)
	assert.True(t, c.View().Token.IsOwner)
}

func TestNonOwnerIsNotOwner(t *testing.T) {
	tok := newFakeToken()
	tok.owner = otherAddr
	c := connected(t, tok)
	assert.False(t, c.View().Token.IsOwner)
}

func TestConnectWithoutProvider(t *testing.T) {
	c := dapp.New(nil)
	err := c.Start(context.Background())
	assert.ErrorIs(t, err, dapp.ErrNoProvider)

	n := c.View().Notification
	assert.True(t, n.Visible)
	assert.Equal(t, dapp.KindError, n.Kind)
	assert.Equal(t, "Wallet not installed", n.Header)
	assert.Equal(t, "Add a wallet to use Andy Coin...", n.Body)
	assert.False(t, c.View().Session.Connected)
}

func TestConnectProviderReportsNoWallet(t *testing.T) {
	c := dapp.New(&fakeProvider{accountErr: fmt.Errorf("keystore empty: %w", dapp.ErrNoProvider)})
	assert.ErrorIs(t, c.Connect(context.Background()), dapp.ErrNoProvider)
	assert.Equal(t, dapp.HeaderNoWallet, c.View().Notification.Header)
}

func TestConnectFailure(t *testing.T) {
	c := dapp.New(&fakeProvider{accountErr: errors.New("locked")})
	assert.Error(t, c.Connect(context.Background()))

	n := c.View().Notification
	assert.Equal(t, "Error", n.Header)
	assert.Equal(t, "An error occured while loading the application", n.Body)
	assert.False(t, c.View().TokenLoaded)
}

func TestConnectNoAccounts(t *testing.T) {
	c := dapp.New(&fakeProvider{token: newFakeToken()})
	assert.ErrorIs(t, c.Connect(context.Background()), dapp.ErrNotConnected)
	assert.Equal(t, dapp.BodyConnectFailed, c.View().Notification.Body)
}

func TestLoadTokenInfoFailureShowsProviderMessage(t *testing.T) {
	tok := newFakeToken()
	tok.readErr = errors.New("execution reverted")
	c := dapp.New(&fakeProvider{accounts: []common.Address{ownerAddr}, token: tok})

	assert.Error(t, c.Connect(context.Background()))
	n := c.View().Notification
	assert.Equal(t, "Transaction Error", n.Header)
	assert.Equal(t, "execution reverted", n.Body)
	assert.False(t, c.View().TokenLoaded)
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestTransferRejectsNonNumericAmount(t *testing.T) {
	tok := newFakeToken()
	c := connected(t, tok)
	c.SetField(dapp.FieldWalletAddress, otherAddr.Hex())
	c.SetField(dapp.FieldTransferAmount, "abc")

	err := c.Transfer(context.Background())
	var verr *dapp.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, dapp.FieldTransferAmount, verr.Field)

	v := c.View()
	assert.Equal(t, "Please enter a valid amount", v.Notification.Body)
	assert.False(t, v.Transferring())
	assert.Empty(t, tok.sentTxs())
	assert.Nil(t, tok.lastSub(), "no subscription opened for invalid input")
}

func TestMintRejectsAmountBeyondUint256(t *testing.T) {
	tok := newFakeToken()
	c := connected(t, tok)
	c.SetField(dapp.FieldMintAmount, "1e60")

	require.Error(t, c.Mint(context.Background()))
	v := c.View()
	assert.Equal(t, "Please enter a valid amount", v.Notification.Body)
	assert.False(t, v.Minting())
	assert.Empty(t, tok.sentTxs())
}

func TestTransferEmptyFieldsLastFailureWins(t *testing.T) {
	c := connected(t, newFakeToken())

	require.Error(t, c.Transfer(context.Background()))
	assert.Equal(t, "Please enter the address that will receive the token", c.View().Notification.Body)
}

func TestTransferEmptyAmount(t *testing.T) {
	c := connected(t, newFakeToken())
	c.SetField(dapp.FieldWalletAddress, otherAddr.Hex())

	require.Error(t, c.Transfer(context.Background()))
	assert.Equal(t, "Please enter the value to transfer, it cannot be empty", c.View().Notification.Body)
}

func TestBurnAndMintEmptyAmount(t *testing.T) {
	c := connected(t, newFakeToken())

	require.Error(t, c.Burn(context.Background()))
	assert.Equal(t, "Please enter the value to burn, it cannot be empty", c.View().Notification.Body)
	assert.False(t, c.View().Burning())

	require.Error(t, c.Mint(context.Background()))
	assert.Equal(t, "Please enter the value to mint, it cannot be empty", c.View().Notification.Body)
	assert.False(t, c.View().Minting())
}

func TestValidateLeavesOtherInFlightActions(t *testing.T) {
	tok := newFakeToken()
	tok.events = make(chan struct{})
	c := connected(t, tok)
	c.SetField(dapp.FieldBurnAmount, "1")

	done := make(chan error, 1)
	go func() { done <- c.Burn(context.Background()) }()
	require.Eventually(t, func() bool {
		return c.View().Phases[dapp.ActionBurn] == dapp.PhaseAwaitingEvent
	}, time.Second, 5*time.Millisecond)

	require.Error(t, c.Mint(context.Background()))
	assert.True(t, c.View().Burning())

	close(tok.events)
	require.NoError(t, <-done)
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

func TestTransferSuccess(t *testing.T) {
	tok := newFakeToken()
	c := connected(t, tok)
	c.SetField(dapp.FieldWalletAddress, strings.ToLower(otherAddr.Hex()))
	c.SetField(dapp.FieldTransferAmount, "12.5")

	require.NoError(t, c.Transfer(context.Background()))

	txs := tok.sentTxs()
	require.Len(t, txs, 1)
	assert.Equal(t, "transfer", txs[0].method)
	assert.Equal(t, otherAddr, txs[0].to)
	assert.Equal(t, new(big.Int).Div(tokens(25), big.NewInt(2)), txs[0].amount)

	v := c.View()
	assert.Equal(t, dapp.KindSuccess, v.Notification.Kind)
	assert.Equal(t, "Success", v.Notification.Header)
	assert.Equal(t, "The tokens was successfully transferred", v.Notification.Body)
	assert.Empty(t, v.Form[dapp.FieldWalletAddress])
	assert.Empty(t, v.Form[dapp.FieldTransferAmount])
	assert.False(t, v.Transferring())
	assert.NotEmpty(t, v.LastTx)
	assert.Equal(t, int32(1), tok.lastSub().unsubscribes.Load())
	assert.Equal(t, contract.EventTransfer, tok.lastSub().name)
}

func TestBurnRefreshesSupplyAndClearsField(t *testing.T) {
	tok := newFakeToken()
	tok.supplyDelta = new(big.Int).Neg(tokens(100))
	c := connected(t, tok)
	c.SetField(dapp.FieldBurnAmount, "100")
	c.SetField(dapp.FieldMintAmount, "5")

	require.NoError(t, c.Burn(context.Background()))

	v := c.View()
	assert.Equal(t, "900.0", v.Token.TotalSupply)
	assert.Empty(t, v.Form[dapp.FieldBurnAmount])
	assert.Equal(t, "5", v.Form[dapp.FieldMintAmount])
	assert.Equal(t, "Operation was successful", v.Notification.Body)
	assert.Equal(t, contract.EventTokensBurned, tok.lastSub().name)
}

func TestMintGoesToOwner(t *testing.T) {
	tok := newFakeToken()
	tok.supplyDelta = tokens(50)
	c := connected(t, tok)
	c.SetField(dapp.FieldMintAmount, "50")

	require.NoError(t, c.Mint(context.Background()))

	txs := tok.sentTxs()
	require.Len(t, txs, 1)
	assert.Equal(t, "mint", txs[0].method)
	assert.Equal(t, ownerAddr, txs[0].to)
	assert.Equal(t, "1050.0", c.View().Token.TotalSupply)
	assert.Equal(t, contract.EventTokensMinted, tok.lastSub().name)
}

func TestSuccessOnlyAfterEvent(t *testing.T) {
	tok := newFakeToken()
	tok.events = make(chan struct{})
	c := connected(t, tok)
	c.SetField(dapp.FieldBurnAmount, "1")

	done := make(chan error, 1)
	go func() { done <- c.Burn(context.Background()) }()

	require.Eventually(t, func() bool {
		return c.View().Phases[dapp.ActionBurn] == dapp.PhaseAwaitingEvent
	}, time.Second, 5*time.Millisecond)
	v := c.View()
	assert.False(t, v.Notification.Visible)
	assert.Equal(t, "1", v.Form[dapp.FieldBurnAmount])

	close(tok.events)
	require.NoError(t, <-done)
	assert.Equal(t, dapp.KindSuccess, c.View().Notification.Kind)
	assert.False(t, c.View().Burning())
}

func TestEventTimeout(t *testing.T) {
	tok := newFakeToken()
	tok.events = make(chan struct{})
	c := connected(t, tok, dapp.WithEventTimeout(30*time.Millisecond))
	c.SetField(dapp.FieldBurnAmount, "1")

	err := c.Burn(context.Background())
	require.Error(t, err)
	assert.Equal(t, contract.KindTimeout, contract.KindOf(err))

	v := c.View()
	assert.Equal(t, "Transaction Error", v.Notification.Header)
	assert.Equal(t, "Timed out waiting for the network", v.Notification.Body)
	assert.False(t, v.Burning())
	assert.Equal(t, "1", v.Form[dapp.FieldBurnAmount])
	assert.Equal(t, int32(1), tok.lastSub().unsubscribes.Load())
}

func TestZeroEventTimeoutWaitsForCancel(t *testing.T) {
	tok := newFakeToken()
	tok.events = make(chan struct{})
	c := connected(t, tok, dapp.WithEventTimeout(0))
	c.SetField(dapp.FieldMintAmount, "1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Mint(ctx) }()

	select {
	case <-done:
		t.Fatal("mint returned before cancellation")
	case <-time.After(50 * time.Millisecond):
	}
	assert.True(t, c.View().Minting())

	cancel()
	err := <-done
	assert.Equal(t, contract.KindCancelled, contract.KindOf(err))
	assert.False(t, c.View().Minting())
	assert.Equal(t, int32(1), tok.lastSub().unsubscribes.Load())
}

func TestActionInProgress(t *testing.T) {
	tok := newFakeToken()
	tok.events = make(chan struct{})
	c := connected(t, tok)
	c.SetField(dapp.FieldBurnAmount, "1")

	done := make(chan error, 1)
	go func() { done <- c.Burn(context.Background()) }()
	require.Eventually(t, func() bool { return c.View().Burning() }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, c.Burn(context.Background()), dapp.ErrActionInProgress)
	n := c.View().Notification
	assert.Equal(t, "Error", n.Header)
	assert.Equal(t, "Burn is already in progress", n.Body)

	close(tok.events)
	require.NoError(t, <-done)
	assert.Len(t, tok.sentTxs(), 1)
}

func TestSendFailureClassified(t *testing.T) {
	tok := newFakeToken()
	tok.sendErr = contract.ErrUserRejected
	c := connected(t, tok)
	c.SetField(dapp.FieldBurnAmount, "1")

	err := c.Burn(context.Background())
	assert.ErrorIs(t, err, contract.ErrUserRejected)

	v := c.View()
	assert.Equal(t, "Transaction Error", v.Notification.Header)
	assert.Equal(t, "User denied transaction signature", v.Notification.Body)
	assert.False(t, v.Burning())
	assert.Equal(t, int32(1), tok.lastSub().unsubscribes.Load())
}

func TestWaitFailureKeepsFields(t *testing.T) {
	tok := newFakeToken()
	tok.waitErr = errors.New("insufficient funds for gas * price + value")
	c := connected(t, tok)
	c.SetField(dapp.FieldWalletAddress, otherAddr.Hex())
	c.SetField(dapp.FieldTransferAmount, "3")

	err := c.Transfer(context.Background())
	assert.Equal(t, contract.KindInsufficientFunds, contract.KindOf(err))
	assert.Equal(t, "3", c.View().Form[dapp.FieldTransferAmount])
}

func TestSignerUnavailable(t *testing.T) {
	tok := newFakeToken()
	p := &fakeProvider{accounts: []common.Address{ownerAddr}, token: tok}
	c := dapp.New(p)
	require.NoError(t, c.Start(context.Background()))
	p.tokenErr = contract.ErrReadOnly
	c.SetField(dapp.FieldBurnAmount, "1")

	assert.ErrorIs(t, c.Burn(context.Background()), contract.ErrReadOnly)
	assert.Equal(t, dapp.HeaderTransactionError, c.View().Notification.Header)
}

func TestDifferentActionsRunConcurrently(t *testing.T) {
	tok := newFakeToken()
	tok.events = make(chan struct{})
	c := connected(t, tok)
	c.SetField(dapp.FieldBurnAmount, "1")
	c.SetField(dapp.FieldMintAmount, "2")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); errs[0] = c.Burn(context.Background()) }()
	go func() { defer wg.Done(); errs[1] = c.Mint(context.Background()) }()

	require.Eventually(t, func() bool {
		v := c.View()
		return v.Burning() && v.Minting() && len(tok.sentTxs()) == 2
	}, time.Second, 5*time.Millisecond)

	close(tok.events)
	wg.Wait()
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

func TestNotificationDefaults(t *testing.T) {
	c := dapp.New(nil)

	c.ShowError("Error", "")
	assert.Equal(t, "An error occured", c.View().Notification.Body)

	c.ShowSuccess("", "")
	n := c.View().Notification
	assert.Equal(t, "Transaction Success", n.Header)
	assert.Equal(t, "Your transaction was successful", n.Body)
	assert.Equal(t, dapp.KindSuccess, n.Kind)
}

func TestDismissIsIdempotent(t *testing.T) {
	c := dapp.New(nil)
	c.ShowError("Error", "boom")

	c.Dismiss()
	c.Dismiss()

	n := c.View().Notification
	assert.False(t, n.Visible)
	assert.Equal(t, "Error", n.Header)
	assert.Equal(t, "boom", n.Body)
}

func TestNewNotificationReplacesOld(t *testing.T) {
	c := dapp.New(nil)
	c.ShowError("Error", "first")
	c.ShowSuccess("Success", "second")

	n := c.View().Notification
	assert.Equal(t, dapp.KindSuccess, n.Kind)
	assert.Equal(t, "second", n.Body)
	assert.True(t, n.Visible)
}

// ---------------------------------------------------------------------------
// Observers
// ---------------------------------------------------------------------------

func TestSubscribersSeeViewsAndNotifications(t *testing.T) {
	c := dapp.New(nil)

	var mu sync.Mutex
	var views []dapp.View
	var notes []dapp.Notification
	unsubView := c.Subscribe(func(v dapp.View) {
		mu.Lock()
		views = append(views, v)
		mu.Unlock()
	})
	unsubNote := c.OnNotification(func(n dapp.Notification) {
		mu.Lock()
		notes = append(notes, n)
		mu.Unlock()
	})

	c.SetField(dapp.FieldBurnAmount, "4")
	c.ShowError("Error", "x")

	mu.Lock()
	require.NotEmpty(t, views)
	assert.Equal(t, "4", views[0].Form[dapp.FieldBurnAmount])
	require.Len(t, notes, 1)
	assert.Equal(t, "x", notes[0].Body)
	seen := len(views)
	mu.Unlock()

	unsubView()
	unsubNote()
	c.SetField(dapp.FieldBurnAmount, "5")

	mu.Lock()
	assert.Len(t, views, seen)
	mu.Unlock()
}

func TestViewIsACopy(t *testing.T) {
	c := dapp.New(nil)
	c.SetField(dapp.FieldMintAmount, "1")

	v := c.View()
	v.Form[dapp.FieldMintAmount] = "999"
	v.Phases[dapp.ActionMint] = dapp.PhaseSigning

	assert.Equal(t, "1", c.FieldValue(dapp.FieldMintAmount))
	assert.False(t, c.View().Minting())
}
