package dapp

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/andycoin/internal/contract"
	evbus "github.com/asaskevich/EventBus"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Controller owns the dapp session: wallet connection, token snapshot, form
// input, the current notification and the per-action lifecycle.
// All methods are safe for concurrent use.
type Controller struct {
	provider       Provider
	eventTimeout   time.Duration
	confirmTimeout time.Duration
	bus            evbus.Bus
	log            zerolog.Logger

	mu          sync.Mutex
	session     Session
	token       TokenSnapshot
	tokenLoaded bool
	loadingInfo bool
	balance     string
	form        map[Field]string
	note        Notification
	appLoading  bool
	phases      map[Action]Phase
	lastTx      string

	// signMu serializes signing and broadcast so concurrent actions never
	// race for the same nonce.
	signMu sync.Mutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithEventTimeout bounds the wait for a contract event after confirmation.
// Zero waits until the context is cancelled.
func WithEventTimeout(d time.Duration) Option {
	return func(c *Controller) { c.eventTimeout = d }
}

// WithConfirmTimeout bounds the wait for a transaction to be mined.
// Zero waits until the context is cancelled.
func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Controller) { c.confirmTimeout = d }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithBus shares an existing event bus.
func WithBus(b evbus.Bus) Option {
	return func(c *Controller) { c.bus = b }
}

// New creates a controller. provider may be nil, in which case Connect
// reports a missing wallet.
func New(provider Provider, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		log:      zerolog.Nop(),
		form:     make(map[Field]string, len(Fields)),
		phases:   make(map[Action]Phase, len(Actions)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.bus == nil {
		c.bus = evbus.New()
	}
	c.log = c.log.With().Str("component", "dapp").Logger()
	return c
}

// View returns a copy of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	form := make(map[Field]string, len(c.form))
	for k, v := range c.form {
		form[k] = v
	}
	phases := make(map[Action]Phase, len(Actions))
	for _, a := range Actions {
		phases[a] = c.phases[a]
	}
	return View{
		Session:          c.session,
		Token:            c.token,
		TokenLoaded:      c.tokenLoaded,
		LoadingTokenInfo: c.loadingInfo,
		Balance:          c.balance,
		Form:             form,
		Notification:     c.note,
		AppLoading:       c.appLoading,
		Phases:           phases,
		LastTx:           c.lastTx,
	}
}

// ── connection ──────────────────────────────────────────────────────────────

// Start runs the startup sequence: mark the app loading, connect, and load
// token info when the connection succeeds.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.appLoading = true
	c.mu.Unlock()
	c.publish()

	defer func() {
		c.mu.Lock()
		c.appLoading = false
		c.mu.Unlock()
		c.publish()
	}()

	return c.Connect(ctx)
}

// Connect requests accounts from the provider and, on success, stores the
// first one and refreshes token info exactly once.
func (c *Controller) Connect(ctx context.Context) error {
	if c.provider == nil {
		c.ShowError(HeaderNoWallet, BodyNoWallet)
		return ErrNoProvider
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	switch {
	case errors.Is(err, ErrNoProvider):
		c.log.Warn().Err(err).Msg("no wallet provider")
		c.ShowError(HeaderNoWallet, BodyNoWallet)
		return err
	case err != nil:
		c.log.Error().Err(err).Msg("account request failed")
		c.ShowError(HeaderError, BodyConnectFailed)
		return err
	case len(accounts) == 0:
		c.log.Error().Msg("provider returned no accounts")
		c.ShowError(HeaderError, BodyConnectFailed)
		return fmt.Errorf("%w: no accounts", ErrNotConnected)
	}

	c.mu.Lock()
	c.session = Session{Connected: true, Account: accounts[0]}
	c.mu.Unlock()
	c.log.Info().Str("account", accounts[0].Hex()).Msg("account connected")
	c.publish()

	return c.LoadTokenInfo(ctx)
}

// ── token info ──────────────────────────────────────────────────────────────

// LoadTokenInfo reads name, symbol, owner and supply and recomputes the
// owner flag against the connected account.
func (c *Controller) LoadTokenInfo(ctx context.Context) error {
	if c.provider == nil {
		c.ShowError(HeaderNoWallet, BodyNoWallet)
		return ErrNoProvider
	}

	c.mu.Lock()
	c.loadingInfo = true
	c.mu.Unlock()
	c.publish()
	defer func() {
		c.mu.Lock()
		c.loadingInfo = false
		c.mu.Unlock()
		c.publish()
	}()

	snap, balance, err := c.readToken(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("loading token info failed")
		c.ShowError(HeaderTransactionError, contract.Message(err))
		return err
	}

	c.mu.Lock()
	c.token = snap
	c.tokenLoaded = true
	if balance != "" {
		c.balance = balance
	}
	c.mu.Unlock()
	c.log.Info().
		Str("name", snap.Name).
		Str("symbol", snap.Symbol).
		Str("supply", snap.TotalSupply).
		Str("owner", snap.Owner.Hex()).
		Bool("is_owner", snap.IsOwner).
		Msg("token info loaded")
	return nil
}

func (c *Controller) readToken(ctx context.Context) (TokenSnapshot, string, error) {
	tok, err := c.provider.Token(ctx, false)
	if err != nil {
		return TokenSnapshot{}, "", err
	}
	name, err := tok.Name(ctx)
	if err != nil {
		return TokenSnapshot{}, "", err
	}
	symbol, err := tok.Symbol(ctx)
	if err != nil {
		return TokenSnapshot{}, "", err
	}
	owner, err := tok.Owner(ctx)
	if err != nil {
		return TokenSnapshot{}, "", err
	}
	supply, err := tok.TotalSupply(ctx)
	if err != nil {
		return TokenSnapshot{}, "", err
	}

	session := c.currentSession()
	snap := TokenSnapshot{
		Name:        name,
		Symbol:      symbol,
		TotalSupply: FormatAmount(supply),
		Owner:       owner,
		IsOwner:     session.Connected && sameAddress(session.Account, owner),
	}

	var balance string
	if session.Connected {
		if bal, err := tok.BalanceOf(ctx, session.Account); err != nil {
			c.log.Warn().Err(err).Msg("reading balance failed")
		} else {
			balance = FormatAmount(bal)
		}
	}
	return snap, balance, nil
}

// refreshSupply re-reads totalSupply and the account balance after a burn
// or mint.
func (c *Controller) refreshSupply(ctx context.Context, tok Token) error {
	supply, err := tok.TotalSupply(ctx)
	if err != nil {
		return err
	}
	session := c.currentSession()
	var balance string
	if session.Connected {
		if bal, err := tok.BalanceOf(ctx, session.Account); err == nil {
			balance = FormatAmount(bal)
		}
	}

	c.mu.Lock()
	c.token.TotalSupply = FormatAmount(supply)
	if balance != "" {
		c.balance = balance
	}
	c.mu.Unlock()
	c.publish()
	return nil
}

// sameAddress compares two addresses ignoring hex case.
func sameAddress(a, b common.Address) bool {
	return strings.EqualFold(a.Hex(), b.Hex())
}

// ── form ────────────────────────────────────────────────────────────────────

// SetField stores raw input for f.
func (c *Controller) SetField(f Field, value string) {
	c.mu.Lock()
	c.form[f] = value
	c.mu.Unlock()
	c.publish()
}

// FieldValue returns the raw input for f.
func (c *Controller) FieldValue(f Field) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form[f]
}

func (c *Controller) clearFields(fields ...Field) {
	c.mu.Lock()
	for _, f := range fields {
		c.form[f] = ""
	}
	c.mu.Unlock()
}

// Validate checks f. On failure it shows an error notification, returns any
// action still in validation to idle, and returns false.
func (c *Controller) Validate(f Field) bool {
	verr := checkField(f, c.FieldValue(f))
	if verr == nil {
		return true
	}
	c.mu.Lock()
	for a, p := range c.phases {
		if p == PhaseValidating {
			c.phases[a] = PhaseIdle
		}
	}
	c.mu.Unlock()
	c.ShowError(HeaderError, verr.Message)
	return false
}

// ── notifications ───────────────────────────────────────────────────────────

// ShowError replaces the notification with an error. An empty body uses the
// generic message.
func (c *Controller) ShowError(header, body string) {
	if body == "" {
		body = DefaultErrorBody
	}
	c.notify(Notification{Kind: KindError, Header: header, Body: body, Visible: true})
}

// ShowSuccess replaces the notification with a success message. Empty
// arguments use the defaults.
func (c *Controller) ShowSuccess(header, body string) {
	if header == "" {
		header = DefaultSuccessHeader
	}
	if body == "" {
		body = DefaultSuccessBody
	}
	c.notify(Notification{Kind: KindSuccess, Header: header, Body: body, Visible: true})
}

// Dismiss hides the notification, keeping its text.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	changed := c.note.Visible
	c.note.Visible = false
	c.mu.Unlock()
	if changed {
		c.publish()
	}
}

func (c *Controller) notify(n Notification) {
	c.mu.Lock()
	c.note = n
	c.mu.Unlock()
	c.publishNotification(n)
}

func (c *Controller) currentSession() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// ── actions ─────────────────────────────────────────────────────────────────

// Transfer sends transferAmount tokens to walletAddress.
func (c *Controller) Transfer(ctx context.Context) error {
	return c.run(ctx, ActionTransfer, func(ctx context.Context, log zerolog.Logger) error {
		amountOK := c.Validate(FieldTransferAmount)
		addressOK := c.Validate(FieldWalletAddress)
		if !amountOK || !addressOK {
			return c.validationError(FieldTransferAmount, FieldWalletAddress)
		}
		amount, _ := ParseAmount(c.FieldValue(FieldTransferAmount))
		to := common.HexToAddress(strings.TrimSpace(c.FieldValue(FieldWalletAddress)))

		err := c.execute(ctx, log, ActionTransfer, contract.EventTransfer,
			func(ctx context.Context, tok Token) (contract.PendingTx, error) {
				return tok.Transfer(ctx, to, amount)
			}, nil)
		if err != nil {
			return err
		}
		c.clearFields(FieldWalletAddress, FieldTransferAmount)
		c.ShowSuccess(HeaderSuccess, BodyTransferred)
		return nil
	})
}

// Burn destroys burnAmount tokens held by the connected account.
func (c *Controller) Burn(ctx context.Context) error {
	return c.run(ctx, ActionBurn, func(ctx context.Context, log zerolog.Logger) error {
		if !c.Validate(FieldBurnAmount) {
			return c.validationError(FieldBurnAmount)
		}
		amount, _ := ParseAmount(c.FieldValue(FieldBurnAmount))

		err := c.execute(ctx, log, ActionBurn, contract.EventTokensBurned,
			func(ctx context.Context, tok Token) (contract.PendingTx, error) {
				return tok.Burn(ctx, amount)
			}, c.refreshSupply)
		if err != nil {
			return err
		}
		c.clearFields(FieldBurnAmount)
		c.ShowSuccess(HeaderSuccess, BodyOperationOK)
		return nil
	})
}

// Mint creates mintAmount tokens for the contract owner.
func (c *Controller) Mint(ctx context.Context) error {
	return c.run(ctx, ActionMint, func(ctx context.Context, log zerolog.Logger) error {
		if !c.Validate(FieldMintAmount) {
			return c.validationError(FieldMintAmount)
		}
		amount, _ := ParseAmount(c.FieldValue(FieldMintAmount))

		err := c.execute(ctx, log, ActionMint, contract.EventTokensMinted,
			func(ctx context.Context, tok Token) (contract.PendingTx, error) {
				owner, err := tok.Owner(ctx)
				if err != nil {
					return nil, err
				}
				return tok.Mint(ctx, owner, amount)
			}, c.refreshSupply)
		if err != nil {
			return err
		}
		c.clearFields(FieldMintAmount)
		c.ShowSuccess(HeaderSuccess, BodyOperationOK)
		return nil
	})
}

// run guards a against re-entry and always returns it to idle.
func (c *Controller) run(ctx context.Context, a Action, fn func(context.Context, zerolog.Logger) error) error {
	c.mu.Lock()
	if c.phases[a] != PhaseIdle {
		c.mu.Unlock()
		c.ShowError(HeaderError, fmt.Sprintf("%s is already in progress", a.Title()))
		return ErrActionInProgress
	}
	c.phases[a] = PhaseValidating
	c.mu.Unlock()
	c.publish()

	log := c.log.With().Str("action", string(a)).Str("action_id", uuid.NewString()).Logger()
	log.Debug().Msg("action started")

	defer func() {
		c.setPhase(a, PhaseIdle)
		log.Debug().Msg("action finished")
	}()
	return fn(ctx, log)
}

// execute signs and broadcasts a transaction, waits for it to be mined,
// runs afterMined, then waits for event from that transaction. The event
// subscription is opened before broadcast and always released.
func (c *Controller) execute(
	ctx context.Context,
	log zerolog.Logger,
	a Action,
	event string,
	submit func(context.Context, Token) (contract.PendingTx, error),
	afterMined func(context.Context, Token) error,
) error {
	c.setPhase(a, PhaseSigning)

	fail := func(stage string, err error) error {
		log.Error().Err(err).Str("stage", stage).Str("kind", contract.KindOf(err).String()).Msg("action failed")
		c.ShowError(HeaderTransactionError, contract.Message(err))
		return err
	}

	if c.provider == nil {
		c.ShowError(HeaderNoWallet, BodyNoWallet)
		return ErrNoProvider
	}
	tok, err := c.provider.Token(ctx, true)
	if err != nil {
		return fail("signer", err)
	}

	sub, err := tok.WatchEvent(ctx, event)
	if err != nil {
		return fail("subscribe", err)
	}
	defer sub.Unsubscribe()

	c.signMu.Lock()
	pending, err := submit(ctx, tok)
	c.signMu.Unlock()
	if err != nil {
		return fail("sign", err)
	}
	hash := pending.Hash()
	c.mu.Lock()
	c.lastTx = hash.Hex()
	c.mu.Unlock()
	log = log.With().Str("tx", hash.Hex()).Logger()
	log.Info().Msg("transaction broadcast")

	c.setPhase(a, PhaseAwaitingConfirmation)
	waitCtx, cancel := withOptionalTimeout(ctx, c.confirmTimeout)
	receipt, err := pending.Wait(waitCtx)
	cancel()
	if err != nil {
		return fail("confirm", err)
	}
	if receipt != nil && receipt.BlockNumber != nil {
		log.Info().Uint64("block", receipt.BlockNumber.Uint64()).Msg("transaction mined")
	}

	if afterMined != nil {
		if err := afterMined(ctx, tok); err != nil {
			return fail("refresh", err)
		}
	}

	c.setPhase(a, PhaseAwaitingEvent)
	eventCtx, cancel := withOptionalTimeout(ctx, c.eventTimeout)
	defer cancel()
	ev, err := sub.Next(eventCtx, hash)
	if err != nil {
		return fail("event", err)
	}
	log.Info().Str("event", ev.Name).Interface("args", eventArgs(ev.Args)).Msg("event received")
	return nil
}

func (c *Controller) setPhase(a Action, p Phase) {
	c.mu.Lock()
	c.phases[a] = p
	c.mu.Unlock()
	c.publish()
}

func (c *Controller) validationError(fields ...Field) error {
	for _, f := range fields {
		if verr := checkField(f, c.FieldValue(f)); verr != nil {
			return verr
		}
	}
	return nil
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// eventArgs renders big integers as strings for logging.
func eventArgs(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		switch x := v.(type) {
		case *big.Int:
			out[k] = x.String()
		case common.Address:
			out[k] = x.Hex()
		default:
			out[k] = v
		}
	}
	return out
}
