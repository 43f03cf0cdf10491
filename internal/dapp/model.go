package dapp

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Field names a form input.
type Field string

const (
	FieldWalletAddress  Field = "walletAddress"
	FieldTransferAmount Field = "transferAmount"
	FieldBurnAmount     Field = "burnAmount"
	FieldMintAmount     Field = "mintAmount"
)

// Fields lists every form input in display order.
var Fields = []Field{FieldWalletAddress, FieldTransferAmount, FieldBurnAmount, FieldMintAmount}

// IsAmount reports whether f holds a token amount.
func (f Field) IsAmount() bool { return f != FieldWalletAddress }

// verb is the action word used in validation messages.
func (f Field) verb() string {
	switch f {
	case FieldTransferAmount:
		return "transfer"
	case FieldBurnAmount:
		return "burn"
	case FieldMintAmount:
		return "mint"
	}
	return ""
}

// Action is a state-changing token operation.
type Action string

const (
	ActionTransfer Action = "transfer"
	ActionBurn     Action = "burn"
	ActionMint     Action = "mint"
)

// Title is the capitalised action name.
func (a Action) Title() string {
	if a == "" {
		return ""
	}
	return strings.ToUpper(string(a[:1])) + string(a[1:])
}

// Actions lists every action.
var Actions = []Action{ActionTransfer, ActionBurn, ActionMint}

// Phase is where an action is in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSigning
	PhaseAwaitingConfirmation
	PhaseAwaitingEvent
)

func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseSigning:
		return "signing"
	case PhaseAwaitingConfirmation:
		return "awaiting confirmation"
	case PhaseAwaitingEvent:
		return "awaiting event"
	default:
		return "idle"
	}
}

// NotificationKind distinguishes error and success notifications.
type NotificationKind string

const (
	KindError   NotificationKind = "error"
	KindSuccess NotificationKind = "success"
)

// Notification is the single user-facing message.
type Notification struct {
	Kind    NotificationKind
	Header  string
	Body    string
	Visible bool
}

// Session is the wallet connection.
type Session struct {
	Connected bool
	Account   common.Address
}

// TokenSnapshot is the last read of token metadata. TotalSupply is already
// scaled to whole tokens.
type TokenSnapshot struct {
	Name        string
	Symbol      string
	TotalSupply string
	Owner       common.Address
	IsOwner     bool
}

// View is an immutable copy of controller state handed to observers.
type View struct {
	Session          Session
	Token            TokenSnapshot
	TokenLoaded      bool
	LoadingTokenInfo bool
	Balance          string
	Form             map[Field]string
	Notification     Notification
	AppLoading       bool
	Phases           map[Action]Phase
	LastTx           string
}

// Busy reports whether a is in flight.
func (v View) Busy(a Action) bool { return v.Phases[a] != PhaseIdle }

// Transferring reports whether a transfer is in flight.
func (v View) Transferring() bool { return v.Busy(ActionTransfer) }

// Burning reports whether a burn is in flight.
func (v View) Burning() bool { return v.Busy(ActionBurn) }

// Minting reports whether a mint is in flight.
func (v View) Minting() bool { return v.Busy(ActionMint) }
