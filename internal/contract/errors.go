package contract

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// GenericMessage is shown when an error carries no usable text.
const GenericMessage = "An error occured"

// Sentinel errors produced by the binding itself.
var (
	ErrUserRejected = errors.New("user rejected the request")
	ErrReadOnly     = errors.New("token binding has no signer")
	ErrUnknownEvent = errors.New("unknown contract event")
)

// Kind classifies a provider or contract failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindRejected
	KindReverted
	KindInsufficientFunds
	KindTimeout
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindReverted:
		return "reverted"
	case KindInsufficientFunds:
		return "insufficient-funds"
	case KindTimeout:
		return "timeout"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is a classified failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return GenericMessage
}

func (e *Error) Unwrap() error { return e.Err }

// Classify maps an error from go-ethereum or the signer to *Error.
// nil stays nil and an already classified error is returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	switch {
	case errors.Is(err, ErrUserRejected):
		return &Error{Kind: KindRejected, Message: "User denied transaction signature", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "Timed out waiting for the network", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCancelled, Message: "Request cancelled", Err: err}
	}

	msg := providerMessage(err)
	lower := strings.ToLower(msg)
	kind := KindUnknown
	switch {
	case strings.Contains(lower, "insufficient funds"):
		kind = KindInsufficientFunds
	case strings.Contains(lower, "revert"):
		kind = KindReverted
	case strings.Contains(lower, "user denied"), strings.Contains(lower, "user rejected"):
		kind = KindRejected
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Message returns the text to show the user for err: the provider's own
// message when there is one, then the error text, then GenericMessage.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(Classify(err).Error()); msg != "" {
		return msg
	}
	return GenericMessage
}

// KindOf returns the classification of err.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(Classify(err), &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// providerMessage digs the node's message out of a JSON-RPC error, decoding
// an ABI revert reason when the node attached one.
func providerMessage(err error) string {
	var de rpc.DataError
	if errors.As(err, &de) {
		if data, ok := de.ErrorData().(string); ok {
			if raw, decErr := hexutil.Decode(data); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(raw); unpackErr == nil {
					return "execution reverted: " + reason
				}
			}
		}
		return de.Error()
	}
	var re rpc.Error
	if errors.As(err, &re) {
		return re.Error()
	}
	return err.Error()
}
