package dapp

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidationError is a rejected form input.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// checkField validates one form value without touching controller state.
func checkField(f Field, value string) *ValidationError {
	value = strings.TrimSpace(value)
	if value == "" {
		if f.IsAmount() {
			return &ValidationError{Field: f, Message: fmt.Sprintf("Please enter the value to %s, it cannot be empty", f.verb())}
		}
		return &ValidationError{Field: f, Message: BodyMissingAddress}
	}
	if f.IsAmount() {
		if _, err := ParseAmount(value); err != nil {
			return &ValidationError{Field: f, Message: BodyInvalidAmount}
		}
		return nil
	}
	if !common.IsHexAddress(value) {
		return &ValidationError{Field: f, Message: BodyInvalidAddress}
	}
	return nil
}
