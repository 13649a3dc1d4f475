package exchange

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/c9s/exnonce/pkg/types"
)

// CallError is the terminal error of an executed call: either a fatal
// rejection or an exhausted retry budget. Kind tells the caller which,
// Attempts tells how much work it took.
type CallError struct {
	Exchange types.ExchangeName
	Kind     types.FailureKind
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("exchange %s call failed with %s after %d attempt(s): %v", e.Exchange, e.Kind, e.Attempts, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// AsCallError unwraps err down to a *CallError if one is in the chain.
func AsCallError(err error) (*CallError, bool) {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr, true
	}

	return nil, false
}

// IsFailure reports whether err is a CallError of the given kind.
func IsFailure(err error, kind types.FailureKind) bool {
	callErr, ok := AsCallError(err)
	return ok && callErr.Kind == kind
}
