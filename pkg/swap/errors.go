package swap

import (
	"fmt"
	"strings"
)

// PreconditionError means the swap attempt cannot start: wallet not
// connected, tokens unresolved, or the native asset price unavailable.
// Fatal, no retry.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.Reason)
}

// AggregatorError wraps a failure talking to the swap aggregator. Fatal for
// the attempt; every re-attempt is user-initiated.
type AggregatorError struct {
	Op  string
	Err error
}

func (e *AggregatorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AggregatorError) Unwrap() error { return e.Err }

// UserRejectionError marks a signing failure caused by the user declining
// the wallet prompt. The UI must not present it as a system failure and must
// not schedule a retry.
type UserRejectionError struct {
	Err error
}

func (e *UserRejectionError) Error() string {
	return fmt.Sprintf("signing rejected by user: %v", e.Err)
}

func (e *UserRejectionError) Unwrap() error { return e.Err }

// Known wallet-rejection phrasings across wallet providers.
var rejectionSubstrings = []string{
	"user rejected",
	"user denied",
	"user cancelled",
	"user canceled",
	"cancelled by user",
	"canceled by user",
	"rejected the request",
}

// classifySigningError wraps wallet-rejection errors distinctly so callers
// can tell a declined prompt from a system failure.
func classifySigningError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, s := range rejectionSubstrings {
		if strings.Contains(msg, s) {
			return &UserRejectionError{Err: err}
		}
	}
	return err
}
