package provider

import (
	"errors"
	"fmt"
)

// ErrNoCredential means no provider key is configured. This is a
// configuration condition, not a transient failure: the caller should go
// straight to the heuristic path without attempting network I/O.
var ErrNoCredential = errors.New("provider credential not configured")

// TransientError covers timeouts, network failures and 5xx responses. One
// attempt per enrichment cycle is the budget, so these are not retried here.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient provider failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// QuotaError covers 429 / quota-exceeded responses from the provider.
// Identical in effect to a transient failure but distinguished in logs.
type QuotaError struct {
	Status int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("provider quota exceeded (status %d)", e.Status)
}

// MalformedError covers auth failures, unexpected status codes and replies
// missing the expected envelope.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed provider response: %s", e.Reason)
}
