// Package service holds the booking and cancellation coordinators,
// the concurrency core of the system, together with the error
// taxonomy they surface to callers.
package service

import "fmt"

// ValidationError reports malformed input.  No side effects have
// occurred when it is returned: no locks were taken, nothing was
// enqueued.
type ValidationError struct {
    Field  string
    Reason string
}

func (e *ValidationError) Error() string {
    if e.Field == "" {
        return e.Reason
    }
    return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConcurrencyError reports that a seat lock could not be obtained
// within the wait window.  The seats are temporarily contended; the
// caller should retry later with the same input.
type ConcurrencyError struct {
    Reason string
}

func (e *ConcurrencyError) Error() string { return e.Reason }

// BusinessError reports a request that cannot succeed with its current
// input: seats unavailable, or a referenced resource that does not
// exist (NotFound).  Retrying without different input is pointless.
type BusinessError struct {
    Reason   string
    NotFound bool
}

func (e *BusinessError) Error() string { return e.Reason }
