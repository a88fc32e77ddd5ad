package model

import "errors"

// Sentinel errors shared across the orchestration code. Callers classify
// failures with errors.Is; wrapped context travels via fmt.Errorf("%w", ...).
var (
	// ErrDuplicateSlug is returned when an organization slug is already taken
	// by a fully provisioned organization. Fatal, never retried.
	ErrDuplicateSlug = errors.New("organization slug already in use")

	// ErrNotProvisioned is returned when an operation requires a provisioned
	// organization but its external team link is missing.
	ErrNotProvisioned = errors.New("organization is not provisioned")

	// ErrLookupFailed marks a transient failure of an external user lookup.
	// No account creation is attempted in this state.
	ErrLookupFailed = errors.New("external user lookup failed")

	// ErrMembershipFailed marks a transient failure reconciling a team
	// membership. Retry policy belongs to the caller.
	ErrMembershipFailed = errors.New("membership reconciliation failed")

	// ErrBookingFailed marks a transient failure creating a booking on the
	// external platform.
	ErrBookingFailed = errors.New("external booking creation failed")

	// ErrDefaultAdminMissing means the configured default administrator
	// account does not exist on the external platform. Operator intervention
	// is required; never retried automatically.
	ErrDefaultAdminMissing = errors.New("default administrator account not found on external platform")

	// ErrCompensationFailed means a saga step failed and the tenant rollback
	// itself also failed, leaving an orphaned external resource behind.
	ErrCompensationFailed = errors.New("tenant rollback failed after provisioning error")
)
