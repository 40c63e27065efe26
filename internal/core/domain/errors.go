package domain

import "errors"

// Error taxonomy shared across the core. Validation-class errors are raised
// before any repository call; ErrInconsistentState signals a server-side bug
// (an invariant broke after a successful existence check) and must never be
// mapped to client input.
var (
	ErrInvalidTimeZone   = errors.New("unresolvable IANA timezone")
	ErrInvalidDate       = errors.New("invalid date (expected YYYY-MM-DD)")
	ErrInconsistentState = errors.New("inconsistent state: mutation affected no rows")
)
