package application

import "errors"

var (
	// ErrNotValidated is returned by Execute when the pending transaction
	// has not reached a valid state.
	ErrNotValidated = errors.New("pending transaction is not validated for execution")
	// ErrLimitsUnavailable ...
	ErrLimitsUnavailable = errors.New("transfer limits could not be determined")
	// ErrQuoteEngineStopped ...
	ErrQuoteEngineStopped = errors.New("quote engine is stopped")
)
