package domain

import "fmt"

// ValidationState is the closed set of validation outcomes carried by a
// PendingTx. Exactly one state allows execution.
type ValidationState int

const (
	// ValidationUninitialised marks a PendingTx that has not been
	// validated since initialisation. A zero amount in this state is not
	// an error, the user simply has not typed anything yet.
	ValidationUninitialised ValidationState = iota
	ValidationCanExecute
	ValidationUnderMinLimit
	ValidationOverMaxLimit
	ValidationOverSilverTierLimit
	ValidationOverGoldTierLimit
	ValidationInsufficientFunds
	ValidationOptionInvalid
	ValidationUnknownError
)

func (s ValidationState) String() string {
	switch s {
	case ValidationUninitialised:
		return "uninitialised"
	case ValidationCanExecute:
		return "can_execute"
	case ValidationUnderMinLimit:
		return "under_min_limit"
	case ValidationOverMaxLimit:
		return "over_max_limit"
	case ValidationOverSilverTierLimit:
		return "over_silver_tier_limit"
	case ValidationOverGoldTierLimit:
		return "over_gold_tier_limit"
	case ValidationInsufficientFunds:
		return "insufficient_funds"
	case ValidationOptionInvalid:
		return "option_invalid"
	case ValidationUnknownError:
		return "unknown_error"
	default:
		return "unknown"
	}
}

// CanExecute returns whether the state allows execution.
func (s ValidationState) CanExecute() bool {
	return s == ValidationCanExecute
}

// TxValidationFailure carries a validation outcome through a validation
// pass. It is always recovered into PendingTx.ValidationState and never
// escapes a Validate call as an error.
type TxValidationFailure struct {
	State ValidationState
}

func (e *TxValidationFailure) Error() string {
	return fmt.Sprintf("tx validation failure: %s", e.State)
}

// NewValidationFailure returns a failure carrying the given state.
func NewValidationFailure(state ValidationState) *TxValidationFailure {
	return &TxValidationFailure{State: state}
}
