package domain

// TxStep is the lifecycle position of a PendingTx inside its engine.
type TxStep int

const (
	StepUninitialised TxStep = iota
	StepInitialised
	StepAmountSet
	StepFeeSet
	StepValidated
	StepConfirmationsBuilt
	StepExecuting
	StepCompleted
	StepFailed
)

func (s TxStep) String() string {
	switch s {
	case StepUninitialised:
		return "uninitialised"
	case StepInitialised:
		return "initialised"
	case StepAmountSet:
		return "amount_set"
	case StepFeeSet:
		return "fee_set"
	case StepValidated:
		return "validated"
	case StepConfirmationsBuilt:
		return "confirmations_built"
	case StepExecuting:
		return "executing"
	case StepCompleted:
		return "completed"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TransferLimits is the min/max range an amount must fall in.
type TransferLimits struct {
	Min Money
	Max Money
}

// Memo is the typed optional memo an engine may attach to a PendingTx.
type Memo struct {
	Text string
}

// PendingTx is the in-progress snapshot of one transaction being
// composed. It is replaced, never mutated: every engine step copies the
// previous value and publishes a fresh one, so two in-flight updates
// never observe each other's partial state.
//
// ValidationState is authoritative only immediately after a validate
// step. Any amount, fee or option mutation resets it to Uninitialised
// until revalidated.
type PendingTx struct {
	Amount              Money
	TotalBalance        Money
	AvailableBalance    Money
	FeeAmount           Money
	FeeForFullAvailable Money
	FeeSelection        FeeSelection
	Limits              *TransferLimits
	SelectedFiat        Asset
	Confirmations       []TxConfirmation
	ValidationState     ValidationState
	Step                TxStep

	// Typed optional engine extensions.
	Memo        *Memo
	Description string

	// QuoteID of the priced quote the confirmations were built against,
	// empty for unquoted engines.
	QuoteID string
}

// Copy returns a replacement snapshot with its own confirmation slice.
func (p *PendingTx) Copy() *PendingTx {
	next := *p
	if p.Confirmations != nil {
		next.Confirmations = make([]TxConfirmation, len(p.Confirmations))
		copy(next.Confirmations, p.Confirmations)
	}
	if p.Limits != nil {
		limits := *p.Limits
		next.Limits = &limits
	}
	if p.Memo != nil {
		memo := *p.Memo
		next.Memo = &memo
	}
	return &next
}

// ResetValidation marks the snapshot as not yet validated.
func (p *PendingTx) ResetValidation() {
	p.ValidationState = ValidationUninitialised
}

// IsMinLimitViolated returns whether the amount sits below the minimum
// limit. A nil limits range never counts as violated here; engines
// treat it as an unknown-limits validation error instead.
func (p *PendingTx) IsMinLimitViolated() bool {
	return p.Limits != nil && p.Amount.LessThan(p.Limits.Min)
}

// IsMaxLimitViolated returns whether the amount exceeds the maximum
// limit.
func (p *PendingTx) IsMaxLimitViolated() bool {
	return p.Limits != nil && p.Amount.GreaterThan(p.Limits.Max)
}

// Total returns amount plus fee.
func (p *PendingTx) Total() Money {
	return p.Amount.Add(p.FeeAmount)
}

// ConfirmationByKind returns the confirmation of the given kind, if
// present.
func (p *PendingTx) ConfirmationByKind(kind ConfirmationKind) (TxConfirmation, bool) {
	for _, c := range p.Confirmations {
		if c.Kind() == kind {
			return c, true
		}
	}
	return nil, false
}

// AddOrReplaceConfirmation patches the confirmation with the same kind
// in place, preserving list order, or appends it when absent.
func (p *PendingTx) AddOrReplaceConfirmation(c TxConfirmation) {
	for i, existing := range p.Confirmations {
		if existing.Kind() == c.Kind() {
			p.Confirmations[i] = c
			return
		}
	}
	p.Confirmations = append(p.Confirmations, c)
}
