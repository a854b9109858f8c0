package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/metrics"
)

// TxEngine drives one transaction from initialisation to execution.
// One concrete engine exists per (source venue, target venue, action)
// combination.
//
// Every operation is a pure function of (current PendingTx, input): it
// copies the snapshot it receives and returns a replacement, so the
// caller can discard results that arrive out of order. Validation
// failures are recovered into PendingTx.ValidationState and never
// returned as errors; returned errors are network/service failures the
// caller retries by re-invoking InitialiseTx.
type TxEngine interface {
	Name() string
	SourceAccount() domain.Account
	Target() domain.TransferTarget

	InitialiseTx(ctx context.Context) (*domain.PendingTx, error)
	UpdateAmount(ctx context.Context, amount domain.Money, ptx *domain.PendingTx) (*domain.PendingTx, error)
	UpdateFeeLevel(ctx context.Context, ptx *domain.PendingTx, level domain.FeeLevel, customAmount int64) (*domain.PendingTx, error)
	ValidateAmount(ctx context.Context, ptx *domain.PendingTx) (*domain.PendingTx, error)
	ValidateAll(ctx context.Context, ptx *domain.PendingTx) (*domain.PendingTx, error)
	BuildConfirmations(ctx context.Context, ptx *domain.PendingTx) (*domain.PendingTx, error)
	RefreshConfirmations(ctx context.Context, ptx *domain.PendingTx) (*domain.PendingTx, error)
	UpdateConfirmation(ctx context.Context, ptx *domain.PendingTx, confirmation domain.TxConfirmation) (*domain.PendingTx, error)
	Execute(ctx context.Context, ptx *domain.PendingTx, secondPassword string) (domain.TxResult, error)
}

// baseEngine carries what every engine needs: the bound source and
// target, the user's display fiat, rates and the record store.
type baseEngine struct {
	source   domain.Account
	target   domain.TransferTarget
	userFiat domain.Asset
	rates    ports.RateService
	records  domain.TxRecordRepository
}

func (e *baseEngine) SourceAccount() domain.Account {
	return e.source
}

func (e *baseEngine) Target() domain.TransferTarget {
	return e.target
}

// toUserFiat converts an amount to the user's display fiat, degrading
// to a zero fiat amount when no rate is available. Display conversion
// failures never block the pipeline.
func (e *baseEngine) toUserFiat(ctx context.Context, m domain.Money) domain.Money {
	if m.Asset().Ticker == e.userFiat.Ticker {
		return m
	}
	rate, err := e.rates.Rate(ctx, m.Asset(), e.userFiat)
	if err != nil {
		log.WithError(err).WithField("asset", m.Asset().Ticker).
			Warn("could not fetch display rate")
		return domain.ZeroMoney(e.userFiat)
	}
	return rate.Convert(m)
}

// updateTxValidity recovers the outcome of a validation pass into a
// fresh snapshot. A nil error marks the transaction executable; a
// TxValidationFailure carries its state over; anything else maps to the
// unknown-error state.
func updateTxValidity(ptx *domain.PendingTx, err error) *domain.PendingTx {
	next := ptx.Copy()
	next.Step = domain.StepValidated
	switch failure := err.(type) {
	case nil:
		next.ValidationState = domain.ValidationCanExecute
	case *domain.TxValidationFailure:
		next.ValidationState = failure.State
		metrics.ValidationFailures.WithLabelValues(failure.State.String()).Inc()
	default:
		next.ValidationState = domain.ValidationUnknownError
		metrics.ValidationFailures.WithLabelValues(domain.ValidationUnknownError.String()).Inc()
	}
	return next
}

// assertCanExecute guards Execute. The engine does not de-duplicate
// concurrent calls; the UI must disable the action on first invocation.
func assertCanExecute(ptx *domain.PendingTx) error {
	if !ptx.ValidationState.CanExecute() {
		return fmt.Errorf("%w: state is %s", ErrNotValidated, ptx.ValidationState)
	}
	return nil
}

// persistResult records an executed transaction. Persistence failures
// are logged, not surfaced: the venue already accepted the transaction.
func (e *baseEngine) persistResult(
	ctx context.Context, engineName string, ptx *domain.PendingTx, result domain.TxResult,
) {
	metrics.TxExecutions.WithLabelValues(engineName, "ok").Inc()
	if e.records == nil {
		return
	}

	record := domain.TxRecord{
		ID:          uuid.New().String(),
		Engine:      engineName,
		SourceLabel: e.source.Label(),
		TargetLabel: e.target.TargetLabel(),
		Asset:       ptx.Amount.Asset().Ticker,
		AmountMinor: ptx.Amount.MinorUnits(),
		FeeMinor:    ptx.FeeAmount.MinorUnits(),
		CreatedAt:   time.Now(),
	}
	if hashed, ok := result.(domain.HashedTxResult); ok {
		record.TxID = hashed.TxID
	}
	if err := e.records.AddRecord(ctx, record); err != nil {
		log.WithError(err).WithField("engine", engineName).
			Warn("could not persist transaction record")
	}
}

// patchEditableConfirmation is the default option-update behavior:
// user-editable variants are patched by kind, anything else passes
// through untouched. Editing resets validity until revalidated.
func patchEditableConfirmation(
	ptx *domain.PendingTx, confirmation domain.TxConfirmation,
) *domain.PendingTx {
	switch confirmation.Kind() {
	case domain.ConfirmationMemo,
		domain.ConfirmationDescription,
		domain.ConfirmationAgreementInterestTerms,
		domain.ConfirmationAgreementInterestTransfer:
		next := ptx.Copy()
		next.AddOrReplaceConfirmation(confirmation)
		next.ResetValidation()
		return next
	default:
		return ptx.Copy()
	}
}
