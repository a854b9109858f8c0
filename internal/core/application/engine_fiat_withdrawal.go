package application

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/metrics"
)

// FiatWithdrawalEngine moves a custodial fiat balance to a linked bank
// account. The venue fee is charged out of the requested amount, so the
// bank receives amount minus fee.
type FiatWithdrawalEngine struct {
	baseEngine
	custodial ports.CustodialService
	bank      domain.BankAccountTarget
}

// NewFiatWithdrawalEngine binds the engine to its source and target.
// The source must be a fiat custodial account and the target a linked
// bank of the same currency; anything else is a wiring bug.
func NewFiatWithdrawalEngine(
	source domain.Account, bank domain.BankAccountTarget,
	custodial ports.CustodialService, rates ports.RateService,
	records domain.TxRecordRepository, userFiat domain.Asset,
) *FiatWithdrawalEngine {
	if !source.Asset().Fiat {
		panic("fiat withdrawal engine requires a fiat source account")
	}
	if source.Asset().Ticker != bank.Currency.Ticker {
		panic("fiat withdrawal engine requires source and bank currencies to match")
	}
	return &FiatWithdrawalEngine{
		baseEngine: baseEngine{
			source:   source,
			target:   bank,
			userFiat: userFiat,
			rates:    rates,
			records:  records,
		},
		custodial: custodial,
		bank:      bank,
	}
}

func (e *FiatWithdrawalEngine) Name() string { return "fiat_withdrawal" }

// InitialiseTx joins the balance fetch and the withdrawal fee/limit
// lookup into the zero-amount snapshot.
func (e *FiatWithdrawalEngine) InitialiseTx(ctx context.Context) (*domain.PendingTx, error) {
	var balance domain.AccountBalance
	var feeAndMin ports.WithdrawFeeAndMinLimit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := e.source.Balance(gctx)
		if err != nil {
			return fmt.Errorf("fetching fiat balance: %w", err)
		}
		balance = b
		return nil
	})
	g.Go(func() error {
		f, err := e.custodial.FiatWithdrawFeeAndMinLimit(gctx, e.source.Asset())
		if err != nil {
			return fmt.Errorf("fetching withdrawal fee and min limit: %w", err)
		}
		feeAndMin = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	currency := e.source.Asset()
	return &domain.PendingTx{
		Amount:              domain.ZeroMoney(currency),
		TotalBalance:        balance.Total,
		AvailableBalance:    balance.Actionable,
		FeeAmount:           feeAndMin.Fee,
		FeeForFullAvailable: domain.ZeroMoney(currency),
		FeeSelection:        domain.NewFeeSelection(),
		Limits: &domain.TransferLimits{
			Min: feeAndMin.MinLimit,
			Max: balance.Actionable,
		},
		SelectedFiat: currency,
		Step:         domain.StepInitialised,
	}, nil
}

func (e *FiatWithdrawalEngine) UpdateAmount(
	ctx context.Context, amount domain.Money, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	next.Amount = amount
	next.Step = domain.StepAmountSet
	next.ResetValidation()
	return next, nil
}

// UpdateFeeLevel only accepts FeeLevelNone; fiat withdrawals carry no
// network fee speed choice.
func (e *FiatWithdrawalEngine) UpdateFeeLevel(
	ctx context.Context, ptx *domain.PendingTx, level domain.FeeLevel, customAmount int64,
) (*domain.PendingTx, error) {
	requireAvailableFeeLevel(ptx, level)
	return ptx.Copy(), nil
}

// ValidateAmount keeps the zero-amount bypass: a fresh snapshot with no
// amount typed yet is not an error state.
func (e *FiatWithdrawalEngine) ValidateAmount(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if ptx.ValidationState == domain.ValidationUninitialised && ptx.Amount.IsZero() {
		return ptx.Copy(), nil
	}
	return updateTxValidity(ptx, e.validateAmount(ptx)), nil
}

func (e *FiatWithdrawalEngine) ValidateAll(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	return updateTxValidity(ptx, e.validateAmount(ptx)), nil
}

func (e *FiatWithdrawalEngine) validateAmount(ptx *domain.PendingTx) error {
	if ptx.Limits == nil {
		return domain.NewValidationFailure(domain.ValidationUnknownError)
	}
	switch {
	case ptx.Amount.LessThan(ptx.Limits.Min):
		return domain.NewValidationFailure(domain.ValidationUnderMinLimit)
	case ptx.Amount.GreaterThan(ptx.Limits.Max):
		return domain.NewValidationFailure(domain.ValidationOverMaxLimit)
	case ptx.AvailableBalance.LessThan(ptx.Amount):
		return domain.NewValidationFailure(domain.ValidationInsufficientFunds)
	default:
		return nil
	}
}

func (e *FiatWithdrawalEngine) BuildConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	confirmations := []domain.TxConfirmation{
		domain.ConfirmFrom{Label: e.source.Label(), Asset: e.source.Asset()},
		domain.ConfirmPaymentMethod{
			Label:         e.bank.Label,
			AccountNumber: e.bank.AccountNumber,
			AccountType:   e.bank.AccountType,
			Action:        domain.ActionFiatWithdraw,
		},
		domain.ConfirmEstimatedCompletion{},
		domain.ConfirmAmount{Amount: ptx.Amount},
	}
	if ptx.FeeAmount.IsPositive() {
		confirmations = append(confirmations, domain.ConfirmTransactionFee{Fee: ptx.FeeAmount})
	}
	confirmations = append(confirmations, domain.ConfirmAmount{
		Amount:   ptx.Amount.Sub(ptx.FeeAmount),
		Received: true,
	})

	next.Confirmations = confirmations
	next.Step = domain.StepConfirmationsBuilt
	return next, nil
}

// RefreshConfirmations is a rebuild; nothing here is quote-priced.
func (e *FiatWithdrawalEngine) RefreshConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	return e.BuildConfirmations(ctx, ptx)
}

func (e *FiatWithdrawalEngine) UpdateConfirmation(
	ctx context.Context, ptx *domain.PendingTx, confirmation domain.TxConfirmation,
) (*domain.PendingTx, error) {
	return patchEditableConfirmation(ptx, confirmation), nil
}

func (e *FiatWithdrawalEngine) Execute(
	ctx context.Context, ptx *domain.PendingTx, secondPassword string,
) (domain.TxResult, error) {
	if err := assertCanExecute(ptx); err != nil {
		return nil, err
	}
	if err := e.custodial.CreateWithdrawOrder(ctx, ptx.Amount, e.bank.BankID); err != nil {
		metrics.TxExecutions.WithLabelValues(e.Name(), "error").Inc()
		return nil, err
	}

	result := domain.UnHashedTxResult{Amount: ptx.Amount}
	e.persistResult(ctx, e.Name(), ptx, result)
	return result, nil
}

// requireAvailableFeeLevel enforces the fee-level contract: the UI must
// only offer levels already present in the selection, so an unavailable
// level here is a programming error, not a validation outcome.
func requireAvailableFeeLevel(ptx *domain.PendingTx, level domain.FeeLevel) {
	if !ptx.FeeSelection.AvailableLevels.Contains(level) {
		panic(fmt.Sprintf("fee level %s is not available on this engine", level))
	}
}
