package application

import (
	"context"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// InterestDepositEngine moves funds from a custodial trading balance
// into the interest-bearing account. Both the terms-and-conditions and
// the transfer agreements must be accepted before execution; either
// left unticked validates as an invalid option.
type InterestDepositEngine struct {
	baseEngine
	custodial ports.CustodialService
}

// NewInterestDepositEngine binds a deposit from a custodial trading
// account into the interest account of the same asset.
func NewInterestDepositEngine(
	source domain.Account, target *InterestAccount,
	custodial ports.CustodialService, rates ports.RateService,
	records domain.TxRecordRepository, userFiat domain.Asset,
) *InterestDepositEngine {
	if source.Kind() != domain.KindCustodialTrading {
		panic("interest deposit engine requires a custodial trading source")
	}
	if source.Asset().Ticker != target.Asset().Ticker {
		panic("interest deposit engine requires matching source and target assets")
	}
	return &InterestDepositEngine{
		baseEngine: baseEngine{
			source: source, target: domain.AccountTarget{Account: target},
			userFiat: userFiat, rates: rates, records: records,
		},
		custodial: custodial,
	}
}

func (e *InterestDepositEngine) Name() string { return "interest_deposit" }

func (e *InterestDepositEngine) InitialiseTx(ctx context.Context) (*domain.PendingTx, error) {
	var (
		balance domain.AccountBalance
		limits  ports.InterestLimits
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = e.source.Balance(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		limits, err = e.custodial.InterestLimits(gctx, e.source.Asset())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	asset := e.source.Asset()
	return &domain.PendingTx{
		Amount:              domain.ZeroMoney(asset),
		TotalBalance:        balance.Total,
		AvailableBalance:    balance.Actionable,
		FeeAmount:           domain.ZeroMoney(asset),
		FeeForFullAvailable: domain.ZeroMoney(asset),
		FeeSelection:        domain.NewFeeSelection(),
		Limits: &domain.TransferLimits{
			Min: limits.MinDeposit,
			Max: balance.Actionable,
		},
		SelectedFiat: e.userFiat,
		Step:         domain.StepInitialised,
	}, nil
}

func (e *InterestDepositEngine) UpdateAmount(
	ctx context.Context, amount domain.Money, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	balance, err := e.source.Balance(ctx)
	if err != nil {
		return nil, err
	}

	next := ptx.Copy()
	next.Amount = amount
	next.TotalBalance = balance.Total
	next.AvailableBalance = balance.Actionable
	if next.Limits != nil {
		next.Limits.Max = balance.Actionable
	}
	next.Confirmations = nil
	next.Step = domain.StepAmountSet
	next.ResetValidation()
	return next, nil
}

func (e *InterestDepositEngine) UpdateFeeLevel(
	ctx context.Context, ptx *domain.PendingTx, level domain.FeeLevel, customAmount int64,
) (*domain.PendingTx, error) {
	requireAvailableFeeLevel(ptx, level)
	return ptx.Copy(), nil
}

func (e *InterestDepositEngine) ValidateAmount(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if ptx.ValidationState == domain.ValidationUninitialised && ptx.Amount.IsZero() {
		return ptx.Copy(), nil
	}
	return updateTxValidity(ptx, e.validateAmount(ptx)), nil
}

func (e *InterestDepositEngine) ValidateAll(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if err := e.validateAmount(ptx); err != nil {
		return updateTxValidity(ptx, err), nil
	}
	return updateTxValidity(ptx, validateAgreements(ptx)), nil
}

func (e *InterestDepositEngine) validateAmount(ptx *domain.PendingTx) error {
	if ptx.Limits == nil {
		return domain.NewValidationFailure(domain.ValidationUnknownError)
	}
	if ptx.IsMinLimitViolated() {
		return domain.NewValidationFailure(domain.ValidationUnderMinLimit)
	}
	if ptx.Amount.GreaterThan(ptx.AvailableBalance) {
		return domain.NewValidationFailure(domain.ValidationInsufficientFunds)
	}
	return nil
}

// validateAgreements requires every agreement confirmation present on
// the snapshot to be accepted.
func validateAgreements(ptx *domain.PendingTx) error {
	for _, c := range ptx.Confirmations {
		agreement, ok := c.(domain.ConfirmAgreement)
		if !ok {
			continue
		}
		if !agreement.Accepted {
			return domain.NewValidationFailure(domain.ValidationOptionInvalid)
		}
	}
	return nil
}

func (e *InterestDepositEngine) BuildConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	next.Confirmations = []domain.TxConfirmation{
		domain.ConfirmFrom{Label: e.source.Label(), Asset: e.source.Asset()},
		domain.ConfirmTo{Label: e.target.TargetLabel(), Action: domain.ActionInterestDeposit},
		domain.ConfirmAmount{Amount: ptx.Amount},
		domain.ConfirmTotal{
			TotalWithFee: ptx.Amount,
			Exchange:     e.toUserFiat(ctx, ptx.Amount),
		},
		domain.ConfirmAgreement{AgreementKind: domain.ConfirmationAgreementInterestTerms},
		domain.ConfirmAgreement{AgreementKind: domain.ConfirmationAgreementInterestTransfer},
	}
	next.Step = domain.StepConfirmationsBuilt
	return next, nil
}

func (e *InterestDepositEngine) RefreshConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	next.AddOrReplaceConfirmation(domain.ConfirmTotal{
		TotalWithFee: ptx.Amount,
		Exchange:     e.toUserFiat(ctx, ptx.Amount),
	})
	return next, nil
}

func (e *InterestDepositEngine) UpdateConfirmation(
	ctx context.Context, ptx *domain.PendingTx, confirmation domain.TxConfirmation,
) (*domain.PendingTx, error) {
	return patchEditableConfirmation(ptx, confirmation), nil
}

func (e *InterestDepositEngine) Execute(
	ctx context.Context, ptx *domain.PendingTx, secondPassword string,
) (domain.TxResult, error) {
	if err := assertCanExecute(ptx); err != nil {
		return nil, err
	}
	if err := e.custodial.CreateInterestDeposit(ctx, ptx.Amount); err != nil {
		metrics.TxExecutions.WithLabelValues(e.Name(), "error").Inc()
		return nil, err
	}

	result := domain.UnHashedTxResult{Amount: ptx.Amount}
	e.persistResult(ctx, e.Name(), ptx, result)
	return result, nil
}

// InterestWithdrawEngine pulls funds out of the interest account back
// into the custodial trading balance of the same asset.
type InterestWithdrawEngine struct {
	baseEngine
	custodial ports.CustodialService
}

// NewInterestWithdrawEngine binds a withdrawal from an interest account
// into the custodial trading account of the same asset.
func NewInterestWithdrawEngine(
	source domain.Account, target *CustodialTradingAccount,
	custodial ports.CustodialService, rates ports.RateService,
	records domain.TxRecordRepository, userFiat domain.Asset,
) *InterestWithdrawEngine {
	if source.Kind() != domain.KindInterest {
		panic("interest withdraw engine requires an interest source")
	}
	if source.Asset().Ticker != target.Asset().Ticker {
		panic("interest withdraw engine requires matching source and target assets")
	}
	return &InterestWithdrawEngine{
		baseEngine: baseEngine{
			source: source, target: domain.AccountTarget{Account: target},
			userFiat: userFiat, rates: rates, records: records,
		},
		custodial: custodial,
	}
}

func (e *InterestWithdrawEngine) Name() string { return "interest_withdraw" }

func (e *InterestWithdrawEngine) InitialiseTx(ctx context.Context) (*domain.PendingTx, error) {
	var (
		balance   domain.AccountBalance
		limits    ports.InterestLimits
		feeAndMin ports.WithdrawFeeAndMinLimit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = e.source.Balance(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		limits, err = e.custodial.InterestLimits(gctx, e.source.Asset())
		return err
	})
	g.Go(func() error {
		var err error
		feeAndMin, err = e.custodial.CryptoWithdrawFeeAndMinLimit(
			gctx, e.source.Asset(), ports.ProductSavings,
		)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	asset := e.source.Asset()
	maxWithdrawal := domain.MinMoney(limits.MaxWithdrawal, balance.Actionable)

	return &domain.PendingTx{
		Amount:              domain.ZeroMoney(asset),
		TotalBalance:        balance.Total,
		AvailableBalance:    balance.Actionable,
		FeeAmount:           feeAndMin.Fee,
		FeeForFullAvailable: feeAndMin.Fee,
		FeeSelection:        domain.NewFeeSelection(),
		Limits: &domain.TransferLimits{
			Min: feeAndMin.MinLimit,
			Max: maxWithdrawal,
		},
		SelectedFiat: e.userFiat,
		Step:         domain.StepInitialised,
	}, nil
}

func (e *InterestWithdrawEngine) UpdateAmount(
	ctx context.Context, amount domain.Money, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	balance, err := e.source.Balance(ctx)
	if err != nil {
		return nil, err
	}

	next := ptx.Copy()
	next.Amount = amount
	next.TotalBalance = balance.Total
	next.AvailableBalance = balance.Actionable
	next.Confirmations = nil
	next.Step = domain.StepAmountSet
	next.ResetValidation()
	return next, nil
}

func (e *InterestWithdrawEngine) UpdateFeeLevel(
	ctx context.Context, ptx *domain.PendingTx, level domain.FeeLevel, customAmount int64,
) (*domain.PendingTx, error) {
	requireAvailableFeeLevel(ptx, level)
	return ptx.Copy(), nil
}

func (e *InterestWithdrawEngine) ValidateAmount(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if ptx.ValidationState == domain.ValidationUninitialised && ptx.Amount.IsZero() {
		return ptx.Copy(), nil
	}
	return updateTxValidity(ptx, e.validate(ptx)), nil
}

func (e *InterestWithdrawEngine) ValidateAll(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	return updateTxValidity(ptx, e.validate(ptx)), nil
}

func (e *InterestWithdrawEngine) validate(ptx *domain.PendingTx) error {
	if ptx.Limits == nil {
		return domain.NewValidationFailure(domain.ValidationUnknownError)
	}
	if ptx.IsMinLimitViolated() {
		return domain.NewValidationFailure(domain.ValidationUnderMinLimit)
	}
	if ptx.IsMaxLimitViolated() {
		return domain.NewValidationFailure(domain.ValidationOverMaxLimit)
	}
	if ptx.Amount.GreaterThan(ptx.AvailableBalance) {
		return domain.NewValidationFailure(domain.ValidationInsufficientFunds)
	}
	return nil
}

func (e *InterestWithdrawEngine) BuildConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	received := ptx.Amount.SubToZero(ptx.FeeAmount)
	confirmations := []domain.TxConfirmation{
		domain.ConfirmFrom{Label: e.source.Label(), Asset: e.source.Asset()},
		domain.ConfirmTo{Label: e.target.TargetLabel(), Action: domain.ActionInterestWithdraw},
		domain.ConfirmAmount{Amount: ptx.Amount},
	}
	if ptx.FeeAmount.IsPositive() {
		confirmations = append(confirmations, domain.ConfirmTransactionFee{Fee: ptx.FeeAmount})
	}
	confirmations = append(confirmations,
		domain.ConfirmAmount{Amount: received, Received: true},
		domain.ConfirmTotal{
			TotalWithFee: ptx.Amount,
			Exchange:     e.toUserFiat(ctx, ptx.Amount),
		},
	)
	next.Confirmations = confirmations
	next.Step = domain.StepConfirmationsBuilt
	return next, nil
}

func (e *InterestWithdrawEngine) RefreshConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	next.AddOrReplaceConfirmation(domain.ConfirmTotal{
		TotalWithFee: ptx.Amount,
		Exchange:     e.toUserFiat(ctx, ptx.Amount),
	})
	return next, nil
}

func (e *InterestWithdrawEngine) UpdateConfirmation(
	ctx context.Context, ptx *domain.PendingTx, confirmation domain.TxConfirmation,
) (*domain.PendingTx, error) {
	return patchEditableConfirmation(ptx, confirmation), nil
}

func (e *InterestWithdrawEngine) Execute(
	ctx context.Context, ptx *domain.PendingTx, secondPassword string,
) (domain.TxResult, error) {
	if err := assertCanExecute(ptx); err != nil {
		return nil, err
	}

	address, err := e.custodial.CustodialAccountAddress(ctx, e.source.Asset())
	if err != nil {
		return nil, err
	}
	if err := e.custodial.CreateInterestWithdrawal(ctx, ptx.Amount, address); err != nil {
		metrics.TxExecutions.WithLabelValues(e.Name(), "error").Inc()
		return nil, err
	}

	result := domain.UnHashedTxResult{Amount: ptx.Amount}
	e.persistResult(ctx, e.Name(), ptx, result)
	return result, nil
}
