package application

import (
	"context"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/metrics"
)

// CustodialTransferEngine moves a custodial trading balance onto the
// user's own non-custodial wallet. The venue charges no fee for it and
// no tiered limit applies, so validation reduces to a funds check.
type CustodialTransferEngine struct {
	baseEngine
	custodial   ports.CustodialService
	destination *OnChainAccount
}

// NewCustodialTransferEngine binds the transfer between a custodial
// trading account and the user's on-chain account of the same asset.
func NewCustodialTransferEngine(
	source domain.Account, destination *OnChainAccount,
	custodial ports.CustodialService, rates ports.RateService,
	records domain.TxRecordRepository, userFiat domain.Asset,
) *CustodialTransferEngine {
	if source.Kind() != domain.KindCustodialTrading {
		panic("custodial transfer engine requires a custodial trading source")
	}
	if source.Asset().Ticker != destination.Asset().Ticker {
		panic("custodial transfer engine requires matching source and target assets")
	}
	return &CustodialTransferEngine{
		baseEngine: baseEngine{
			source: source, target: domain.AccountTarget{Account: destination},
			userFiat: userFiat, rates: rates, records: records,
		},
		custodial:   custodial,
		destination: destination,
	}
}

func (e *CustodialTransferEngine) Name() string { return "custodial_transfer" }

func (e *CustodialTransferEngine) InitialiseTx(ctx context.Context) (*domain.PendingTx, error) {
	balance, err := e.source.Balance(ctx)
	if err != nil {
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
		SelectedFiat:        e.userFiat,
		Step:                domain.StepInitialised,
	}, nil
}

func (e *CustodialTransferEngine) UpdateAmount(
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

func (e *CustodialTransferEngine) UpdateFeeLevel(
	ctx context.Context, ptx *domain.PendingTx, level domain.FeeLevel, customAmount int64,
) (*domain.PendingTx, error) {
	requireAvailableFeeLevel(ptx, level)
	return ptx.Copy(), nil
}

func (e *CustodialTransferEngine) ValidateAmount(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if ptx.ValidationState == domain.ValidationUninitialised && ptx.Amount.IsZero() {
		return ptx.Copy(), nil
	}
	return updateTxValidity(ptx, e.validate(ptx)), nil
}

func (e *CustodialTransferEngine) ValidateAll(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	return updateTxValidity(ptx, e.validate(ptx)), nil
}

func (e *CustodialTransferEngine) validate(ptx *domain.PendingTx) error {
	if !ptx.Amount.IsPositive() {
		return domain.NewValidationFailure(domain.ValidationInsufficientFunds)
	}
	if ptx.Amount.GreaterThan(ptx.AvailableBalance) {
		return domain.NewValidationFailure(domain.ValidationInsufficientFunds)
	}
	return nil
}

func (e *CustodialTransferEngine) BuildConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	next.Confirmations = []domain.TxConfirmation{
		domain.ConfirmFrom{Label: e.source.Label(), Asset: e.source.Asset()},
		domain.ConfirmTo{Label: e.target.TargetLabel(), Action: domain.ActionSend},
		domain.ConfirmAmount{Amount: ptx.Amount},
		domain.ConfirmTotal{
			TotalWithFee: ptx.Amount,
			Exchange:     e.toUserFiat(ctx, ptx.Amount),
		},
	}
	next.Step = domain.StepConfirmationsBuilt
	return next, nil
}

func (e *CustodialTransferEngine) RefreshConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	next.AddOrReplaceConfirmation(domain.ConfirmTotal{
		TotalWithFee: ptx.Amount,
		Exchange:     e.toUserFiat(ctx, ptx.Amount),
	})
	return next, nil
}

func (e *CustodialTransferEngine) UpdateConfirmation(
	ctx context.Context, ptx *domain.PendingTx, confirmation domain.TxConfirmation,
) (*domain.PendingTx, error) {
	return patchEditableConfirmation(ptx, confirmation), nil
}

func (e *CustodialTransferEngine) Execute(
	ctx context.Context, ptx *domain.PendingTx, secondPassword string,
) (domain.TxResult, error) {
	if err := assertCanExecute(ptx); err != nil {
		return nil, err
	}

	receive, err := e.destination.ReceiveAddress(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.custodial.TransferFunds(ctx, ptx.Amount, receive.Address); err != nil {
		metrics.TxExecutions.WithLabelValues(e.Name(), "error").Inc()
		return nil, err
	}

	result := domain.UnHashedTxResult{Amount: ptx.Amount}
	e.persistResult(ctx, e.Name(), ptx, result)
	return result, nil
}
