package application

import (
	"context"

	"github.com/coincore-network/coincore-daemon/config"
	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/metrics"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// TxCompletionHook is invoked after a successful broadcast, letting the
// destination register the incoming transfer. It runs best-effort: a
// hook failure never fails the executed transaction.
type TxCompletionHook func(ctx context.Context, result domain.TxResult) error

// OnChainSendEngine sends from a non-custodial wallet to an external
// address or to a custodial account address. The network fee comes out
// of the balance on top of the amount, so the spendable amount shrinks
// as the selected fee level grows.
type OnChainSendEngine struct {
	baseEngine
	wallet     ports.OnChainWallet
	address    domain.CryptoAddress
	onComplete TxCompletionHook
}

// NewOnChainSendEngine binds an on-chain send to an external address.
// A non-nil onComplete hook is called with the broadcast result, used
// when the destination is a custodial account that needs the incoming
// hash registered.
func NewOnChainSendEngine(
	source *OnChainAccount, address domain.CryptoAddress,
	rates ports.RateService, records domain.TxRecordRepository,
	userFiat domain.Asset, onComplete TxCompletionHook,
) *OnChainSendEngine {
	if source.Asset().Ticker != address.Asset.Ticker {
		panic("on-chain send engine requires matching source and target assets")
	}
	return &OnChainSendEngine{
		baseEngine: baseEngine{
			source: source, target: address, userFiat: userFiat,
			rates: rates, records: records,
		},
		wallet:     source.Wallet(),
		address:    address,
		onComplete: onComplete,
	}
}

func (e *OnChainSendEngine) Name() string { return "onchain_send" }

func (e *OnChainSendEngine) InitialiseTx(ctx context.Context) (*domain.PendingTx, error) {
	balance, err := e.source.Balance(ctx)
	if err != nil {
		return nil, err
	}
	options, err := e.wallet.FeeOptions(ctx)
	if err != nil {
		return nil, err
	}

	asset := e.source.Asset()
	selection := feeSelectionFromOptions(options)
	fee := feeForSelection(options, selection, asset)

	ptx := &domain.PendingTx{
		Amount:              domain.ZeroMoney(asset),
		TotalBalance:        balance.Total,
		AvailableBalance:    balance.Actionable.SubToZero(fee),
		FeeAmount:           fee,
		FeeForFullAvailable: fee,
		FeeSelection:        selection,
		SelectedFiat:        e.userFiat,
		Step:                domain.StepInitialised,
	}
	if e.address.Memo != "" {
		ptx.Memo = &domain.Memo{Text: e.address.Memo}
	}
	return ptx, nil
}

// feeSelectionFromOptions derives the offered levels from the wallet's
// fee options, defaulting to the regular level when offered.
func feeSelectionFromOptions(options ports.FeeOptions) domain.FeeSelection {
	if len(options) == 0 {
		return domain.NewFeeSelection()
	}
	levels := make([]domain.FeeLevel, 0, len(options)+1)
	for level := range options {
		levels = append(levels, level)
	}
	levels = append(levels, domain.FeeLevelCustom)

	selected := domain.FeeLevelRegular
	if _, ok := options[domain.FeeLevelRegular]; !ok {
		for level := range options {
			selected = level
			break
		}
	}
	return domain.FeeSelection{
		SelectedLevel:   selected,
		AvailableLevels: domain.NewFeeLevelSet(levels...),
	}
}

func feeForSelection(
	options ports.FeeOptions, selection domain.FeeSelection, asset domain.Asset,
) domain.Money {
	if selection.SelectedLevel == domain.FeeLevelCustom {
		return domain.NewMoneyFromMinor(asset, selection.CustomAmount)
	}
	if fee, ok := options[selection.SelectedLevel]; ok {
		return fee
	}
	return domain.ZeroMoney(asset)
}

func (e *OnChainSendEngine) UpdateAmount(
	ctx context.Context, amount domain.Money, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	balance, err := e.source.Balance(ctx)
	if err != nil {
		return nil, err
	}

	next := ptx.Copy()
	next.Amount = amount
	next.TotalBalance = balance.Total
	next.AvailableBalance = balance.Actionable.SubToZero(ptx.FeeAmount)
	next.Confirmations = nil
	next.Step = domain.StepAmountSet
	next.ResetValidation()
	return next, nil
}

// UpdateFeeLevel reprices the transaction at the requested level. The
// available balance is recomputed because the fee shares the balance
// with the amount.
func (e *OnChainSendEngine) UpdateFeeLevel(
	ctx context.Context, ptx *domain.PendingTx, level domain.FeeLevel, customAmount int64,
) (*domain.PendingTx, error) {
	requireAvailableFeeLevel(ptx, level)

	options, err := e.wallet.FeeOptions(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := e.source.Balance(ctx)
	if err != nil {
		return nil, err
	}

	next := ptx.Copy()
	next.FeeSelection.SelectedLevel = level
	next.FeeSelection.CustomAmount = customAmount
	next.FeeAmount = feeForSelection(options, next.FeeSelection, e.source.Asset())
	next.FeeForFullAvailable = next.FeeAmount
	next.TotalBalance = balance.Total
	next.AvailableBalance = balance.Actionable.SubToZero(next.FeeAmount)
	next.Step = domain.StepFeeSet
	next.ResetValidation()
	return next, nil
}

func (e *OnChainSendEngine) ValidateAmount(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if ptx.ValidationState == domain.ValidationUninitialised && ptx.Amount.IsZero() {
		return ptx.Copy(), nil
	}
	return updateTxValidity(ptx, e.validate(ptx)), nil
}

func (e *OnChainSendEngine) ValidateAll(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if err := validateMemo(ptx.Memo); err != nil {
		return updateTxValidity(ptx, err), nil
	}
	return updateTxValidity(ptx, e.validate(ptx)), nil
}

func (e *OnChainSendEngine) validate(ptx *domain.PendingTx) error {
	if !ptx.Amount.IsPositive() {
		return domain.NewValidationFailure(domain.ValidationInsufficientFunds)
	}
	if ptx.FeeSelection.SelectedLevel == domain.FeeLevelCustom &&
		ptx.FeeSelection.CustomAmount <= 0 {
		return domain.NewValidationFailure(domain.ValidationOptionInvalid)
	}
	if ptx.Total().GreaterThan(ptx.TotalBalance) ||
		ptx.Amount.GreaterThan(ptx.AvailableBalance) {
		return domain.NewValidationFailure(domain.ValidationInsufficientFunds)
	}
	return nil
}

func (e *OnChainSendEngine) BuildConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	confirmations := []domain.TxConfirmation{
		domain.ConfirmFrom{Label: e.source.Label(), Asset: e.source.Asset()},
		domain.ConfirmTo{Label: e.target.TargetLabel(), Action: domain.ActionSend},
		domain.ConfirmAmount{Amount: ptx.Amount},
		domain.ConfirmNetworkFee{
			Fee:      ptx.FeeAmount,
			Exchange: e.toUserFiat(ctx, ptx.FeeAmount),
			Asset:    e.source.Asset(),
		},
		domain.ConfirmTotal{
			TotalWithFee: ptx.Total(),
			Exchange:     e.toUserFiat(ctx, ptx.Total()),
		},
		domain.ConfirmDescription{Text: ptx.Description},
	}
	if ptx.Memo != nil {
		confirmations = append(confirmations, domain.ConfirmMemo{Text: ptx.Memo.Text})
	}
	if warning, ok := e.largeTxWarning(ctx, ptx); ok {
		confirmations = append(confirmations, warning)
	}
	next.Confirmations = confirmations
	next.Step = domain.StepConfirmationsBuilt
	return next, nil
}

// largeTxWarning reports whether the fiat value of the send crosses the
// configured threshold.
func (e *OnChainSendEngine) largeTxWarning(
	ctx context.Context, ptx *domain.PendingTx,
) (domain.TxConfirmation, bool) {
	threshold := domain.NewMoney(
		e.userFiat, decimal.NewFromFloat(config.GetFloat(config.LargeTxFiatThresholdKey)),
	)
	fiatValue := e.toUserFiat(ctx, ptx.Total())
	if fiatValue.LessThan(threshold) {
		return nil, false
	}
	return domain.ConfirmLargeTransactionWarning{Threshold: threshold}, true
}

func (e *OnChainSendEngine) RefreshConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	next.AddOrReplaceConfirmation(domain.ConfirmNetworkFee{
		Fee:      ptx.FeeAmount,
		Exchange: e.toUserFiat(ctx, ptx.FeeAmount),
		Asset:    e.source.Asset(),
	})
	next.AddOrReplaceConfirmation(domain.ConfirmTotal{
		TotalWithFee: ptx.Total(),
		Exchange:     e.toUserFiat(ctx, ptx.Total()),
	})
	return next, nil
}

func (e *OnChainSendEngine) UpdateConfirmation(
	ctx context.Context, ptx *domain.PendingTx, confirmation domain.TxConfirmation,
) (*domain.PendingTx, error) {
	next := patchEditableConfirmation(ptx, confirmation)
	switch c := confirmation.(type) {
	case domain.ConfirmMemo:
		next.Memo = &domain.Memo{Text: c.Text}
	case domain.ConfirmDescription:
		next.Description = c.Text
	}
	return next, nil
}

func (e *OnChainSendEngine) Execute(
	ctx context.Context, ptx *domain.PendingTx, secondPassword string,
) (domain.TxResult, error) {
	if err := assertCanExecute(ptx); err != nil {
		return nil, err
	}

	req := ports.SendRequest{
		Asset:          e.source.Asset(),
		Amount:         ptx.Amount,
		Fee:            ptx.FeeAmount,
		Address:        e.address.Address,
		SecondPassword: secondPassword,
	}
	if ptx.Memo != nil {
		req.Memo = ptx.Memo.Text
	}

	txID, err := e.wallet.Send(ctx, req)
	if err != nil {
		metrics.TxExecutions.WithLabelValues(e.Name(), "error").Inc()
		return nil, err
	}

	result := domain.HashedTxResult{TxID: txID, Amount: ptx.Amount}
	e.persistResult(ctx, e.Name(), ptx, result)

	if e.onComplete != nil {
		if err := e.onComplete(ctx, result); err != nil {
			log.WithError(err).Warn("transaction completion hook failed")
		}
	}
	return result, nil
}
