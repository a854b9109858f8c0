package application

import (
	"context"
	"fmt"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	memoMinLength = 1
	memoMaxLength = 28
)

// TradingToOnChainEngine withdraws a custodial trading balance to an
// external on-chain address. The custodial venue pays the network fee
// and deducts it from the withdrawn amount, so the fee lowers the
// available balance rather than stacking on top of the amount.
type TradingToOnChainEngine struct {
	baseEngine
	custodial ports.CustodialService
	limits    *LimitsGate
	identity  *IdentityGate
	address   domain.CryptoAddress
}

// NewTradingToOnChainEngine binds a custodial withdrawal to an external
// address of the same asset.
func NewTradingToOnChainEngine(
	source domain.Account, address domain.CryptoAddress,
	custodial ports.CustodialService, limits *LimitsGate,
	identity *IdentityGate, rates ports.RateService,
	records domain.TxRecordRepository, userFiat domain.Asset,
) *TradingToOnChainEngine {
	if source.Kind() != domain.KindCustodialTrading {
		panic("trading withdrawal engine requires a custodial trading source")
	}
	if source.Asset().Ticker != address.Asset.Ticker {
		panic("trading withdrawal engine requires matching source and target assets")
	}
	return &TradingToOnChainEngine{
		baseEngine: baseEngine{
			source: source, target: address, userFiat: userFiat,
			rates: rates, records: records,
		},
		custodial: custodial,
		limits:    limits,
		identity:  identity,
		address:   address,
	}
}

func (e *TradingToOnChainEngine) Name() string { return "trading_to_onchain" }

func (e *TradingToOnChainEngine) InitialiseTx(ctx context.Context) (*domain.PendingTx, error) {
	var (
		balance   domain.AccountBalance
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
		feeAndMin, err = e.custodial.CryptoWithdrawFeeAndMinLimit(
			gctx, e.source.Asset(), ports.ProductWithdraw,
		)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	asset := e.source.Asset()
	available := balance.Actionable.SubToZero(feeAndMin.Fee)
	limits := e.fetchWithdrawLimits(ctx, feeAndMin, available)

	ptx := &domain.PendingTx{
		Amount:              domain.ZeroMoney(asset),
		TotalBalance:        balance.Total,
		AvailableBalance:    available,
		FeeAmount:           feeAndMin.Fee,
		FeeForFullAvailable: feeAndMin.Fee,
		FeeSelection:        domain.NewFeeSelection(),
		Limits:              limits,
		SelectedFiat:        e.userFiat,
		Step:                domain.StepInitialised,
	}
	if e.address.Memo != "" {
		ptx.Memo = &domain.Memo{Text: e.address.Memo}
	}
	return ptx, nil
}

// fetchWithdrawLimits combines the venue's withdrawal minimum with the
// tiered product ceiling converted into the source asset. When the
// tiered ceiling cannot be resolved, the available balance caps the
// transaction instead.
func (e *TradingToOnChainEngine) fetchWithdrawLimits(
	ctx context.Context, feeAndMin ports.WithdrawFeeAndMinLimit, available domain.Money,
) *domain.TransferLimits {
	asset := e.source.Asset()
	limits := domain.TransferLimits{
		Min: feeAndMin.MinLimit,
		Max: available,
	}

	fiatLimits, err := e.limits.TransferLimits(ctx, e.userFiat, ports.ProductWithdraw)
	if err != nil {
		log.WithError(err).Warn("withdrawal product limits unavailable")
		return &limits
	}
	rate, err := e.rates.Rate(ctx, asset, e.userFiat)
	if err != nil {
		log.WithError(err).Warn("rate unavailable for withdrawal limits")
		return &limits
	}

	converted := ConvertLimitsToAsset(fiatLimits, rate)
	limits.Min = domain.MaxMoney(limits.Min, converted.Min)
	limits.Max = converted.Max
	return &limits
}

func (e *TradingToOnChainEngine) UpdateAmount(
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

func (e *TradingToOnChainEngine) UpdateFeeLevel(
	ctx context.Context, ptx *domain.PendingTx, level domain.FeeLevel, customAmount int64,
) (*domain.PendingTx, error) {
	requireAvailableFeeLevel(ptx, level)
	return ptx.Copy(), nil
}

func (e *TradingToOnChainEngine) ValidateAmount(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if ptx.ValidationState == domain.ValidationUninitialised && ptx.Amount.IsZero() {
		return ptx.Copy(), nil
	}
	return updateTxValidity(ptx, e.validate(ctx, ptx)), nil
}

func (e *TradingToOnChainEngine) ValidateAll(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if err := validateMemo(ptx.Memo); err != nil {
		return updateTxValidity(ptx, err), nil
	}
	return updateTxValidity(ptx, e.validate(ctx, ptx)), nil
}

func (e *TradingToOnChainEngine) validate(ctx context.Context, ptx *domain.PendingTx) error {
	if ptx.Limits == nil {
		return domain.NewValidationFailure(domain.ValidationUnknownError)
	}
	if ptx.IsMinLimitViolated() {
		return domain.NewValidationFailure(domain.ValidationUnderMinLimit)
	}
	if ptx.IsMaxLimitViolated() {
		return tierLimitFailure(ctx, e.identity)
	}
	if ptx.Amount.GreaterThan(ptx.AvailableBalance) {
		return domain.NewValidationFailure(domain.ValidationInsufficientFunds)
	}
	return nil
}

// validateMemo enforces the venue memo length bounds on an attached
// memo. An absent memo is always valid.
func validateMemo(memo *domain.Memo) error {
	if memo == nil {
		return nil
	}
	if len(memo.Text) < memoMinLength || len(memo.Text) > memoMaxLength {
		return domain.NewValidationFailure(domain.ValidationOptionInvalid)
	}
	return nil
}

func (e *TradingToOnChainEngine) BuildConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	confirmations := []domain.TxConfirmation{
		domain.ConfirmFrom{Label: e.source.Label(), Asset: e.source.Asset()},
		domain.ConfirmTo{Label: e.target.TargetLabel(), Action: domain.ActionSend},
		domain.ConfirmAmount{Amount: ptx.Amount},
		domain.ConfirmTransactionFee{Fee: ptx.FeeAmount},
		domain.ConfirmTotal{
			TotalWithFee: ptx.Amount,
			Exchange:     e.toUserFiat(ctx, ptx.Amount),
		},
	}
	if ptx.Memo != nil {
		confirmations = append(confirmations, domain.ConfirmMemo{Text: ptx.Memo.Text})
	}
	next.Confirmations = confirmations
	next.Step = domain.StepConfirmationsBuilt
	return next, nil
}

func (e *TradingToOnChainEngine) RefreshConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	next := ptx.Copy()
	next.AddOrReplaceConfirmation(domain.ConfirmTotal{
		TotalWithFee: ptx.Amount,
		Exchange:     e.toUserFiat(ctx, ptx.Amount),
	})
	return next, nil
}

func (e *TradingToOnChainEngine) UpdateConfirmation(
	ctx context.Context, ptx *domain.PendingTx, confirmation domain.TxConfirmation,
) (*domain.PendingTx, error) {
	next := patchEditableConfirmation(ptx, confirmation)
	if memo, ok := confirmation.(domain.ConfirmMemo); ok {
		next.Memo = &domain.Memo{Text: memo.Text}
	}
	return next, nil
}

func (e *TradingToOnChainEngine) Execute(
	ctx context.Context, ptx *domain.PendingTx, secondPassword string,
) (domain.TxResult, error) {
	if err := assertCanExecute(ptx); err != nil {
		return nil, err
	}

	destination := e.address.Address
	if ptx.Memo != nil {
		destination = fmt.Sprintf("%s:%s", destination, ptx.Memo.Text)
	}
	if err := e.custodial.TransferFunds(ctx, ptx.Amount, destination); err != nil {
		metrics.TxExecutions.WithLabelValues(e.Name(), "error").Inc()
		return nil, err
	}

	result := domain.UnHashedTxResult{Amount: ptx.Amount}
	e.persistResult(ctx, e.Name(), ptx, result)
	return result, nil
}
