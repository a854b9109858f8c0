package application

import (
	"context"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/metrics"
)

// TradingBuyEngine buys a crypto custodial balance with a fiat
// custodial balance. It mirrors the sell flow with the pair reversed:
// amounts and limits are fiat-denominated, so no price conversion is
// applied to the limits.
type TradingBuyEngine struct {
	quotedEngine
}

// NewTradingBuyEngine binds a buy funded by a fiat custodial account.
func NewTradingBuyEngine(
	source domain.Account, target domain.TransferTarget,
	custodial ports.CustodialService, quotes *QuoteEngine,
	limits *LimitsGate, identity *IdentityGate, rates ports.RateService,
	records domain.TxRecordRepository, userFiat domain.Asset,
) *TradingBuyEngine {
	if !source.Asset().Fiat {
		panic("trading buy engine requires a fiat source")
	}
	if target.TargetAsset().Fiat {
		panic("trading buy engine requires a crypto target")
	}
	return &TradingBuyEngine{
		quotedEngine: quotedEngine{
			baseEngine: baseEngine{
				source: source, target: target, userFiat: userFiat,
				rates: rates, records: records,
			},
			custodial: custodial,
			quotes:    quotes,
			limits:    limits,
			identity:  identity,
			product:   ports.ProductBuy,
			direction: domain.TransferInternal,
		},
	}
}

func (e *TradingBuyEngine) Name() string { return "trading_buy" }

func (e *TradingBuyEngine) InitialiseTx(ctx context.Context) (*domain.PendingTx, error) {
	quote, err := e.quotes.Latest(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := e.source.Balance(ctx)
	if err != nil {
		return nil, err
	}

	fiat := e.source.Asset()
	// Fiat source: product limits apply directly, no conversion.
	var limits *domain.TransferLimits
	if fiatLimits, lerr := e.limits.TransferLimits(ctx, fiat, e.product); lerr == nil {
		limits = &fiatLimits
	}

	return &domain.PendingTx{
		Amount:              domain.ZeroMoney(fiat),
		TotalBalance:        balance.Total,
		AvailableBalance:    balance.Actionable,
		FeeAmount:           domain.ZeroMoney(fiat),
		FeeForFullAvailable: domain.ZeroMoney(fiat),
		FeeSelection:        domain.NewFeeSelection(),
		Limits:              limits,
		SelectedFiat:        fiat,
		QuoteID:             quote.ID,
		Step:                domain.StepInitialised,
	}, nil
}

func (e *TradingBuyEngine) UpdateAmount(
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

func (e *TradingBuyEngine) UpdateFeeLevel(
	ctx context.Context, ptx *domain.PendingTx, level domain.FeeLevel, customAmount int64,
) (*domain.PendingTx, error) {
	requireAvailableFeeLevel(ptx, level)
	return ptx.Copy(), nil
}

func (e *TradingBuyEngine) ValidateAmount(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if ptx.ValidationState == domain.ValidationUninitialised && ptx.Amount.IsZero() {
		return ptx.Copy(), nil
	}
	return updateTxValidity(ptx, e.validateQuotedAmount(ctx, ptx, ptx.FeeAmount)), nil
}

func (e *TradingBuyEngine) ValidateAll(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	return updateTxValidity(ptx, e.validateQuotedAmount(ctx, ptx, ptx.FeeAmount)), nil
}

func (e *TradingBuyEngine) BuildConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	quote, err := e.quotes.Latest(ctx)
	if err != nil {
		return nil, err
	}

	next := ptx.Copy()
	next.Confirmations = []domain.TxConfirmation{
		domain.ConfirmExchangePrice{
			Price: domain.NewMoney(e.source.Asset(), quote.Price.Inverse().Rate),
			Asset: e.target.TargetAsset(),
		},
		domain.ConfirmFrom{Label: e.source.Label(), Asset: e.source.Asset()},
		domain.ConfirmTo{Label: e.target.TargetLabel(), Action: domain.ActionBuy},
		domain.ConfirmAmount{Amount: ptx.Amount},
		domain.ConfirmAmount{Amount: quote.Price.Convert(ptx.Amount), Received: true},
		domain.ConfirmTotal{TotalWithFee: ptx.Total(), Exchange: ptx.Total()},
	}
	next.QuoteID = quote.ID
	next.Step = domain.StepConfirmationsBuilt
	return next, nil
}

func (e *TradingBuyEngine) RefreshConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	quote, err := e.quotes.Latest(ctx)
	if err != nil {
		return nil, err
	}

	next := ptx.Copy()
	next.AddOrReplaceConfirmation(domain.ConfirmExchangePrice{
		Price: domain.NewMoney(e.source.Asset(), quote.Price.Inverse().Rate),
		Asset: e.target.TargetAsset(),
	})
	next.AddOrReplaceConfirmation(domain.ConfirmAmount{
		Amount:   quote.Price.Convert(ptx.Amount),
		Received: true,
	})
	next.QuoteID = quote.ID
	return next, nil
}

func (e *TradingBuyEngine) UpdateConfirmation(
	ctx context.Context, ptx *domain.PendingTx, confirmation domain.TxConfirmation,
) (*domain.PendingTx, error) {
	return patchEditableConfirmation(ptx, confirmation), nil
}

func (e *TradingBuyEngine) Execute(
	ctx context.Context, ptx *domain.PendingTx, secondPassword string,
) (domain.TxResult, error) {
	if err := assertCanExecute(ptx); err != nil {
		return nil, err
	}
	if _, err := e.executeOrder(ctx, ptx, ""); err != nil {
		metrics.TxExecutions.WithLabelValues(e.Name(), "error").Inc()
		return nil, err
	}

	result := domain.UnHashedTxResult{Amount: ptx.Amount}
	e.persistResult(ctx, e.Name(), ptx, result)
	return result, nil
}
