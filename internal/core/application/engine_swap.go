package application

import (
	"context"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/metrics"
)

// TradingSwapEngine swaps one custodial trading balance into another at
// a quoted price. Execution always binds to the freshest quote id: if
// the quote rotated after confirmations were built, the rotated id is
// submitted.
type TradingSwapEngine struct {
	quotedEngine
	userFiatLimits domain.Asset
}

// NewTradingSwapEngine binds the swap between two custodial trading
// accounts of different assets.
func NewTradingSwapEngine(
	source domain.Account, target domain.TransferTarget,
	custodial ports.CustodialService, quotes *QuoteEngine,
	limits *LimitsGate, identity *IdentityGate, rates ports.RateService,
	records domain.TxRecordRepository, userFiat domain.Asset,
) *TradingSwapEngine {
	if source.Kind() != domain.KindCustodialTrading {
		panic("trading swap engine requires a custodial trading source")
	}
	if source.Asset().Ticker == target.TargetAsset().Ticker {
		panic("trading swap engine requires distinct source and target assets")
	}
	return &TradingSwapEngine{
		quotedEngine: quotedEngine{
			baseEngine: baseEngine{
				source: source, target: target, userFiat: userFiat,
				rates: rates, records: records,
			},
			custodial: custodial,
			quotes:    quotes,
			limits:    limits,
			identity:  identity,
			product:   ports.ProductSwap,
			direction: domain.TransferInternal,
		},
		userFiatLimits: userFiat,
	}
}

func (e *TradingSwapEngine) Name() string { return "trading_swap" }

func (e *TradingSwapEngine) InitialiseTx(ctx context.Context) (*domain.PendingTx, error) {
	quote, err := e.quotes.Latest(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := e.source.Balance(ctx)
	if err != nil {
		return nil, err
	}

	asset := e.source.Asset()
	// Swap limits are fiat-denominated; convert them at the user fiat
	// rate rather than the crypto-to-crypto quote price.
	var limits *domain.TransferLimits
	if fiatLimits, lerr := e.limits.TransferLimits(ctx, e.userFiatLimits, e.product); lerr == nil {
		if rate, rerr := e.rates.Rate(ctx, asset, e.userFiatLimits); rerr == nil {
			converted := ConvertLimitsToAsset(fiatLimits, rate)
			limits = &converted
		}
	}

	return &domain.PendingTx{
		Amount:              domain.ZeroMoney(asset),
		TotalBalance:        balance.Total,
		AvailableBalance:    balance.Actionable,
		FeeAmount:           domain.ZeroMoney(asset),
		FeeForFullAvailable: domain.ZeroMoney(asset),
		FeeSelection:        domain.NewFeeSelection(),
		Limits:              limits,
		SelectedFiat:        e.userFiatLimits,
		QuoteID:             quote.ID,
		Step:                domain.StepInitialised,
	}, nil
}

func (e *TradingSwapEngine) UpdateAmount(
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

func (e *TradingSwapEngine) UpdateFeeLevel(
	ctx context.Context, ptx *domain.PendingTx, level domain.FeeLevel, customAmount int64,
) (*domain.PendingTx, error) {
	requireAvailableFeeLevel(ptx, level)
	return ptx.Copy(), nil
}

func (e *TradingSwapEngine) ValidateAmount(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if ptx.ValidationState == domain.ValidationUninitialised && ptx.Amount.IsZero() {
		return ptx.Copy(), nil
	}
	return updateTxValidity(ptx, e.validateQuotedAmount(ctx, ptx, ptx.FeeAmount)), nil
}

func (e *TradingSwapEngine) ValidateAll(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	return updateTxValidity(ptx, e.validateQuotedAmount(ctx, ptx, ptx.FeeAmount)), nil
}

func (e *TradingSwapEngine) BuildConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	quote, err := e.quotes.Latest(ctx)
	if err != nil {
		return nil, err
	}

	next := ptx.Copy()
	next.Confirmations = []domain.TxConfirmation{
		domain.ConfirmFrom{Label: e.source.Label(), Asset: e.source.Asset()},
		domain.ConfirmTo{Label: e.target.TargetLabel(), Action: domain.ActionSwap},
		domain.ConfirmExchangePrice{
			Price: domain.NewMoney(e.target.TargetAsset(), quote.Price.Rate),
			Asset: e.source.Asset(),
		},
		domain.ConfirmAmount{Amount: ptx.Amount},
		domain.ConfirmAmount{Amount: quote.Price.Convert(ptx.Amount), Received: true},
		domain.ConfirmTotal{
			TotalWithFee: ptx.Total(),
			Exchange:     e.toUserFiat(ctx, ptx.Total()),
		},
	}
	next.QuoteID = quote.ID
	next.Step = domain.StepConfirmationsBuilt
	return next, nil
}

func (e *TradingSwapEngine) RefreshConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	quote, err := e.quotes.Latest(ctx)
	if err != nil {
		return nil, err
	}

	next := ptx.Copy()
	next.AddOrReplaceConfirmation(domain.ConfirmExchangePrice{
		Price: domain.NewMoney(e.target.TargetAsset(), quote.Price.Rate),
		Asset: e.source.Asset(),
	})
	next.AddOrReplaceConfirmation(domain.ConfirmAmount{
		Amount:   quote.Price.Convert(ptx.Amount),
		Received: true,
	})
	next.QuoteID = quote.ID
	return next, nil
}

func (e *TradingSwapEngine) UpdateConfirmation(
	ctx context.Context, ptx *domain.PendingTx, confirmation domain.TxConfirmation,
) (*domain.PendingTx, error) {
	return patchEditableConfirmation(ptx, confirmation), nil
}

func (e *TradingSwapEngine) Execute(
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
