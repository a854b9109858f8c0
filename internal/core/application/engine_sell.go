package application

import (
	"context"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/metrics"
)

// sellEngine sells a crypto balance into a custodial fiat balance at a
// quoted price. The two concrete variants differ in venue: a custodial
// trading source pays no network fee, an on-chain source pays the
// chain fee in the source asset.
type sellEngine struct {
	quotedEngine
	name string
	// feeFetch returns the network fee in the source asset for the
	// current snapshot. Zero for custodial sources.
	feeFetch func(ctx context.Context) (domain.Money, error)
}

func (e *sellEngine) Name() string { return e.name }

func (e *sellEngine) targetFiat() domain.Asset {
	return e.target.TargetAsset()
}

func (e *sellEngine) InitialiseTx(ctx context.Context) (*domain.PendingTx, error) {
	quote, err := e.quotes.Latest(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := e.source.Balance(ctx)
	if err != nil {
		return nil, err
	}
	fee, err := e.feeFetch(ctx)
	if err != nil {
		return nil, err
	}

	asset := e.source.Asset()
	return &domain.PendingTx{
		Amount:              domain.ZeroMoney(asset),
		TotalBalance:        balance.Total,
		AvailableBalance:    balance.Actionable.SubToZero(fee),
		FeeAmount:           fee,
		FeeForFullAvailable: fee,
		FeeSelection:        e.feeSelection(fee),
		Limits:              e.fetchLimits(ctx, e.targetFiat(), quote),
		SelectedFiat:        e.targetFiat(),
		QuoteID:             quote.ID,
		Step:                domain.StepInitialised,
	}, nil
}

func (e *sellEngine) feeSelection(fee domain.Money) domain.FeeSelection {
	if fee.IsPositive() {
		return domain.FeeSelection{
			SelectedLevel:   domain.FeeLevelRegular,
			AvailableLevels: domain.NewFeeLevelSet(domain.FeeLevelRegular),
		}
	}
	return domain.NewFeeSelection()
}

// UpdateAmount re-derives the balance rather than reusing the stale
// snapshot: quoted availability depends on the current fee.
func (e *sellEngine) UpdateAmount(
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

func (e *sellEngine) UpdateFeeLevel(
	ctx context.Context, ptx *domain.PendingTx, level domain.FeeLevel, customAmount int64,
) (*domain.PendingTx, error) {
	requireAvailableFeeLevel(ptx, level)
	return ptx.Copy(), nil
}

func (e *sellEngine) ValidateAmount(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	if ptx.ValidationState == domain.ValidationUninitialised && ptx.Amount.IsZero() {
		return ptx.Copy(), nil
	}
	return updateTxValidity(ptx, e.validate(ctx, ptx)), nil
}

func (e *sellEngine) ValidateAll(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	return updateTxValidity(ptx, e.validate(ctx, ptx)), nil
}

func (e *sellEngine) validate(ctx context.Context, ptx *domain.PendingTx) error {
	return e.validateQuotedAmount(ctx, ptx, ptx.FeeAmount)
}

func (e *sellEngine) BuildConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	quote, err := e.quotes.Latest(ctx)
	if err != nil {
		return nil, err
	}

	next := ptx.Copy()
	rate := quote.Price
	confirmations := []domain.TxConfirmation{
		domain.ConfirmExchangePrice{
			Price: domain.NewMoney(e.targetFiat(), rate.Rate),
			Asset: e.source.Asset(),
		},
		domain.ConfirmTo{Label: e.target.TargetLabel(), Action: domain.ActionSell},
		domain.ConfirmSale{
			Amount:   ptx.Amount,
			Exchange: rate.Convert(ptx.Amount),
		},
	}
	if ptx.FeeAmount.IsPositive() {
		confirmations = append(confirmations, domain.ConfirmNetworkFee{
			Fee:      ptx.FeeAmount,
			Exchange: rate.Convert(ptx.FeeAmount),
			Asset:    e.source.Asset(),
		})
	}
	confirmations = append(confirmations, domain.ConfirmTotal{
		TotalWithFee: ptx.Total(),
		Exchange:     rate.Convert(ptx.Total()),
	})

	next.Confirmations = confirmations
	next.QuoteID = quote.ID
	next.Step = domain.StepConfirmationsBuilt
	return next, nil
}

// RefreshConfirmations re-prices the quote-bound line items in place,
// preserving list identity and order.
func (e *sellEngine) RefreshConfirmations(
	ctx context.Context, ptx *domain.PendingTx,
) (*domain.PendingTx, error) {
	quote, err := e.quotes.Latest(ctx)
	if err != nil {
		return nil, err
	}

	next := ptx.Copy()
	rate := quote.Price
	next.AddOrReplaceConfirmation(domain.ConfirmExchangePrice{
		Price: domain.NewMoney(e.targetFiat(), rate.Rate),
		Asset: e.source.Asset(),
	})
	next.AddOrReplaceConfirmation(domain.ConfirmSale{
		Amount:   ptx.Amount,
		Exchange: rate.Convert(ptx.Amount),
	})
	next.AddOrReplaceConfirmation(domain.ConfirmTotal{
		TotalWithFee: ptx.Total(),
		Exchange:     rate.Convert(ptx.Total()),
	})
	next.QuoteID = quote.ID
	return next, nil
}

func (e *sellEngine) UpdateConfirmation(
	ctx context.Context, ptx *domain.PendingTx, confirmation domain.TxConfirmation,
) (*domain.PendingTx, error) {
	return patchEditableConfirmation(ptx, confirmation), nil
}

func (e *sellEngine) Execute(
	ctx context.Context, ptx *domain.PendingTx, secondPassword string,
) (domain.TxResult, error) {
	if err := assertCanExecute(ptx); err != nil {
		return nil, err
	}

	refundAddress := ""
	if e.direction.RequiresRefundAddress() {
		if address, err := e.source.ReceiveAddress(ctx); err == nil {
			refundAddress = address.Address
		}
	}
	if _, err := e.executeOrder(ctx, ptx, refundAddress); err != nil {
		metrics.TxExecutions.WithLabelValues(e.Name(), "error").Inc()
		return nil, err
	}

	result := domain.UnHashedTxResult{Amount: ptx.Amount}
	e.persistResult(ctx, e.Name(), ptx, result)
	return result, nil
}

// NewTradingSellEngine sells a custodial trading balance. It supports
// only FeeLevelNone: the venue charges no network fee on an internal
// ledger move.
func NewTradingSellEngine(
	source domain.Account, target domain.TransferTarget,
	custodial ports.CustodialService, quotes *QuoteEngine,
	limits *LimitsGate, identity *IdentityGate, rates ports.RateService,
	records domain.TxRecordRepository, userFiat domain.Asset,
) TxEngine {
	if source.Kind() != domain.KindCustodialTrading {
		panic("trading sell engine requires a custodial trading source")
	}
	if !target.TargetAsset().Fiat {
		panic("trading sell engine requires a fiat target")
	}
	engine := &sellEngine{
		quotedEngine: quotedEngine{
			baseEngine: baseEngine{
				source: source, target: target, userFiat: userFiat,
				rates: rates, records: records,
			},
			custodial: custodial,
			quotes:    quotes,
			limits:    limits,
			identity:  identity,
			product:   ports.ProductSell,
			direction: domain.TransferInternal,
		},
		name: "trading_sell",
	}
	engine.feeFetch = func(ctx context.Context) (domain.Money, error) {
		return domain.ZeroMoney(source.Asset()), nil
	}
	return engine
}

// NewOnChainSellEngine sells a non-custodial balance; the source pays
// the chain fee at the regular level on top of the sold amount.
func NewOnChainSellEngine(
	source *OnChainAccount, target domain.TransferTarget,
	custodial ports.CustodialService, quotes *QuoteEngine,
	limits *LimitsGate, identity *IdentityGate, rates ports.RateService,
	records domain.TxRecordRepository, userFiat domain.Asset,
) TxEngine {
	if !target.TargetAsset().Fiat {
		panic("on-chain sell engine requires a fiat target")
	}
	engine := &sellEngine{
		quotedEngine: quotedEngine{
			baseEngine: baseEngine{
				source: source, target: target, userFiat: userFiat,
				rates: rates, records: records,
			},
			custodial: custodial,
			quotes:    quotes,
			limits:    limits,
			identity:  identity,
			product:   ports.ProductSell,
			direction: domain.TransferFromUserKey,
		},
		name: "onchain_sell",
	}
	engine.feeFetch = func(ctx context.Context) (domain.Money, error) {
		options, err := source.Wallet().FeeOptions(ctx)
		if err != nil {
			return domain.Money{}, err
		}
		return options[domain.FeeLevelRegular], nil
	}
	return engine
}
