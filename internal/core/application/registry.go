package application

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

var ethAddressRegexp = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Coincore is the account registry and engine router. It owns the
// per-asset account lists and hands out the transaction engine matching
// a (source, target, action) route.
type Coincore struct {
	custodial ports.CustodialService
	identity  *IdentityGate
	limits    *LimitsGate
	rates     ports.RateService
	quoteSvc  ports.QuoteService
	records   domain.TxRecordRepository
	userFiat  domain.Asset

	wallets  map[string]ports.OnChainWallet
	accounts map[string][]domain.Account

	mtx          sync.Mutex
	quoteEngines map[string]*QuoteEngine
}

// NewCoincore builds the registry for the given crypto assets and fiat
// currencies. Assets with a wallet in the wallets map get an on-chain
// account alongside their custodial ones.
func NewCoincore(
	cryptoAssets []domain.Asset, fiatCurrencies []domain.Asset,
	wallets map[string]ports.OnChainWallet,
	custodial ports.CustodialService, identitySvc ports.IdentityService,
	quoteSvc ports.QuoteService, rates ports.RateService,
	records domain.TxRecordRepository, userFiat domain.Asset,
) *Coincore {
	identity := NewIdentityGate(identitySvc)
	c := &Coincore{
		custodial:    custodial,
		identity:     identity,
		limits:       NewLimitsGate(custodial),
		rates:        rates,
		quoteSvc:     quoteSvc,
		records:      records,
		userFiat:     userFiat,
		wallets:      wallets,
		accounts:     make(map[string][]domain.Account),
		quoteEngines: make(map[string]*QuoteEngine),
	}

	for _, asset := range cryptoAssets {
		var accounts []domain.Account
		if wallet, ok := wallets[asset.Ticker]; ok {
			accounts = append(accounts, NewOnChainAccount(
				asset.Ticker+" Wallet", userFiat, true, wallet, rates,
			))
		}
		accounts = append(accounts,
			NewCustodialTradingAccount(
				asset, asset.Ticker+" Trading Account", userFiat,
				custodial, rates, identity,
			),
			NewInterestAccount(
				asset, asset.Ticker+" Interest Account", userFiat,
				custodial, rates, identity,
			),
		)
		c.accounts[asset.Ticker] = accounts
	}
	for _, fiat := range fiatCurrencies {
		c.accounts[fiat.Ticker] = []domain.Account{
			NewFiatCustodialAccount(
				fiat, fiat.Ticker+" Account", custodial, identity,
			),
		}
	}
	return c
}

// Accounts returns the accounts registered for the asset ticker.
func (c *Coincore) Accounts(ticker string) []domain.Account {
	return c.accounts[ticker]
}

// AllAccounts returns every registered account across all assets.
func (c *Coincore) AllAccounts() []domain.Account {
	var all []domain.Account
	for _, accounts := range c.accounts {
		all = append(all, accounts...)
	}
	return all
}

// AccountGroup aggregates the asset's accounts into a single view.
func (c *Coincore) AccountGroup(asset domain.Asset) (*domain.AccountGroup, error) {
	return domain.NewAccountGroup(
		"All "+asset.Ticker+" Accounts", asset, c.accounts[asset.Ticker],
	)
}

// LinkedBanks returns the withdrawal destinations the custodial
// service holds for the fiat currency, wrapped as accounts so they can
// be listed and routed like any other target.
func (c *Coincore) LinkedBanks(
	ctx context.Context, currency domain.Asset,
) ([]*LinkedBankAccount, error) {
	banks, err := c.custodial.LinkedBanks(ctx, currency)
	if err != nil {
		return nil, err
	}
	accounts := make([]*LinkedBankAccount, 0, len(banks))
	for _, bank := range banks {
		accounts = append(accounts, NewLinkedBankAccount(
			bank.Currency, bank.Label, bank.BankID,
			bank.AccountNumber, bank.AccountType, c.custodial,
		))
	}
	return accounts, nil
}

// AccountsWithAction returns the accounts currently offering the
// action. An account whose action set cannot be resolved is skipped,
// not fatal.
func (c *Coincore) AccountsWithAction(
	ctx context.Context, action domain.AssetAction,
) []domain.Account {
	var matching []domain.Account
	for _, accounts := range c.accounts {
		for _, account := range accounts {
			actions, err := account.Actions(ctx)
			if err != nil {
				log.WithError(err).WithField("account", account.Label()).
					Warn("skipping account with unresolvable actions")
				continue
			}
			if actions.Contains(action) {
				matching = append(matching, account)
			}
		}
	}
	return matching
}

// ParseAddress validates an externally supplied address for the asset
// and wraps it as a transfer target. BCH accepts legacy base58
// addresses only.
func ParseAddress(
	asset domain.Asset, address, label, memo string,
) (domain.CryptoAddress, error) {
	switch asset.Ticker {
	case domain.BTC.Ticker, domain.BCH.Ticker:
		if _, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams); err != nil {
			return domain.CryptoAddress{}, domain.ErrInvalidAddress
		}
	case domain.ETH.Ticker:
		if !ethAddressRegexp.MatchString(address) {
			return domain.CryptoAddress{}, domain.ErrInvalidAddress
		}
	case domain.XLM.Ticker:
		if len(address) != 56 || address[0] != 'G' {
			return domain.CryptoAddress{}, domain.ErrInvalidAddress
		}
	default:
		return domain.CryptoAddress{}, domain.ErrInvalidAddress
	}
	return domain.CryptoAddress{
		Asset:   asset,
		Address: address,
		Label:   label,
		Memo:    memo,
	}, nil
}

// quoteEngineFor returns the started quote engine for the pair and
// transfer direction, creating it on first use. Engines are shared
// across transactions quoting the same pair in the same direction;
// directions never share an engine since the venue prices them
// differently.
func (c *Coincore) quoteEngineFor(
	ctx context.Context, pair domain.Pair, direction domain.TransferDirection,
) (*QuoteEngine, error) {
	key := fmt.Sprintf(
		"%s-%s-%s", pair.Source.Ticker, pair.Destination.Ticker, direction,
	)

	c.mtx.Lock()
	defer c.mtx.Unlock()
	if engine, ok := c.quoteEngines[key]; ok {
		return engine, nil
	}

	engine := NewQuoteEngine(c.quoteSvc, pair, direction)
	if err := engine.Start(ctx); err != nil {
		return nil, err
	}
	c.quoteEngines[key] = engine
	return engine, nil
}

// Close stops the registry's background quote engines.
func (c *Coincore) Close() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	for _, engine := range c.quoteEngines {
		engine.Stop()
	}
	c.quoteEngines = make(map[string]*QuoteEngine)
}

// ResolveEngine routes a (source, target) pair to the transaction
// engine that serves it. Unroutable combinations return
// ErrUnsupportedRoute; a constructor contract violation on a routed
// combination still panics.
func (c *Coincore) ResolveEngine(
	ctx context.Context, source domain.Account, target domain.TransferTarget,
) (TxEngine, error) {
	switch source.Kind() {
	case domain.KindCustodialTrading:
		return c.resolveFromTrading(ctx, source, target)
	case domain.KindNonCustodial:
		return c.resolveFromOnChain(ctx, source, target)
	case domain.KindInterest:
		return c.resolveFromInterest(source, target)
	default:
		return nil, domain.ErrUnsupportedRoute
	}
}

func (c *Coincore) resolveFromTrading(
	ctx context.Context, source domain.Account, target domain.TransferTarget,
) (TxEngine, error) {
	if source.Asset().Fiat {
		return c.resolveFromFiat(ctx, source, target)
	}

	switch t := target.(type) {
	case domain.CryptoAddress:
		if t.Asset.Ticker != source.Asset().Ticker {
			return nil, domain.ErrUnsupportedRoute
		}
		return NewTradingToOnChainEngine(
			source, t, c.custodial, c.limits, c.identity,
			c.rates, c.records, c.userFiat,
		), nil

	case domain.AccountTarget:
		switch destination := t.Account.(type) {
		case *InterestAccount:
			if destination.Asset().Ticker != source.Asset().Ticker {
				return nil, domain.ErrUnsupportedRoute
			}
			return NewInterestDepositEngine(
				source, destination, c.custodial, c.rates, c.records, c.userFiat,
			), nil
		case *OnChainAccount:
			if destination.Asset().Ticker != source.Asset().Ticker {
				return nil, domain.ErrUnsupportedRoute
			}
			return NewCustodialTransferEngine(
				source, destination, c.custodial, c.rates, c.records, c.userFiat,
			), nil
		case *FiatCustodialAccount:
			quotes, err := c.quoteEngineFor(ctx, domain.Pair{
				Source: source.Asset(), Destination: destination.Asset(),
			}, domain.TransferInternal)
			if err != nil {
				return nil, err
			}
			return NewTradingSellEngine(
				source, t, c.custodial, quotes, c.limits, c.identity,
				c.rates, c.records, c.userFiat,
			), nil
		case *CustodialTradingAccount:
			if destination.Asset().Ticker == source.Asset().Ticker {
				return nil, domain.ErrUnsupportedRoute
			}
			quotes, err := c.quoteEngineFor(ctx, domain.Pair{
				Source: source.Asset(), Destination: destination.Asset(),
			}, domain.TransferInternal)
			if err != nil {
				return nil, err
			}
			return NewTradingSwapEngine(
				source, t, c.custodial, quotes, c.limits, c.identity,
				c.rates, c.records, c.userFiat,
			), nil
		}
	}
	return nil, domain.ErrUnsupportedRoute
}

func (c *Coincore) resolveFromOnChain(
	ctx context.Context, source domain.Account, target domain.TransferTarget,
) (TxEngine, error) {
	onchain, ok := source.(*OnChainAccount)
	if !ok {
		return nil, domain.ErrUnsupportedRoute
	}

	switch t := target.(type) {
	case domain.CryptoAddress:
		if t.Asset.Ticker != source.Asset().Ticker {
			return nil, domain.ErrUnsupportedRoute
		}
		return NewOnChainSendEngine(
			onchain, t, c.rates, c.records, c.userFiat, nil,
		), nil

	case domain.AccountTarget:
		switch destination := t.Account.(type) {
		case *CustodialTradingAccount:
			if destination.Asset().Ticker != source.Asset().Ticker {
				return nil, domain.ErrUnsupportedRoute
			}
			address, err := c.custodial.CustodialAccountAddress(ctx, destination.Asset())
			if err != nil {
				return nil, err
			}
			return NewOnChainSendEngine(
				onchain, domain.CryptoAddress{
					Asset:   destination.Asset(),
					Address: address,
					Label:   destination.Label(),
				},
				c.rates, c.records, c.userFiat, destination.OnTxCompleted,
			), nil
		case *FiatCustodialAccount:
			quotes, err := c.quoteEngineFor(ctx, domain.Pair{
				Source: source.Asset(), Destination: destination.Asset(),
			}, domain.TransferFromUserKey)
			if err != nil {
				return nil, err
			}
			return NewOnChainSellEngine(
				onchain, t, c.custodial, quotes, c.limits, c.identity,
				c.rates, c.records, c.userFiat,
			), nil
		}
	}
	return nil, domain.ErrUnsupportedRoute
}

func (c *Coincore) resolveFromInterest(
	source domain.Account, target domain.TransferTarget,
) (TxEngine, error) {
	accountTarget, ok := target.(domain.AccountTarget)
	if !ok {
		return nil, domain.ErrUnsupportedRoute
	}
	trading, ok := accountTarget.Account.(*CustodialTradingAccount)
	if !ok || trading.Asset().Ticker != source.Asset().Ticker {
		return nil, domain.ErrUnsupportedRoute
	}
	return NewInterestWithdrawEngine(
		source, trading, c.custodial, c.rates, c.records, c.userFiat,
	), nil
}

func (c *Coincore) resolveFromFiat(
	ctx context.Context, source domain.Account, target domain.TransferTarget,
) (TxEngine, error) {
	switch t := target.(type) {
	case domain.BankAccountTarget:
		if t.Currency.Ticker != source.Asset().Ticker {
			return nil, domain.ErrUnsupportedRoute
		}
		return NewFiatWithdrawalEngine(
			source, t, c.custodial, c.rates, c.records, c.userFiat,
		), nil

	case domain.AccountTarget:
		switch destination := t.Account.(type) {
		case *LinkedBankAccount:
			if destination.Asset().Ticker != source.Asset().Ticker {
				return nil, domain.ErrUnsupportedRoute
			}
			return NewFiatWithdrawalEngine(
				source, destination.Target(), c.custodial, c.rates,
				c.records, c.userFiat,
			), nil
		case *CustodialTradingAccount:
			if destination.Asset().Fiat {
				return nil, domain.ErrUnsupportedRoute
			}
			quotes, err := c.quoteEngineFor(ctx, domain.Pair{
				Source: source.Asset(), Destination: destination.Asset(),
			}, domain.TransferInternal)
			if err != nil {
				return nil, err
			}
			return NewTradingBuyEngine(
				source, t, c.custodial, quotes, c.limits, c.identity,
				c.rates, c.records, c.userFiat,
			), nil
		}
	}
	return nil, domain.ErrUnsupportedRoute
}
