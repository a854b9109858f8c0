package main

import (
	"context"
	"fmt"
	"os"

	"github.com/coincore-network/coincore-daemon/config"
	"github.com/coincore-network/coincore-daemon/internal/core/application"
	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/infrastructure/rates"
	"github.com/coincore-network/coincore-daemon/internal/infrastructure/storage/db/inmemory"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "coincore-sim"
	app.Usage = "drive the coincore transaction engines against in-process service fakes"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "fiat",
			Usage: "user display currency",
			Value: "USD",
		},
		&cli.BoolFlag{
			Name:  "gold",
			Usage: "simulate a gold-tier verified user",
		},
	}
	app.Commands = []*cli.Command{
		&accountsCmd,
		&sellCmd,
		&swapCmd,
		&withdrawCmd,
		&sendCmd,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("simulation failed")
	}
}

func newSim(ctx *cli.Context) *application.Coincore {
	userFiat := domain.USD
	if ctx.String("fiat") == "EUR" {
		userFiat = domain.EUR
	} else if ctx.String("fiat") == "GBP" {
		userFiat = domain.GBP
	}
	config.Set(config.DefaultFiatKey, userFiat.Ticker)

	tier := ports.TierSilver
	if ctx.Bool("gold") {
		tier = ports.TierGold
	}

	rateSvc := rates.NewCachedRateService(simRates{})
	core := application.NewCoincore(
		[]domain.Asset{domain.BTC, domain.ETH},
		[]domain.Asset{userFiat},
		map[string]ports.OnChainWallet{
			domain.BTC.Ticker: newSimWallet(domain.BTC, decimal.NewFromFloat(1.2)),
		},
		newSimCustodial(userFiat),
		simIdentity{tier: tier},
		simQuotes{},
		rateSvc,
		inmemory.NewTxRecordRepositoryImpl(),
		userFiat,
	)
	return core
}

var accountsCmd = cli.Command{
	Name:  "accounts",
	Usage: "list all accounts with balances and offered actions",
	Action: func(c *cli.Context) error {
		core := newSim(c)
		defer core.Close()
		ctx := context.Background()

		for _, account := range core.AllAccounts() {
			balance, err := account.Balance(ctx)
			if err != nil {
				log.WithError(err).WithField("account", account.Label()).
					Warn("balance unavailable")
				continue
			}
			actions, _ := account.Actions(ctx)
			fmt.Printf("%-24s %-12s total=%s actionable=%s actions=%d\n",
				account.Label(), account.Asset().Ticker,
				balance.Total, balance.Actionable, len(actions),
			)
		}
		return nil
	},
}

var sellCmd = cli.Command{
	Name:  "sell",
	Usage: "sell custodial BTC into the fiat account",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "amount", Value: 0.1},
	},
	Action: func(c *cli.Context) error {
		core := newSim(c)
		defer core.Close()
		ctx := context.Background()

		source := tradingAccount(core, domain.BTC)
		fiat := core.Accounts(config.GetString(config.DefaultFiatKey))[0]
		amount := domain.NewMoney(domain.BTC, decimal.NewFromFloat(c.Float64("amount")))
		return runPipeline(ctx, core, source, domain.AccountTarget{Account: fiat}, amount)
	},
}

var swapCmd = cli.Command{
	Name:  "swap",
	Usage: "swap custodial BTC into custodial ETH",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "amount", Value: 0.05},
	},
	Action: func(c *cli.Context) error {
		core := newSim(c)
		defer core.Close()
		ctx := context.Background()

		source := tradingAccount(core, domain.BTC)
		destination := tradingAccount(core, domain.ETH)
		amount := domain.NewMoney(domain.BTC, decimal.NewFromFloat(c.Float64("amount")))
		return runPipeline(ctx, core, source, domain.AccountTarget{Account: destination}, amount)
	},
}

var withdrawCmd = cli.Command{
	Name:  "withdraw",
	Usage: "withdraw from the fiat account to a linked bank",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "amount", Value: 100},
	},
	Action: func(c *cli.Context) error {
		core := newSim(c)
		defer core.Close()
		ctx := context.Background()

		fiatTicker := config.GetString(config.DefaultFiatKey)
		source := core.Accounts(fiatTicker)[0]
		banks, err := core.LinkedBanks(ctx, source.Asset())
		if err != nil {
			return err
		}
		if len(banks) == 0 {
			return fmt.Errorf("no bank linked for %s", fiatTicker)
		}
		amount := domain.NewMoney(source.Asset(), decimal.NewFromFloat(c.Float64("amount")))
		return runPipeline(
			ctx, core, source, domain.AccountTarget{Account: banks[0]}, amount,
		)
	},
}

var sendCmd = cli.Command{
	Name:  "send",
	Usage: "send on-chain BTC to an external address",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "amount", Value: 0.01},
		&cli.StringFlag{
			Name:  "address",
			Value: "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",
		},
	},
	Action: func(c *cli.Context) error {
		core := newSim(c)
		defer core.Close()
		ctx := context.Background()

		source := onchainAccount(core, domain.BTC)
		target, err := application.ParseAddress(
			domain.BTC, c.String("address"), "external", "",
		)
		if err != nil {
			return err
		}
		amount := domain.NewMoney(domain.BTC, decimal.NewFromFloat(c.Float64("amount")))
		return runPipeline(ctx, core, source, target, amount)
	},
}

func tradingAccount(core *application.Coincore, asset domain.Asset) domain.Account {
	for _, account := range core.Accounts(asset.Ticker) {
		if account.Kind() == domain.KindCustodialTrading {
			return account
		}
	}
	log.Fatalf("no trading account for %s", asset.Ticker)
	return nil
}

func onchainAccount(core *application.Coincore, asset domain.Asset) domain.Account {
	for _, account := range core.Accounts(asset.Ticker) {
		if account.Kind() == domain.KindNonCustodial {
			return account
		}
	}
	log.Fatalf("no on-chain account for %s", asset.Ticker)
	return nil
}

// runPipeline walks one transaction through the full engine lifecycle,
// logging each snapshot transition.
func runPipeline(
	ctx context.Context, core *application.Coincore,
	source domain.Account, target domain.TransferTarget, amount domain.Money,
) error {
	engine, err := core.ResolveEngine(ctx, source, target)
	if err != nil {
		return err
	}
	log.WithField("engine", engine.Name()).Info("engine resolved")

	ptx, err := engine.InitialiseTx(ctx)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"available": ptx.AvailableBalance.String(),
		"fee":       ptx.FeeAmount.String(),
	}).Info("transaction initialised")

	if ptx, err = engine.UpdateAmount(ctx, amount, ptx); err != nil {
		return err
	}
	if ptx, err = engine.ValidateAmount(ctx, ptx); err != nil {
		return err
	}
	log.WithField("state", ptx.ValidationState).Info("amount validated")

	if ptx, err = engine.BuildConfirmations(ctx, ptx); err != nil {
		return err
	}
	for _, confirmation := range ptx.Confirmations {
		log.WithField("kind", confirmation.Kind()).Debug("confirmation line")
	}

	// Tick any agreements the engine demands before final validation.
	for _, confirmation := range ptx.Confirmations {
		if agreement, ok := confirmation.(domain.ConfirmAgreement); ok {
			agreement.Accepted = true
			if ptx, err = engine.UpdateConfirmation(ctx, ptx, agreement); err != nil {
				return err
			}
		}
	}

	if ptx, err = engine.ValidateAll(ctx, ptx); err != nil {
		return err
	}
	if !ptx.ValidationState.CanExecute() {
		log.WithField("state", ptx.ValidationState).Warn("transaction rejected")
		return nil
	}

	result, err := engine.Execute(ctx, ptx, "")
	if err != nil {
		return err
	}
	fields := log.Fields{"amount": result.ResultAmount().String()}
	if hashed, ok := result.(domain.HashedTxResult); ok {
		fields["txid"] = hashed.TxID
	}
	log.WithFields(fields).Info("transaction executed")
	return nil
}
