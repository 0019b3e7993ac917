package main

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/carson-networks/atm-ledger/internal/config"
	"github.com/carson-networks/atm-ledger/internal/console"
	"github.com/carson-networks/atm-ledger/internal/credential"
	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/logging"
	"github.com/carson-networks/atm-ledger/internal/operator"
	"github.com/carson-networks/atm-ledger/internal/service"
)

func main() {
	app := &cli.App{
		Name:  "atm-ledger",
		Usage: "in-memory ATM session over a single bank",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bank-name", Usage: "overrides BANK_NAME"},
			&cli.StringFlag{Name: "log-level", Usage: "overrides LOG_LEVEL"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("app.Run")
	}
}

func run(c *cli.Context) error {
	logger := logging.SetupLogging()

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logger.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return err
	}
	if c.IsSet("bank-name") {
		envConfig.BankName = c.String("bank-name")
	}
	if c.IsSet("log-level") {
		envConfig.LogLevel = c.String("log-level")
	}

	level, err := logrus.ParseLevel(envConfig.LogLevel)
	if err != nil {
		logger.WithError(err).Fatal("logrus.ParseLevel")
		return err
	}
	logger.SetLevel(level)
	logger.WithField("bank", envConfig.BankName).Info("atm-ledger starting")

	// A PIN that cannot be hashed must never be stored, so a bad hasher
	// stops the process here.
	hasher, err := credential.NewHasher(credential.Params{
		Time:      envConfig.PinHashTime,
		MemoryKiB: envConfig.PinHashMemoryKiB,
		Threads:   envConfig.PinHashThreads,
	})
	if err != nil {
		logger.WithError(err).Fatal("credential.NewHasher")
		return err
	}

	bank := ledger.NewBank(envConfig.BankName,
		ledger.WithLogger(logger),
		ledger.WithHasher(hasher),
		ledger.WithMaxIdentifierAttempts(envConfig.MaxIdentifierAttempts),
	)

	delegator := operator.NewOperatorDelegator(bank, logger, envConfig.OperatorWorkers)
	delegator.Start()
	defer delegator.Stop()

	svc := service.NewService(bank, delegator)

	ctx := c.Context

	if envConfig.SeedPin != "" {
		if err := seed(ctx, svc, envConfig, logger, os.Stdout); err != nil {
			logger.WithError(err).Fatal("seed")
			return err
		}
	}

	ui := console.NewUI(bank.Name(), svc, os.Stdin, os.Stdout, logger)
	if err := ui.Run(ctx); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("console.Run")
		return err
	}

	logger.Info("atm-ledger shutting down")
	return nil
}

// seed registers the configured demo user with an extra checking account
// and prints its ID to out.
func seed(ctx context.Context, svc *service.Service, env *config.Config, logger *logrus.Logger, out io.Writer) error {
	user, err := svc.Register(ctx, env.SeedFirstName, env.SeedLastName, env.SeedPin)
	if err != nil {
		return err
	}
	if _, err := svc.OpenAccount(ctx, user, ledger.AccountNameChecking); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"userID":    user.ID(),
		"firstName": user.FirstName(),
		"accounts":  user.NumAccounts(),
	}).Info("seed user created")
	console.AnnounceUser(out, user)
	return nil
}
