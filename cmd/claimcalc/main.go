package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/segyhp/claim-calculator/internal/config"
	"github.com/segyhp/claim-calculator/internal/keyrate"
	"github.com/segyhp/claim-calculator/internal/service"
	"github.com/segyhp/claim-calculator/pkg/logger"
)

// app carries what every subcommand needs once the root has initialized it
type app struct {
	verbose bool

	cfg     *config.Config
	logger  *zap.Logger
	service *service.CalculatorService
	// keyRate overrides the central bank lookup when set
	keyRate string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "claimcalc",
		Short: "Labor dispute claim calculator",
		Long: `claimcalc computes the amounts claimed in labor disputes.

Available subcommands:
  oof     - lost wages for a forced absence period
  payoff  - overdue salary and key rate compensation
  keyrate - current central bank key rate

Dates are accepted as YYYY-MM-DD or DD.MM.YYYY.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.keyRate, "key-rate", "", "Use this key rate (percent) instead of asking the central bank")

	rootCmd.AddCommand(
		newForcedAbsenceCmd(a),
		newPayoffCmd(a),
		newKeyRateCmd(a),
	)

	return rootCmd
}

func (a *app) init() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	a.cfg = cfg

	logCfg := config.LoggingConfig{Level: "warn", Format: "console"}
	if a.verbose {
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	a.logger = log

	rates, err := a.keyRates()
	if err != nil {
		return err
	}
	a.service = service.NewCalculatorService(nil, rates, cfg, log)
	return nil
}

func (a *app) keyRates() (keyrate.Provider, error) {
	if a.keyRate != "" {
		rate, err := parseDecimal("key-rate", a.keyRate)
		if err != nil {
			return nil, err
		}
		return keyrate.Static{Rate: rate}, nil
	}

	var rates keyrate.Provider = keyrate.NewCBRClient(a.cfg.KeyRate.URL, a.cfg.GetKeyRateTimeout(), a.logger)
	if rate, ok := a.cfg.GetKeyRateFallback(); ok {
		rates = keyrate.WithFallback(rates, keyrate.Static{Rate: rate})
	}
	return rates, nil
}
