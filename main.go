package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"fjacquet/pnl-forecast/cmd/forecast"
	"fjacquet/pnl-forecast/cmd/initplan"
	"fjacquet/pnl-forecast/cmd/monthly"
	"fjacquet/pnl-forecast/cmd/ratios"
	"fjacquet/pnl-forecast/cmd/root"
	"fjacquet/pnl-forecast/cmd/scenario"
	"fjacquet/pnl-forecast/cmd/settings"
	"fjacquet/pnl-forecast/cmd/totals"
	"fjacquet/pnl-forecast/cmd/validate"
	"fjacquet/pnl-forecast/cmd/values"
	"fjacquet/pnl-forecast/internal/config"
	"fjacquet/pnl-forecast/internal/logging"
)

func init() {
	// Environment first, so PNL_LOG_LEVEL from .env applies before any logger
	// is created.
	config.LoadEnv()
	logging.SetAllLogLevels(logLevelFromEnv())

	root.Init()
	root.Cmd.AddCommand(
		initplan.Cmd,
		totals.Cmd,
		monthly.Cmd,
		ratios.Cmd,
		validate.Cmd,
		values.SetCmd,
		values.ImportCmd,
		settings.TaxRateCmd,
		settings.TargetIncomeCmd,
		forecast.Cmd,
		scenario.Cmd,
	)
}

// logLevelFromEnv reads PNL_LOG_LEVEL, falling back to info.
func logLevelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(os.Getenv(config.EnvPrefix + "_LOG_LEVEL")))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
