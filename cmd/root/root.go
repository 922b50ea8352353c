// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fjacquet/pnl-forecast/internal/config"
	"fjacquet/pnl-forecast/internal/container"
)

// CommonFlags represents the flags that are common to all commands
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
	PlanFile   string
	Driver     string
	Delimiter  string
	Strict     bool
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "pnl-forecast",
		Short: "A CLI tool to build and forecast profit and loss statements.",
		Long: `pnl-forecast maintains a monthly P&L plan: line items roll up into
categories, calculated lines derive from formulas, and forecast records and
scenarios project values into future months.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if appContainer != nil {
				return nil
			}
			c, err := Build(cmd)
			if err != nil {
				return err
			}
			appContainer = c
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appContainer == nil {
				return nil
			}
			err := appContainer.Close()
			appContainer = nil
			return err
		},
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}

	appContainer *container.Container
)

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"plan":       "plan.file",
	"driver":     "storage.driver",
	"delimiter":  "export.delimiter",
	"strict":     "engine.strict_formulas",
}

// Init initializes the root command and all flags
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default: config.yaml in $HOME/.pnl-forecast, .pnl-forecast or .)")
	flags.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
	flags.StringVarP(&SharedFlags.PlanFile, "plan", "p", "", "Plan file for the yaml driver")
	flags.StringVar(&SharedFlags.Driver, "driver", "", "Storage driver (yaml, sqlite, postgres)")
	flags.StringVar(&SharedFlags.Delimiter, "delimiter", "", "CSV delimiter")
	flags.BoolVar(&SharedFlags.Strict, "strict", false, "Treat unknown formula tokens as errors")
}

// Build loads the environment and configuration, applies flag overrides and
// wires a container.
func Build(cmd *cobra.Command) (*container.Container, error) {
	config.LoadEnv()

	v := config.NewViper()
	if SharedFlags.ConfigFile != "" {
		v.SetConfigFile(SharedFlags.ConfigFile)
	}
	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	return container.NewContainer(cmd.Context(), cfg)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Merges persistent flags of cmd and its parents into cmd.Flags().
	_ = cmd.InheritedFlags()
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// GetContainer returns the container built for the running command.
func GetContainer() (*container.Container, error) {
	if appContainer == nil {
		return nil, fmt.Errorf("application container not initialized")
	}
	return appContainer, nil
}

// SetContainer installs c as the application container. Commands then skip
// building their own; tests use it to inject repositories.
func SetContainer(c *container.Container) {
	appContainer = c
}
