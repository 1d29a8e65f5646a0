package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/raysh454/ziva/internal/app"
)

var (
	configPath string
	logLevel   string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "ziva",
	Short: "Ziva - fake price detector for shopping links",
	Long: `Ziva compares a listing's price with its price history and with other
stores, and tells you whether the deal looks safe, suspicious or fake.

Run "ziva serve" for the HTTP engine or "ziva scan <link>" for a one-off check.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(scansCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadApplication builds the application from --config, the environment and
// the persistent flags. Logs go to the command's stderr.
func loadApplication(cmd *cobra.Command) (*app.Application, error) {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return app.NewApplication(cfg, app.NewLogger(cfg, cmd.ErrOrStderr()))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
