// Package cli wires the dashprefs commands.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dashprefs/config"
	"dashprefs/logging"
)

type App struct {
	ConfigPath string
	LogLevel   string

	Config *config.Config
	Log    *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "dashprefs",
		Short:        "Dashboard personalization service and client",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", config.DefaultPath(), "path to YAML config")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "override logging.level")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return err
		}
		if app.LogLevel != "" {
			cfg.Logging.Level = app.LogLevel
		}
		logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		app.Config = cfg
		app.Log = logger
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.Log != nil {
			_ = app.Log.Sync()
		}
	}

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	return cmd
}
