// Package cmd wires the warden CLI. Each command lives in its own file and
// registers itself with the root command from an init function.
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	errUtils "github.com/codewarden/warden/errors"
	"github.com/codewarden/warden/pkg/config"
	log "github.com/codewarden/warden/pkg/logger"
	"github.com/codewarden/warden/pkg/schema"
)

var (
	cfgFile   string
	logsLevel string
	noColor   bool
)

// RootCmd is the top-level warden command.
var RootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Code quality gate for Go projects",
	Long: `Warden scans Go sources against a declarative rule set and fails the
build when blocking violations are found. Rules are plain text regular
expressions or structural checks over the syntax tree, configured in
warden.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := viper.GetString("logs_level")
		if level == "" {
			level = logsLevel
		}
		if err := log.SetLevel(level); err != nil {
			return errUtils.Build(errUtils.ErrInvalidConfig).
				WithCause(err).
				WithContext("logs-level", level).
				WithHint("valid levels: debug, info, warn, error").
				Err()
		}
		return nil
	},
}

// Execute runs the CLI and normalizes exit codes: configuration and usage
// problems exit with 2, everything else keeps its attached code.
func Execute(ctx context.Context) error {
	err := RootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	if isUsageError(err) {
		return errUtils.WithExitCode(err, errUtils.ExitUsage)
	}
	return err
}

func isUsageError(err error) bool {
	for _, sentinel := range []error{
		errUtils.ErrInvalidConfig,
		errUtils.ErrPatternCompile,
		errUtils.ErrInvalidFilterPattern,
		errUtils.ErrUnknownFormat,
		errUtils.ErrUnknownRule,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// loadConfig resolves the effective configuration: the --config flag, then
// warden.yaml in the working directory, then built-in defaults.
func loadConfig() (*schema.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	if envFile := viper.GetString("config"); envFile != "" {
		return config.Load(envFile)
	}
	wd, err := os.Getwd()
	if err == nil {
		local := filepath.Join(wd, config.DefaultFileName)
		if _, statErr := os.Stat(local); statErr == nil {
			return config.Load(local)
		}
	}
	log.Debug("no configuration file found, using built-in defaults")
	return config.Default(), nil
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the rule configuration file (default: ./"+config.DefaultFileName+")")
	RootCmd.PersistentFlags().StringVar(&logsLevel, "logs-level", "warn", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	viper.SetEnvPrefix("WARDEN")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("config", RootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logs_level", RootCmd.PersistentFlags().Lookup("logs-level"))
	_ = viper.BindPFlag("no_color", RootCmd.PersistentFlags().Lookup("no-color"))
}
