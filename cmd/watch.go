package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codewarden/warden/pkg/analyzer"
	log "github.com/codewarden/warden/pkg/logger"
	"github.com/codewarden/warden/pkg/report"
	"github.com/codewarden/warden/pkg/watch"
)

var watchFlags struct {
	format   string
	debounce time.Duration
	exclude  []string
}

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-run analysis whenever source files change",
	Long: `Watch performs an initial analysis and then re-runs it after each
debounced batch of file changes. The session ends on interrupt; findings
never stop it.`,
	Example: `  warden watch
  warden watch ./pkg --format agent`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(watchFlags.format)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}
		root, err := os.Getwd()
		if err != nil {
			return err
		}

		a, err := analyzer.New(cfg, root, analyzer.Options{
			ExcludePatterns: watchFlags.exclude,
		})
		if err != nil {
			return err
		}

		run := func(ctx context.Context) error {
			rep, runErr := a.Analyze(ctx, paths...)
			if runErr != nil {
				return runErr
			}
			return report.Write(os.Stdout, format, rep, report.Options{
				Color: !noColor && format == report.FormatHuman,
			})
		}

		if err := run(cmd.Context()); err != nil {
			log.Error("initial analysis failed", "error", err)
		}

		log.Info("watching for changes", "paths", paths)
		return watch.Run(cmd.Context(), paths, watch.Options{
			Debounce:    watchFlags.debounce,
			ShouldReact: a.ShouldAnalyze,
		}, run)
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchFlags.format, "format", "f", "human", "Output format for each run")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", watch.DefaultDebounce, "Quiet period after the last change before re-running")
	watchCmd.Flags().StringSliceVar(&watchFlags.exclude, "exclude", nil, "Extra exclusion patterns")

	RootCmd.AddCommand(watchCmd)
}
