package cmd

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	errUtils "github.com/codewarden/warden/errors"
	"github.com/codewarden/warden/pkg/analyzer"
	"github.com/codewarden/warden/pkg/cache"
	log "github.com/codewarden/warden/pkg/logger"
	"github.com/codewarden/warden/pkg/report"
	"github.com/codewarden/warden/pkg/schema"
)

var checkFlags struct {
	format          string
	severity        string
	maxViolations   int
	showContext     bool
	showSuggestions bool
	parallel        int
	maxFiles        int
	failFast        bool
	exclude         []string
	noIgnoreFiles   bool
	noCache         bool
	cachePath       string
}

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Analyze Go sources and fail on blocking violations",
	Long: `Check runs every enabled rule against the given paths (the working
directory by default) and prints a report. The exit code is 0 when the tree
is clean, 1 when blocking violations were found, and 2 on configuration or
usage errors.`,
	Example: `  warden check
  warden check ./pkg ./cmd --format json
  warden check --severity warning --fail-fast`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(checkFlags.format)
		if err != nil {
			return err
		}
		minSeverity, err := schema.ParseSeverity(checkFlags.severity)
		if err != nil {
			return errUtils.Build(errUtils.ErrInvalidConfig).WithCause(err).Err()
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

		opts := analyzer.Options{
			Parallel:        checkFlags.parallel,
			MaxFiles:        checkFlags.maxFiles,
			FailFast:        checkFlags.failFast,
			ExcludePatterns: checkFlags.exclude,
			NoIgnoreFiles:   checkFlags.noIgnoreFiles,
		}

		var fileCache *cache.FileCache
		cachePath := checkFlags.cachePath
		if !checkFlags.noCache {
			if cachePath == "" {
				cachePath, err = cache.DefaultPath()
				if err != nil {
					return err
				}
			}
			fileCache, err = cache.Load(cachePath)
			if err != nil {
				// An outdated format needs an explicit reset; anything
				// else degrades to a full run.
				if errors.Is(err, errUtils.ErrCacheVersion) {
					return err
				}
				log.Warn("ignoring unusable cache, analyzing everything", "path", cachePath, "error", err)
				fileCache = cache.New()
			}
			opts.Cache = fileCache
		}

		a, err := analyzer.New(cfg, root, opts)
		if err != nil {
			return err
		}

		rep, err := a.Analyze(cmd.Context(), paths...)
		if err != nil {
			return err
		}

		if fileCache != nil {
			fileCache.SetFingerprint(a.Fingerprint())
			if err := fileCache.Save(cachePath); err != nil {
				log.Warn("could not persist cache", "path", cachePath, "error", err)
			}
		}

		if err := report.Write(os.Stdout, format, rep, report.Options{
			MinSeverity:     minSeverity,
			MaxViolations:   checkFlags.maxViolations,
			ShowContext:     checkFlags.showContext,
			ShowSuggestions: checkFlags.showSuggestions,
			Color:           !noColor && format == report.FormatHuman,
		}); err != nil {
			return err
		}

		if rep.HasErrors() {
			errUtils.Exit(errUtils.ExitViolations)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkFlags.format, "format", "f", "human", "Output format: human, json, junit, sarif, github, agent")
	checkCmd.Flags().StringVar(&checkFlags.severity, "severity", "info", "Minimum severity to report: info, warning, error")
	checkCmd.Flags().IntVar(&checkFlags.maxViolations, "max-violations", 0, "Truncate output after this many violations (0 = unlimited)")
	checkCmd.Flags().BoolVar(&checkFlags.showContext, "show-context", false, "Include the offending source line")
	checkCmd.Flags().BoolVar(&checkFlags.showSuggestions, "show-suggestions", false, "Include suggested fixes when available")
	checkCmd.Flags().IntVarP(&checkFlags.parallel, "parallel", "p", 0, "Number of parallel workers (0 = unlimited)")
	checkCmd.Flags().IntVar(&checkFlags.maxFiles, "max-files", 0, "Stop discovery after this many files (0 = unlimited)")
	checkCmd.Flags().BoolVar(&checkFlags.failFast, "fail-fast", false, "Stop at the first blocking violation")
	checkCmd.Flags().StringSliceVar(&checkFlags.exclude, "exclude", nil, "Extra exclusion patterns, evaluated after configured ones")
	checkCmd.Flags().BoolVar(&checkFlags.noIgnoreFiles, "no-ignore-files", false, "Do not read per-directory ignore files")
	checkCmd.Flags().BoolVar(&checkFlags.noCache, "no-cache", false, "Analyze every file, bypassing the result cache")
	checkCmd.Flags().StringVar(&checkFlags.cachePath, "cache-path", "", "Override the cache file location")

	RootCmd.AddCommand(checkCmd)
}
