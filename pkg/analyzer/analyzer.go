// Package analyzer orchestrates one analysis run: file discovery through
// the path filter, cache consultation, parallel evaluation, and report
// assembly. Workers only parse and evaluate; the cache stays on the
// coordinating goroutine.
package analyzer

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	errUtils "github.com/codewarden/warden/errors"
	"github.com/codewarden/warden/pkg/cache"
	"github.com/codewarden/warden/pkg/config"
	"github.com/codewarden/warden/pkg/engine"
	log "github.com/codewarden/warden/pkg/logger"
	"github.com/codewarden/warden/pkg/pathfilter"
	"github.com/codewarden/warden/pkg/schema"
	"github.com/codewarden/warden/pkg/violation"
)

// Options tune one analyzer instance.
type Options struct {
	// Parallel caps the worker pool. Zero means no limit.
	Parallel int
	// MaxFiles truncates discovery after this many files. Zero is unlimited.
	MaxFiles int
	// FailFast cancels outstanding work once a blocking violation is found.
	FailFast bool
	// ExcludePatterns are appended after the configured path patterns.
	ExcludePatterns []string
	// NoIgnoreFiles disables per-directory ignore file discovery.
	NoIgnoreFiles bool
	// Cache, when set, skips files that are unchanged since their last
	// clean analysis. The analyzer never persists it; callers own Save.
	Cache *cache.FileCache
}

// Analyzer binds a compiled engine, a path filter, and options for
// repeated runs over the same configuration.
type Analyzer struct {
	cfg         *schema.Config
	engine      *engine.Engine
	filter      *pathfilter.Filter
	opts        Options
	fingerprint string
}

// New compiles the configuration and builds the path filter. The returned
// analyzer is reusable across runs; watch mode calls Analyze repeatedly.
func New(cfg *schema.Config, root string, opts Options) (*Analyzer, error) {
	eng, err := engine.Compile(cfg)
	if err != nil {
		return nil, err
	}

	var filterOpts []pathfilter.Option
	if !opts.NoIgnoreFiles && cfg.Paths.IgnoreFile != "" {
		filterOpts = append(filterOpts, pathfilter.WithIgnoreFileName(cfg.Paths.IgnoreFile))
	}
	filter, err := pathfilter.New(root, cfg.Paths.Patterns, filterOpts...)
	if err != nil {
		return nil, err
	}
	for _, pattern := range opts.ExcludePatterns {
		if err := filter.AddPattern(pattern); err != nil {
			return nil, err
		}
	}

	return &Analyzer{
		cfg:         cfg,
		engine:      eng,
		filter:      filter,
		opts:        opts,
		fingerprint: config.Fingerprint(cfg),
	}, nil
}

// Engine exposes the compiled engine for rule listing commands.
func (a *Analyzer) Engine() *engine.Engine {
	return a.engine
}

// Fingerprint returns the configuration fingerprint stamped on reports.
func (a *Analyzer) Fingerprint() string {
	return a.fingerprint
}

// ShouldAnalyze reports whether a single path passes the filter and looks
// like a Go source file.
func (a *Analyzer) ShouldAnalyze(path string) bool {
	return isGoSource(path) && a.filter.ShouldAnalyze(path)
}

// Analyze runs the engine over every surviving file under the given paths
// and returns the aggregated report. Directories are walked; explicit file
// arguments still go through the filter.
func (a *Analyzer) Analyze(ctx context.Context, paths ...string) (*violation.Report, error) {
	started := time.Now()

	files, err := a.discover(paths)
	if err != nil {
		return nil, err
	}

	report := violation.NewReport()
	report.Fingerprint = a.fingerprint

	pending := a.consultCache(files, report)
	report.Summary.TotalFiles = len(files)

	analyzed, err := a.evaluate(ctx, pending, report)
	if err != nil {
		return nil, err
	}

	a.recordResults(analyzed, report)

	report.Sort()
	report.Summary.ExecutionTimeMs = time.Since(started).Milliseconds()
	log.Debug("analysis complete",
		"files", len(files),
		"analyzed", len(analyzed),
		"violations", len(report.Violations),
		"elapsed", time.Since(started))
	return report, nil
}

// discover expands the argument list into concrete Go files that pass the
// filter, preserving walk order and honoring the file cap.
func (a *Analyzer) discover(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errUtils.Build(errUtils.ErrAnalysis).
				WithCause(err).
				WithContext("path", path).
				Err()
		}
		if !info.IsDir() {
			if a.ShouldAnalyze(path) {
				files = append(files, path)
			}
			continue
		}
		found, err := a.filter.FindFiles(path)
		if err != nil {
			return nil, err
		}
		for _, file := range found {
			if isGoSource(file) {
				files = append(files, file)
			}
		}
	}

	if a.opts.MaxFiles > 0 && len(files) > a.opts.MaxFiles {
		log.Warn("file limit reached, truncating analysis",
			"limit", a.opts.MaxFiles,
			"discovered", len(files))
		files = files[:a.opts.MaxFiles]
	}
	return files, nil
}

// consultCache filters out files that are unchanged since their last clean
// analysis. Files whose cached run had violations are re-analyzed so hits
// never hide findings from the report.
func (a *Analyzer) consultCache(files []string, report *violation.Report) []string {
	if a.opts.Cache == nil {
		return files
	}

	pending := files[:0:0]
	for _, file := range files {
		needs, err := a.opts.Cache.NeedsAnalysis(file, a.fingerprint)
		if err != nil {
			log.Warn("cache check failed, re-analyzing", "file", file, "error", err)
			needs = true
		}
		if !needs {
			if entry, ok := a.opts.Cache.Entry(file); ok && entry.ViolationCount == 0 {
				continue
			}
		}
		pending = append(pending, file)
	}
	return pending
}

// errStopEarly cancels the worker group once fail-fast mode finds its
// first blocking violation. It never escapes evaluate.
var errStopEarly = errors.New("blocking violation found")

// fileResult carries one worker's findings back to the coordinator.
type fileResult struct {
	file    string
	matches []engine.Match
}

// evaluate fans the pending files out over a bounded worker pool and folds
// results into the report under a single lock. It returns the files whose
// evaluation actually completed; under fail-fast, cancelled workers never
// land a result, so their files must not be written back to the cache.
func (a *Analyzer) evaluate(ctx context.Context, pending []string, report *violation.Report) ([]string, error) {
	if len(pending) == 0 {
		return nil, nil
	}

	group, ctx := errgroup.WithContext(ctx)
	if a.opts.Parallel > 0 {
		group.SetLimit(a.opts.Parallel)
	}

	var mu sync.Mutex
	results := make(map[string][]engine.Match, len(pending))

	for _, file := range pending {
		file := file
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := a.analyzeFile(file)
			if err != nil {
				// A single unreadable file must not abort the run
				// unless fail-fast was requested.
				if a.opts.FailFast {
					return err
				}
				log.Warn("skipping file, analysis failed", "file", file, "error", err)
				return nil
			}

			mu.Lock()
			results[result.file] = result.matches
			mu.Unlock()

			if a.opts.FailFast {
				for _, m := range result.matches {
					if m.Severity.IsBlocking() {
						return errStopEarly
					}
				}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, errStopEarly) {
		return nil, err
	}

	analyzed := make([]string, 0, len(results))
	for file, matches := range results {
		analyzed = append(analyzed, file)
		for _, m := range matches {
			report.Add(toViolation(file, m))
		}
	}
	return analyzed, nil
}

func (a *Analyzer) analyzeFile(path string) (fileResult, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fileResult{}, errUtils.Build(errUtils.ErrAnalysis).
			WithCause(err).
			WithContext("file", path).
			Err()
	}

	// A file that does not parse still gets text-level analysis.
	var tree *engine.SourceTree
	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, path, contents, parser.ParseComments)
	if err != nil {
		log.Debug("parse failed, using text rules only", "file", path, "error", err)
	} else {
		tree = &engine.SourceTree{Fset: fset, File: parsed}
	}

	matches := a.engine.Evaluate(path, string(contents), tree)
	return fileResult{file: path, matches: matches}, nil
}

// recordResults writes fresh outcomes back to the cache, including clean
// files so the next run can skip them. Only files whose evaluation completed
// may appear here; certifying a never-analyzed file as clean would hide its
// violations from every later run.
func (a *Analyzer) recordResults(analyzed []string, report *violation.Report) {
	if a.opts.Cache == nil {
		return
	}

	counts := make(map[string]int, len(analyzed))
	for _, file := range analyzed {
		counts[file] = 0
	}
	for _, v := range report.Violations {
		if _, ok := counts[v.File]; ok {
			counts[v.File]++
		}
	}
	for _, file := range analyzed {
		if err := a.opts.Cache.UpdateEntry(file, counts[file], a.fingerprint); err != nil {
			log.Warn("cache update failed", "file", file, "error", err)
		}
	}
}

func toViolation(file string, m engine.Match) violation.Violation {
	v := violation.New(m.RuleID, m.Severity, file, m.Message)
	v.Line = m.Line
	v.Column = m.Column
	v.Context = m.Context
	return v
}

func isGoSource(path string) bool {
	return strings.HasSuffix(filepath.Base(path), ".go")
}
