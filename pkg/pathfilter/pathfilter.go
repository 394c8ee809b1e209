// Package pathfilter decides which files are analysis candidates. It
// implements gitignore-style semantics: ordered patterns where the last
// match wins, `!` negation, `/` anchoring, and trailing-`/` directory-only
// patterns, plus per-directory ignore files discovered from the filesystem
// root down to each candidate's directory.
package pathfilter

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	errUtils "github.com/codewarden/warden/errors"
	log "github.com/codewarden/warden/pkg/logger"
)

// compiledPattern is one parsed ignore rule. base is the directory (relative
// to the filter root, slash separated, "" for static patterns) the rule was
// declared in; it only applies below that directory. prefix is set instead
// of base for rules declared above the filter root: it is the path from the
// declaring directory down to the root, prepended to candidates so the rule
// stays scoped relative to its own directory.
type compiledPattern struct {
	raw      string
	glob     string
	base     string
	prefix   string
	negated  bool
	dirOnly  bool
	anchored bool
}

// Filter evaluates paths against static patterns and discovered ignore
// files. The ignore-file cache is guarded so a Filter can be shared;
// everything else is immutable after construction.
type Filter struct {
	root           string
	ignoreFileName string
	patterns       []compiledPattern
	hasNegation    bool // static patterns only, fixed after construction

	mu          sync.Mutex
	ignoreCache map[string][]compiledPattern
}

// Option customizes filter construction.
type Option func(*Filter)

// WithIgnoreFileName enables per-directory ignore file discovery. An empty
// name disables it.
func WithIgnoreFileName(name string) Option {
	return func(f *Filter) {
		f.ignoreFileName = name
	}
}

// New builds a filter rooted at root from ordered static patterns. A
// malformed static pattern is a configuration error and fails construction.
func New(root string, patterns []string, opts ...Option) (*Filter, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errUtils.Build(errUtils.ErrInvalidFilterPattern).
			WithCause(err).
			WithContext("root", root).
			Err()
	}

	f := &Filter{
		root:        abs,
		ignoreCache: make(map[string][]compiledPattern),
	}
	for _, opt := range opts {
		opt(f)
	}

	for _, raw := range patterns {
		if err := f.AddPattern(raw); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// AddPattern appends one pattern after the static set, so command line
// exclusions take precedence over configuration.
func (f *Filter) AddPattern(raw string) error {
	p, err := parsePattern(raw, "")
	if err != nil {
		return errUtils.Build(errUtils.ErrInvalidFilterPattern).
			WithCause(err).
			WithContext("pattern", raw).
			WithHint("patterns use gitignore syntax with doublestar globs").
			Err()
	}
	f.patterns = append(f.patterns, p)
	if p.negated {
		f.hasNegation = true
	}
	return nil
}

// parsePattern normalizes one gitignore-style line into a compiled form and
// validates the glob eagerly so matching never fails later.
func parsePattern(raw, base string) (compiledPattern, error) {
	p := compiledPattern{raw: raw, base: base}

	pattern := raw
	if strings.HasPrefix(pattern, "!") {
		p.negated = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	// A slash anywhere else anchors the pattern to its base directory.
	if strings.Contains(pattern, "/") {
		p.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	}
	if pattern == "" {
		return p, errUtils.ErrInvalidFilterPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return p, errUtils.ErrInvalidFilterPattern
	}

	p.glob = pattern
	return p, nil
}

// matches reports whether the pattern applies to relPath. relPath is slash
// separated and relative to the filter root; isDir tells directory-only
// patterns apart.
func (p compiledPattern) matches(relPath string, isDir bool) bool {
	if p.prefix != "" {
		relPath = p.prefix + "/" + relPath
	}
	if p.base != "" {
		prefix := p.base + "/"
		if !strings.HasPrefix(relPath, prefix) {
			return false
		}
		relPath = strings.TrimPrefix(relPath, prefix)
	}

	if p.anchored {
		if p.matchTarget(relPath, isDir) {
			return true
		}
		// Anchored directory patterns ignore everything underneath.
		if p.dirOnly {
			for _, ancestor := range ancestors(relPath) {
				if ok, _ := doublestar.Match(p.glob, ancestor); ok {
					return true
				}
			}
		}
		return false
	}

	// Bare patterns match basenames at any depth. A directory component
	// match ignores the whole subtree.
	segments := strings.Split(relPath, "/")
	for i, segment := range segments {
		segmentIsDir := i < len(segments)-1 || isDir
		if p.dirOnly && !segmentIsDir {
			continue
		}
		if ok, _ := doublestar.Match(p.glob, segment); ok {
			return true
		}
	}
	return false
}

func (p compiledPattern) matchTarget(relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	ok, _ := doublestar.Match(p.glob, relPath)
	return ok
}

func ancestors(relPath string) []string {
	var out []string
	for dir := filepath.ToSlash(filepath.Dir(relPath)); dir != "." && dir != "/"; dir = filepath.ToSlash(filepath.Dir(dir)) {
		out = append(out, dir)
	}
	return out
}

// ShouldAnalyze reports whether a path survives the filter. The decision is
// a fold over the static patterns followed by discovered ignore files from
// the outermost directory downward, so deeper ignore files override
// shallower ones and the last matching rule always wins.
func (f *Filter) ShouldAnalyze(path string) bool {
	rel, ok := f.relative(path)
	if !ok {
		return false
	}
	return !f.ignored(rel, false)
}

func (f *Filter) relative(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(f.root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (f *Filter) ignored(relPath string, isDir bool) bool {
	ignored := false
	for _, p := range f.chain(relPath) {
		if p.matches(relPath, isDir) {
			ignored = !p.negated
		}
	}
	return ignored
}

// chain assembles the pattern sequence applying to relPath: static patterns
// first, then ignore files from the outermost directory to the innermost.
// Discovery starts above the filter root, so ignore files in ancestor
// directories apply to the whole tree and deeper files override them.
func (f *Filter) chain(relPath string) []compiledPattern {
	if f.ignoreFileName == "" {
		return f.patterns
	}

	chain := f.patterns
	for _, dir := range ancestorDirs(f.root) {
		prefix, err := filepath.Rel(dir, f.root)
		if err != nil {
			continue
		}
		chain = append(chain, f.ignorePatterns(dir, dir, "", filepath.ToSlash(prefix))...)
	}
	dirs := []string{""}
	parts := strings.Split(relPath, "/")
	for i := 0; i < len(parts)-1; i++ {
		dirs = append(dirs, strings.Join(parts[:i+1], "/"))
	}
	for _, dir := range dirs {
		abs := filepath.Join(f.root, filepath.FromSlash(dir))
		chain = append(chain, f.ignorePatterns(dir, abs, dir, "")...)
	}
	return chain
}

// ancestorDirs lists the directories above root, outermost first.
func ancestorDirs(root string) []string {
	var dirs []string
	for dir := filepath.Dir(root); dir != root; root, dir = dir, filepath.Dir(dir) {
		dirs = append(dirs, dir)
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}

// ignorePatterns loads and caches the ignore file in the absolute directory
// dir under the given cache key. base scopes rules declared below the filter
// root; prefix scopes rules declared above it. A malformed line is skipped
// with a warning; the rest of the file still applies.
func (f *Filter) ignorePatterns(key, dir, base, prefix string) []compiledPattern {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cached, ok := f.ignoreCache[key]; ok {
		return cached
	}

	path := filepath.Join(dir, f.ignoreFileName)
	contents, err := os.ReadFile(path)
	if err != nil {
		f.ignoreCache[key] = nil
		return nil
	}

	var patterns []compiledPattern
	for i, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parsePattern(line, base)
		if err != nil {
			log.Warn("skipping malformed ignore pattern",
				"file", path,
				"line", i+1,
				"pattern", line)
			continue
		}
		p.prefix = prefix
		patterns = append(patterns, p)
	}
	f.ignoreCache[key] = patterns
	return patterns
}

// FindFiles walks each root directory and returns the paths that survive
// the filter, in walk order. Symlinks are not followed. Ignored directories
// are pruned early only when no negation can re-include files underneath:
// static negations are known up front, and any discoverable ignore file may
// carry one, so pruning is off whenever ignore-file discovery is enabled.
func (f *Filter) FindFiles(roots ...string) ([]string, error) {
	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			rel, ok := f.relative(path)
			if !ok {
				return nil
			}
			if d.IsDir() {
				if f.ignoreFileName == "" && !f.hasNegation && f.ignored(rel, true) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if f.ignored(rel, false) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, errUtils.Build(errUtils.ErrAnalysis).
				WithCause(err).
				WithContext("root", root).
				Err()
		}
	}
	return files, nil
}
