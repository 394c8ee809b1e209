package errors

import "github.com/cockroachdb/errors"

// Sentinel errors for the warden subsystems. Wrap these with Build so
// callers can classify failures with errors.Is.
var (
	// ErrInvalidConfig indicates the rule configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPatternCompile indicates a rule could not be compiled into a matcher.
	ErrPatternCompile = errors.New("pattern compilation failed")

	// ErrInvalidFilterPattern indicates a static path filter glob is malformed.
	ErrInvalidFilterPattern = errors.New("invalid path filter pattern")

	// ErrCache indicates a cache load, save, or digest operation failed.
	ErrCache = errors.New("cache operation failed")

	// ErrCacheVersion indicates the cache snapshot version has no migration path.
	ErrCacheVersion = errors.New("unsupported cache version")

	// ErrAnalysis indicates a per-file analysis fault.
	ErrAnalysis = errors.New("analysis failed")

	// ErrUnknownFormat indicates an unrecognized report output format.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrUnknownRule indicates a rule id that is not present in the configuration.
	ErrUnknownRule = errors.New("unknown rule")
)
