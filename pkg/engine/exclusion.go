package engine

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/codewarden/warden/pkg/schema"
)

// compiledExclusion is the executable form of schema.ExclusionPolicy. File
// globs are compiled once so the per-match check is allocation free.
type compiledExclusion struct {
	attribute string
	inTests   bool
	globs     []glob.Glob
}

func compileExclusion(policy *schema.ExclusionPolicy) (*compiledExclusion, error) {
	if policy == nil {
		return nil, nil
	}
	compiled := &compiledExclusion{
		attribute: policy.Attribute,
		inTests:   policy.InTests,
	}
	for _, pattern := range policy.FilePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		compiled.globs = append(compiled.globs, g)
	}
	return compiled, nil
}

// excluded reports whether a candidate match at the given location should be
// suppressed. The doc argument carries the enclosing declaration's comment
// text for structural matches and is empty for text matches.
func (e *compiledExclusion) excluded(path, contextLine, doc string) bool {
	if e == nil {
		return false
	}
	if e.inTests && isTestPath(path) {
		return true
	}
	normalized := filepath.ToSlash(path)
	for _, g := range e.globs {
		if g.Match(normalized) {
			return true
		}
	}
	if e.attribute != "" {
		if strings.Contains(contextLine, e.attribute) || strings.Contains(doc, e.attribute) {
			return true
		}
	}
	return false
}

// isTestPath treats anything under a test directory, or any file whose name
// contains "test", as test code.
func isTestPath(path string) bool {
	normalized := filepath.ToSlash(path)
	for _, segment := range strings.Split(normalized, "/") {
		if segment == "test" || segment == "tests" {
			return true
		}
	}
	base := strings.ToLower(filepath.Base(normalized))
	return strings.Contains(base, "test")
}
