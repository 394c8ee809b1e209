package engine

import "github.com/codewarden/warden/pkg/schema"

// Match is one raw finding produced by a matcher. Matches are immutable and
// owned by the caller until converted into violations.
type Match struct {
	RuleID   string
	File     string
	Line     int // 1-indexed, 0 when unknown
	Column   int // 1-indexed, 0 when unknown
	Text     string
	Message  string
	Severity schema.Severity
	Context  string
}
