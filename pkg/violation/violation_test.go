package violation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewarden/warden/pkg/schema"
)

func TestReportCounts(t *testing.T) {
	rep := NewReport()
	rep.Add(New("a", schema.SeverityError, "f.go", "m"))
	rep.Add(New("b", schema.SeverityWarning, "f.go", "m"))
	rep.Add(New("c", schema.SeverityInfo, "g.go", "m"))

	counts := rep.Summary.BySeverity
	assert.Equal(t, 1, counts.Error)
	assert.Equal(t, 1, counts.Warning)
	assert.Equal(t, 1, counts.Info)
	assert.Equal(t, 3, counts.Total())
	assert.True(t, rep.HasViolations())
	assert.True(t, rep.HasErrors())
}

func TestReportWithoutBlocking(t *testing.T) {
	rep := NewReport()
	rep.Add(New("a", schema.SeverityWarning, "f.go", "m"))
	assert.True(t, rep.HasViolations())
	assert.False(t, rep.HasErrors())
}

func TestMerge(t *testing.T) {
	a := NewReport()
	a.Summary.TotalFiles = 2
	a.Add(New("a", schema.SeverityError, "f.go", "m"))

	b := NewReport()
	b.Summary.TotalFiles = 3
	b.Add(New("b", schema.SeverityInfo, "g.go", "m"))

	a.Merge(b)
	assert.Len(t, a.Violations, 2)
	assert.Equal(t, 5, a.Summary.TotalFiles)
	assert.Equal(t, 1, a.Summary.BySeverity.Error)
	assert.Equal(t, 1, a.Summary.BySeverity.Info)
}

func TestSortOrder(t *testing.T) {
	rep := NewReport()

	v1 := New("r", schema.SeverityInfo, "b.go", "m")
	v1.Line = 5
	v2 := New("r", schema.SeverityError, "a.go", "m")
	v2.Line = 9
	v3 := New("r", schema.SeverityWarning, "a.go", "m")
	v3.Line = 2
	v4 := New("r", schema.SeverityError, "a.go", "m")
	v4.Line = 2

	for _, v := range []Violation{v1, v2, v3, v4} {
		rep.Add(v)
	}
	rep.Sort()

	require.Len(t, rep.Violations, 4)
	// File ascending, then line ascending, then most severe first.
	assert.Equal(t, "a.go", rep.Violations[0].File)
	assert.Equal(t, 2, rep.Violations[0].Line)
	assert.Equal(t, schema.SeverityError, rep.Violations[0].Severity)
	assert.Equal(t, schema.SeverityWarning, rep.Violations[1].Severity)
	assert.Equal(t, 9, rep.Violations[2].Line)
	assert.Equal(t, "b.go", rep.Violations[3].File)
}

func TestViolationIsBlocking(t *testing.T) {
	v := New("r", schema.SeverityError, "f.go", "m")
	assert.True(t, v.IsBlocking())
	assert.False(t, v.DetectedAt.IsZero())
}
