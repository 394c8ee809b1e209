package report

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/codewarden/warden/errors"
	"github.com/codewarden/warden/pkg/schema"
	"github.com/codewarden/warden/pkg/violation"
)

func sampleReport() *violation.Report {
	rep := violation.NewReport()
	rep.Fingerprint = "deadbeef"
	rep.Summary.TotalFiles = 3
	rep.Summary.ExecutionTimeMs = 42

	v1 := violation.New("todo", schema.SeverityError, "pkg/a.go", "unresolved TODO")
	v1.Line, v1.Column = 10, 4
	v1.Context = "// TODO: fix"
	rep.Add(v1)

	v2 := violation.New("no-panic", schema.SeverityWarning, "pkg/a.go", "call to panic")
	v2.Line, v2.Column = 20, 2
	rep.Add(v2)

	v3 := violation.New("missing-docs", schema.SeverityInfo, "pkg/b.go", "Widget has no doc comment")
	v3.Line, v3.Column = 5, 1
	rep.Add(v3)

	rep.Sort()
	return rep
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "human", want: FormatHuman},
		{in: "JSON", want: FormatJSON},
		{in: "junit", want: FormatJUnit},
		{in: "sarif", want: FormatSARIF},
		{in: "github", want: FormatGitHub},
		{in: "agent", want: FormatAgent},
		{in: "yaml", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUtils.ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHumanFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatHuman, sampleReport(), Options{ShowContext: true}))
	out := buf.String()

	assert.Contains(t, out, "pkg/a.go")
	assert.Contains(t, out, "10:4")
	assert.Contains(t, out, "unresolved TODO")
	assert.Contains(t, out, "// TODO: fix")
	assert.Contains(t, out, "FAIL: 3 violations (1 errors, 1 warnings, 1 info) in 3 files (42ms)")
}

func TestHumanFormatCleanReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatHuman, violation.NewReport(), Options{}))
	out := buf.String()
	assert.Contains(t, out, "No violations found.")
	assert.Contains(t, out, "PASS")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleReport(), Options{}))

	var decoded struct {
		Violations []violation.Violation `json:"violations"`
		Summary    violation.Summary     `json:"summary"`
		Fingerprint string               `json:"config_fingerprint"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Violations, 3)
	assert.Equal(t, "deadbeef", decoded.Fingerprint)
	assert.Equal(t, 3, decoded.Summary.TotalFiles)
}

func TestJUnitFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJUnit, sampleReport(), Options{}))

	var suites struct {
		XMLName  xml.Name `xml:"testsuites"`
		Failures int      `xml:"failures,attr"`
		Suites   []struct {
			Name  string `xml:"name,attr"`
			Cases []struct {
				Name string `xml:"name,attr"`
			} `xml:"testcase"`
		} `xml:"testsuite"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	assert.Equal(t, 3, suites.Failures)
	require.Len(t, suites.Suites, 2)
	assert.Equal(t, "pkg/a.go", suites.Suites[0].Name)
	assert.Len(t, suites.Suites[0].Cases, 2)
}

func TestSARIFFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatSARIF, sampleReport(), Options{}))

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID string `json:"ruleId"`
				Level  string `json:"level"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	assert.Equal(t, "warden", log.Runs[0].Tool.Driver.Name)
	assert.Len(t, log.Runs[0].Tool.Driver.Rules, 3)
	require.Len(t, log.Runs[0].Results, 3)
	assert.Equal(t, "error", log.Runs[0].Results[0].Level)
}

func TestGitHubFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatGitHub, sampleReport(), Options{}))
	out := buf.String()

	assert.Contains(t, out, "::error file=pkg/a.go,line=10,col=4,title=todo::unresolved TODO")
	assert.Contains(t, out, "::warning file=pkg/a.go,line=20")
	assert.Contains(t, out, "::notice file=pkg/b.go")
}

func TestGitHubEscaping(t *testing.T) {
	rep := violation.NewReport()
	v := violation.New("r", schema.SeverityError, "f.go", "50% done\nsecond line")
	v.Line = 1
	rep.Add(v)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatGitHub, rep, Options{}))
	assert.Contains(t, buf.String(), "50%25 done%0Asecond line")
}

func TestAgentFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatAgent, sampleReport(), Options{}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "pkg/a.go:10:4 error todo unresolved TODO", lines[0])
	assert.Equal(t, "verdict: fail errors=1 warnings=1 info=1 files=3", lines[3])
}

func TestMinSeverityFilter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatAgent, sampleReport(), Options{MinSeverity: schema.SeverityWarning}))
	out := buf.String()

	assert.Contains(t, out, "todo")
	assert.Contains(t, out, "no-panic")
	assert.NotContains(t, out, "missing-docs")
}

func TestMaxViolationsTruncation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatAgent, sampleReport(), Options{MaxViolations: 1}))
	out := buf.String()

	assert.Contains(t, out, "truncated: 2")
	// Full counts survive truncation.
	assert.Contains(t, out, "errors=1 warnings=1 info=1")
}

func TestUnknownFormatWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Format("bogus"), sampleReport(), Options{})
	assert.ErrorIs(t, err, errUtils.ErrUnknownFormat)
}
