package report

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/codewarden/warden/pkg/schema"
	"github.com/codewarden/warden/pkg/violation"
)

type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// writeJUnit renders one testsuite per file, one failed testcase per
// violation. CI systems that understand JUnit XML then surface violations
// like failing tests.
func writeJUnit(w io.Writer, rep *violation.Report, opts Options) error {
	kept, _ := selected(rep, opts)

	byFile := map[string][]violation.Violation{}
	var order []string
	for _, v := range kept {
		if _, seen := byFile[v.File]; !seen {
			order = append(order, v.File)
		}
		byFile[v.File] = append(byFile[v.File], v)
	}

	suites := junitTestSuites{
		Name:     "warden",
		Tests:    len(kept),
		Failures: len(kept),
		Time:     fmt.Sprintf("%.3f", float64(rep.Summary.ExecutionTimeMs)/1000),
	}
	for _, file := range order {
		suite := junitTestSuite{
			Name:     file,
			Tests:    len(byFile[file]),
			Failures: len(byFile[file]),
		}
		for _, v := range byFile[file] {
			suite.Cases = append(suite.Cases, junitTestCase{
				Name:      fmt.Sprintf("%s:%d", v.RuleID, v.Line),
				ClassName: file,
				Failure: &junitFailure{
					Message: v.Message,
					Type:    severityLabel(v.Severity),
					Body:    fmt.Sprintf("%s:%d:%d %s", v.File, v.Line, v.Column, v.Message),
				},
			})
		}
		suites.Suites = append(suites.Suites, suite)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func severityLabel(s schema.Severity) string {
	return s.String()
}
