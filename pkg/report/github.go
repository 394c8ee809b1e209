package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/codewarden/warden/pkg/schema"
	"github.com/codewarden/warden/pkg/violation"
)

func githubCommand(s schema.Severity) string {
	switch s {
	case schema.SeverityError:
		return "error"
	case schema.SeverityWarning:
		return "warning"
	default:
		return "notice"
	}
}

// githubEscape applies the workflow-command data escaping rules.
func githubEscape(s string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	return r.Replace(s)
}

// writeGitHub emits workflow commands that annotate the offending lines in
// a pull request run.
func writeGitHub(w io.Writer, rep *violation.Report, opts Options) error {
	kept, _ := selected(rep, opts)
	for _, v := range kept {
		_, err := fmt.Fprintf(w, "::%s file=%s,line=%d,col=%d,title=%s::%s\n",
			githubCommand(v.Severity),
			v.File,
			v.Line,
			v.Column,
			githubEscape(v.RuleID),
			githubEscape(v.Message))
		if err != nil {
			return err
		}
	}
	return nil
}
