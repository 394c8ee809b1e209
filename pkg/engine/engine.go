package engine

import (
	"sort"
	"strings"

	log "github.com/codewarden/warden/pkg/logger"
	"github.com/codewarden/warden/pkg/schema"
)

// Engine holds the compiled matchers for one configuration. An Engine is
// immutable after Compile and safe for concurrent Evaluate calls.
type Engine struct {
	text       []*textMatcher
	structural []*structuralMatcher
	byID       map[string]schema.RuleDefinition
}

// Rule returns the definition behind a compiled rule id.
func (e *Engine) Rule(id string) (schema.RuleDefinition, bool) {
	rule, ok := e.byID[id]
	return rule, ok
}

// RuleIDs returns every compiled rule id in sorted order.
func (e *Engine) RuleIDs() []string {
	ids := make([]string, 0, len(e.byID))
	for id := range e.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of compiled matchers.
func (e *Engine) Len() int {
	return len(e.text) + len(e.structural)
}

// Evaluate runs every matcher against one file. Text matchers only need the
// raw content; structural matchers additionally need the parsed tree and are
// skipped with a debug log when it is absent. A panicking matcher is
// contained and logged rather than taking down the whole analysis.
func (e *Engine) Evaluate(path, content string, tree *SourceTree) []Match {
	var matches []Match

	for _, m := range e.text {
		matches = append(matches, e.runText(m, path, content)...)
	}

	if len(e.structural) > 0 && !tree.valid() {
		log.Debug("skipping structural rules, no syntax tree", "file", path)
	} else {
		for _, m := range e.structural {
			matches = append(matches, e.runStructural(m, path, content, tree)...)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Line != matches[j].Line {
			return matches[i].Line < matches[j].Line
		}
		if matches[i].Column != matches[j].Column {
			return matches[i].Column < matches[j].Column
		}
		return matches[i].RuleID < matches[j].RuleID
	})

	return matches
}

func (e *Engine) runText(m *textMatcher, path, content string) (matches []Match) {
	defer recoverMatcher(m.id, path)

	for _, loc := range m.re.FindAllStringIndex(content, -1) {
		line, column := lineColumn(content, loc[0])
		context := lineAt(content, loc[0])
		if m.exclude.excluded(path, context, "") {
			continue
		}
		text := content[loc[0]:loc[1]]
		matches = append(matches, Match{
			RuleID:   m.id,
			File:     path,
			Line:     line,
			Column:   column,
			Text:     text,
			Message:  renderMessage(m.message, map[string]string{"match": text}),
			Severity: m.severity,
			Context:  context,
		})
	}
	return matches
}

func (e *Engine) runStructural(m *structuralMatcher, path, content string, tree *SourceTree) (matches []Match) {
	defer recoverMatcher(m.id, path)

	for _, c := range collectCandidates(m, tree) {
		context := lineText(content, c.line)
		if m.exclude.excluded(path, context, c.doc) {
			continue
		}
		vars := c.vars
		if vars == nil {
			vars = map[string]string{}
		}
		if _, ok := vars["match"]; !ok {
			vars["match"] = c.text
		}
		matches = append(matches, Match{
			RuleID:   m.id,
			File:     path,
			Line:     c.line,
			Column:   c.column,
			Text:     c.text,
			Message:  renderMessage(m.message, vars),
			Severity: m.severity,
			Context:  context,
		})
	}
	return matches
}

// recoverMatcher isolates matcher faults so one misbehaving rule cannot
// abort the run. The named return of the caller keeps matches gathered
// before the panic.
func recoverMatcher(ruleID, path string) {
	if r := recover(); r != nil {
		log.Error("matcher panicked", "rule", ruleID, "file", path, "panic", r)
	}
}

// renderMessage substitutes {name} placeholders in a rule message. Unknown
// placeholders are left intact so a typo stays visible in the output.
func renderMessage(template string, vars map[string]string) string {
	if !strings.ContainsRune(template, '{') {
		return template
	}
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}
