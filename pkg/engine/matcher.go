package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	errUtils "github.com/codewarden/warden/errors"
	"github.com/codewarden/warden/pkg/config"
	"github.com/codewarden/warden/pkg/schema"
)

type structuralKind int

const (
	kindCall structuralKind = iota
	kindReturnNilOnly
	kindEmptyFunctionBody
	kindPublicWithoutDocs
	kindCyclomaticComplexity
	kindFunctionLines
	kindNestingDepth
	kindFunctionArgs
	kindUnsafeUsage
	kindGenericWithoutBounds
	kindTestWithoutAssertion
	kindSkippedTest
	kindImportPattern
)

// textMatcher evaluates a compiled regular expression against raw file
// content and reports every non-overlapping occurrence.
type textMatcher struct {
	id       string
	re       *regexp.Regexp
	message  string
	severity schema.Severity
	exclude  *compiledExclusion
}

// structuralMatcher evaluates one structural descriptor against a parsed
// syntax tree. The kind is resolved once at compile time.
type structuralMatcher struct {
	id        string
	kind      structuralKind
	names     map[string]bool // kindCall
	threshold int             // threshold kinds
	importRe  *regexp.Regexp  // kindImportPattern
	message   string
	severity  schema.Severity
	exclude   *compiledExclusion
}

// Compile turns every enabled rule in the configuration into an executable
// matcher. Compilation is fail-closed: the first rule that cannot be
// compiled aborts the whole build so a typo never silently disables a check.
func Compile(cfg *schema.Config) (*Engine, error) {
	eng := &Engine{byID: make(map[string]schema.RuleDefinition)}

	var compileErr error
	config.EnabledRules(cfg, func(category string, cat *schema.RuleCategory, rulePtr *schema.RuleDefinition) {
		if compileErr != nil {
			return
		}
		rule := *rulePtr
		if _, ok := eng.byID[rule.ID]; ok {
			compileErr = errUtils.Build(errUtils.ErrPatternCompile).
				WithContext("rule", rule.ID).
				WithHint("rule ids must be unique across all categories").
				Err()
			return
		}

		exclude, err := compileExclusion(rule.ExcludeIf)
		if err != nil {
			compileErr = errUtils.Build(errUtils.ErrPatternCompile).
				WithCause(err).
				WithContext("rule", rule.ID).
				Err()
			return
		}

		severity := rule.EffectiveSeverity(cat)

		switch rule.Type {
		case schema.RuleTypeText:
			re, err := compileTextPattern(rule)
			if err != nil {
				compileErr = errUtils.Build(errUtils.ErrPatternCompile).
					WithCause(err).
					WithContext("rule", rule.ID).
					WithContext("pattern", rule.Pattern).
					Err()
				return
			}
			eng.text = append(eng.text, &textMatcher{
				id:       rule.ID,
				re:       re,
				message:  rule.Message,
				severity: severity,
				exclude:  exclude,
			})
		case schema.RuleTypeStructural:
			m, err := compileStructural(rule, severity, exclude)
			if err != nil {
				compileErr = errUtils.Build(errUtils.ErrPatternCompile).
					WithCause(err).
					WithContext("rule", rule.ID).
					WithContext("pattern", rule.Pattern).
					Err()
				return
			}
			eng.structural = append(eng.structural, m)
		default:
			compileErr = errUtils.Build(errUtils.ErrPatternCompile).
				WithContext("rule", rule.ID).
				WithContext("type", string(rule.Type)).
				WithHint("rule type must be `text` or `structural`").
				Err()
			return
		}

		eng.byID[rule.ID] = rule
	})
	if compileErr != nil {
		return nil, compileErr
	}

	return eng, nil
}

func compileTextPattern(rule schema.RuleDefinition) (*regexp.Regexp, error) {
	pattern := rule.Pattern
	if !rule.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// compileStructural parses the descriptor mini-language. Parameterized
// descriptors carry their argument after a single colon.
func compileStructural(rule schema.RuleDefinition, severity schema.Severity, exclude *compiledExclusion) (*structuralMatcher, error) {
	m := &structuralMatcher{
		id:       rule.ID,
		message:  rule.Message,
		severity: severity,
		exclude:  exclude,
	}

	descriptor := rule.Pattern
	switch {
	case strings.HasPrefix(descriptor, "call:"):
		names := strings.Split(strings.TrimPrefix(descriptor, "call:"), "|")
		m.kind = kindCall
		m.names = make(map[string]bool, len(names))
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("call descriptor has an empty function name")
			}
			m.names[name] = true
		}
	case descriptor == "return_nil_only":
		m.kind = kindReturnNilOnly
	case descriptor == "empty_function_body":
		m.kind = kindEmptyFunctionBody
	case descriptor == "public_without_docs":
		m.kind = kindPublicWithoutDocs
	case descriptor == "unsafe_block":
		m.kind = kindUnsafeUsage
	case descriptor == "generic_without_bounds":
		m.kind = kindGenericWithoutBounds
	case descriptor == "test_without_assertion":
		m.kind = kindTestWithoutAssertion
	case descriptor == "skipped_test":
		m.kind = kindSkippedTest
	case strings.HasPrefix(descriptor, "cyclomatic_complexity_gt:"):
		return thresholdMatcher(m, kindCyclomaticComplexity, descriptor)
	case strings.HasPrefix(descriptor, "function_lines_gt:"):
		return thresholdMatcher(m, kindFunctionLines, descriptor)
	case strings.HasPrefix(descriptor, "nesting_depth_gt:"):
		return thresholdMatcher(m, kindNestingDepth, descriptor)
	case strings.HasPrefix(descriptor, "function_args_gt:"):
		return thresholdMatcher(m, kindFunctionArgs, descriptor)
	case strings.HasPrefix(descriptor, "import:"):
		re, err := regexp.Compile(strings.TrimPrefix(descriptor, "import:"))
		if err != nil {
			return nil, err
		}
		m.kind = kindImportPattern
		m.importRe = re
	case strings.HasPrefix(descriptor, "direct_") && strings.HasSuffix(descriptor, "_access"):
		layer := strings.TrimSuffix(strings.TrimPrefix(descriptor, "direct_"), "_access")
		if layer == "" {
			return nil, fmt.Errorf("layering descriptor has an empty layer name")
		}
		re, err := regexp.Compile(layer)
		if err != nil {
			return nil, err
		}
		m.kind = kindImportPattern
		m.importRe = re
	default:
		return nil, fmt.Errorf("unknown structural descriptor %q", descriptor)
	}

	return m, nil
}

func thresholdMatcher(m *structuralMatcher, kind structuralKind, descriptor string) (*structuralMatcher, error) {
	_, raw, _ := strings.Cut(descriptor, ":")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("descriptor threshold %q is not an integer", raw)
	}
	if n < 1 {
		return nil, fmt.Errorf("descriptor threshold must be positive, got %d", n)
	}
	m.kind = kind
	m.threshold = n
	return m, nil
}
