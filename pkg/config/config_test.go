package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/codewarden/warden/errors"
	"github.com/codewarden/warden/pkg/schema"
)

const validYAML = `version: "1.0"
paths:
  patterns:
    - vendor/
    - "*.pb.go"
  ignore_file: .wardenignore
patterns:
  placeholders:
    severity: error
    enabled: true
    rules:
      - id: todo_comments
        type: text
        pattern: '\b(TODO|FIXME)\b'
        message: "unresolved marker: {match}"
      - id: panic_calls
        type: structural
        pattern: "call:panic"
        message: "call to {name}"
        severity: warning
  style:
    severity: info
    enabled: false
    rules:
      - id: missing_docs
        type: structural
        pattern: public_without_docs
        message: "{kind} {name} has no doc comment"
`

func TestParseValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "1.0", cfg.Version)
	assert.Equal(t, ".wardenignore", cfg.Paths.IgnoreFile)
	assert.Len(t, cfg.Paths.Patterns, 2)

	placeholders, ok := cfg.Categories["placeholders"]
	require.True(t, ok)
	assert.Equal(t, schema.SeverityError, placeholders.Severity)
	require.Len(t, placeholders.Rules, 2)

	todo := placeholders.Rules[0]
	assert.Equal(t, schema.RuleTypeText, todo.Type)
	assert.Nil(t, todo.Severity)
	assert.Equal(t, schema.SeverityError, todo.EffectiveSeverity(&placeholders))

	panics := placeholders.Rules[1]
	require.NotNil(t, panics.Severity)
	assert.Equal(t, schema.SeverityWarning, panics.EffectiveSeverity(&placeholders))
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("{not yaml"))
	assert.ErrorIs(t, err, errUtils.ErrInvalidConfig)
}

func TestValidateVersionGate(t *testing.T) {
	_, err := Parse([]byte(`version: "2.0"`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrInvalidConfig)
}

func TestValidateDuplicateRuleIDs(t *testing.T) {
	cfg := &schema.Config{
		Version: "1.0",
		Categories: map[string]schema.RuleCategory{
			"c": {
				Severity: schema.SeverityError,
				Enabled:  true,
				Rules: []schema.RuleDefinition{
					{ID: "dup", Type: schema.RuleTypeText, Pattern: "a", Message: "m"},
					{ID: "dup", Type: schema.RuleTypeText, Pattern: "b", Message: "m"},
				},
			},
		},
	}
	assert.ErrorIs(t, Validate(cfg), errUtils.ErrInvalidConfig)
}

func TestValidateEmptyRuleID(t *testing.T) {
	cfg := &schema.Config{
		Version: "1.0",
		Categories: map[string]schema.RuleCategory{
			"c": {
				Enabled: true,
				Rules:   []schema.RuleDefinition{{Type: schema.RuleTypeText, Pattern: "a", Message: "m"}},
			},
		},
	}
	assert.ErrorIs(t, Validate(cfg), errUtils.ErrInvalidConfig)
}

func TestValidateBadTextPattern(t *testing.T) {
	cfg := &schema.Config{
		Version: "1.0",
		Categories: map[string]schema.RuleCategory{
			"c": {
				Enabled: true,
				Rules:   []schema.RuleDefinition{{ID: "r", Type: schema.RuleTypeText, Pattern: "(", Message: "m"}},
			},
		},
	}
	assert.ErrorIs(t, Validate(cfg), errUtils.ErrInvalidConfig)
}

func TestValidateUnknownRuleType(t *testing.T) {
	cfg := &schema.Config{
		Version: "1.0",
		Categories: map[string]schema.RuleCategory{
			"c": {
				Enabled: true,
				Rules:   []schema.RuleDefinition{{ID: "r", Type: "semantic", Pattern: "x", Message: "m"}},
			},
		},
	}
	assert.ErrorIs(t, Validate(cfg), errUtils.ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warden.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, errUtils.ErrInvalidConfig)
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.NotEmpty(t, cfg.Paths.Patterns)
	assert.NotEmpty(t, cfg.Categories)
}

func TestEnabledRulesOrderAndFiltering(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	var visited []string
	EnabledRules(cfg, func(categoryName string, _ *schema.RuleCategory, rule *schema.RuleDefinition) {
		visited = append(visited, categoryName+"/"+rule.ID)
	})

	// The style category is disabled, so only placeholders rules appear.
	assert.Equal(t, []string{"placeholders/todo_comments", "placeholders/panic_calls"}, visited)
}

func TestFingerprintStability(t *testing.T) {
	a, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	b, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	// Any rule change must shift the fingerprint.
	c, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	cat := c.Categories["placeholders"]
	cat.Rules[0].Pattern = `\bTODO\b`
	c.Categories["placeholders"] = cat
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))

	// Disabling a category changes it too.
	d, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	cat = d.Categories["placeholders"]
	cat.Enabled = false
	d.Categories["placeholders"] = cat
	assert.NotEqual(t, Fingerprint(a), Fingerprint(d))
}
