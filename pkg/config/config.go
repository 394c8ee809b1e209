// Package config loads, validates, and fingerprints warden rule
// configurations. Rules leave this package pre-validated: the engine can
// assume ids are unique per category and text patterns compile.
package config

import (
	"os"
	"regexp"
	"sort"

	"github.com/goccy/go-yaml"

	errUtils "github.com/codewarden/warden/errors"
	"github.com/codewarden/warden/pkg/schema"
)

// supportedVersions lists the accepted configuration format versions.
var supportedVersions = []string{"1.0"}

// DefaultFileName is the rule file warden looks for in the working tree.
const DefaultFileName = "warden.yaml"

// DefaultIgnoreFileName is the per-directory ignore file name.
const DefaultIgnoreFileName = ".wardenignore"

// Load reads and validates a configuration from a YAML file.
func Load(path string) (*schema.Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errUtils.Build(errUtils.ErrInvalidConfig).
			WithCause(err).
			WithContext("path", path).
			Err()
	}
	return Parse(contents)
}

// Parse validates a configuration from raw YAML content.
func Parse(contents []byte) (*schema.Config, error) {
	var cfg schema.Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, errUtils.Build(errUtils.ErrInvalidConfig).
			WithCause(err).
			Err()
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks a configuration for consistency: supported version,
// unique rule ids per category, and compilable text patterns.
func Validate(cfg *schema.Config) error {
	versionOK := false
	for _, v := range supportedVersions {
		if cfg.Version == v {
			versionOK = true
			break
		}
	}
	if !versionOK {
		return errUtils.Build(errUtils.ErrInvalidConfig).
			WithContext("version", cfg.Version).
			WithHint("supported configuration versions: 1.0").
			Err()
	}

	for categoryName, category := range cfg.Categories {
		seen := make(map[string]bool, len(category.Rules))
		for i := range category.Rules {
			rule := &category.Rules[i]
			if rule.ID == "" {
				return errUtils.Build(errUtils.ErrInvalidConfig).
					WithContext("category", categoryName).
					WithHint("every rule needs a non-empty id").
					Err()
			}
			if seen[rule.ID] {
				return errUtils.Build(errUtils.ErrInvalidConfig).
					WithContext("category", categoryName).
					WithContext("rule", rule.ID).
					WithHint("rule ids must be unique within a category").
					Err()
			}
			seen[rule.ID] = true

			switch rule.Type {
			case schema.RuleTypeText:
				if _, err := compileRulePattern(rule); err != nil {
					return errUtils.Build(errUtils.ErrInvalidConfig).
						WithCause(err).
						WithContext("category", categoryName).
						WithContext("rule", rule.ID).
						Err()
				}
			case schema.RuleTypeStructural:
				// Descriptor syntax is validated by the engine at compile time.
			default:
				return errUtils.Build(errUtils.ErrInvalidConfig).
					WithContext("category", categoryName).
					WithContext("rule", rule.ID).
					WithContext("type", string(rule.Type)).
					WithHint("rule type must be \"text\" or \"structural\"").
					Err()
			}
		}
	}

	return nil
}

// compileRulePattern compiles a text rule's regex honoring case sensitivity.
func compileRulePattern(rule *schema.RuleDefinition) (*regexp.Regexp, error) {
	pattern := rule.Pattern
	if !rule.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// EnabledRules walks enabled categories and yields their enabled rules in a
// deterministic (category-name sorted) order.
func EnabledRules(cfg *schema.Config, fn func(categoryName string, category *schema.RuleCategory, rule *schema.RuleDefinition)) {
	names := make([]string, 0, len(cfg.Categories))
	for name := range cfg.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		category := cfg.Categories[name]
		if !category.Enabled {
			continue
		}
		for i := range category.Rules {
			rule := &category.Rules[i]
			if !rule.IsEnabled() {
				continue
			}
			fn(name, &category, rule)
		}
	}
}
