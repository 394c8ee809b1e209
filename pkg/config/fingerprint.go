package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/codewarden/warden/pkg/schema"
)

// Fingerprint returns a deterministic digest of the active configuration:
// any change to a rule, category, or path pattern changes the digest. It is
// a cache-invalidation key, not a security boundary.
func Fingerprint(cfg *schema.Config) string {
	h := sha256.New()

	writeField(h, "version", cfg.Version)
	writeField(h, "ignore_file", cfg.Paths.IgnoreFile)
	for _, p := range cfg.Paths.Patterns {
		writeField(h, "path_pattern", p)
	}

	names := make([]string, 0, len(cfg.Categories))
	for name := range cfg.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		category := cfg.Categories[name]
		writeField(h, "category", name)
		writeField(h, "category_severity", category.Severity.String())
		writeField(h, "category_enabled", fmt.Sprintf("%t", category.Enabled))

		rules := make([]schema.RuleDefinition, len(category.Rules))
		copy(rules, category.Rules)
		sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

		for i := range rules {
			rule := &rules[i]
			writeField(h, "rule", rule.ID)
			writeField(h, "rule_type", string(rule.Type))
			writeField(h, "rule_pattern", rule.Pattern)
			writeField(h, "rule_message", rule.Message)
			writeField(h, "rule_enabled", fmt.Sprintf("%t", rule.IsEnabled()))
			writeField(h, "rule_case_sensitive", fmt.Sprintf("%t", rule.CaseSensitive))
			if rule.Severity != nil {
				writeField(h, "rule_severity", rule.Severity.String())
			}
			if rule.ExcludeIf != nil {
				writeField(h, "rule_exclude_attribute", rule.ExcludeIf.Attribute)
				writeField(h, "rule_exclude_in_tests", fmt.Sprintf("%t", rule.ExcludeIf.InTests))
				writeField(h, "rule_exclude_globs", strings.Join(rule.ExcludeIf.FilePatterns, "\x00"))
			}
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// writeField feeds one labeled value into the hash with unambiguous framing.
func writeField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s=%s\x00", label, value)
}
