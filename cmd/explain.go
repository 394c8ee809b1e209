package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	errUtils "github.com/codewarden/warden/errors"
	"github.com/codewarden/warden/pkg/engine"
)

var explainCmd = &cobra.Command{
	Use:     "explain <rule-id>",
	Short:   "Show the full definition of one rule",
	Example: "  warden explain todo_comments",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := engine.Compile(cfg)
		if err != nil {
			return err
		}

		rule, ok := eng.Rule(args[0])
		if !ok {
			return errUtils.Build(errUtils.ErrUnknownRule).
				WithContext("rule", args[0]).
				WithHint("run `warden rules` to list the enabled rules").
				Err()
		}

		fmt.Printf("id:       %s\n", rule.ID)
		fmt.Printf("type:     %s\n", rule.Type)
		fmt.Printf("pattern:  %s\n", rule.Pattern)
		fmt.Printf("message:  %s\n", rule.Message)
		if rule.Severity != nil {
			fmt.Printf("severity: %s\n", rule.Severity)
		}
		if rule.Type == "text" {
			fmt.Printf("case-sensitive: %t\n", rule.CaseSensitive)
		}
		if rule.ExcludeIf != nil {
			fmt.Println("exclusions:")
			if rule.ExcludeIf.InTests {
				fmt.Println("  - test files")
			}
			if rule.ExcludeIf.Attribute != "" {
				fmt.Printf("  - lines or declarations marked %q\n", rule.ExcludeIf.Attribute)
			}
			for _, pattern := range rule.ExcludeIf.FilePatterns {
				fmt.Printf("  - files matching %s\n", pattern)
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(explainCmd)
}
