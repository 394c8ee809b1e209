package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codewarden/warden/pkg/engine"
)

var rulesCmd = &cobra.Command{
	Use:     "rules",
	Short:   "List every enabled rule in the effective configuration",
	Example: "  warden rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := engine.Compile(cfg)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tPATTERN\tMESSAGE")
		for _, id := range eng.RuleIDs() {
			rule, _ := eng.Rule(id)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rule.ID, rule.Type, rule.Pattern, rule.Message)
		}
		return w.Flush()
	},
}

func init() {
	RootCmd.AddCommand(rulesCmd)
}
