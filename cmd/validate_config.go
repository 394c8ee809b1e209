package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codewarden/warden/pkg/config"
	"github.com/codewarden/warden/pkg/engine"
	"github.com/codewarden/warden/pkg/schema"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config [path]",
	Short: "Validate a rule configuration without analyzing anything",
	Long: `Validate-config loads the configuration, compiles every enabled rule,
and reports the result. It exits with 2 when the file is invalid.`,
	Example: `  warden validate-config
  warden validate-config ./ci/warden.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *schema.Config
		var err error
		if len(args) == 1 {
			cfg, err = config.Load(args[0])
		} else {
			cfg, err = loadConfig()
		}
		if err != nil {
			return err
		}

		eng, err := engine.Compile(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("configuration is valid: %d rules compiled\n", eng.Len())
		fmt.Printf("fingerprint: %s\n", config.Fingerprint(cfg))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateConfigCmd)
}
