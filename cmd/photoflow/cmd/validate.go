package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a job configuration without processing anything",
	Long: `Validate the effective job configuration, combining the config file,
an optional job file and CLI flags the same way the run command does.

Examples:
  photoflow validate --input ./shoot --output ./finished
  photoflow validate --job wedding.yaml`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobConfig, err := jobConfigFromFlags(cmd)
		if err != nil {
			return err
		}

		problems := jobConfig.Validate()
		if len(problems) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		}

		for _, p := range problems {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", p)
		}
		return fmt.Errorf("%d problem(s) found", len(problems))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	addJobFlags(validateCmd)
}
