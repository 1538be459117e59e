package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/photoflow/internal/batch"
	"github.com/spf13/cobra"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list <folder>",
	Short: "List the supported images in a folder",
	Long: `List every image in a folder that a batch run would pick up, in the
order it would be processed.

Examples:
  photoflow list ./shoot
  photoflow list ./shoot --count`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := batch.DiscoverImages(args[0])
		if err != nil {
			return err
		}

		countOnly, _ := cmd.Flags().GetBool("count")
		if countOnly {
			fmt.Fprintln(cmd.OutOrStdout(), len(files))
			return nil
		}

		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d image(s)\n", len(files))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("count", false, "print only the number of images")
}
