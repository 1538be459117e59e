package cmd

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/photoflow/internal/batch"
	"github.com/MeKo-Tech/photoflow/internal/imageio"
	"github.com/MeKo-Tech/photoflow/internal/transform"
	"github.com/spf13/cobra"
)

// previewCmd represents the preview command.
var previewCmd = &cobra.Command{
	Use:   "preview <image>",
	Short: "Render a single image with the configured transform chain",
	Long: `Apply the job's transform chain to one image and write a downscaled
preview, useful for tuning saturation, watermarks and border before a
full batch run.

Examples:
  photoflow preview photo.jpg --out preview.png
  photoflow preview photo.jpg --saturation 140 --border-width 30
  photoflow preview photo.jpg --watermark logo.png --max-edge 1200`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runPreviewCommand,
}

func runPreviewCommand(cmd *cobra.Command, args []string) error {
	jobConfig, err := jobConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	opts := jobConfig.TransformOptions()
	if problems := validateTransformOnly(jobConfig); len(problems) > 0 {
		return fmt.Errorf("invalid transform options:\n  %s", strings.Join(problems, "\n  "))
	}

	engine, err := transform.NewEngine(opts)
	if err != nil {
		return err
	}

	img, err := imageio.Load(args[0])
	if err != nil {
		return err
	}

	result, err := engine.Apply(img)
	if err != nil {
		return err
	}

	maxEdge := GetConfig().Preview.MaxEdge
	if cmd.Flags().Changed("max-edge") {
		maxEdge, _ = cmd.Flags().GetInt("max-edge")
	}
	result = imageio.FitPreview(result, maxEdge)

	outPath, _ := cmd.Flags().GetString("out")
	if err := imageio.Save(result, outPath); err != nil {
		return err
	}

	bounds := result.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", outPath, bounds.Dx(), bounds.Dy())
	return nil
}

// validateTransformOnly runs the configuration checks that matter for a
// single-image preview, ignoring the input and output folders.
func validateTransformOnly(cfg batch.Config) []string {
	probe := cfg
	probe.InputFolder = "."
	probe.OutputFolder = "preview"
	return probe.Validate()
}

func init() {
	rootCmd.AddCommand(previewCmd)

	addJobFlags(previewCmd)
	previewCmd.Flags().String("out", "preview.png", "path of the preview file to write")
	previewCmd.Flags().Int("max-edge", 0, "longest edge of the preview in pixels (0 uses the configured default)")
}
