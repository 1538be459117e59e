package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MeKo-Tech/photoflow/internal/batch"
	"github.com/MeKo-Tech/photoflow/internal/settings"
	"github.com/MeKo-Tech/photoflow/internal/transform"
	"github.com/spf13/cobra"
)

// runCmd represents the run command for batch photo processing.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process a folder of photos with the configured transform chain",
	Long: `Process every supported image in the input folder: adjust saturation,
overlay watermarks, add a border and write the result to the output
folder with the configured filename prefix and suffix.

Files are processed one at a time in sorted order. A failing file is
recorded and the run continues with the next one. Press Ctrl+C to
cancel; the file currently being written is finished first.

Examples:
  photoflow run --input ./shoot --output ./finished
  photoflow run -i ./in -o ./out --saturation 130 --border-width 40 --border-color "#ffffff"
  photoflow run -i ./in -o ./out --watermark logo.png --watermark-position bottom-right
  photoflow run --load-job --input ./other-shoot`,
	SilenceUsage: true,
	RunE:         runRunCommand,
}

// jobConfigFromFlags builds the effective job configuration from the
// config file, an optional saved job and CLI flag overrides.
func jobConfigFromFlags(cmd *cobra.Command) (batch.Config, error) {
	cfg := GetConfig()
	jobConfig := cfg.Job

	if load, _ := cmd.Flags().GetBool("load-job"); load {
		store, err := settings.NewStore()
		if err != nil {
			return batch.Config{}, fmt.Errorf("open settings store: %w", err)
		}
		jobConfig, err = store.LoadJob()
		if err != nil {
			return batch.Config{}, fmt.Errorf("load saved job: %w", err)
		}
	}
	if jobFile, _ := cmd.Flags().GetString("job"); jobFile != "" {
		var err error
		jobConfig, err = settings.LoadJobFile(jobFile)
		if err != nil {
			return batch.Config{}, fmt.Errorf("load job file: %w", err)
		}
	}

	if cmd.Flags().Changed("input") {
		jobConfig.InputFolder, _ = cmd.Flags().GetString("input")
	}
	if cmd.Flags().Changed("output") {
		jobConfig.OutputFolder, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("saturation") {
		jobConfig.Saturation, _ = cmd.Flags().GetInt("saturation")
	}
	if cmd.Flags().Changed("border-width") {
		jobConfig.Border.ThicknessPx, _ = cmd.Flags().GetInt("border-width")
	}
	if cmd.Flags().Changed("border-color") {
		jobConfig.Border.Color, _ = cmd.Flags().GetString("border-color")
	}
	if cmd.Flags().Changed("prefix") {
		jobConfig.FilenamePrefix, _ = cmd.Flags().GetString("prefix")
	}
	if cmd.Flags().Changed("suffix") {
		jobConfig.FilenameSuffix, _ = cmd.Flags().GetString("suffix")
	}
	if cmd.Flags().Changed("overwrite") {
		jobConfig.OverwriteExisting, _ = cmd.Flags().GetBool("overwrite")
	}

	if cmd.Flags().Changed("watermark") {
		paths, _ := cmd.Flags().GetStringArray("watermark")
		position, _ := cmd.Flags().GetString("watermark-position")
		opacity, _ := cmd.Flags().GetFloat64("watermark-opacity")
		scale, _ := cmd.Flags().GetInt("watermark-scale")
		margin, _ := cmd.Flags().GetInt("watermark-margin")

		jobConfig.Watermarks = nil
		for i, path := range paths {
			jobConfig.Watermarks = append(jobConfig.Watermarks, transform.WatermarkOptions{
				ID:           fmt.Sprintf("wm-%d", i+1),
				ImagePath:    path,
				Position:     transform.Position(position),
				Opacity:      opacity,
				ScalePercent: scale,
				MarginPx:     margin,
			})
		}
	}

	return jobConfig, nil
}

func runRunCommand(cmd *cobra.Command, args []string) error {
	jobConfig, err := jobConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	if problems := jobConfig.Validate(); len(problems) > 0 {
		return fmt.Errorf("invalid job configuration:\n  %s", strings.Join(problems, "\n  "))
	}

	if save, _ := cmd.Flags().GetBool("save-job"); save {
		store, err := settings.NewStore()
		if err != nil {
			return fmt.Errorf("open settings store: %w", err)
		}
		if err := store.SaveJob(jobConfig); err != nil {
			return fmt.Errorf("save job: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved job to %s\n", store.JobPath())
	}

	runner := batch.NewRunner()
	quiet, _ := cmd.Flags().GetBool("quiet")
	if !quiet {
		runner.AddCallback(batch.NewConsoleProgressCallback(cmd.OutOrStdout(), "Processing"))
	}

	// Cancel the run on Ctrl+C and let the current file finish.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.OutOrStdout(), "\nCancelling after current file...")
			runner.Cancel()
		case <-done:
		}
	}()

	start := time.Now()
	if err := runner.Start(jobConfig); err != nil {
		return err
	}
	runner.Wait()

	result := runner.Snapshot()
	for _, fe := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", fe.File, fe.Error)
	}

	switch result.State {
	case batch.StateCancelled:
		fmt.Fprintf(cmd.OutOrStdout(), "Cancelled after %d of %d files (%v)\n",
			result.ProcessedCount, result.TotalFiles, time.Since(start).Round(time.Millisecond))
	case batch.StateError:
		return fmt.Errorf("batch run failed")
	default:
		if result.ErrorCount > 0 {
			return fmt.Errorf("%d of %d files failed", result.ErrorCount, result.TotalFiles)
		}
	}
	return nil
}

// addJobFlags registers the flags every job-building command shares, so
// run, validate and preview accept the same configuration surface.
func addJobFlags(c *cobra.Command) {
	c.Flags().StringP("input", "i", "", "folder containing the photos to process")
	c.Flags().StringP("output", "o", "", "folder to write processed photos to")
	c.Flags().Int("saturation", 100, "saturation level in percent (0-200, 100 keeps colors unchanged)")
	c.Flags().Int("border-width", 0, "border thickness in pixels (0 disables the border)")
	c.Flags().String("border-color", "#ffffff", "border color as #RRGGBB hex")
	c.Flags().String("prefix", "", "prefix prepended to output filenames")
	c.Flags().String("suffix", "", "suffix appended before the file extension")
	c.Flags().Bool("overwrite", false, "overwrite existing files in the output folder")
	c.Flags().StringArray("watermark", nil, "watermark image to overlay (repeatable)")
	c.Flags().String("watermark-position", string(transform.PositionBottomRight), "anchor position for CLI watermarks")
	c.Flags().Float64("watermark-opacity", 1.0, "opacity for CLI watermarks (0.0-1.0)")
	c.Flags().Int("watermark-scale", 20, "watermark size as percent of the photo's shorter side (5-80)")
	c.Flags().Int("watermark-margin", 16, "margin in pixels between watermark and photo edge")
	c.Flags().String("job", "", "YAML file with a complete job configuration")
	c.Flags().Bool("load-job", false, "start from the last saved job configuration")
	c.Flags().Bool("save-job", false, "persist the effective job configuration for later runs")
}

func init() {
	rootCmd.AddCommand(runCmd)

	addJobFlags(runCmd)
	runCmd.Flags().BoolP("quiet", "q", false, "suppress the progress bar")
}
