package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/olistclean/internal/core"
	"github.com/JonMunkholm/olistclean/internal/sink"
)

type runOptions struct {
	inputDir   string
	outputDir  string
	reportPath string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the cleaning pipeline once",
		Long: "Reads every olist_<entity>_dataset.csv from the input directory, cleans\n" +
			"and filters them in dependency order and writes the cleaned tables to\n" +
			"every configured sink. Missing inputs are skipped; only an unusable\n" +
			"output location fails the command.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputDir, "input", "", "Input directory with the raw CSV files (default: $INPUT_DIR)")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Output directory for the cleaned CSV files (default: $OUTPUT_DIR)")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write the run report as JSON to this file")

	return cmd
}

func runPipeline(ctx context.Context, opts runOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.inputDir != "" {
		cfg.Input.Dir = opts.inputDir
	}
	if opts.outputDir != "" {
		cfg.Output.Dir = opts.outputDir
	}

	out, closeSinks, err := sink.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	pipeline := core.NewPipeline(
		core.NewDirSource(cfg.Input.Dir, cfg.Input.MaxFileSize),
		out,
		core.PipelineOptions{
			TranslationSource: cfg.Input.TranslationSource,
			Progress:          os.Stdout,
		},
	)

	report, runErr := pipeline.Run(ctx)
	if opts.reportPath != "" && report != nil {
		if err := writeReport(opts.reportPath, report); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("%s\n%w", core.FormatUserError(runErr), runErr)
	}
	return nil
}

func writeReport(path string, report *core.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
