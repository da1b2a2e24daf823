package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/impactlens/internal/pipeline"
	"github.com/ppiankov/impactlens/internal/report"
	"github.com/ppiankov/impactlens/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	namesFile    string
	batchOut     string
	batchFormat  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [company names...]",
	Short: "Analyze several organizations one after another",
	Long: `Batch analyzes a list of organizations sequentially and writes one
combined report. Names come from arguments or from a file (one per line,
# starts a comment). A failing organization is reported and skipped.

Interrupting the run (Ctrl-C) keeps the results gathered so far.

Example:
  impactlens batch "Comcast" "Aramark" "Urban Outfitters"
  impactlens batch --file companies.txt --out scores.csv
  impactlens batch --file companies.txt --format json --max 50`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	flags := batchCmd.Flags()
	flags.StringVarP(&namesFile, "file", "f", "", "read organization names from a file")
	flags.StringVarP(&batchOut, "out", "o", "", "write the combined report to this file (format from extension unless --format is set)")
	flags.StringVar(&batchFormat, "format", "", "output format: text, json or csv")
	flags.DurationVar(&batchTimeout, "timeout", 0, "total timeout for the batch (0 = none)")
	flags.Int("max", 0, "maximum organizations per batch")

	_ = viper.BindPFlag("batch.max_entities", flags.Lookup("max"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	names := args
	if namesFile != "" {
		fromFile, err := worker.ReadNamesFromFile(namesFile)
		if err != nil {
			return err
		}
		names = append(names, fromFile...)
	}
	if len(names) == 0 {
		return errors.New("no organizations given: pass names as arguments or use --file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := batchOutputFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	analyzer, err := pipeline.New(&cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	if batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, batchTimeout)
		defer cancel()
	}

	names = worker.PrepareNames(names, cfg.Batch.MaxEntities)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  ImpactLens Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Organizations: %d\n", len(names))
	if batchOut != "" {
		fmt.Fprintf(os.Stderr, "  Output:        %s\n", batchOut)
	}
	fmt.Fprintf(os.Stderr, "\n")

	start := time.Now()
	failures := 0
	runner := worker.NewBatchRunner(analyzer, cfg.Batch.MaxEntities, logger)
	results, runErr := runner.Run(ctx, names, func(ev worker.ProgressEvent) {
		switch ev.Kind {
		case worker.ProgressStart:
			fmt.Fprintf(os.Stderr, "⚙️  [%d/%d] %s\n", ev.Index, ev.Total, ev.Entity)
		case worker.ProgressDone:
			fmt.Fprintf(os.Stderr, "✓ [%d/%d] %s: %.1f (%s)\n", ev.Index, ev.Total, ev.Entity, ev.Result.Overall, ev.Result.Tier)
		case worker.ProgressError:
			failures++
			fmt.Fprintf(os.Stderr, "✗ [%d/%d] %s: %v\n", ev.Index, ev.Total, ev.Entity, ev.Err)
		}
	})

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Scored:    %d\n", len(results))
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failures)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "  Stopped:   %v (partial results kept)\n", runErr)
	}
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", time.Since(start).Round(time.Second))
	fmt.Fprintf(os.Stderr, "\n")

	if batchOut != "" {
		if err := report.WriteFile(batchOut, format, results); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", batchOut)
		return nil
	}
	return report.Write(cmd.OutOrStdout(), format, results)
}

// batchOutputFormat prefers --format, then the --out extension, then config
func batchOutputFormat(configured string) (report.Format, error) {
	if batchFormat != "" {
		return report.ParseFormat(batchFormat)
	}
	if batchOut != "" {
		return report.FormatFromPath(batchOut), nil
	}
	return report.ParseFormat(configured)
}
