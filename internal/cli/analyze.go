package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/impactlens/internal/model"
	"github.com/ppiankov/impactlens/internal/pipeline"
	"github.com/ppiankov/impactlens/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	outPath        string
	analyzeTimeout time.Duration
	showOutcomes   bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <company name>",
	Short: "Analyze one organization and print its impact scores",
	Long: `Analyze discovers candidate sources for an organization, fetches and
extracts them, and scores the resulting corpus against the taxonomy.

Example:
  impactlens analyze "Comcast"
  impactlens analyze "Comcast" --format json --out comcast.json
  impactlens analyze "Comcast" --outcomes -v`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	flags := analyzeCmd.Flags()
	flags.StringVarP(&outPath, "out", "o", "", "write the report to this file (format from extension unless --format is set)")
	flags.String("format", "", "output format: text, json or csv")
	flags.DurationVar(&analyzeTimeout, "timeout", 3*time.Minute, "overall analysis timeout")
	flags.BoolVar(&showOutcomes, "outcomes", false, "print discovery sources and per-URL fetch outcomes to stderr")
	flags.Int("concurrency", 0, "maximum simultaneous fetches")
	flags.Bool("no-robots", false, "do not consult robots.txt")
	flags.Bool("news", false, "add news feed links to the candidates")

	_ = viper.BindPFlag("output.format", flags.Lookup("format"))
	_ = viper.BindPFlag("fetch.max_concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("discovery.news_feed_enabled", flags.Lookup("news"))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noRobots, _ := cmd.Flags().GetBool("no-robots"); noRobots {
		cfg.Robots.Respect = false
	}

	format, err := outputFormat(cmd, cfg)
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
	ctx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Analyzing: %s\n", args[0])
	}

	analysis, err := analyzer.Analyze(ctx, args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if showOutcomes {
		printOutcomes(analysis)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d candidates, %d documents in %s\n",
			len(analysis.Discovery.Candidates), analysis.Documents, analysis.Duration.Round(time.Millisecond))
	}

	results := []model.EntityResult{*analysis.Result}
	if outPath != "" {
		if err := report.WriteFile(outPath, format, results); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outPath)
		return nil
	}
	return report.Write(cmd.OutOrStdout(), format, results)
}

// outputFormat prefers an explicit --format, then the --out extension, then config
func outputFormat(cmd *cobra.Command, cfg model.Config) (report.Format, error) {
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		return report.ParseFormat(cfg.Output.Format)
	}
	if outPath != "" {
		return report.FormatFromPath(outPath), nil
	}
	return report.ParseFormat(cfg.Output.Format)
}

func printOutcomes(a *pipeline.Analysis) {
	fmt.Fprintf(os.Stderr, "\nRun %s\n", a.RunID)
	if a.Discovery.Origin != "" {
		fmt.Fprintf(os.Stderr, "  Official site: %s\n", a.Discovery.Origin)
	}
	for _, note := range a.Discovery.Notes {
		if note.Err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", note.Source, note.Err)
		} else {
			fmt.Fprintf(os.Stderr, "  ✗ %s: nothing found\n", note.Source)
		}
	}
	for _, o := range a.Outcomes {
		mark := "✗"
		if o.Acquired() {
			mark = "✓"
		}
		fmt.Fprintf(os.Stderr, "  %s %-18s %s\n", mark, o.Reason, o.URL)
	}
	fmt.Fprintln(os.Stderr)
}
