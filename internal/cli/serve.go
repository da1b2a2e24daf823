package cli

import (
	"github.com/ppiankov/impactlens/internal/metrics"
	"github.com/ppiankov/impactlens/internal/pipeline"
	"github.com/ppiankov/impactlens/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis endpoint over HTTP",
	Long: `Serve exposes the analyzer over HTTP:

  POST /api/analyze-company   {"company": "Comcast"}
  GET  /healthz
  GET  /metrics               Prometheus metrics

Example:
  impactlens serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the server logs requests at info level regardless of --verbose
	verbose = true
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	analyzer, err := pipeline.New(&cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	srv := server.NewServer(analyzer, cfg.Server, logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
