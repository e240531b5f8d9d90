package main

import (
	"github.com/aretw0/lattice/internal/cli"
	httpAdapter "github.com/aretw0/lattice/pkg/adapters/http"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/aretw0/lattice/pkg/recognizer"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recognition over HTTP",
	Long: `Starts an HTTP server exposing:
  POST /recognize   JSON {"text": "..."} or a raw text body
  GET  /vocabulary  one word per line
  GET  /healthz
  GET  /metrics     Prometheus metrics, unless server.metrics is false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		store, err := recognitionStore(cmd, cfg)
		if err != nil {
			return err
		}

		opts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}
		var recOpts []recognizer.Option
		if cfg.Server.Metrics {
			metrics := observability.New()
			recOpts = append(recOpts, recognizer.WithObserver(metrics))
			opts = append(opts, httpAdapter.WithMetrics(metrics.Handler()))
		}

		rec, err := cli.OpenRecognizer(ctx, cfg, store, logger, recOpts...)
		if err != nil {
			return err
		}
		return httpAdapter.Serve(ctx, addr, httpAdapter.NewHandler(rec, opts...), logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default server.addr from the profile)")
	serveCmd.Flags().Bool("redis", false, "Load the automaton from the configured Redis store")
}
