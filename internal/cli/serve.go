package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"caselaw/internal/metrics"
	"caselaw/internal/server"
	"caselaw/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search over HTTP",
	Long: `Start the HTTP search service.

Endpoints:
  GET /search?search=Q&offset=N[&export=1]   ranked results, or CSV with export
  GET /case/{id}                              one stored case
  GET /healthz                                liveness
  GET /metrics                                Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides serve.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()
	if serveAddr != "" {
		cfg.Serve.Addr = serveAddr
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	idx, err := openIndex(cfg, false, true)
	if err != nil {
		return err
	}
	defer idx.Close()

	pageCache, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	m := metrics.New(nil)
	opts := []usecase.QueryOption{usecase.WithMetrics(m)}
	if pageCache != nil {
		opts = append(opts, usecase.WithPageCache(pageCache))
	}
	engine := usecase.NewQueryEngine(idx, cfg.Query, opts...)
	asm := usecase.NewAssembler(st, cfg.Query.PreviewChars)

	docs, err := idx.DocCount()
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}
	slog.Info("serving", "addr", cfg.Serve.Addr, "documents", docs, "cache", pageCache != nil)

	return server.New(cfg, engine, asm, m).Run(ctx)
}
