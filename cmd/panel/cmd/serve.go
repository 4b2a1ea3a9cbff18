package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Expose the expert panel over a local REST API:

  GET  /api/v1/experts      list catalog experts
  POST /api/v1/analyze      run an analysis
  GET  /api/v1/runs         list stored runs
  GET  /health              health check`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: config server.addr)")
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	opts := []httpapi.ServerOption{httpapi.WithLogger(a.logger)}
	if a.store != nil {
		opts = append(opts, httpapi.WithHistory(a.store))
	}
	server := httpapi.NewServer(a.controller, a.catalog, a.analysisOptions(), opts...)

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("API server listening on http://%s\n", addr)
	if err := server.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
