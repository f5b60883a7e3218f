package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/api"
	"github.com/signaldesk/signaldesk/internal/api/handlers"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only API server",
	Long: `Starts the HTTP server exposing run artifacts.

Endpoints:
  GET /health           - health check
  GET /api/v1/report    - combined report rows
  GET /api/v1/summary   - last run summary
  GET /api/v1/universe  - resolved universe

Example:
  go run ./cmd/desk serve
  go run ./cmd/desk serve --port 8089`,
	RunE: runAPIServer,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (overrides API_PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.APIPort = servePort
	}
	log := logger.New(cfg)

	reportHandler := handlers.NewReportHandler(cfg, log)
	router := api.NewRouter(reportHandler, log)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
