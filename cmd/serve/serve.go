// Package serve implements the HTTP API server command.
package serve

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	api "github.com/cropsense/cropsense-go/internal/api/v2"
	"github.com/cropsense/cropsense-go/internal/conf"
	"github.com/cropsense/cropsense-go/internal/datastore"
	"github.com/cropsense/cropsense-go/internal/logging"
	"github.com/cropsense/cropsense-go/internal/observability"
	"github.com/cropsense/cropsense-go/internal/temporal"
	"github.com/cropsense/cropsense-go/internal/weather"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the CropSense API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}
}

func runServer(settings *conf.Settings) error {
	logging.Init()
	logger := logging.ForService("server")

	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database backend enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.Error("failed to close datastore", "error", err)
		}
	}()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	temporalService := temporal.NewService(ds, settings.Analysis, metrics.Temporal)
	weatherService := weather.NewService(&settings.Weather, nil, ds, metrics.Weather)

	e := echo.New()
	e.HideBanner = true

	controller := api.New(e, ds, settings, temporalService, weatherService, metrics, log.Default())
	defer controller.Shutdown()

	address := net.JoinHostPort(settings.HTTP.Host, settings.HTTP.Port)
	logger.Info("starting API server", "address", address)

	errChan := make(chan error, 1)
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
