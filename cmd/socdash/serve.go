package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/socdash/socdash/internal/config"
	"github.com/socdash/socdash/internal/handlers"
	"github.com/socdash/socdash/internal/metrics"
	"github.com/socdash/socdash/internal/middleware"
	"github.com/socdash/socdash/internal/services"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(conf func() *config.Config) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(conf(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create missing tables before serving")
	return cmd
}

func serve(cfg *config.Config, migrate bool) error {
	log.Printf("Starting socdash...")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	eventStore, err := openStore(cfg, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := eventStore.Close(); err != nil {
			log.Printf("Error closing event store: %v", err)
		}
	}()
	if migrate {
		if err := eventStore.Migrate(cfg.StoreDriver); err != nil {
			return err
		}
	}

	model, pipeline, err := openModel(cfg)
	if err != nil {
		return err
	}
	log.Printf("Language model: provider=%s model=%s", cfg.LLMProvider, cfg.LLMModel)

	incidentService := services.NewIncidentService(eventStore, cfg.IncidentWindow, cfg.MaxWindow, cfg.IncidentsLimit, m)
	apiHandler := handlers.NewAPIHandler(
		incidentService,
		services.NewEventService(eventStore, cfg.EventsWindow, cfg.EventsLimit),
		services.NewTriageService(eventStore, m),
		services.NewQueryService(eventStore, pipeline, m),
		services.NewStatsService(eventStore),
		services.NewAnalysisService(model),
	)
	httpHandler := handlers.NewHTTPHandler(eventStore, reg)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORSOrigins...)
	liveHandler := handlers.NewIncidentsWSHandler(incidentService, cfg.LivePushInterval, m, corsMiddleware)

	// Set up HTTP server routes
	mux := http.NewServeMux()
	httpHandler.SetupRoutes(mux)
	apiHandler.SetupRoutes(mux)
	liveHandler.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           middleware.RequestIDMiddleware(corsMiddleware.Wrap(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Printf("Health check endpoint: http://localhost:%d/health", cfg.HTTPPort)
	log.Printf("API base URL: http://localhost:%d/api", cfg.HTTPPort)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("Received shutdown signal, cleaning up...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	log.Println("Shutdown complete")
	return nil
}
