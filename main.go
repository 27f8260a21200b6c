package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/alfonmga/hodlbitcoin/src/config"
	"github.com/alfonmga/hodlbitcoin/src/database"
	"github.com/alfonmga/hodlbitcoin/src/engine"
	"github.com/alfonmga/hodlbitcoin/src/handlers"
	"github.com/alfonmga/hodlbitcoin/src/logger"
	"github.com/alfonmga/hodlbitcoin/src/services"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("hodlbitcoin server starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.L.Info("Loading bundled price dataset...", "path", config.Cfg.DatasetPath)
	datasetBytes, err := os.ReadFile(config.Cfg.DatasetPath)
	if err != nil {
		logger.L.Error("Failed to read dataset file", "path", config.Cfg.DatasetPath, "error", err)
		stdlog.Fatalf("failed to read dataset file %s: %v", config.Cfg.DatasetPath, err)
	}

	// The engine factory is injected into the provider rather than published
	// through a process-wide global; Acquire blocks until registration.
	provider := engine.NewProvider()
	provider.Register(engine.SQLiteFactory())
	eng, err := provider.Acquire(ctx)
	if err != nil {
		logger.L.Error("Failed to acquire query engine", "error", err)
		stdlog.Fatalf("failed to acquire query engine: %v", err)
	}

	binder := database.NewBinder()
	if err := binder.SetEngine(eng); err != nil {
		stdlog.Fatalf("failed to bind dataset: %v", err)
	}
	if err := binder.SetData(datasetBytes); err != nil {
		stdlog.Fatalf("failed to bind dataset: %v", err)
	}
	defer binder.Close()

	// The one query this system issues. A failure here is fatal: there is no
	// fallback data source.
	rows, err := database.RunQuery(binder.Handle(), database.PriceQuery)
	if err != nil {
		logger.L.Error("Dataset query failed", "error", err)
		stdlog.Fatalf("dataset query failed: %v", err)
	}
	if len(rows) == 0 {
		stdlog.Fatalf("dataset at %s contains no price rows", config.Cfg.DatasetPath)
	}
	logger.L.Info("Price dataset loaded", "rows", len(rows))

	logger.L.Info("Initializing chart cache...")
	chartCache := cache.New(config.Cfg.ChartCacheTTL, 2*config.Cfg.ChartCacheTTL)

	logger.L.Info("Initializing services and handlers...")
	rateService := services.NewRateService(config.Cfg.RateAPIURL, config.Cfg.RatePollInterval, config.Cfg.HTTPClientTimeout)
	rateService.Start(ctx)

	chartService := services.NewChartService(rows, rateService, chartCache)

	chartHandler := handlers.NewChartHandler(chartService)
	rateHandler := handlers.NewRateHandler(rateService)
	healthHandler := handlers.NewHealthHandler(chartService)

	logger.L.Info("Configuring routes...")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chart-data", chartHandler.HandleGetChartData)
	mux.HandleFunc("GET /api/exchange-rate", rateHandler.HandleGetExchangeRate)
	mux.HandleFunc("GET /api/health", healthHandler.HandleHealth)

	staticFS := http.FileServer(http.Dir(config.Cfg.StaticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(config.Cfg.StaticDir, "index.html"))
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := handlers.EnableCORS(config.Cfg.AllowedOrigin)(
		handlers.RateLimitMiddleware(
			handlers.RequestIDMiddleware(mux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.L.Info("Shutdown signal received, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L.Error("Server shutdown failed", "error", err)
		}
	}()

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
