// Package main initializes and starts the wardrobe backend, setting up
// configuration, logging, the database, the weather cache, services,
// handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/config"
	"github.com/atinyakov/wardrobix/internal/db"
	"github.com/atinyakov/wardrobix/internal/logger"
	"github.com/atinyakov/wardrobix/internal/repository"
	"github.com/atinyakov/wardrobix/internal/server/handler/http"
	"github.com/atinyakov/wardrobix/internal/service"
	"github.com/atinyakov/wardrobix/internal/service/scoring"
	"github.com/atinyakov/wardrobix/internal/weather"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	if options.WeatherAPIKey == "" {
		zapLogger.Warn("no weather API key configured, recommendations will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Weather lookups are cached per city; the janitor drops stale reports.
	weatherCache := weather.NewCache(
		weather.NewClient(options.WeatherBaseURL, options.WeatherAPIKey, nil, zapLogger),
		options.WeatherTTL,
		zapLogger,
	)
	janitorDone := weatherCache.StartJanitor(ctx, options.WeatherTTL)

	engine, err := scoring.New(nil)
	if err != nil {
		zapLogger.Fatal("cannot load scoring tables", zap.Error(err))
	}

	// Initialize repositories.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	clothesRepo := repository.NewPostgresClothesRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo)
	wardrobeService := service.NewWardrobeService(clothesRepo)
	recommendService := service.NewRecommendService(wardrobeService, weatherCache, engine)

	// Build the router with middleware and routes.
	router := http.NewRouter(
		&http.AuthHandler{AuthService: authService, Logger: zapLogger},
		&http.ClothesHandler{WardrobeService: wardrobeService, Logger: zapLogger},
		&http.RecommendHandler{RecommendService: recommendService, Logger: zapLogger},
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSEnabled() {
			server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Warn("starting plain HTTP server, Basic credentials travel unencrypted", zap.String("addr", options.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
	stop()
	<-janitorDone
}
