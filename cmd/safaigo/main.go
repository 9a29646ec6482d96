package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"safaigo/internal/api"
	"safaigo/pkg/config"
	"safaigo/pkg/db"
	"safaigo/pkg/geocode"
	"safaigo/pkg/logging"
	"safaigo/pkg/region"
	"safaigo/pkg/request"
	"safaigo/pkg/resolver"
	"safaigo/pkg/store"
	"safaigo/pkg/tracker"
	"safaigo/pkg/version"
)

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/safaigo.yaml", "Path to config file")
	trace      = flag.Bool("trace", false, "Enable trace logging")
)

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Optional .env for API keys; a missing file is fine.
	_ = godotenv.Load()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()
	logging.EnableTrace = *trace

	slog.Info("SafaiGo Started", "version", version.Version)

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	st := store.NewSQLiteStore(dbConn)
	defer st.Close()

	cat, err := loadCatalog(appCfg)
	if err != nil {
		return err
	}
	slog.Info("Region catalog loaded", "label", cat.Label(), "regions", cat.Len())

	tr := tracker.New()
	reqClient := request.New(request.Options{
		Timeout:   appCfg.Request.Timeout.Std(),
		Retries:   appCfg.Request.Retries,
		BaseDelay: appCfg.Request.BaseDelay.Std(),
		RPS:       appCfg.Request.RatePerSec,
		UserAgent: appCfg.Request.UserAgent,
	}, tr)

	providers, err := buildProviders(appCfg, reqClient, tr)
	if err != nil {
		return err
	}

	res := resolver.New(cat, providers, geocode.NewSanitizer(), resolver.Thresholds{
		MediumKm:       appCfg.Resolver.MediumRadius.Km(),
		NearFallbackKm: appCfg.Resolver.NearFallbackRadius.Km(),
	}, slog.Default())

	srv := api.NewServer(appCfg.Server.Address,
		api.NewLocationHandler(res),
		api.NewBinsHandler(st, appCfg.Proximity.LocalRadius.Km(), appCfg.Proximity.NearbyRadius.Km()),
		api.NewStatsHandler(tr, st),
		cancel)
	srv.Handler = loggingMiddleware(srv.Handler)

	return serve(ctx, srv)
}

func loadCatalog(cfg *config.Config) (*region.Catalog, error) {
	if cfg.Catalog.Path != "" {
		cat, err := region.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load region catalog: %w", err)
		}
		return cat, nil
	}
	cat, err := region.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded region catalog: %w", err)
	}
	return cat, nil
}

func buildProviders(cfg *config.Config, rc *request.Client, tr *tracker.Tracker) ([]geocode.Provider, error) {
	var providers []geocode.Provider
	for _, pc := range cfg.Geocoder.EnabledProviders() {
		p, err := geocode.NewProvider(geocode.ProviderConfig{
			Name:    pc.Name,
			BaseURL: pc.BaseURL,
			Timeout: pc.Timeout.Std(),
			Trust:   geocode.Trust(pc.Trust),
			APIKey:  pc.Key,
		}, rc, tr)
		if err != nil {
			return nil, fmt.Errorf("failed to build provider %q: %w", pc.Name, err)
		}
		slog.Info("Geocoding provider enabled", "provider", pc.Name)
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		slog.Warn("No geocoding providers enabled, will rely on the region catalog alone")
	}
	return providers, nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		slog.Info("Signal received, shutting down", "signal", sig)
	case <-ctx.Done():
		slog.Info("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
