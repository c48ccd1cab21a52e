package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"fleetops/vanlist/internal/api"
	"fleetops/vanlist/internal/config"
	"fleetops/vanlist/internal/db"
	"fleetops/vanlist/internal/logging"
	"fleetops/vanlist/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Van List starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	if err := db.InitPostgres(cfg.DSN()); err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (sqlx): %v", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	ormDB, err := db.InitPostgresORM(cfg.DSN())
	if err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (GORM): %v", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	if err := db.Migrate(ormDB); err != nil {
		logging.Error("Schema migration failed", "error", err.Error())
		log.Fatalf("Schema migration failed: %v", err)
	}
	logging.Info("Schema migrated")

	deps := api.InitDependencies(cfg, ormDB, db.DB)

	if err := deps.Services.User.EnsureDefaultAdmin(context.Background(), cfg.DefaultAdminUsername, cfg.DefaultAdminPassword); err != nil {
		logging.Error("Failed to seed default admin", "error", err.Error())
		log.Fatalf("Failed to seed default admin: %v", err)
	}

	router := routes.RegisterRoutes(deps, ormDB, cfg.SecretKey)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logging.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server exited with error", "error", err.Error())
		log.Fatalf("Server exited with error: %v", err)
	}

	_ = deps.Services.Cache.Close()
	logging.Info("Server stopped")
}
