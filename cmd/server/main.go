package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/config"
	"github.com/cryptichearts/backend/internal/handlers"
	"github.com/cryptichearts/backend/internal/realtime"
	"github.com/cryptichearts/backend/internal/records"
	"github.com/cryptichearts/backend/internal/services"
	"github.com/cryptichearts/backend/internal/storage"
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	network, closeStore, err := records.Open(ctx, records.OpenOptions{
		Backend:  cfg.StoreBackend,
		DataDir:  cfg.DataDir,
		MongoURI: cfg.MongoURI,
		MongoDB:  cfg.MongoDB,
	})
	cancel()
	if err != nil {
		glog.Fatalf("Failed to open record store: %v", err)
	}

	var agentStore *storage.JSONStore
	if cfg.DataDir != "" {
		if agentStore, err = storage.NewJSONStore(cfg.DataDir, "agents.json"); err != nil {
			glog.Fatalf("Failed to open agent store: %v", err)
		}
	}
	agents, err := services.NewAgentService(agentStore)
	if err != nil {
		glog.Fatalf("Failed to load agents: %v", err)
	}

	hub := realtime.NewHub(0)
	sessions := services.NewSessionFactory(network, hub, services.Options{
		BatchLimit:    cfg.BatchConcurrency,
		MaxImageBytes: cfg.MaxImageBytes,
	})

	router := handlers.NewRouter(handlers.RouterConfig{
		Sessions:      sessions,
		Agents:        agents,
		Hub:           hub,
		JWTSecret:     cfg.JWTSecret,
		JWTExpiration: cfg.JWTExpiration,
		CORSOrigins:   cfg.CORSOrigins,
	})

	// no WriteTimeout: message streams are long-lived
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		glog.Infof("CrypticHearts API server starting on %s (store=%s)", cfg.ServerAddress, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("Could not listen on %s: %v", cfg.ServerAddress, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("Server forced to shutdown: %v", err)
	}
	if err := closeStore(shutdownCtx); err != nil {
		glog.Errorf("Closing record store: %v", err)
	}
	glog.Info("Server exiting gracefully")
}
