package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tkaraca/vpos-gateway/internal/config"
	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
	"github.com/tkaraca/vpos-gateway/internal/gateway/interpos"
	"github.com/tkaraca/vpos-gateway/internal/gateway/kuveytpos"
	"github.com/tkaraca/vpos-gateway/internal/handlers"
	"github.com/tkaraca/vpos-gateway/internal/storage/postgres"
	"github.com/tkaraca/vpos-gateway/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting vpos gateway service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sessions := postgres.NewSessionRepository(db)

	client := gateway.NewClient(cfg.Gateways.Timeout, logger)

	gateways, accounts, err := buildGateways(cfg, client, logger)
	if err != nil {
		logger.Error("failed to build gateway adapters", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandlers(gateways, accounts, sessions, logger)

	router := http.Handler(h.Routes())

	handler := handlers.Recovery(logger)(router)
	handler = handlers.Logging(logger)(handler)
	handler = handlers.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	reconciler := worker.NewReconciler(
		sessions,
		gateways,
		accounts,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		cfg.Worker.SessionTTL,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go reconciler.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

func buildGateways(cfg *config.Config, client *gateway.Client, logger *slog.Logger) (map[string]gateway.Gateway, map[string]*domain.Account, error) {
	interPosAccount, err := cfg.Gateways.InterPos.Account.Account()
	if err != nil {
		return nil, nil, err
	}
	kuveytPosAccount, err := cfg.Gateways.KuveytPos.Account.Account()
	if err != nil {
		return nil, nil, err
	}

	gateways := map[string]gateway.Gateway{
		interpos.Name: interpos.New(interpos.Config{
			APIURL:       cfg.Gateways.InterPos.APIURL,
			Gateway3DURL: cfg.Gateways.InterPos.Gateway3DURL,
		}, client, logger),
		kuveytpos.Name: kuveytpos.New(kuveytpos.Config{
			APIURL:       cfg.Gateways.KuveytPos.APIURL,
			Gateway3DURL: cfg.Gateways.KuveytPos.Gateway3DURL,
		}, client, logger),
	}

	accounts := map[string]*domain.Account{
		interpos.Name:  interPosAccount,
		kuveytpos.Name: kuveytPosAccount,
	}

	return gateways, accounts, nil
}
