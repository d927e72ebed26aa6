package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ssactivewear-mcp/internal/config"
	"ssactivewear-mcp/internal/events"
	"ssactivewear-mcp/internal/httpserver"
	productsvc "ssactivewear-mcp/internal/service/product"
	"ssactivewear-mcp/internal/ssapi"
	"ssactivewear-mcp/internal/tools"
)

func main() {
	cfg, err := config.Load(".env", os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := config.NewLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("component", "api"))
	cfg.Report(logger)

	client := ssapi.New(cfg.APIOptions(), logger)
	productService := productsvc.New(client, productsvc.Options{PreferredWarehouses: cfg.PreferredWarehouses}, logger)
	publisher := events.New(cfg.KafkaBroker, cfg.EventsTopic, logger)
	defer publisher.Close()

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Catalog:     productService,
		Tools:       tools.New(productService, publisher, logger),
		Missing:     cfg.Missing,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
