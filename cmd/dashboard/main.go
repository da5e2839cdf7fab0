package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/config"
	"github.com/hetulpatel/LiveEdge/internal/dashboard"
	"github.com/hetulpatel/LiveEdge/internal/engine"
	"github.com/hetulpatel/LiveEdge/internal/fetch"
	"github.com/hetulpatel/LiveEdge/internal/kafka"
	"github.com/hetulpatel/LiveEdge/internal/logging"
	"github.com/hetulpatel/LiveEdge/internal/queue"
)

func main() {
	config.LoadDotEnv()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadDashboard()
	if err != nil {
		logging.Fatalf("[dashboard] load config: %v", err)
	}

	client := fetch.NewClient(cfg.RelayURL, fetch.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}))
	orch := engine.New(client, engine.Config{
		Profile:  cfg.Profile,
		Settings: cfg.Settings,
	})

	if cfg.ScanFeed.Enabled {
		brokers := kafka.Brokers()
		if err := kafka.Ready(ctx, brokers, cfg.ScanFeed.Topic, 45*time.Second); err != nil {
			if !errors.Is(err, kafka.ErrTopicSetup) {
				logging.Fatalf("[dashboard] broker: %v", err)
			}
			logging.Warnf("[dashboard] %v", err)
		}

		writer := kafka.NewWriter(brokers, cfg.ScanFeed.Topic)
		defer writer.Close()
		orch.OnScanComplete(queue.ScanSink(writer, 5*time.Second))
		logging.Infof("[dashboard] publishing scans to %s", cfg.ScanFeed.Topic)
	}

	if cfg.AutoRefresh {
		if err := orch.SetAutoRefresh(true, cfg.Interval); err != nil {
			logging.Fatalf("[dashboard] auto-refresh: %v", err)
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           dashboard.NewRouter(dashboard.NewHandler(orch)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Infof("[dashboard] %s on :%d via %s (aggression %d/10, unit $%d, bankroll $%d)",
			cfg.Profile.Event, cfg.Port, cfg.RelayURL, cfg.Settings.Aggression, cfg.Settings.UnitSize, cfg.Settings.Bankroll)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("[dashboard] server error: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Infof("[dashboard] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("[dashboard] shutdown: %v", err)
	}
	orch.Close()
}
