package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/config"
	"github.com/hetulpatel/LiveEdge/internal/kafka"
	"github.com/hetulpatel/LiveEdge/internal/logging"
	"github.com/hetulpatel/LiveEdge/internal/workers"
)

func main() {
	config.LoadDotEnv()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := config.LoadScanFeed()
	brokers := kafka.Brokers()

	if err := kafka.Ready(ctx, brokers, feed.Topic, 45*time.Second); err != nil {
		if !errors.Is(err, kafka.ErrTopicSetup) {
			logging.Fatalf("[scan-feed] broker: %v", err)
		}
		logging.Warnf("[scan-feed] %v", err)
	}

	printer := workers.NewPrinter(os.Stdout)
	logging.Infof("[scan-feed] consuming %s with group %q (%d workers)", feed.Topic, feed.Group, feed.Workers)
	workers.Run(ctx, brokers, feed.Topic, feed.Group, feed.Workers, printer.Handle)
}
