package main

import (
	"context"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/config"
	"github.com/hetulpatel/LiveEdge/internal/logging"
	"github.com/hetulpatel/LiveEdge/internal/storage/sqlite"
)

func main() {
	config.LoadDotEnv()
	logging.InitFromEnv()

	cfg, err := config.LoadRelay()
	if err != nil {
		logging.Fatalf("[sqlite] load config: %v", err)
	}
	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		logging.Fatalf("[sqlite] open: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[sqlite] create tables: %v", err)
	}
	logging.Infof("[sqlite] relay_calls table ready at %s", store.Path())
}
