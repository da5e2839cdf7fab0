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

	"github.com/hetulpatel/LiveEdge/internal/cache"
	"github.com/hetulpatel/LiveEdge/internal/config"
	"github.com/hetulpatel/LiveEdge/internal/llm"
	"github.com/hetulpatel/LiveEdge/internal/logging"
	"github.com/hetulpatel/LiveEdge/internal/relay"
	sqlstore "github.com/hetulpatel/LiveEdge/internal/storage/sqlite"
)

func main() {
	config.LoadDotEnv()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadRelay()
	if err != nil {
		logging.Fatalf("[relay] load config: %v", err)
	}

	relayCfg := relay.Config{
		ProviderName:  cfg.LLM.Provider,
		CredentialEnv: llm.CredentialEnv(cfg.LLM.Provider),
	}

	provider, err := llm.New(ctx, cfg.LLM)
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		// Keep serving so every call reports the missing key.
		logging.Errorf("[relay] %s not set; relay calls will fail with 500", relayCfg.CredentialEnv)
	case err != nil:
		logging.Fatalf("[relay] init provider: %v", err)
	default:
		relayCfg.Provider = provider
	}

	if cfg.Redis.Enabled() {
		rc, err := cache.NewRedisResponseCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, cfg.Redis.Prefix)
		if err != nil {
			logging.Fatalf("[relay] redis cache: %v", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := cache.Ping(pingCtx, rc); err != nil {
			logging.Warnf("[relay] redis unreachable at %s, running uncached: %v", cfg.Redis.Addr, err)
			rc.Close()
		} else {
			defer rc.Close()
			relayCfg.Cache = rc
			relayCfg.CacheWindow = cfg.Redis.TTL
			logging.Infof("[relay] response cache enabled (ttl=%s)", cfg.Redis.TTL)
		}
		cancel()
	}

	if cfg.Audit {
		store, err := sqlstore.Open(cfg.SQLitePath)
		if err != nil {
			logging.Fatalf("[relay] open sqlite: %v", err)
		}
		defer store.Close()
		if err := store.CreateTables(ctx); err != nil {
			logging.Fatalf("[relay] create tables: %v", err)
		}
		relayCfg.Audit = store
		logging.Infof("[relay] auditing calls to %s", store.Path())
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           relay.NewRouter(relay.NewHandler(relayCfg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Infof("[relay] listening on :%d (provider=%s)", cfg.Port, cfg.LLM.Provider)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("[relay] server error: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Infof("[relay] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("[relay] shutdown: %v", err)
	}
}
