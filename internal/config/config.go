// Package config reads service settings from the environment (and .env).
package config

import (
	"fmt"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/cache"
	"github.com/hetulpatel/LiveEdge/internal/llm"
	"github.com/hetulpatel/LiveEdge/internal/models"
	"github.com/hetulpatel/LiveEdge/internal/profile"
)

// Redis is optional; an empty Addr disables the relay response cache.
type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

func (r Redis) Enabled() bool {
	return r.Addr != ""
}

type Relay struct {
	Port        int
	ProfilePath string
	LLM         llm.Options
	Redis       Redis
	SQLitePath  string
	Audit       bool
}

// LoadRelay reads the relay settings. The searcher location comes from the
// event profile unless overridden.
func LoadRelay() (Relay, error) {
	p, err := profile.Load(envString("PROFILE_PATH", ""))
	if err != nil {
		return Relay{}, err
	}
	timeout := envSeconds("LLM_TIMEOUT_SECONDS", 120*time.Second)
	loc := llm.SearchLocation{
		City:     envString("SEARCH_CITY", p.Location.City),
		Region:   envString("SEARCH_REGION", p.Location.Region),
		Country:  envString("SEARCH_COUNTRY", p.Location.Country),
		Timezone: envString("SEARCH_TIMEZONE", p.Location.Timezone),
	}
	cfg := Relay{
		Port:        envInt("RELAY_PORT", 8787),
		ProfilePath: envString("PROFILE_PATH", ""),
		LLM: llm.Options{
			Provider: envString("LLM_PROVIDER", llm.ProviderAnthropic),
			Anthropic: llm.AnthropicConfig{
				APIKey:      envString("ANTHROPIC_API_KEY", ""),
				BaseURL:     envString("ANTHROPIC_BASE_URL", ""),
				Model:       envString("ANTHROPIC_MODEL", ""),
				MaxTokens:   envInt("LLM_MAX_TOKENS", 4096),
				MaxSearches: envInt("LLM_MAX_SEARCHES", 5),
				Location:    loc,
				Timeout:     timeout,
			},
			OpenAI: llm.OpenAIConfig{
				APIKey:      envString("OPENAI_API_KEY", ""),
				BaseURL:     envString("OPENAI_BASE_URL", ""),
				Model:       envString("OPENAI_MODEL", ""),
				MaxTokens:   envInt("LLM_MAX_TOKENS", 4096),
				Temperature: float32(envFloat("OPENAI_TEMPERATURE", 0)),
				Timeout:     timeout,
			},
			Gemini: llm.GeminiConfig{
				APIKey:  envString("GEMINI_API_KEY", ""),
				BaseURL: envString("GEMINI_BASE_URL", ""),
				Model:   envString("GEMINI_MODEL", ""),
				Timeout: timeout,
			},
		},
		Redis: Redis{
			Addr:     envString("REDIS_ADDR", ""),
			Password: envString("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
			TTL:      envSeconds("RELAY_CACHE_TTL_SECONDS", cache.DefaultResponseTTL),
			Prefix:   envString("RELAY_CACHE_PREFIX", cache.DefaultResponsePrefix),
		},
		SQLitePath: envString("SQLITE_PATH", ""),
		Audit:      envBool("RELAY_AUDIT", false),
	}
	if cfg.Port <= 0 {
		return Relay{}, fmt.Errorf("config: invalid RELAY_PORT %d", cfg.Port)
	}
	// A cached reply must expire before the next scheduled scan asks again.
	if shortest := p.MinInterval(); cfg.Redis.Enabled() && shortest > 0 && cfg.Redis.TTL >= shortest {
		return Relay{}, fmt.Errorf("config: RELAY_CACHE_TTL_SECONDS %d must be below the shortest refresh interval (%ds)",
			int(cfg.Redis.TTL/time.Second), int(shortest/time.Second))
	}
	return cfg, nil
}

type Dashboard struct {
	Port         int
	RelayURL     string
	Profile      *profile.Profile
	Settings     models.Settings
	AutoRefresh  bool
	Interval     time.Duration
	FetchTimeout time.Duration
	ScanFeed     ScanFeed
}

// ScanFeed configures the optional Kafka topic receiving finished scans.
type ScanFeed struct {
	Enabled bool
	Topic   string
	Group   string
	Workers int
}

func LoadDashboard() (Dashboard, error) {
	p, err := profile.Load(envString("PROFILE_PATH", ""))
	if err != nil {
		return Dashboard{}, err
	}
	cfg := Dashboard{
		Port:     envInt("DASHBOARD_PORT", 8080),
		RelayURL: envString("RELAY_URL", "http://localhost:8787/api/claude"),
		Profile:  p,
		Settings: models.Settings{
			Aggression: envInt("AGGRESSION", models.DefaultAggression),
			UnitSize:   envInt("UNIT_SIZE", models.DefaultUnitSize),
			Bankroll:   envInt("BANKROLL", models.DefaultBankroll),
		}.Normalized(),
		AutoRefresh:  envBool("AUTO_REFRESH", false),
		Interval:     envSeconds("REFRESH_INTERVAL_SECONDS", time.Minute),
		FetchTimeout: envSeconds("FETCH_TIMEOUT_SECONDS", 150*time.Second),
		ScanFeed:     LoadScanFeed(),
	}
	if cfg.AutoRefresh && !p.AllowsInterval(cfg.Interval) {
		return Dashboard{}, fmt.Errorf("config: REFRESH_INTERVAL_SECONDS must be one of %v", p.RefreshIntervals)
	}
	return cfg, nil
}

func LoadScanFeed() ScanFeed {
	return ScanFeed{
		Enabled: envBool("SCAN_FEED_ENABLED", false),
		Topic:   envString("SCAN_FEED_TOPIC", "liveedge.scans"),
		Group:   envString("SCAN_FEED_GROUP", "scan-feed"),
		Workers: envInt("SCAN_FEED_WORKERS", 1),
	}
}
