package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/models"
)

func TestLoadRelayDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := LoadRelay()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8787 || cfg.LLM.Provider != "anthropic" || cfg.LLM.Anthropic.APIKey != "sk-test" {
		t.Errorf("cfg = %+v", cfg)
	}
	if loc := cfg.LLM.Anthropic.Location; loc.City != "Lynn" || loc.Timezone != "America/New_York" {
		t.Errorf("location = %+v", loc)
	}
	if cfg.Redis.Enabled() || cfg.Redis.TTL != 20*time.Second || cfg.Redis.Prefix != "relay_response" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestLoadRelayOverrides(t *testing.T) {
	t.Setenv("RELAY_PORT", "9000")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("SEARCH_CITY", "Seattle")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("RELAY_CACHE_TTL_SECONDS", "10")
	t.Setenv("RELAY_AUDIT", "true")

	cfg, err := LoadRelay()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9000 || cfg.LLM.Provider != "openai" || cfg.LLM.OpenAI.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LLM.Anthropic.Location.City != "Seattle" || !cfg.Audit {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.TTL != 10*time.Second {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestLoadRelayRejectsCacheTTLAtRefreshInterval(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6379")
	for _, ttl := range []string{"30", "45"} {
		t.Setenv("RELAY_CACHE_TTL_SECONDS", ttl)
		if _, err := LoadRelay(); err == nil {
			t.Errorf("cache TTL %ss accepted with a 30s refresh interval", ttl)
		}
	}

	// Without redis the TTL is unused.
	t.Setenv("REDIS_ADDR", "")
	if _, err := LoadRelay(); err != nil {
		t.Errorf("LoadRelay() error = %v", err)
	}
}

func TestLoadDashboard(t *testing.T) {
	t.Setenv("AGGRESSION", "14")
	t.Setenv("UNIT_SIZE", "50")
	t.Setenv("BANKROLL", "-3")
	t.Setenv("AUTO_REFRESH", "true")
	t.Setenv("REFRESH_INTERVAL_SECONDS", "90")

	cfg, err := LoadDashboard()
	if err != nil {
		t.Fatal(err)
	}
	want := models.Settings{Aggression: 10, UnitSize: 50, Bankroll: 500}
	if cfg.Settings != want {
		t.Errorf("settings = %+v, want %+v", cfg.Settings, want)
	}
	if !cfg.AutoRefresh || cfg.Interval != 90*time.Second || cfg.Profile == nil {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadDashboardRejectsInterval(t *testing.T) {
	t.Setenv("AUTO_REFRESH", "true")
	t.Setenv("REFRESH_INTERVAL_SECONDS", "45")
	if _, err := LoadDashboard(); err == nil {
		t.Error("45s interval accepted")
	}
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LIVEEDGE_TEST_A=from-file\nLIVEEDGE_TEST_B=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LIVEEDGE_TEST_A", "from-env")
	t.Setenv("LIVEEDGE_TEST_B", "")
	os.Unsetenv("LIVEEDGE_TEST_B")

	LoadDotEnv(path)
	if got := os.Getenv("LIVEEDGE_TEST_A"); got != "from-env" {
		t.Errorf("A = %q", got)
	}
	if got := os.Getenv("LIVEEDGE_TEST_B"); got != "from-file" {
		t.Errorf("B = %q", got)
	}
}
