package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/llm"
	sqlstore "github.com/hetulpatel/LiveEdge/internal/storage/sqlite"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	out     *llm.Completion
	err     error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(ctx context.Context, prompt string) (*llm.Completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.prompts = append(p.prompts, prompt)
	return p.out, p.err
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	return b, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = body
	return nil
}

func (c *memoryCache) Close() error { return nil }

type memoryAudit struct {
	mu    sync.Mutex
	calls []sqlstore.RelayCall
}

func (a *memoryAudit) InsertRelayCall(ctx context.Context, call sqlstore.RelayCall) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
	return nil
}

// testClock is a settable time source shared with the server goroutine.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 2, 8, 20, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %q", rec.Body.String())
	}
	return out
}

func TestRelaySuccess(t *testing.T) {
	p := &fakeProvider{out: &llm.Completion{
		Text:        "{\"game\":{}}",
		StopReason:  "end_turn",
		Usage:       map[string]any{"input_tokens": 12.0},
		SearchCount: 2,
	}}
	audit := &memoryAudit{}
	router := NewRouter(NewHandler(Config{Provider: p, Audit: audit}))

	for _, path := range []string{"/api/claude", "/api/relay"} {
		rec := do(t, router, http.MethodPost, path, `{"prompt":"scan","type":"full_scan"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d body = %s", path, rec.Code, rec.Body.String())
		}
		got := decodeBody(t, rec)
		if got["text"] != "{\"game\":{}}" || got["stop_reason"] != "end_turn" || got["search_count"] != 2.0 {
			t.Errorf("%s body = %v", path, got)
		}
		if usage, _ := got["usage"].(map[string]any); usage["input_tokens"] != 12.0 {
			t.Errorf("%s usage = %v", path, got["usage"])
		}
	}
	if p.calls != 2 || p.prompts[0] != "scan" {
		t.Errorf("provider calls = %d prompts = %v", p.calls, p.prompts)
	}
	if len(audit.calls) != 2 || audit.calls[0].Status != 200 || audit.calls[0].SearchCount != 2 || audit.calls[0].PromptChars != 4 {
		t.Errorf("audit = %+v", audit.calls)
	}
}

func TestRelayErrorMapping(t *testing.T) {
	cases := []struct {
		name        string
		provider    llm.Provider
		method      string
		body        string
		wantStatus  int
		wantError   string
		wantDetails string
	}{
		{"missing credential", nil, http.MethodPost, `{"prompt":"x"}`, 500, "ANTHROPIC_API_KEY not set in server environment", ""},
		{"missing prompt", &fakeProvider{}, http.MethodPost, `{"type":"full_scan"}`, 400, "Missing prompt", ""},
		{"blank prompt", &fakeProvider{}, http.MethodPost, `{"prompt":"   "}`, 400, "Missing prompt", ""},
		{"unreadable body", &fakeProvider{}, http.MethodPost, `not json`, 400, "Invalid request body", ""},
		{"method not allowed", &fakeProvider{}, http.MethodGet, ``, 405, "Method not allowed", ""},
		{"upstream rate limit", &fakeProvider{err: &llm.UpstreamError{Status: 429, Body: `{"type":"rate_limit_error"}`}}, http.MethodPost, `{"prompt":"x"}`, 429, "Upstream API 429", `{"type":"rate_limit_error"}`},
		{"upstream overloaded", &fakeProvider{err: &llm.UpstreamError{Status: 529, Body: "overloaded"}}, http.MethodPost, `{"prompt":"x"}`, 529, "Upstream API 529", "overloaded"},
		{"malformed upstream", &fakeProvider{err: llm.ErrMalformedResponse}, http.MethodPost, `{"prompt":"x"}`, 500, "Invalid JSON from upstream", ""},
		{"unexpected failure", &fakeProvider{err: errors.New("dial tcp: refused")}, http.MethodPost, `{"prompt":"x"}`, 500, "Server error", "dial tcp: refused"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := NewRouter(NewHandler(Config{Provider: tc.provider}))
			rec := do(t, router, tc.method, "/api/claude", tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			got := decodeBody(t, rec)
			if got["error"] != tc.wantError {
				t.Errorf("error = %v, want %q", got["error"], tc.wantError)
			}
			if tc.wantDetails != "" && got["details"] != tc.wantDetails {
				t.Errorf("details = %v, want %q", got["details"], tc.wantDetails)
			}
		})
	}
}

func TestRelayOptions(t *testing.T) {
	router := NewRouter(NewHandler(Config{Provider: &fakeProvider{}}))

	rec := do(t, router, http.MethodOptions, "/api/claude", "")
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("OPTIONS status = %d body = %q", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/claude", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	pre := httptest.NewRecorder()
	router.ServeHTTP(pre, req)
	if pre.Code != http.StatusOK || pre.Body.Len() != 0 {
		t.Errorf("preflight status = %d body = %q", pre.Code, pre.Body.String())
	}
	if pre.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("preflight missing Access-Control-Allow-Origin")
	}
}

func TestRelayCacheHitSkipsProvider(t *testing.T) {
	p := &fakeProvider{out: &llm.Completion{Text: "first"}}
	c := &memoryCache{}
	audit := &memoryAudit{}
	h := NewHandler(Config{Provider: p, Cache: c, Audit: audit})
	h.now = newTestClock().Now
	router := NewRouter(h)

	first := do(t, router, http.MethodPost, "/api/claude", `{"prompt":"same"}`)
	p.out = &llm.Completion{Text: "second"}
	second := do(t, router, http.MethodPost, "/api/claude", `{"prompt":"same"}`)

	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls)
	}
	if first.Body.String() != second.Body.String() || second.Header().Get("X-Relay-Cache") != "hit" {
		t.Errorf("second response = %q headers = %v", second.Body.String(), second.Header())
	}
	if len(audit.calls) != 2 || !audit.calls[1].Cached {
		t.Errorf("audit = %+v", audit.calls)
	}

	do(t, router, http.MethodPost, "/api/claude", `{"prompt":"different"}`)
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2", p.calls)
	}
}

func TestRelayCacheExpiresWithWindow(t *testing.T) {
	p := &fakeProvider{out: &llm.Completion{Text: "first"}}
	clock := newTestClock()
	h := NewHandler(Config{Provider: p, Cache: &memoryCache{}, CacheWindow: 20 * time.Second})
	h.now = clock.Now
	router := NewRouter(h)

	do(t, router, http.MethodPost, "/api/claude", `{"prompt":"same"}`)
	clock.Advance(19 * time.Second)
	if rec := do(t, router, http.MethodPost, "/api/claude", `{"prompt":"same"}`); rec.Header().Get("X-Relay-Cache") != "hit" {
		t.Errorf("repeat within window missed the cache")
	}

	clock.Advance(time.Second)
	p.out = &llm.Completion{Text: "second"}
	rec := do(t, router, http.MethodPost, "/api/claude", `{"prompt":"same"}`)
	if rec.Header().Get("X-Relay-Cache") != "" || decodeBody(t, rec)["text"] != "second" {
		t.Errorf("next window served %q from cache", rec.Body.String())
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2", p.calls)
	}
}

func TestRelayErrorsAreNotCached(t *testing.T) {
	p := &fakeProvider{err: &llm.UpstreamError{Status: 429}}
	c := &memoryCache{}
	router := NewRouter(NewHandler(Config{Provider: p, Cache: c}))

	do(t, router, http.MethodPost, "/api/claude", `{"prompt":"x"}`)
	if len(c.data) != 0 {
		t.Errorf("cache = %v", c.data)
	}
}

func TestHealth(t *testing.T) {
	router := NewRouter(NewHandler(Config{Provider: &fakeProvider{}}))
	got := decodeBody(t, do(t, router, http.MethodGet, "/health", ""))
	if got["status"] != "ok" || got["provider"] != "fake" {
		t.Errorf("health = %v", got)
	}

	router = NewRouter(NewHandler(Config{ProviderName: "anthropic"}))
	got = decodeBody(t, do(t, router, http.MethodGet, "/health", ""))
	if got["status"] != "missing_credential" || got["provider"] != "anthropic" {
		t.Errorf("health = %v", got)
	}
}
