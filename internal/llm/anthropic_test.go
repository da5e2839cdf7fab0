package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type messagesRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
	Tools []struct {
		Type         string `json:"type"`
		Name         string `json:"name"`
		MaxUses      int    `json:"max_uses"`
		UserLocation *struct {
			Type    string `json:"type"`
			City    string `json:"city"`
			Country string `json:"country"`
			Region  string `json:"region"`
		} `json:"user_location"`
	} `json:"tools"`
}

func TestAnthropicCompleteJoinsTextBlocks(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "secret" || r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-20250514",
			"content":[
				{"type":"text","text":"Searching now."},
				{"type":"server_tool_use","id":"srvtoolu_1","name":"web_search","input":{"query":"score"}},
				{"type":"web_search_tool_result","tool_use_id":"srvtoolu_1","content":[]},
				{"type":"text","text":"{\"game\":{}}"},
				{"type":"text","text":""}
			],
			"stop_reason":"end_turn",
			"usage":{"input_tokens":10,"output_tokens":20,"server_tool_use":{"web_search_requests":3}}
		}`)
	}))
	defer server.Close()

	p, err := NewAnthropic(AnthropicConfig{
		APIKey:   "secret",
		BaseURL:  server.URL,
		Location: SearchLocation{City: "Lynn", Country: "US"},
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := p.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out.Text != "Searching now.\n{\"game\":{}}" {
		t.Errorf("Text = %q", out.Text)
	}
	if out.SearchCount != 3 || out.StopReason != "end_turn" {
		t.Errorf("SearchCount = %d, StopReason = %q", out.SearchCount, out.StopReason)
	}
	if out.Usage["input_tokens"] != int64(10) || out.Usage["output_tokens"] != int64(20) {
		t.Errorf("Usage = %v", out.Usage)
	}

	if got.Model != defaultAnthropicModel || got.MaxTokens != 4096 || len(got.Messages) != 1 {
		t.Fatalf("request = %+v", got)
	}
	if msg := got.Messages[0]; msg.Role != "user" || len(msg.Content) != 1 || msg.Content[0].Text != "hello" {
		t.Errorf("message = %+v", msg)
	}
	if len(got.Tools) != 1 || got.Tools[0].Type != "web_search_20250305" || got.Tools[0].Name != "web_search" || got.Tools[0].MaxUses != defaultMaxSearches {
		t.Fatalf("tools = %+v", got.Tools)
	}
	if loc := got.Tools[0].UserLocation; loc == nil || loc.Type != "approximate" || loc.City != "Lynn" || loc.Region != "" {
		t.Errorf("user_location = %+v", loc)
	}
}

func TestAnthropicOmitsEmptyLocation(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"type":"message","content":[{"type":"text","text":"ok"}],"usage":{}}`)
	}))
	defer server.Close()

	p, _ := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: server.URL, MaxSearches: 2})
	out, err := p.Complete(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if out.SearchCount != 0 || out.Text != "ok" {
		t.Errorf("out = %+v", out)
	}
	if len(got.Tools) != 1 || got.Tools[0].UserLocation != nil || got.Tools[0].MaxUses != 2 {
		t.Errorf("tools = %+v", got.Tools)
	}
}

func TestAnthropicUpstreamStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer server.Close()

	p, _ := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: server.URL})
	_, err := p.Complete(context.Background(), "x")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if upstream.Status != http.StatusTooManyRequests || !upstream.RateLimited() {
		t.Errorf("upstream = %+v", upstream)
	}
	if !strings.Contains(upstream.Body, "rate_limit_error") {
		t.Errorf("body = %q", upstream.Body)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d, want 1 (no retries)", n)
	}
}

func TestAnthropicMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "<html>gateway</html>")
	}))
	defer server.Close()

	p, _ := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: server.URL})
	if _, err := p.Complete(context.Background(), "x"); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestProvidersRequireCredential(t *testing.T) {
	if _, err := NewAnthropic(AnthropicConfig{APIKey: "  "}); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("NewAnthropic error = %v", err)
	}
	if _, err := NewOpenAI(OpenAIConfig{}); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("NewOpenAI error = %v", err)
	}
	if _, err := NewGemini(context.Background(), GeminiConfig{}); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("NewGemini error = %v", err)
	}
}
