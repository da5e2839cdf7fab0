package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

const (
	defaultAnthropicModel   = "claude-sonnet-4-20250514"
	defaultMaxSearches      = 5
	defaultAnthropicTimeout = 120 * time.Second
)

// SearchLocation biases web search results toward a place.
type SearchLocation struct {
	City     string
	Region   string
	Country  string
	Timezone string
}

type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	MaxSearches int
	Location    SearchLocation
	Timeout     time.Duration
}

// AnthropicProvider calls the Messages API with the server-side web search
// tool enabled.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	maxSearches int
	location    SearchLocation
	timeout     time.Duration
}

func NewAnthropic(cfg AnthropicConfig) (*AnthropicProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	maxSearches := cfg.MaxSearches
	if maxSearches <= 0 {
		maxSearches = defaultMaxSearches
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAnthropicTimeout
	}

	// Throttling is reported to the dashboard rather than retried here.
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicProvider{
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		maxSearches: maxSearches,
		location:    cfg.Location,
		timeout:     timeout,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var raw *http.Response
	msg, err := p.client.Messages.New(ctx, p.params(prompt), option.WithResponseInto(&raw))
	if err != nil {
		return nil, mapAnthropicError(err, raw)
	}

	// Replies interleave text with tool-use blocks; only text is kept.
	parts := make([]string, 0, len(msg.Content))
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	searches := int(msg.Usage.ServerToolUse.WebSearchRequests)
	return &Completion{
		Text:       strings.Join(parts, "\n"),
		StopReason: string(msg.StopReason),
		Usage: map[string]any{
			"input_tokens":  msg.Usage.InputTokens,
			"output_tokens": msg.Usage.OutputTokens,
			"server_tool_use": map[string]any{
				"web_search_requests": searches,
			},
		},
		SearchCount: searches,
	}, nil
}

func (p *AnthropicProvider) params(prompt string) anthropic.MessageNewParams {
	search := anthropic.WebSearchTool20250305Param{
		MaxUses: anthropic.Int(int64(p.maxSearches)),
	}
	if p.location != (SearchLocation{}) {
		search.UserLocation = anthropic.WebSearchTool20250305UserLocationParam{
			City:     optString(p.location.City),
			Region:   optString(p.location.Region),
			Country:  optString(p.location.Country),
			Timezone: optString(p.location.Timezone),
		}
	}
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{{OfWebSearchTool20250305: &search}},
	}
}

// mapAnthropicError turns SDK failures into the relay's error classes. raw is
// the HTTP response when one arrived.
func mapAnthropicError(err error, raw *http.Response) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{Status: apiErr.StatusCode, Body: apiErr.RawJSON()}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || (raw != nil && raw.StatusCode >= 200 && raw.StatusCode < 300) {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return fmt.Errorf("llm: anthropic call: %w", err)
}

func optString(s string) param.Opt[string] {
	if s == "" {
		return param.Opt[string]{}
	}
	return anthropic.String(s)
}
