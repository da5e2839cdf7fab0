package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/logging"
)

const (
	DefaultURL     = "http://localhost:8787/api/claude"
	defaultTimeout = 150 * time.Second
	maxBodyBytes   = 8 << 20
)

// Response is the outcome of one relay call. Failures are carried in Error,
// never as a Go error.
type Response struct {
	Text        string
	Error       string
	Details     string
	SearchCount int
	StatusCode  int
}

func (r Response) Failed() bool {
	return r.Error != ""
}

type Client struct {
	url        string
	scanType   string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithType(t string) Option {
	return func(c *Client) {
		if t != "" {
			c.scanType = t
		}
	}
}

func NewClient(url string, opts ...Option) *Client {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        url,
		scanType:   "full_scan",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type relayRequest struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type,omitempty"`
}

type relayResponse struct {
	Text        string `json:"text"`
	SearchCount int    `json:"search_count"`
	Error       string `json:"error"`
	Details     any    `json:"details"`
}

// SendPrompt posts the prompt to the relay and returns its text.
func (c *Client) SendPrompt(ctx context.Context, prompt string) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{Error: fmt.Sprintf("relay call panicked: %v", r)}
		}
	}()

	body, err := json.Marshal(relayRequest{Prompt: prompt, Type: c.scanType})
	if err != nil {
		return Response{Error: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Warnf("[fetch] relay request failed: %v", err)
		return Response{Error: err.Error()}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return Response{Error: err.Error(), StatusCode: httpResp.StatusCode}
	}
	logging.Debugf("[fetch] relay status=%d bytes=%d elapsed=%s", httpResp.StatusCode, len(raw), time.Since(start))

	var decoded relayResponse
	jsonErr := json.Unmarshal(raw, &decoded)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		out := Response{
			Error:      fmt.Sprintf("HTTP %d", httpResp.StatusCode),
			StatusCode: httpResp.StatusCode,
		}
		if jsonErr == nil {
			if decoded.Error != "" {
				out.Error = decoded.Error
			}
			out.Details = detailsText(decoded.Details)
		}
		return out
	}
	if jsonErr != nil {
		return Response{Error: "Invalid JSON from relay", Details: jsonErr.Error(), StatusCode: httpResp.StatusCode}
	}
	return Response{
		Text:        decoded.Text,
		SearchCount: decoded.SearchCount,
		StatusCode:  httpResp.StatusCode,
	}
}

func detailsText(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
