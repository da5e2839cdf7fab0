// Package relay is the server-side half of a scan: it forwards a prompt to
// the configured model provider, keeps the credential off the client and
// reshapes the provider reply into {text, stop_reason, usage, search_count}.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/cache"
	"github.com/hetulpatel/LiveEdge/internal/hashutil"
	"github.com/hetulpatel/LiveEdge/internal/llm"
	"github.com/hetulpatel/LiveEdge/internal/logging"
	sqlstore "github.com/hetulpatel/LiveEdge/internal/storage/sqlite"
)

const (
	defaultMaxBodyBytes = 1 << 20
	defaultScanType     = "full_scan"
)

// AuditStore records relay calls. *sqlite.Store satisfies it.
type AuditStore interface {
	InsertRelayCall(ctx context.Context, call sqlstore.RelayCall) error
}

type Config struct {
	// Provider is nil when the server credential is missing; every relay
	// call then fails with 500.
	Provider      llm.Provider
	ProviderName  string
	CredentialEnv string
	Cache         cache.ResponseCache
	// CacheWindow buckets cache keys by time so a reply is only reused
	// within the window it was fetched in. Defaults to the cache TTL.
	CacheWindow   time.Duration
	Audit         AuditStore
	MaxBodyBytes  int64
}

type Handler struct {
	provider      llm.Provider
	providerName  string
	credentialEnv string
	cache         cache.ResponseCache
	cacheWindow   time.Duration
	audit         AuditStore
	maxBodyBytes  int64
	now           func() time.Time
}

func NewHandler(cfg Config) *Handler {
	name := cfg.ProviderName
	if cfg.Provider != nil {
		name = cfg.Provider.Name()
	}
	env := cfg.CredentialEnv
	if env == "" {
		env = "ANTHROPIC_API_KEY"
	}
	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	window := cfg.CacheWindow
	if window <= 0 {
		window = cache.DefaultResponseTTL
	}
	return &Handler{
		provider:      cfg.Provider,
		providerName:  name,
		credentialEnv: env,
		cache:         cfg.Cache,
		cacheWindow:   window,
		audit:         cfg.Audit,
		maxBodyBytes:  limit,
		now:           time.Now,
	}
}

type request struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type"`
}

type response struct {
	Text        string         `json:"text"`
	StopReason  string         `json:"stop_reason,omitempty"`
	Usage       map[string]any `json:"usage,omitempty"`
	SearchCount int            `json:"search_count"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Relay handles POST /api/claude.
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	if h.provider == nil {
		respondError(w, http.StatusInternalServerError, h.credentialEnv+" not set in server environment", "")
		return
	}

	var req request
	raw, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes))
	if err == nil {
		err = json.Unmarshal(raw, &req)
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respondError(w, http.StatusBadRequest, "Missing prompt", "")
		return
	}
	if req.Type == "" {
		req.Type = defaultScanType
	}
	logging.Infof("[relay] type=%s, prompt=%d chars", req.Type, len(req.Prompt))

	call := sqlstore.RelayCall{
		CreatedAt:   h.now(),
		ScanType:    req.Type,
		Provider:    h.providerName,
		PromptHash:  hashutil.PromptKey(h.providerName, req.Type, req.Prompt),
		PromptChars: len(req.Prompt),
	}
	start := time.Now()
	defer func() {
		call.Latency = time.Since(start)
		h.record(r.Context(), call)
	}()

	cacheKey := h.cacheKey(call.PromptHash)
	if body, ok := h.cached(r.Context(), cacheKey); ok {
		call.Status, call.Cached, call.ResponseChars = http.StatusOK, true, len(body)
		w.Header().Set("X-Relay-Cache", "hit")
		writeJSONBytes(w, http.StatusOK, body)
		return
	}

	out, err := h.provider.Complete(r.Context(), req.Prompt)
	if err != nil {
		status, body := errorResponse(err, h.credentialEnv)
		call.Status, call.Error = status, body.Error
		logging.Errorf("[relay] %s call failed: %v", h.providerName, err)
		respondJSON(w, status, body)
		return
	}

	resp := response{
		Text:        out.Text,
		StopReason:  out.StopReason,
		Usage:       out.Usage,
		SearchCount: out.SearchCount,
	}
	body, err := json.Marshal(resp)
	if err != nil {
		call.Status, call.Error = http.StatusInternalServerError, "Server error"
		respondError(w, http.StatusInternalServerError, "Server error", err.Error())
		return
	}
	logging.Infof("[relay] OK: %d chars, %d searches, stop=%s", len(out.Text), out.SearchCount, out.StopReason)

	call.Status = http.StatusOK
	call.ResponseChars = len(out.Text)
	call.SearchCount = out.SearchCount
	call.StopReason = out.StopReason
	h.store(r.Context(), cacheKey, body)
	writeJSONBytes(w, http.StatusOK, body)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.provider == nil {
		status = "missing_credential"
	}
	provider := h.providerName
	if provider == "" {
		provider = "unconfigured"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   status,
		"provider": provider,
	})
}

// errorResponse maps a provider error onto the relay's status and body.
func errorResponse(err error, credentialEnv string) (int, errorBody) {
	var upstream *llm.UpstreamError
	switch {
	case errors.As(err, &upstream):
		status := upstream.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, errorBody{
			Error:   fmt.Sprintf("Upstream API %d", upstream.Status),
			Details: upstream.Body,
		}
	case errors.Is(err, llm.ErrMalformedResponse):
		return http.StatusInternalServerError, errorBody{Error: "Invalid JSON from upstream"}
	case errors.Is(err, llm.ErrMissingCredential):
		return http.StatusInternalServerError, errorBody{Error: credentialEnv + " not set in server environment"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "Server error", Details: err.Error()}
	}
}

// cacheKey scopes a prompt hash to the current cache window. The scan prompt
// is identical on every refresh, so the window is what separates two scans.
func (h *Handler) cacheKey(promptHash string) string {
	bucket := h.now().Truncate(h.cacheWindow).Unix()
	return promptHash + ":" + strconv.FormatInt(bucket, 10)
}

func (h *Handler) cached(ctx context.Context, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	body, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		logging.Warnf("[relay] cache get: %v", err)
		return nil, false
	}
	return body, ok
}

func (h *Handler) store(ctx context.Context, key string, body []byte) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, key, body); err != nil {
		logging.Warnf("[relay] cache set: %v", err)
	}
}

func (h *Handler) record(ctx context.Context, call sqlstore.RelayCall) {
	if h.audit == nil {
		return
	}
	// The request context may already be cancelled once the reply is out.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := h.audit.InsertRelayCall(ctx, call); err != nil {
		logging.Warnf("[relay] audit insert: %v", err)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message, details string) {
	respondJSON(w, status, errorBody{Error: message, Details: details})
}

func writeJSONBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
