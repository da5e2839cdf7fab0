package sqlite

import (
	"context"
	"fmt"
	"time"
)

// RelayCall is one audited pass through the relay. Prompt text is not
// stored, only its hash and size.
type RelayCall struct {
	ID            int64
	CreatedAt     time.Time
	ScanType      string
	Provider      string
	PromptHash    string
	PromptChars   int
	Status        int
	ResponseChars int
	SearchCount   int
	StopReason    string
	Cached        bool
	Latency       time.Duration
	Error         string
}

const insertRelayCallSQL = `
INSERT INTO relay_calls (
	created_at, scan_type, provider, prompt_hash, prompt_chars, status,
	response_chars, search_count, stop_reason, cached, latency_ms, error
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?);
`

func (s *Store) InsertRelayCall(ctx context.Context, call RelayCall) error {
	if s == nil || s.db == nil {
		return nil
	}
	created := call.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	cached := 0
	if call.Cached {
		cached = 1
	}
	_, err := s.db.ExecContext(ctx, insertRelayCallSQL,
		formatTime(created),
		call.ScanType,
		call.Provider,
		call.PromptHash,
		call.PromptChars,
		call.Status,
		call.ResponseChars,
		call.SearchCount,
		call.StopReason,
		cached,
		call.Latency.Milliseconds(),
		call.Error,
	)
	if err != nil {
		return fmt.Errorf("insert relay call: %w", err)
	}
	return nil
}

// RecentRelayCalls returns up to limit calls, newest first.
func (s *Store) RecentRelayCalls(ctx context.Context, limit int) ([]RelayCall, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, scan_type, provider, prompt_hash, prompt_chars, status,
	response_chars, search_count, stop_reason, cached, latency_ms, error
FROM relay_calls ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("query relay calls: %w", err)
	}
	defer rows.Close()

	var out []RelayCall
	for rows.Next() {
		var (
			c         RelayCall
			createdAt string
			cached    int
			latencyMS int64
		)
		if err := rows.Scan(&c.ID, &createdAt, &c.ScanType, &c.Provider, &c.PromptHash, &c.PromptChars, &c.Status,
			&c.ResponseChars, &c.SearchCount, &c.StopReason, &cached, &latencyMS, &c.Error); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		c.Cached = cached == 1
		c.Latency = time.Duration(latencyMS) * time.Millisecond
		out = append(out, c)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
