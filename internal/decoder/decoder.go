// Package decoder pulls a single JSON object out of free-form model output.
//
// Model replies are not guaranteed to be pure JSON: they arrive wrapped in
// code fences, preceded by a sentence of narration, or followed by a sign-off.
// The decoder strips fence markers and parses the outermost {...} span. Every
// failure collapses to the "no result" outcome; nothing here returns an error
// or panics.
package decoder

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	jsonFence = regexp.MustCompile("```json\\s*")
	bareFence = regexp.MustCompile("```\\s*")
)

// Decode returns the JSON object embedded in raw, or (nil, false).
func Decode(raw string) (map[string]any, bool) {
	var out map[string]any
	if !Into(raw, &out) || out == nil {
		return nil, false
	}
	return out, true
}

// Into unmarshals the embedded object into dst. It reports false when no
// bracket pair exists or the candidate span does not parse.
func Into(raw string, dst any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	span, found := extract(raw)
	if !found {
		return false
	}
	return json.Unmarshal([]byte(span), dst) == nil
}

func extract(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	cleaned := jsonFence.ReplaceAllString(raw, "")
	cleaned = bareFence.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return cleaned[start : end+1], true
}

// Truncate returns at most n runes of raw.
func Truncate(raw string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(raw) <= n {
		return raw
	}
	runes := []rune(raw)
	return string(runes[:n])
}
