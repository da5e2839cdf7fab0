package workers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/models"
)

const maxNarrativeRunes = 140

// summarize renders a scan event as a single log line, e.g.
//
//	[scan 1a2b] 23:45:00 Super Bowl LX | NE 14 - SEA 10 | Q3 8:12 | 2 alerts | momentum SEA (7/10) | 3 searches
func summarize(e *models.ScanEvent) string {
	id := e.ScanID
	if len(id) > 8 {
		id = id[:8]
	}
	parts := []string{fmt.Sprintf("[scan %s] %s %s", id, e.FinishedAt.Format(time.TimeOnly), e.Event)}

	if e.Error != "" {
		parts = append(parts, "FAILED: "+e.Error)
		return strings.Join(parts, " | ")
	}
	r := e.Result
	if r == nil {
		return strings.Join(parts, " | ")
	}
	if r.Game != nil {
		parts = append(parts, scoreText(r.Game))
		if clock := strings.TrimSpace(r.Game.Period + " " + r.Game.Clock); clock != "" {
			parts = append(parts, clock)
		}
	}
	parts = append(parts, fmt.Sprintf("%d alerts", len(r.Recommendations)))
	if r.Momentum != "" {
		parts = append(parts, fmt.Sprintf("momentum %s (%d/10)", r.Momentum, r.Strength))
	}
	if r.SearchCount > 0 {
		parts = append(parts, fmt.Sprintf("%d searches", r.SearchCount))
	}
	if n := trimRunes(r.Narrative, maxNarrativeRunes); n != "" {
		parts = append(parts, n)
	}
	return strings.Join(parts, " | ")
}

func scoreText(g *models.GameState) string {
	codes := make([]string, 0, len(g.Scores))
	for code := range g.Scores {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	scores := make([]string, 0, len(codes))
	for _, code := range codes {
		scores = append(scores, fmt.Sprintf("%s %d", code, g.Scores[code]))
	}
	return strings.Join(scores, " - ")
}

func trimRunes(text string, limit int) string {
	text = strings.TrimSpace(text)
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "..."
}
