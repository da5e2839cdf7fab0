package payload

import (
	"strings"

	"github.com/hetulpatel/LiveEdge/internal/models"
)

func normalizeGame(g map[string]any, sides []models.Side) *models.GameState {
	src := []map[string]any{g}
	state := &models.GameState{
		Scores:       make(map[string]int, len(sides)),
		Period:       lookupText(src, "quarter", "period"),
		Clock:        lookupText(src, "clock"),
		Possession:   strings.ToUpper(lookupText(src, "possession")),
		DownDistance: lookupText(src, "down_distance"),
		LastPlay:     lookupText(src, "last_play", "last_event"),
		Status:       models.Status(strings.ToLower(lookupText(src, "status"))),
	}

	for _, side := range sides {
		if n, ok := asNumber(g[side.Key()+"_score"]); ok {
			state.Scores[side.Code] = int(n)
		}
	}
	if scores, ok := asObject(g["scores"]); ok {
		for _, side := range sides {
			if v, found := lookupFold(scores, side.Code); found {
				if n, ok := asNumber(v); ok {
					state.Scores[side.Code] = int(n)
				}
			}
		}
	}

	stats := make(map[string]float64)
	for _, key := range []string{"stats", "key_stats"} {
		if m, ok := asObject(g[key]); ok {
			flattenStats("", m, stats)
		}
	}
	if len(stats) > 0 {
		state.Stats = stats
	}

	for _, key := range []string{"player_stats", "players"} {
		for _, item := range asArray(g[key]) {
			m, ok := asObject(item)
			if !ok {
				continue
			}
			p := []map[string]any{m}
			line := models.PlayerStat{
				Name:  lookupText(p, "name", "player"),
				Team:  strings.ToUpper(lookupText(p, "team", "side")),
				Stat:  lookupText(p, "stat", "category"),
				Value: lookupText(p, "value", "line", "stats"),
			}
			if line.Name == "" {
				continue
			}
			state.Players = append(state.Players, line)
		}
	}
	return state
}

func flattenStats(prefix string, m map[string]any, out map[string]float64) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := asObject(v); ok {
			flattenStats(key, nested, out)
			continue
		}
		if n, ok := asNumber(v); ok {
			out[key] = n
		}
	}
}
