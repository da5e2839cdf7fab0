// Package prompt assembles the single scan prompt: which searches to run, the
// exact JSON shape to answer with, and the strategy rules.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hetulpatel/LiveEdge/internal/models"
	"github.com/hetulpatel/LiveEdge/internal/profile"
)

// Type tags the relay request so relay logs can tell scan prompts apart.
const Type = "full_scan"

type Builder struct {
	profile *profile.Profile
}

func NewBuilder(p *profile.Profile) *Builder {
	if p == nil {
		p = profile.Default()
	}
	return &Builder{profile: p}
}

// Build renders the prompt for the given settings. The output is
// deterministic for a fixed profile and settings.
func (b *Builder) Build(settings models.Settings) string {
	s := settings.Normalized()
	p := b.profile
	a, h := p.Sides[0], p.Sides[1]

	quoted := make([]string, 0, len(p.Searches))
	for _, q := range p.Searches {
		quoted = append(quoted, fmt.Sprintf("%q", q))
	}
	searchLine := "Search for the latest live score and sportsbook odds."
	if len(quoted) > 0 {
		searchLine = "Search for " + strings.Join(quoted, " and ") + "."
	}

	template, err := json.Marshal(b.template())
	if err != nil {
		// The template is built from strings and numbers only.
		panic(fmt.Sprintf("prompt: marshal template: %v", err))
	}

	return strings.Join([]string{
		searchLine + " Then respond with ONLY this JSON (no other text):",
		"",
		string(template),
		"",
		fmt.Sprintf("RULES: Fill with REAL data from search for %s (%s vs %s).", p.Event, a.FullName, h.FullName),
		"status=pregame|live|halftime|final. American odds (-110,+150).",
		fmt.Sprintf("favorite=which team is favored (%s or %s). momentum=%s|%s|NEUTRAL, strength=1-10.", a.Code, h.Code, a.Code, h.Code),
		fmt.Sprintf("Quote every book you can find among: %s.", strings.Join(p.BookIDs(), ", ")),
		"alerts=0-3 max, only real edges. parlays=0-2 max, each with 2-4 legs. confidence=LOW|MED|HIGH|LOCK. type=spread|moneyline|total|prop|parlay.",
		fmt.Sprintf("Aggression=%d/10. Unit size=$%d, bankroll=$%d; units are multiples of the unit size.", s.Aggression, s.UnitSize, s.Bankroll),
		"If no edge, empty alerts+wait=true.",
		"Spread is from favorite's perspective (negative=favorite gives points).",
	}, "\n")
}

func (b *Builder) template() map[string]any {
	p := b.profile
	a, h := p.Sides[0], p.Sides[1]
	books := p.BookIDs()

	stats := make(map[string]any)
	for _, side := range p.Sides {
		for _, stat := range p.Stats {
			stats[side.Key()+"_"+stat] = 0
		}
	}

	game := map[string]any{
		a.Key() + "_score": 0,
		h.Key() + "_score": 0,
		"quarter":          "1",
		"clock":            "15:00",
		"possession":       "",
		"down_distance":    "",
		"last_play":        "",
		"status":           "pregame",
		"stats":            stats,
		"player_stats": []any{
			map[string]any{"name": "", "team": a.Code, "stat": "", "value": ""},
		},
	}

	odds := map[string]any{
		"favorite":         h.Code,
		"best_spread_book": books[0],
		"best_ml_book":     books[0],
		"best_total_book":  books[0],
		"notes":            "",
	}
	for _, id := range books {
		odds[id] = map[string]any{"spread": "-4.5", "ml_fav": "-200", "ml_dog": "+170", "total": "45.5"}
	}

	analysis := map[string]any{
		"alerts": []any{map[string]any{
			"type": "spread", "confidence": "HIGH", "team": a.Code, "desc": "", "action": "",
			"book": books[0], "odds": "-110", "reason": "", "units": 1, "ev": 0,
		}},
		"parlays": []any{map[string]any{
			"title": "", "confidence": "MED", "reason": "", "units": 1,
			"legs": []any{map[string]any{"pick": "", "odds": "", "book": books[0]}},
		}},
		"narrative":   "",
		"momentum":    models.MomentumNeutral,
		"strength":    5,
		"wait":        false,
		"wait_reason": "",
	}

	return map[string]any{"game": game, "odds": odds, "analysis": analysis}
}
