package payload

import (
	"strings"

	"github.com/hetulpatel/LiveEdge/internal/models"
)

// MaxRecommendations caps how many suggestions a single scan may surface.
const MaxRecommendations = 5

func normalizeRecommendations(doc, analysis map[string]any) []models.Recommendation {
	var out []models.Recommendation
	add := func(items []any, forced models.Kind) {
		for _, item := range items {
			if len(out) >= MaxRecommendations {
				return
			}
			m, ok := asObject(item)
			if !ok {
				// Bare strings are shorthand for a titled pick.
				title, _ := item.(string)
				if title = strings.TrimSpace(title); title == "" {
					continue
				}
				m = map[string]any{"title": title}
			}
			out = append(out, normalizeRecommendation(m, forced))
		}
	}

	// Schema revisions used one of these names for the same list.
	for _, items := range [][]any{
		asArray(doc["bets"]),
		asArray(doc["alerts"]),
		asArray(analysis["alerts"]),
		asArray(analysis["bets"]),
	} {
		if len(items) > 0 {
			add(items, "")
			break
		}
	}
	add(asArray(doc["parlays"]), models.KindParlay)
	add(asArray(analysis["parlays"]), models.KindParlay)
	return out
}

func normalizeRecommendation(m map[string]any, forced models.Kind) models.Recommendation {
	src := []map[string]any{m}
	rec := models.Recommendation{
		Confidence: normalizeConfidence(lookupText(src, "confidence")),
		Kind:       normalizeKind(lookupText(src, "type", "kind")),
		Side:       strings.ToUpper(lookupText(src, "team", "side")),
		Title:      lookupText(src, "title", "description", "desc", "action", "pick"),
		Rationale:  lookupText(src, "reason", "reasoning", "rationale"),
		Units:      1,
	}
	if forced != "" {
		rec.Kind = forced
	}
	if u, ok := asNumber(m["units"]); ok && u > 0 {
		rec.Units = u
	}
	if ev, ok := asNumber(lookup(src, "ev", "ev_score", "edge")); ok {
		rec.EV = &ev
	}

	if legs := asArray(m["legs"]); len(legs) > 0 {
		for _, item := range legs {
			if leg, ok := normalizeLeg(item); ok {
				rec.Legs = append(rec.Legs, leg)
			}
		}
	} else {
		leg := models.Leg{
			Pick:   lookupText(src, "action", "pick", "description", "desc", "title"),
			Price:  lookupText(src, "odds", "price"),
			Source: lookupText(src, "book", "best_book", "source"),
		}
		if leg != (models.Leg{}) {
			rec.Legs = []models.Leg{leg}
		}
	}

	if rec.Title == "" && len(rec.Legs) > 0 {
		rec.Title = rec.Legs[0].Pick
	}
	if rec.Kind == "" {
		rec.Kind = models.KindProp
		if len(rec.Legs) > 1 {
			rec.Kind = models.KindParlay
		}
	}
	// Every listed alert surfaces, even when the model left its text blank.
	if rec.Title == "" {
		rec.Title = fallbackTitle(rec)
	}
	if len(rec.Legs) == 1 && rec.Legs[0].Pick == "" {
		rec.Legs[0].Pick = rec.Title
	}
	return rec
}

const fallbackTitleRunes = 80

func fallbackTitle(rec models.Recommendation) string {
	switch {
	case rec.Side != "":
		return rec.Side + " " + string(rec.Kind)
	case rec.Rationale != "":
		return trimRunes(rec.Rationale, fallbackTitleRunes)
	default:
		return "Unlabeled " + string(rec.Kind)
	}
}

func trimRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}

func normalizeLeg(item any) (models.Leg, bool) {
	if s := asString(item); s != "" {
		return models.Leg{Pick: s}, true
	}
	m, ok := asObject(item)
	if !ok {
		return models.Leg{}, false
	}
	src := []map[string]any{m}
	leg := models.Leg{
		Pick:   lookupText(src, "pick", "description", "desc", "action", "selection"),
		Price:  lookupText(src, "price", "odds"),
		Source: lookupText(src, "book", "best_book", "source"),
	}
	return leg, leg.Pick != ""
}

func normalizeConfidence(raw string) models.Confidence {
	switch strings.ToUpper(raw) {
	case "LOCK":
		return models.ConfidenceLock
	case "HIGH":
		return models.ConfidenceHigh
	case "MED", "MEDIUM", "MID":
		return models.ConfidenceMed
	default:
		return models.ConfidenceLow
	}
}

func normalizeKind(raw string) models.Kind {
	switch strings.ToLower(strings.ReplaceAll(raw, " ", "_")) {
	case "spread", "ats", "point_spread":
		return models.KindSpread
	case "moneyline", "ml", "money_line":
		return models.KindMoneyline
	case "total", "over", "under", "over_under", "o/u":
		return models.KindTotal
	case "prop", "player_prop", "props":
		return models.KindProp
	case "parlay", "sgp", "same_game_parlay":
		return models.KindParlay
	case "":
		return ""
	default:
		return models.KindProp
	}
}
