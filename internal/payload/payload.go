// Package payload maps the decoded model response onto the canonical scan
// types. Successive prompt revisions renamed keys (desc vs description, book
// vs best_book, analysis.alerts vs bets); every observed spelling is accepted
// here so nothing downstream sees the drift.
package payload

import (
	"strings"

	"github.com/hetulpatel/LiveEdge/internal/models"
)

// Normalize converts a decoded response object into a ScanResult. Sections
// absent from doc stay nil or empty; unknown keys are ignored.
func Normalize(doc map[string]any, sides []models.Side) models.ScanResult {
	var res models.ScanResult
	if doc == nil {
		return res
	}
	analysis, _ := asObject(doc["analysis"])
	both := []map[string]any{doc, analysis}

	if g, ok := asObject(doc["game"]); ok {
		res.Game = normalizeGame(g, sides)
	}
	if o, ok := asObject(doc["odds"]); ok {
		res.Odds = normalizeOdds(o, sides)
	}
	res.Recommendations = normalizeRecommendations(doc, analysis)

	res.Narrative = lookupText(both, "narrative", "game_narrative")
	res.Momentum = strings.ToUpper(lookupText(both, "momentum"))
	if n, ok := asNumber(lookup(both, "strength", "momentum_strength")); ok {
		res.Strength = clamp(int(n), 1, 10)
	}
	res.Wait = asBool(lookup(both, "wait", "recommended_wait"))
	res.WaitReason = lookupText(both, "wait_reason")
	return res
}
