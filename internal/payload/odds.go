package payload

import (
	"sort"
	"strings"

	"github.com/hetulpatel/LiveEdge/internal/models"
)

var quoteKeys = []string{"spread", "ml_fav", "ml_dog", "moneyline", "ml", "total"}

// reservedOddsKeys are siblings of the per-book objects that are never books.
var reservedOddsKeys = map[string]bool{
	"books":     true,
	"best_bets": true,
	"favorite":  true,
	"notes":     true,
}

func normalizeOdds(o map[string]any, sides []models.Side) *models.OddsSnapshot {
	snap := &models.OddsSnapshot{
		Quotes:   make(map[string]models.Quote),
		Favorite: strings.ToUpper(asString(o["favorite"])),
		Notes:    asString(o["notes"]),
	}

	books := o
	if nested, ok := asObject(o["books"]); ok {
		books = nested
	}
	for id, v := range books {
		if reservedOddsKeys[id] {
			continue
		}
		q, ok := asObject(v)
		if !ok || !hasQuoteKey(q) {
			continue
		}
		snap.Quotes[id] = normalizeQuote(q, snap.Favorite, sides)
	}

	src := []map[string]any{o}
	snap.Best = models.BestPrices{
		Spread:    lookupText(src, "best_spread_book"),
		Moneyline: lookupText(src, "best_ml_book", "best_moneyline_book"),
		Total:     lookupText(src, "best_total_book"),
	}
	if best, ok := asObject(o["best_bets"]); ok {
		b := []map[string]any{best}
		if snap.Best.Spread == "" {
			snap.Best.Spread = lookupText(b, "spread")
		}
		if snap.Best.Moneyline == "" {
			snap.Best.Moneyline = lookupText(b, "moneyline", "ml")
		}
		if snap.Best.Total == "" {
			snap.Best.Total = lookupText(b, "total")
		}
	}
	ids := sortedKeys(snap.Quotes)
	snap.Best.Spread = matchSource(snap.Best.Spread, ids)
	snap.Best.Moneyline = matchSource(snap.Best.Moneyline, ids)
	snap.Best.Total = matchSource(snap.Best.Total, ids)
	return snap
}

func hasQuoteKey(q map[string]any) bool {
	for _, k := range quoteKeys {
		if _, ok := q[k]; ok {
			return true
		}
	}
	return false
}

func normalizeQuote(q map[string]any, favorite string, sides []models.Side) models.Quote {
	src := []map[string]any{q}
	out := models.Quote{
		Spread:            sideValue(q["spread"], favorite, sides),
		MoneylineFavorite: lookupText(src, "ml_fav"),
		MoneylineUnderdog: lookupText(src, "ml_dog"),
	}

	if t, ok := asObject(q["total"]); ok {
		out.Total = lookupText([]map[string]any{t}, "line", "total", "points")
	} else {
		out.Total = asString(q["total"])
	}

	if ml, ok := asObject(lookup(src, "moneyline", "ml")); ok {
		fav, dog := splitMoneyline(ml, favorite, sides)
		if out.MoneylineFavorite == "" {
			out.MoneylineFavorite = fav
		}
		if out.MoneylineUnderdog == "" {
			out.MoneylineUnderdog = dog
		}
	}
	return out
}

// sideValue reads a price that is either a scalar or an object keyed by side
// code. Objects resolve to the favorite's entry when one is named.
func sideValue(v any, favorite string, sides []models.Side) string {
	m, ok := asObject(v)
	if !ok {
		return asString(v)
	}
	if favorite != "" {
		if val, found := lookupFold(m, favorite); found {
			return asString(val)
		}
	}
	for _, s := range sides {
		if val, found := lookupFold(m, s.Code); found {
			return asString(val)
		}
	}
	return ""
}

func splitMoneyline(ml map[string]any, favorite string, sides []models.Side) (string, string) {
	if len(sides) != 2 {
		return "", ""
	}
	a, _ := lookupFold(ml, sides[0].Code)
	b, _ := lookupFold(ml, sides[1].Code)
	first, second := asString(a), asString(b)

	switch {
	case strings.EqualFold(favorite, sides[0].Code):
		return first, second
	case strings.EqualFold(favorite, sides[1].Code):
		return second, first
	}
	// No favorite named: the shorter price is the favorite.
	fa, okA := asNumber(first)
	fb, okB := asNumber(second)
	if okA && okB && fb < fa {
		return second, first
	}
	return first, second
}

// matchSource maps a free-text designation ("FanDuel -4.5") onto a quoted
// source id when one is recognizable. Unrecognized text is kept verbatim.
func matchSource(raw string, ids []string) string {
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	for _, id := range ids {
		if strings.EqualFold(id, raw) {
			return id
		}
	}
	for _, id := range ids {
		if strings.Contains(lower, strings.ToLower(id)) {
			return id
		}
	}
	return raw
}

func sortedKeys(m map[string]models.Quote) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
