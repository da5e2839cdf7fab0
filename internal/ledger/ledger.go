// Package ledger records wagers the user placed from surfaced recommendations
// and derives running totals from them.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hetulpatel/LiveEdge/internal/models"
)

// PayoutMultiplier is the gross return on a winning wager, approximating
// -110 American odds. Leg prices are never used for settlement.
var PayoutMultiplier = decimal.RequireFromString("1.9")

type Result string

const (
	ResultPending Result = "pending"
	ResultWon     Result = "won"
	ResultLost    Result = "lost"
	ResultPush    Result = "push"
)

// ParseOutcome accepts the three terminal results a user may record.
func ParseOutcome(raw string) (Result, error) {
	switch r := Result(raw); r {
	case ResultWon, ResultLost, ResultPush:
		return r, nil
	default:
		return "", fmt.Errorf("ledger: invalid outcome %q", raw)
	}
}

// Entry is a placed wager.
type Entry struct {
	Recommendation models.Recommendation `json:"recommendation"`
	UnitSize       decimal.Decimal       `json:"unit_size"`
	Wager          decimal.Decimal       `json:"wager"`
	PlacedAt       time.Time             `json:"placed_at"`
	Result         Result                `json:"result"`
}

// NewEntry prices a recommendation at units x unitSize.
func NewEntry(rec models.Recommendation, unitSize decimal.Decimal, placedAt time.Time) Entry {
	units := rec.Units
	if units <= 0 {
		units = 1
	}
	return Entry{
		Recommendation: rec.Clone(),
		UnitSize:       unitSize,
		Wager:          decimal.NewFromFloat(units).Mul(unitSize),
		PlacedAt:       placedAt,
		Result:         ResultPending,
	}
}

// Ledger is an append-only list of entries whose results may be rewritten.
// It is not safe for concurrent use; the engine serializes access.
type Ledger struct {
	entries []Entry
}

func (l *Ledger) Append(e Entry) int {
	l.entries = append(l.entries, e)
	return len(l.entries) - 1
}

// Resolve records an outcome for the entry at index. Resolving an entry that
// already has a result overwrites it.
func (l *Ledger) Resolve(index int, outcome Result) error {
	if _, err := ParseOutcome(string(outcome)); err != nil {
		return err
	}
	if index < 0 || index >= len(l.entries) {
		return fmt.Errorf("ledger: no entry at index %d", index)
	}
	l.entries[index].Result = outcome
	return nil
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the entries in placement order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		e.Recommendation = e.Recommendation.Clone()
		out[i] = e
	}
	return out
}

// Contains reports whether a recommendation id has been placed.
func (l *Ledger) Contains(id string) bool {
	for _, e := range l.entries {
		if e.Recommendation.ID == id {
			return true
		}
	}
	return false
}
