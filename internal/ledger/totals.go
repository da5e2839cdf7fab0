package ledger

import "github.com/shopspring/decimal"

// Totals are recomputed from the entries on demand and never stored.
type Totals struct {
	Wagered   decimal.Decimal `json:"wagered"`
	Won       decimal.Decimal `json:"won"`
	Lost      decimal.Decimal `json:"lost"`
	Net       decimal.Decimal `json:"net"`
	Pending   decimal.Decimal `json:"pending"`
	Remaining decimal.Decimal `json:"remaining"`
}

func ComputeTotals(entries []Entry, bankroll decimal.Decimal) Totals {
	t := Totals{
		Wagered: decimal.Zero,
		Won:     decimal.Zero,
		Lost:    decimal.Zero,
		Pending: decimal.Zero,
	}
	for _, e := range entries {
		t.Wagered = t.Wagered.Add(e.Wager)
		switch e.Result {
		case ResultWon:
			t.Won = t.Won.Add(e.Wager.Mul(PayoutMultiplier))
		case ResultLost:
			t.Lost = t.Lost.Add(e.Wager)
		case ResultPending:
			t.Pending = t.Pending.Add(e.Wager)
		}
	}
	t.Net = t.Won.Sub(t.Lost)
	t.Remaining = bankroll.Sub(t.Wagered).Add(t.Won)
	return t
}
