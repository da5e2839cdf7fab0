package models

import "time"

type Confidence string

const (
	ConfidenceLow  Confidence = "LOW"
	ConfidenceMed  Confidence = "MED"
	ConfidenceHigh Confidence = "HIGH"
	ConfidenceLock Confidence = "LOCK"
)

type Kind string

const (
	KindSpread    Kind = "spread"
	KindMoneyline Kind = "moneyline"
	KindTotal     Kind = "total"
	KindProp      Kind = "prop"
	KindParlay    Kind = "parlay"
)

// Leg is one selection of a wager. Single bets have exactly one leg.
type Leg struct {
	Pick   string `json:"pick"`
	Price  string `json:"price,omitempty"`
	Source string `json:"source,omitempty"`
}

// Recommendation is a suggested wager surfaced by a scan.
type Recommendation struct {
	ID         string     `json:"id"`
	Confidence Confidence `json:"confidence"`
	Kind       Kind       `json:"kind"`
	Side       string     `json:"side,omitempty"`
	Title      string     `json:"title"`
	Legs       []Leg      `json:"legs"`
	Rationale  string     `json:"rationale,omitempty"`
	Units      float64    `json:"units"`
	EV         *float64   `json:"ev,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (r Recommendation) Clone() Recommendation {
	out := r
	if r.Legs != nil {
		out.Legs = append([]Leg(nil), r.Legs...)
	}
	if r.EV != nil {
		ev := *r.EV
		out.EV = &ev
	}
	return out
}

// Source returns the source of the first leg, used for log lines.
func (r Recommendation) Source() string {
	for _, l := range r.Legs {
		if l.Source != "" {
			return l.Source
		}
	}
	return ""
}
