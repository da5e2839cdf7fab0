package models

import "time"

const MomentumNeutral = "NEUTRAL"

// ScanResult is the normalized outcome of one scan. Nil Game or Odds means
// the payload did not carry that section.
type ScanResult struct {
	Game            *GameState       `json:"game,omitempty"`
	Odds            *OddsSnapshot    `json:"odds,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	Narrative       string           `json:"narrative,omitempty"`
	Momentum        string           `json:"momentum,omitempty"`
	Strength        int              `json:"strength,omitempty"`
	Wait            bool             `json:"wait,omitempty"`
	WaitReason      string           `json:"wait_reason,omitempty"`
	SearchCount     int              `json:"search_count"`
	Error           string           `json:"error,omitempty"`
}

func (r *ScanResult) Clone() *ScanResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Game = r.Game.Clone()
	out.Odds = r.Odds.Clone()
	if r.Recommendations != nil {
		out.Recommendations = make([]Recommendation, len(r.Recommendations))
		for i, rec := range r.Recommendations {
			out.Recommendations[i] = rec.Clone()
		}
	}
	return &out
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityScan    Severity = "scan"
	SeveritySuccess Severity = "success"
	SeverityAlert   Severity = "alert"
	SeverityError   Severity = "error"
)

// LogLine is one line of the orchestrator's scan log.
type LogLine struct {
	Message  string    `json:"msg"`
	Severity Severity  `json:"type"`
	Time     time.Time `json:"time"`
}

// ScanEvent is the payload placed on the scan feed topic after every scan.
type ScanEvent struct {
	ScanID     string      `json:"scan_id"`
	Event      string      `json:"event"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Result     *ScanResult `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
	Log        []LogLine   `json:"log"`
}
