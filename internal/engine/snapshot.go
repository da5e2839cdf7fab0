package engine

import (
	"time"

	"github.com/hetulpatel/LiveEdge/internal/ledger"
	"github.com/hetulpatel/LiveEdge/internal/models"
)

// Snapshot is a deep copy of the orchestrator state. Holding one never
// blocks or aliases the orchestrator.
type Snapshot struct {
	Event       string                  `json:"event"`
	Sides       []models.Side           `json:"sides"`
	Game        *models.GameState       `json:"game"`
	Odds        *models.OddsSnapshot    `json:"odds"`
	Analysis    Analysis                `json:"analysis"`
	Alerts      []models.Recommendation `json:"alerts"`
	Bets        []ledger.Entry          `json:"bets"`
	Totals      ledger.Totals           `json:"totals"`
	Log         []models.LogLine        `json:"log"`
	Settings    models.Settings         `json:"settings"`
	AutoRefresh AutoRefreshState        `json:"auto_refresh"`
	Scanning    bool                    `json:"scanning"`
	Error       string                  `json:"error,omitempty"`
	SearchCount int                     `json:"search_count"`
	LastUpdated *time.Time              `json:"last_updated"`
}

type AutoRefreshState struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"interval_seconds"`
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	s := Snapshot{
		Event:       o.profile.Event,
		Sides:       append([]models.Side(nil), o.profile.Sides...),
		Game:        o.game.Clone(),
		Odds:        o.odds.Clone(),
		Analysis:    o.analysis,
		Alerts:      make([]models.Recommendation, len(o.alerts)),
		Bets:        o.bets.Entries(),
		Totals:      o.totalsLocked(),
		Log:         append([]models.LogLine{}, o.log...),
		Settings:    o.settings,
		AutoRefresh: AutoRefreshState{Enabled: o.auto.enabled, IntervalSeconds: int(o.auto.interval / time.Second)},
		Scanning:    o.scanning,
		Error:       o.banner,
		SearchCount: o.searchCount,
	}
	for i, rec := range o.alerts {
		s.Alerts[i] = rec.Clone()
	}
	if !o.lastUpdated.IsZero() {
		t := o.lastUpdated
		s.LastUpdated = &t
	}
	return s
}

// notify delivers a fresh snapshot to every observer outside the lock.
func (o *Orchestrator) notify() {
	o.mu.Lock()
	if len(o.observers) == 0 {
		o.mu.Unlock()
		return
	}
	snap := o.snapshotLocked()
	observers := make([]func(Snapshot), 0, len(o.observers))
	for _, fn := range o.observers {
		observers = append(observers, fn)
	}
	o.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}
