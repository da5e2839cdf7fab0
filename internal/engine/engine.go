// Package engine owns the dashboard state: the latest game and odds, the
// active alerts, the wager ledger and the scan log. Scans are single-flight;
// a trigger that arrives while one is running is dropped.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hetulpatel/LiveEdge/internal/fetch"
	"github.com/hetulpatel/LiveEdge/internal/ledger"
	"github.com/hetulpatel/LiveEdge/internal/logging"
	"github.com/hetulpatel/LiveEdge/internal/models"
	"github.com/hetulpatel/LiveEdge/internal/profile"
	"github.com/hetulpatel/LiveEdge/internal/prompt"
)

const DefaultLogLimit = 100

var (
	ErrScanInFlight    = errors.New("engine: scan already in flight")
	ErrClosed          = errors.New("engine: orchestrator closed")
	ErrInvalidInterval = errors.New("engine: unsupported refresh interval")
)

// Fetcher sends one prompt to the relay. Failures are reported in the
// response, never as a Go error.
type Fetcher interface {
	SendPrompt(ctx context.Context, prompt string) fetch.Response
}

type Config struct {
	Profile  *profile.Profile
	Settings models.Settings
	LogLimit int
	Now      func() time.Time
	NewID    func() string
}

type Orchestrator struct {
	fetcher  Fetcher
	profile  *profile.Profile
	builder  *prompt.Builder
	logLimit int
	now      func() time.Time
	newID    func() string

	newTicker func(time.Duration) (<-chan time.Time, func())

	mu          sync.Mutex
	scanning    bool
	closed      bool
	settings    models.Settings
	game        *models.GameState
	odds        *models.OddsSnapshot
	analysis    Analysis
	alerts      []models.Recommendation
	bets        ledger.Ledger
	log         []models.LogLine
	banner      string
	lastUpdated time.Time
	searchCount int
	auto        autoRefresh

	observers    map[int]func(Snapshot)
	nextObserver int
	sinks        []func(models.ScanEvent)

	background sync.WaitGroup
}

func New(fetcher Fetcher, cfg Config) *Orchestrator {
	p := cfg.Profile
	if p == nil {
		p = profile.Default()
	}
	limit := cfg.LogLimit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Orchestrator{
		fetcher:   fetcher,
		profile:   p,
		builder:   prompt.NewBuilder(p),
		logLimit:  limit,
		now:       now,
		newID:     newID,
		newTicker: systemTicker,
		settings:  cfg.Settings.Normalized(),
		observers: make(map[int]func(Snapshot)),
		auto:      autoRefresh{interval: defaultInterval(p)},
	}
}

// scanRun carries the per-scan bookkeeping between the admission step and
// the completion step.
type scanRun struct {
	id       string
	started  time.Time
	settings models.Settings
	lines    []models.LogLine
}

// Scan runs one scan synchronously. It returns ErrScanInFlight without side
// effects when another scan is running; every other outcome, including
// upstream and decode failures, is recorded in state and returns nil.
func (o *Orchestrator) Scan(ctx context.Context) error {
	run, err := o.begin(false)
	if err != nil {
		return err
	}
	o.run(ctx, run)
	return nil
}

// Trigger starts a scan in the background. It reports false when the scan
// was dropped because one is already running.
func (o *Orchestrator) Trigger() bool {
	run, err := o.begin(true)
	if err != nil {
		return false
	}
	go func() {
		defer o.background.Done()
		o.run(context.Background(), run)
	}()
	return true
}

func (o *Orchestrator) begin(background bool) (*scanRun, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, ErrClosed
	}
	if o.scanning {
		o.mu.Unlock()
		return nil, ErrScanInFlight
	}
	o.scanning = true
	o.banner = ""
	if background {
		o.background.Add(1)
	}
	run := &scanRun{id: o.newID(), started: o.now(), settings: o.settings}
	o.appendScanLog(run, "INITIATING FULL SCAN", models.SeverityScan)
	o.appendScanLog(run, fmt.Sprintf("Fetching live data for %s (%d books, aggression %d/10)",
		o.eventName(), len(o.profile.Books), run.settings.Aggression), models.SeverityScan)
	o.mu.Unlock()

	o.notify()
	return run, nil
}

func (o *Orchestrator) run(ctx context.Context, run *scanRun) {
	resp := o.sendPrompt(ctx, o.builder.Build(run.settings))

	o.mu.Lock()
	result := o.applyResponse(run, resp)
	o.scanning = false
	o.lastUpdated = o.now()
	event := models.ScanEvent{
		ScanID:     run.id,
		Event:      o.eventName(),
		StartedAt:  run.started,
		FinishedAt: o.lastUpdated,
		Result:     result,
		Error:      o.banner,
		Log:        append([]models.LogLine(nil), run.lines...),
	}
	sinks := slices.Clone(o.sinks)
	o.mu.Unlock()

	if event.Error != "" {
		logging.Warnf("[engine] scan %s failed: %s", run.id, event.Error)
	} else {
		logging.Infof("[engine] scan %s complete: %d new alerts, %d searches", run.id, len(result.Recommendations), result.SearchCount)
	}
	o.notify()
	for _, sink := range sinks {
		sink(event)
	}
}

// sendPrompt converts a panicking fetcher into a transport failure so the
// scan still returns to idle.
func (o *Orchestrator) sendPrompt(ctx context.Context, text string) (resp fetch.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = fetch.Response{Error: fmt.Sprintf("fetch panicked: %v", r)}
		}
	}()
	return o.fetcher.SendPrompt(ctx, text)
}

// Place moves an active alert into the ledger at units x unit size. It
// reports false when id is not an active alert.
func (o *Orchestrator) Place(id string) bool {
	o.mu.Lock()
	rec, ok := o.takeAlert(id)
	if !ok {
		o.mu.Unlock()
		return false
	}
	entry := ledger.NewEntry(rec, decimal.NewFromInt(int64(o.settings.UnitSize)), o.now())
	o.bets.Append(entry)
	source := rec.Source()
	if source == "" {
		source = "best available"
	}
	o.appendLog(fmt.Sprintf("BET PLACED: %s -> %s ($%s)", rec.Title, source, entry.Wager.StringFixed(2)), models.SeverityAlert)
	o.mu.Unlock()

	o.notify()
	return true
}

// Dismiss drops an active alert without recording a wager.
func (o *Orchestrator) Dismiss(id string) bool {
	o.mu.Lock()
	rec, ok := o.takeAlert(id)
	if ok {
		o.appendLog("Dismissed: "+rec.Title, models.SeverityInfo)
	}
	o.mu.Unlock()

	if ok {
		o.notify()
	}
	return ok
}

// Resolve records the outcome of the ledger entry at index. Re-resolving
// overwrites the earlier result.
func (o *Orchestrator) Resolve(index int, outcome ledger.Result) error {
	o.mu.Lock()
	if err := o.bets.Resolve(index, outcome); err != nil {
		o.mu.Unlock()
		return err
	}
	title := o.bets.Entries()[index].Recommendation.Title
	o.appendLog(fmt.Sprintf("BET %s: %s", strings.ToUpper(string(outcome)), title), models.SeverityInfo)
	o.mu.Unlock()

	o.notify()
	return nil
}

func (o *Orchestrator) Totals() ledger.Totals {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.totalsLocked()
}

func (o *Orchestrator) Settings() models.Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// UpdateSettings stores the normalized settings and returns them. A scan in
// flight keeps the settings it started with.
func (o *Orchestrator) UpdateSettings(s models.Settings) models.Settings {
	s = s.Normalized()
	o.mu.Lock()
	o.settings = s
	o.appendLog(fmt.Sprintf("Settings: aggression %d/10, unit $%d, bankroll $%d", s.Aggression, s.UnitSize, s.Bankroll), models.SeverityInfo)
	o.mu.Unlock()

	o.notify()
	return s
}

// Subscribe registers fn to receive a snapshot after every state change. The
// returned func removes it.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) func() {
	o.mu.Lock()
	id := o.nextObserver
	o.nextObserver++
	o.observers[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.observers, id)
			o.mu.Unlock()
		})
	}
}

// OnScanComplete registers a sink that receives every finished scan.
func (o *Orchestrator) OnScanComplete(fn func(models.ScanEvent)) {
	if fn == nil {
		return
	}
	o.mu.Lock()
	o.sinks = append(o.sinks, fn)
	o.mu.Unlock()
}

// Close stops the auto-refresh scheduler and waits for it and for any
// background scan to finish. Scans in flight are not aborted.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	stopped := o.auto.stop()
	o.mu.Unlock()

	if stopped != nil {
		<-stopped
	}
	o.background.Wait()
}

func (o *Orchestrator) takeAlert(id string) (models.Recommendation, bool) {
	for i, rec := range o.alerts {
		if rec.ID == id {
			o.alerts = append(o.alerts[:i:i], o.alerts[i+1:]...)
			return rec, true
		}
	}
	return models.Recommendation{}, false
}

func (o *Orchestrator) totalsLocked() ledger.Totals {
	return ledger.ComputeTotals(o.bets.Entries(), decimal.NewFromInt(int64(o.settings.Bankroll)))
}

func (o *Orchestrator) appendLog(msg string, sev models.Severity) models.LogLine {
	line := models.LogLine{Message: msg, Severity: sev, Time: o.now()}
	if len(o.log) >= o.logLimit {
		drop := len(o.log) - o.logLimit + 1
		o.log = append(o.log[:0:0], o.log[drop:]...)
	}
	o.log = append(o.log, line)
	return line
}

func (o *Orchestrator) appendScanLog(run *scanRun, msg string, sev models.Severity) {
	run.lines = append(run.lines, o.appendLog(msg, sev))
}

func (o *Orchestrator) eventName() string {
	if o.profile.Event != "" {
		return o.profile.Event
	}
	return "the game"
}
