package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/logging"
	"github.com/hetulpatel/LiveEdge/internal/models"
	"github.com/hetulpatel/LiveEdge/internal/profile"
)

// autoRefresh is the handle of the running scheduler goroutine, if any.
// Guarded by Orchestrator.mu.
type autoRefresh struct {
	enabled  bool
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// stop cancels the scheduler and returns the channel closed when its
// goroutine exits, or nil when none was running.
func (a *autoRefresh) stop() <-chan struct{} {
	if a.cancel == nil {
		return nil
	}
	a.cancel()
	done := a.done
	a.cancel, a.done = nil, nil
	return done
}

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

func defaultInterval(p *profile.Profile) time.Duration {
	for _, s := range p.RefreshIntervals {
		if s == 60 {
			return time.Minute
		}
	}
	if len(p.RefreshIntervals) > 0 {
		return time.Duration(p.RefreshIntervals[0]) * time.Second
	}
	return time.Minute
}

// SetAutoRefresh enables or disables periodic scans. Reconfiguring stops the
// previous schedule before the new one starts, so two timers never coexist.
// Disabling does not abort a scan already in flight.
func (o *Orchestrator) SetAutoRefresh(enabled bool, interval time.Duration) error {
	valid := o.profile.AllowsInterval(interval)
	if enabled && !valid {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	stopped := o.auto.stop()
	if valid {
		o.auto.interval = interval
	}
	o.auto.enabled = enabled
	if enabled {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		o.auto.cancel, o.auto.done = cancel, done
		ticks, stopTicker := o.newTicker(o.auto.interval)
		go o.schedule(ctx, ticks, stopTicker, done)
		o.appendLog(fmt.Sprintf("Auto-refresh: every %ds", int(o.auto.interval/time.Second)), models.SeverityInfo)
	} else {
		o.appendLog("Auto-refresh off", models.SeverityInfo)
	}
	o.mu.Unlock()

	if stopped != nil {
		<-stopped
	}
	o.notify()
	return nil
}

func (o *Orchestrator) schedule(ctx context.Context, ticks <-chan time.Time, stopTicker func(), done chan struct{}) {
	defer close(done)
	defer stopTicker()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if ctx.Err() != nil {
				return
			}
			if !o.Trigger() {
				logging.Debugf("[engine] auto-refresh tick dropped: scan in flight")
			}
		}
	}
}
