package relay

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/engine"
	"github.com/hetulpatel/LiveEdge/internal/fetch"
	"github.com/hetulpatel/LiveEdge/internal/llm"
	"github.com/hetulpatel/LiveEdge/internal/models"
	"github.com/hetulpatel/LiveEdge/internal/profile"
)

const firstQuarterReply = `{"game":{"ne_score":7,"sea_score":3,"quarter":1,"clock":"2:10","status":"live"},
"analysis":{"alerts":[{"type":"spread","confidence":"HIGH","team":"ne","desc":"NE +3","book":"fanduel","odds":"-110"}],"narrative":"Fast start."}}`

const secondQuarterReply = `{"game":{"ne_score":7,"sea_score":10,"quarter":2,"clock":"11:40","status":"live"},
"analysis":{"alerts":[{"type":"total","confidence":"MED","desc":"Over 44.5","book":"draftkings","odds":"-105"}],"narrative":"Seattle answers."}}`

func (p *fakeProvider) reply(text string) {
	p.mu.Lock()
	p.out = &llm.Completion{Text: text}
	p.mu.Unlock()
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Scheduled scans send the same prompt every time; with the response cache
// on, each one must still reach the model once the refresh interval passes.
func TestScheduledScansThroughCachedRelay(t *testing.T) {
	p := &fakeProvider{}
	p.reply(firstQuarterReply)
	clock := newTestClock()
	h := NewHandler(Config{Provider: p, Cache: &memoryCache{}})
	h.now = clock.Now
	server := httptest.NewServer(NewRouter(h))
	defer server.Close()

	orch := engine.New(fetch.NewClient(server.URL+"/api/claude"), engine.Config{Settings: models.DefaultSettings()})
	defer orch.Close()

	if err := orch.Scan(context.Background()); err != nil {
		t.Fatalf("first Scan() error = %v", err)
	}

	p.reply(secondQuarterReply)
	clock.Advance(profile.Default().MinInterval())
	if err := orch.Scan(context.Background()); err != nil {
		t.Fatalf("second Scan() error = %v", err)
	}

	if got := p.callCount(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
	s := orch.Snapshot()
	if s.Error != "" {
		t.Fatalf("banner = %q", s.Error)
	}
	if s.Game == nil || s.Game.Score("SEA") != 10 || s.Game.Period != "2" {
		t.Errorf("game = %+v, want second quarter state", s.Game)
	}
	if len(s.Alerts) != 2 || s.Alerts[0].Title != "NE +3" || s.Alerts[1].Title != "Over 44.5" {
		t.Errorf("alerts = %+v", s.Alerts)
	}
}

// A double-click inside one cache window reuses the reply instead of paying
// for a second model call.
func TestBurstScansShareCachedReply(t *testing.T) {
	p := &fakeProvider{}
	p.reply(firstQuarterReply)
	clock := newTestClock()
	h := NewHandler(Config{Provider: p, Cache: &memoryCache{}})
	h.now = clock.Now
	server := httptest.NewServer(NewRouter(h))
	defer server.Close()

	orch := engine.New(fetch.NewClient(server.URL+"/api/claude"), engine.Config{})
	defer orch.Close()

	orch.Scan(context.Background())
	clock.Advance(2 * time.Second)
	orch.Scan(context.Background())

	if got := p.callCount(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
	if s := orch.Snapshot(); s.Game == nil || s.Game.Score("NE") != 7 {
		t.Errorf("game = %+v", s.Game)
	}
}
