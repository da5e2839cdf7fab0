package prompt

import (
	"strings"
	"testing"

	"github.com/hetulpatel/LiveEdge/internal/decoder"
	"github.com/hetulpatel/LiveEdge/internal/models"
	"github.com/hetulpatel/LiveEdge/internal/payload"
	"github.com/hetulpatel/LiveEdge/internal/profile"
)

func TestBuildIncludesSettingsAndSearches(t *testing.T) {
	b := NewBuilder(profile.Default())
	got := b.Build(models.Settings{Aggression: 9, UnitSize: 50, Bankroll: 1000})

	for _, want := range []string{
		`Search for "Super Bowl LX score Patriots Seahawks" and "Super Bowl odds today".`,
		"Aggression=9/10.",
		"Unit size=$50, bankroll=$1000",
		"favorite=which team is favored (NE or SEA)",
		"fanduel, draftkings, betmgm, underdog",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildClampsAggression(t *testing.T) {
	got := NewBuilder(nil).Build(models.Settings{Aggression: 30, UnitSize: 25, Bankroll: 500})
	if !strings.Contains(got, "Aggression=10/10.") {
		t.Error("aggression was not clamped")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := NewBuilder(profile.Default())
	s := models.DefaultSettings()
	if b.Build(s) != b.Build(s) {
		t.Error("Build is not deterministic")
	}
}

// The embedded template is itself a payload the normalizer understands.
func TestTemplateRoundTripsThroughDecoder(t *testing.T) {
	p := profile.Default()
	doc, ok := decoder.Decode(NewBuilder(p).Build(models.DefaultSettings()))
	if !ok {
		t.Fatal("prompt template did not decode")
	}
	res := payload.Normalize(doc, p.Sides)
	if res.Game == nil || res.Game.Status != models.StatusPregame {
		t.Errorf("Game = %+v", res.Game)
	}
	if _, ok := res.Game.Stats["ne_passing_yards"]; !ok {
		t.Errorf("Stats = %v", res.Game.Stats)
	}
	if res.Odds == nil || len(res.Odds.Quotes) != len(p.Books) || res.Odds.Favorite != "SEA" {
		t.Errorf("Odds = %+v", res.Odds)
	}
	// Template entries carry empty descriptions; they still surface, titled
	// from side and kind.
	if len(res.Recommendations) != 2 {
		t.Fatalf("Recommendations = %+v", res.Recommendations)
	}
	if alert := res.Recommendations[0]; alert.Title != "NE spread" || len(alert.Legs) != 1 || alert.Legs[0].Source != p.Books[0].ID {
		t.Errorf("alert = %+v", alert)
	}
	if parlay := res.Recommendations[1]; parlay.Kind != models.KindParlay || parlay.Title != "Unlabeled parlay" {
		t.Errorf("parlay = %+v", parlay)
	}
	if res.Momentum != models.MomentumNeutral || res.Strength != 5 {
		t.Errorf("momentum = %s strength = %d", res.Momentum, res.Strength)
	}
}
