package models

import "strings"

// Side is one of the two participants of the monitored event.
type Side struct {
	Code     string `json:"code" yaml:"code"`
	Name     string `json:"name" yaml:"name"`
	FullName string `json:"full_name" yaml:"full_name"`
}

// Key is the lowercase form used in payload keys such as "ne_score".
func (s Side) Key() string {
	return strings.ToLower(s.Code)
}

type Status string

const (
	StatusPregame  Status = "pregame"
	StatusLive     Status = "live"
	StatusHalftime Status = "halftime"
	StatusFinal    Status = "final"
)

// GameState is replaced wholesale on every scan that carries one.
type GameState struct {
	Scores       map[string]int     `json:"scores"`
	Period       string             `json:"period"`
	Clock        string             `json:"clock"`
	Possession   string             `json:"possession,omitempty"`
	DownDistance string             `json:"down_distance,omitempty"`
	LastPlay     string             `json:"last_play,omitempty"`
	Status       Status             `json:"status"`
	Stats        map[string]float64 `json:"stats,omitempty"`
	Players      []PlayerStat       `json:"players,omitempty"`
}

// PlayerStat is a single box-score line for one player.
type PlayerStat struct {
	Name  string `json:"name"`
	Team  string `json:"team,omitempty"`
	Stat  string `json:"stat"`
	Value string `json:"value"`
}

// Score returns the score for a side code, zero when unknown.
func (g *GameState) Score(code string) int {
	if g == nil {
		return 0
	}
	return g.Scores[code]
}

func (g *GameState) Clone() *GameState {
	if g == nil {
		return nil
	}
	out := *g
	if g.Scores != nil {
		out.Scores = make(map[string]int, len(g.Scores))
		for k, v := range g.Scores {
			out.Scores[k] = v
		}
	}
	if g.Stats != nil {
		out.Stats = make(map[string]float64, len(g.Stats))
		for k, v := range g.Stats {
			out.Stats[k] = v
		}
	}
	if g.Players != nil {
		out.Players = append([]PlayerStat(nil), g.Players...)
	}
	return &out
}
