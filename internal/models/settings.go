package models

const (
	DefaultAggression = 6
	DefaultUnitSize   = 25
	DefaultBankroll   = 500
)

// Settings are the user's session-local strategy knobs.
type Settings struct {
	Aggression int `json:"aggression"`
	UnitSize   int `json:"unit_size"`
	Bankroll   int `json:"bankroll"`
}

func DefaultSettings() Settings {
	return Settings{Aggression: DefaultAggression, UnitSize: DefaultUnitSize, Bankroll: DefaultBankroll}
}

// Normalized clamps aggression to 1..10 and replaces non-positive money
// amounts with the defaults.
func (s Settings) Normalized() Settings {
	switch {
	case s.Aggression == 0:
		s.Aggression = DefaultAggression
	case s.Aggression < 1:
		s.Aggression = 1
	case s.Aggression > 10:
		s.Aggression = 10
	}
	if s.UnitSize <= 0 {
		s.UnitSize = DefaultUnitSize
	}
	if s.Bankroll <= 0 {
		s.Bankroll = DefaultBankroll
	}
	return s
}
