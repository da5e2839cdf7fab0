package models

// Quote is one sportsbook's prices for the event. Prices stay in the
// American notation the model reported ("-110", "+150", "45.5").
type Quote struct {
	Spread            string `json:"spread,omitempty"`
	MoneylineFavorite string `json:"ml_fav,omitempty"`
	MoneylineUnderdog string `json:"ml_dog,omitempty"`
	Total             string `json:"total,omitempty"`
}

func (q Quote) Empty() bool {
	return q == Quote{}
}

// BestPrices names the source with the best line per market. The names are
// advisory and are not checked against OddsSnapshot.Quotes.
type BestPrices struct {
	Spread    string `json:"spread,omitempty"`
	Moneyline string `json:"moneyline,omitempty"`
	Total     string `json:"total,omitempty"`
}

// OddsSnapshot is replaced wholesale on every scan that carries one.
type OddsSnapshot struct {
	Quotes   map[string]Quote `json:"quotes"`
	Favorite string           `json:"favorite,omitempty"`
	Best     BestPrices       `json:"best"`
	Notes    string           `json:"notes,omitempty"`
}

func (o *OddsSnapshot) Clone() *OddsSnapshot {
	if o == nil {
		return nil
	}
	out := *o
	if o.Quotes != nil {
		out.Quotes = make(map[string]Quote, len(o.Quotes))
		for k, v := range o.Quotes {
			out.Quotes[k] = v
		}
	}
	return &out
}

// QuotedSources counts sources that reported at least one price.
func (o *OddsSnapshot) QuotedSources() int {
	if o == nil {
		return 0
	}
	n := 0
	for _, q := range o.Quotes {
		if !q.Empty() {
			n++
		}
	}
	return n
}
