package engine

import (
	"fmt"
	"strings"

	"github.com/hetulpatel/LiveEdge/internal/decoder"
	"github.com/hetulpatel/LiveEdge/internal/fetch"
	"github.com/hetulpatel/LiveEdge/internal/models"
	"github.com/hetulpatel/LiveEdge/internal/payload"
)

const rawExcerptLimit = 300

const (
	rateLimitBanner = "Rate limited by the model API. Wait 2-3 minutes before scanning again."
	decodeBanner    = "Could not parse the model response"
)

// Analysis is the narrative part of the latest scan that carried one.
type Analysis struct {
	Narrative  string `json:"narrative,omitempty"`
	Momentum   string `json:"momentum,omitempty"`
	Strength   int    `json:"strength,omitempty"`
	Wait       bool   `json:"wait"`
	WaitReason string `json:"wait_reason,omitempty"`
}

func (a Analysis) empty() bool {
	return a == Analysis{}
}

// applyResponse folds one relay response into state. Callers hold o.mu.
// The returned result is nil when the scan failed.
func (o *Orchestrator) applyResponse(run *scanRun, resp fetch.Response) *models.ScanResult {
	if resp.Failed() {
		if rateLimited(resp) {
			o.banner = rateLimitBanner
			o.appendScanLog(run, fmt.Sprintf("Rate limited (%s): wait 2-3 minutes before the next scan", resp.Error), models.SeverityError)
			return nil
		}
		o.banner = "API call failed: " + resp.Error
		if resp.Details != "" {
			o.banner += " (" + decoder.Truncate(resp.Details, rawExcerptLimit) + ")"
		}
		o.appendScanLog(run, "Fetch failed: "+resp.Error, models.SeverityError)
		return nil
	}

	doc, ok := decoder.Decode(resp.Text)
	if !ok {
		excerpt := decoder.Truncate(resp.Text, rawExcerptLimit)
		o.banner = decodeBanner
		if excerpt != "" {
			o.banner += ": " + excerpt
		}
		o.appendScanLog(run, "Could not parse response ("+fmt.Sprint(len(resp.Text))+" chars)", models.SeverityError)
		return nil
	}

	result := payload.Normalize(doc, o.profile.Sides)
	result.SearchCount = resp.SearchCount
	o.searchCount = resp.SearchCount

	if result.Game != nil {
		o.game = result.Game.Clone()
		o.appendScanLog(run, o.scoreLine(result.Game), models.SeveritySuccess)
	} else {
		o.appendScanLog(run, "No game data in response", models.SeverityInfo)
	}

	if result.Odds != nil {
		o.odds = result.Odds.Clone()
		o.appendScanLog(run, fmt.Sprintf("Odds loaded from %d/%d sportsbooks", result.Odds.QuotedSources(), len(o.profile.Books)), models.SeveritySuccess)
		if result.Odds.Notes != "" {
			o.appendScanLog(run, result.Odds.Notes, models.SeverityInfo)
		}
	} else {
		o.appendScanLog(run, "No odds in response", models.SeverityInfo)
	}

	created := o.now()
	for i := range result.Recommendations {
		result.Recommendations[i].ID = o.newID()
		result.Recommendations[i].CreatedAt = created
		o.alerts = append(o.alerts, result.Recommendations[i].Clone())
	}
	if n := len(result.Recommendations); n > 0 {
		o.appendScanLog(run, fmt.Sprintf("%d NEW %s", n, plural(n, "ALERT", "ALERTS")), models.SeverityAlert)
		for _, rec := range result.Recommendations {
			o.appendScanLog(run, alertLine(rec), models.SeverityAlert)
		}
	} else {
		o.appendScanLog(run, "No actionable opportunities right now", models.SeverityInfo)
	}

	analysis := Analysis{
		Narrative:  result.Narrative,
		Momentum:   result.Momentum,
		Strength:   result.Strength,
		Wait:       result.Wait,
		WaitReason: result.WaitReason,
	}
	if !analysis.empty() {
		o.analysis = analysis
	}
	if result.Narrative != "" {
		o.appendScanLog(run, result.Narrative, models.SeverityInfo)
	}
	if result.Wait {
		msg := "Wait recommended"
		if result.WaitReason != "" {
			msg += ": " + result.WaitReason
		}
		o.appendScanLog(run, msg, models.SeverityInfo)
	}
	if resp.SearchCount > 0 {
		o.appendScanLog(run, fmt.Sprintf("%d web %s", resp.SearchCount, plural(resp.SearchCount, "search", "searches")), models.SeverityInfo)
	}
	o.appendScanLog(run, "SCAN COMPLETE", models.SeveritySuccess)
	return &result
}

// rateLimited matches a 429 status or rate-limit wording in the error text.
func rateLimited(resp fetch.Response) bool {
	if resp.StatusCode == 429 {
		return true
	}
	msg := strings.ToLower(resp.Error + " " + resp.Details)
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}

func (o *Orchestrator) scoreLine(g *models.GameState) string {
	scores := make([]string, 0, len(o.profile.Sides))
	for _, side := range o.profile.Sides {
		scores = append(scores, fmt.Sprintf("%s %d", side.Code, g.Score(side.Code)))
	}
	parts := []string{"Score: " + strings.Join(scores, " - ")}
	clock := strings.TrimSpace(periodLabel(g.Period) + " " + g.Clock)
	if clock != "" {
		parts = append(parts, clock)
	}
	if g.Status != "" {
		parts = append(parts, strings.ToUpper(string(g.Status)))
	}
	return strings.Join(parts, " | ")
}

// periodLabel renders a bare quarter number as "Q2"; other labels pass through.
func periodLabel(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return p
		}
	}
	return "Q" + p
}

func alertLine(rec models.Recommendation) string {
	line := fmt.Sprintf("-> %s | %s", rec.Confidence, rec.Title)
	if src := rec.Source(); src != "" {
		line += " @ " + src
	}
	return line
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
