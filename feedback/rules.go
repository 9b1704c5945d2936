package feedback

import (
	"context"
	"strings"

	"orato/session"
)

// Rules is the deterministic local generator. Each metric is
// classified into a low/mid/high band with metric-specific thresholds
// and the matching sentence lands in Strengths or Areas to improve.
type Rules struct{}

func (Rules) Name() string { return "rules" }

func (r Rules) Generate(_ context.Context, s session.Summary) (string, error) {
	return r.render(s), nil
}

type bandRule struct {
	value     func(session.Summary) int
	low, high int
	strength  string // value > high
	advice    string // value < low
}

var bandRules = []bandRule{
	{
		value: func(s session.Summary) int { return s.Volume },
		low:   30, high: 70,
		strength: "Strong, confident projection; your volume carried well.",
		advice:   "Your voice came through quietly; project more from the diaphragm.",
	},
	{
		value: func(s session.Summary) int { return s.Clarity },
		low:   40, high: 70,
		strength: "Crisp articulation; your words were easy to follow.",
		advice:   "Articulation was muddy at times; slow down on consonants and open up vowels.",
	},
	{
		value: func(s session.Summary) int { return s.Pace },
		low:   25, high: 60,
		strength: "Lively delivery with good forward momentum.",
		advice:   "Delivery felt flat; vary your rhythm to keep listeners engaged.",
	},
	{
		value: func(s session.Summary) int { return s.PitchVariation },
		low:   30, high: 65,
		strength: "Expressive pitch range; your intonation held attention.",
		advice:   "Intonation was monotone; emphasize key words with pitch changes.",
	},
	{
		value: func(s session.Summary) int { return s.Frequency },
		low:   30, high: 70,
		strength: "Rich, resonant tone throughout the session.",
		advice:   "Your tone sounded thin; relax the throat and speak with more breath support.",
	},
	{
		value: func(s session.Summary) int { return s.Energy },
		low:   35, high: 70,
		strength: "Great overall energy; the enthusiasm came across.",
		advice:   "Low overall energy; bring more intention and warmth into your delivery.",
	},
}

func (Rules) render(s session.Summary) string {
	var strengths, improvements []string
	for _, r := range bandRules {
		v := r.value(s)
		switch {
		case v > r.high:
			strengths = append(strengths, r.strength)
		case v < r.low:
			improvements = append(improvements, r.advice)
		}
	}

	// Everything mid-band still deserves a clause; the generator must
	// produce text for every legal summary.
	if len(strengths) == 0 && len(improvements) == 0 {
		strengths = append(strengths, "Consistent, balanced delivery across all metrics. Keep it up.")
	}

	var b strings.Builder
	if len(strengths) > 0 {
		b.WriteString("Strengths:\n")
		for _, line := range strengths {
			b.WriteString("- " + line + "\n")
		}
	}
	if len(improvements) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Areas to improve:\n")
		for _, line := range improvements {
			b.WriteString("- " + line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
