// Package confidence scores how sure an eligibility result is from the
// factors that support or undercut it.
package confidence

import (
	"strings"

	"eligibility-workers/internal/models"
)

const (
	BaseScore              = 50
	MatchingFactorPoints   = 10
	DisqualifyingPenalty   = 15
	CategoricalBonusPoints = 45
)

// CategoricalKeywords mark a matching factor as evidence of categorical
// eligibility. Matching is case-insensitive and by substring.
var CategoricalKeywords = []string{
	"ssi",
	"supplemental security income",
	"categorical",
	"disability benefit",
}

// Scorer implements the additive scoring model. The zero value is ready to use.
type Scorer struct{}

func NewScorer() Scorer { return Scorer{} }

// Score computes the clamped confidence. Factor order does not matter.
func (Scorer) Score(matching, disqualifying []string) models.ConfidenceScore {
	return Score(matching, disqualifying)
}

// Score is the package-level form of Scorer.Score.
func Score(matching, disqualifying []string) models.ConfidenceScore {
	return models.NewConfidenceScore(Explain(matching, disqualifying).Raw)
}

// Breakdown itemises a score.
type Breakdown struct {
	Base                int  `json:"base"`
	MatchingPoints      int  `json:"matchingPoints"`
	DisqualifyingPoints int  `json:"disqualifyingPoints"`
	BonusApplied        bool `json:"bonusApplied"`
	BonusPoints         int  `json:"bonusPoints"`
	Raw                 int  `json:"raw"`
	Final               int  `json:"final"`
}

// Explain returns the itemised computation behind Score.
func Explain(matching, disqualifying []string) Breakdown {
	b := Breakdown{
		Base:                BaseScore,
		MatchingPoints:      MatchingFactorPoints * len(matching),
		DisqualifyingPoints: -DisqualifyingPenalty * len(disqualifying),
		BonusApplied:        HasCategoricalEvidence(matching),
	}
	if b.BonusApplied {
		b.BonusPoints = CategoricalBonusPoints
	}
	b.Raw = b.Base + b.MatchingPoints + b.DisqualifyingPoints + b.BonusPoints
	b.Final = models.NewConfidenceScore(b.Raw).Value()
	return b
}

// HasCategoricalEvidence reports whether any factor names a categorical keyword.
func HasCategoricalEvidence(factors []string) bool {
	for _, f := range factors {
		lower := strings.ToLower(f)
		for _, kw := range CategoricalKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// Label buckets a score for display.
func Label(score models.ConfidenceScore) string {
	switch v := score.Value(); {
	case v < 20:
		return "Very Low"
	case v < 40:
		return "Low"
	case v < 60:
		return "Medium"
	case v < 80:
		return "High"
	}
	return "Very High"
}
