package confidence

import (
	"testing"

	"eligibility-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name          string
		matching      []string
		disqualifying []string
		expected      int
	}{
		{"no factors", nil, nil, 50},
		{"one matching", []string{"Meets program eligibility rule"}, nil, 60},
		{"one disqualifying", nil, []string{"Does not meet program eligibility rule"}, 35},
		{"mixed", []string{"a", "b"}, []string{"c"}, 55},
		{"categorical bonus", []string{"Receives SSI (categorical eligibility)"}, nil, 100},
		{"bonus is case insensitive", []string{"receives supplemental security income"}, nil, 100},
		{"disability benefit keyword", []string{"Gets a Disability Benefit"}, []string{"x"}, 90},
		{"clamped at zero", nil, []string{"a", "b", "c", "d"}, 0},
		{"clamped at hundred", []string{"a", "b", "c", "d", "e", "f"}, nil, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.matching, tt.disqualifying).Value())
		})
	}
}

func TestScore_BonusIgnoresDisqualifyingFactors(t *testing.T) {
	score := Score(nil, []string{"SSI payments stopped"})
	assert.Equal(t, 35, score.Value())
}

func TestScore_OrderIndependent(t *testing.T) {
	matching := []string{"Meets program eligibility rule", "Receives SSI (categorical eligibility)", "x"}
	reversed := []string{"x", "Receives SSI (categorical eligibility)", "Meets program eligibility rule"}

	assert.Equal(t, Score(matching, []string{"a", "b"}), Score(reversed, []string{"b", "a"}))
}

func TestScore_Monotonic(t *testing.T) {
	base := []string{"a"}
	more := []string{"a", "b"}
	assert.GreaterOrEqual(t, Score(more, nil).Value(), Score(base, nil).Value())
	assert.LessOrEqual(t, Score(base, []string{"x", "y"}).Value(), Score(base, []string{"x"}).Value())
}

func TestExplain(t *testing.T) {
	b := Explain([]string{"Receives SSI (categorical eligibility)", "x"}, []string{"y"})

	assert.Equal(t, Breakdown{
		Base:                50,
		MatchingPoints:      20,
		DisqualifyingPoints: -15,
		BonusApplied:        true,
		BonusPoints:         45,
		Raw:                 100,
		Final:               100,
	}, b)

	b = Explain(nil, []string{"a", "b", "c", "d"})
	assert.Equal(t, -10, b.Raw)
	assert.Equal(t, 0, b.Final)
}

func TestScorer_SatisfiesInterface(t *testing.T) {
	var s interface {
		Score(matching, disqualifying []string) models.ConfidenceScore
	} = NewScorer()
	assert.Equal(t, 60, s.Score([]string{"a"}, nil).Value())
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{0, "Very Low"},
		{19, "Very Low"},
		{20, "Low"},
		{39, "Low"},
		{40, "Medium"},
		{59, "Medium"},
		{60, "High"},
		{79, "High"},
		{80, "Very High"},
		{100, "Very High"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Label(models.NewConfidenceScore(tt.score)), "score %d", tt.score)
	}
}
