// internal/models/outcome.go
package models

import (
	"encoding/json"
	"strconv"
)

// EvaluationStatus is the coarse verdict derived from a confidence score.
type EvaluationStatus string

const (
	StatusLikelyEligible   EvaluationStatus = "LIKELY_ELIGIBLE"
	StatusPossiblyEligible EvaluationStatus = "POSSIBLY_ELIGIBLE"
	StatusUnlikelyEligible EvaluationStatus = "UNLIKELY_ELIGIBLE"
)

// Status cut lines. A score at a cut line belongs to the higher status.
const (
	LikelyEligibleMinScore   = 60
	PossiblyEligibleMinScore = 40
)

// StatusForScore maps a confidence score to its status.
func StatusForScore(score ConfidenceScore) EvaluationStatus {
	switch v := score.Value(); {
	case v >= LikelyEligibleMinScore:
		return StatusLikelyEligible
	case v >= PossiblyEligibleMinScore:
		return StatusPossiblyEligible
	default:
		return StatusUnlikelyEligible
	}
}

const (
	MinConfidence = 0
	MaxConfidence = 100
)

// ConfidenceScore is an integer in [0,100]. The zero value is a score of 0.
type ConfidenceScore struct {
	value int
}

// NewConfidenceScore clamps v into range.
func NewConfidenceScore(v int) ConfidenceScore {
	if v < MinConfidence {
		v = MinConfidence
	}
	if v > MaxConfidence {
		v = MaxConfidence
	}
	return ConfidenceScore{value: v}
}

func (c ConfidenceScore) Value() int { return c.value }

// Compare returns -1, 0 or 1 as c is below, equal to or above other.
func (c ConfidenceScore) Compare(other ConfidenceScore) int {
	switch {
	case c.value < other.value:
		return -1
	case c.value > other.value:
		return 1
	}
	return 0
}

func (c ConfidenceScore) String() string { return strconv.Itoa(c.value) }

func (c ConfidenceScore) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.value)
}

func (c *ConfidenceScore) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = NewConfidenceScore(v)
	return nil
}

// EvaluationOutcome is the result of evaluating one rule for one applicant.
type EvaluationOutcome struct {
	Status               EvaluationStatus `json:"status"`
	Confidence           ConfidenceScore  `json:"confidence"`
	MatchingFactors      []string         `json:"matchingFactors"`
	DisqualifyingFactors []string         `json:"disqualifyingFactors"`
}

// ProgramMatch is a ranked program recommendation.
type ProgramMatch struct {
	Program              Program            `json:"program"`
	Pathway              EligibilityPathway `json:"pathway"`
	RuleVersion          string             `json:"ruleVersion"`
	Status               EvaluationStatus   `json:"status"`
	Confidence           ConfidenceScore    `json:"confidence"`
	MatchingFactors      []string           `json:"matchingFactors"`
	DisqualifyingFactors []string           `json:"disqualifyingFactors"`
}
