package rules

import (
	"eligibility-workers/internal/eligibility/threshold"
	"eligibility-workers/internal/models"
)

// Scorer turns factor lists into a confidence score.
type Scorer interface {
	Score(matching, disqualifying []string) models.ConfidenceScore
}

// Engine evaluates stored program rules. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	scorer     Scorer
	guidelines *threshold.Table
}

// NewEngine builds an Engine. guidelines may be nil, in which case the
// poverty guideline variables are never bound.
func NewEngine(scorer Scorer, guidelines *threshold.Table) *Engine {
	return &Engine{scorer: scorer, guidelines: guidelines}
}

// Context builds the variable map for an applicant.
func (e *Engine) Context(applicant models.ApplicantProfile) Vars {
	return BuildContext(applicant, e.guidelines)
}

// Check parses and runs the rule against vars and derives the heuristic factors.
func (e *Engine) Check(rule models.ProgramRule, applicant models.ApplicantProfile, vars Vars) (Verdict, error) {
	ruleID := rule.RuleID()
	expr, err := Parse(ruleID, rule.Expression)
	if err != nil {
		return Verdict{}, err
	}
	passed, err := Matches(ruleID, expr, vars)
	if err != nil {
		return Verdict{}, err
	}
	return DeriveFactors(applicant, passed), nil
}

// Evaluate validates the applicant, runs one rule and scores the result.
func (e *Engine) Evaluate(rule models.ProgramRule, applicant models.ApplicantProfile) (models.EvaluationOutcome, error) {
	if err := applicant.Validate(); err != nil {
		return models.EvaluationOutcome{}, err
	}
	verdict, err := e.Check(rule, applicant, e.Context(applicant))
	if err != nil {
		return models.EvaluationOutcome{}, err
	}
	score := e.scorer.Score(verdict.Matching, verdict.Disqualifying)
	return models.EvaluationOutcome{
		Status:               models.StatusForScore(score),
		Confidence:           score,
		MatchingFactors:      verdict.Matching,
		DisqualifyingFactors: verdict.Disqualifying,
	}, nil
}
