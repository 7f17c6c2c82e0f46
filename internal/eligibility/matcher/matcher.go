// Package matcher evaluates an applicant against candidate programs and
// ranks the programs they may qualify for.
package matcher

import (
	"errors"
	"sort"

	"eligibility-workers/internal/eligibility/assets"
	"eligibility-workers/internal/eligibility/pathway"
	"eligibility-workers/internal/eligibility/rules"
	"eligibility-workers/internal/models"
)

// Candidate pairs a program with the rule version in force for it.
type Candidate struct {
	Program models.Program     `json:"program"`
	Rule    models.ProgramRule `json:"rule"`
}

// RuleFailure records a candidate dropped because its stored rule is corrupt.
type RuleFailure struct {
	Program models.Program `json:"program"`
	RuleID  string         `json:"ruleId"`
	Path    string         `json:"path"`
	Reason  string         `json:"reason"`
}

// Result is the outcome of one FindMatches call. Slices are never nil.
type Result struct {
	Pathways []models.EligibilityPathway `json:"pathways"`
	Matches  []models.ProgramMatch       `json:"matches"`
	Failures []RuleFailure               `json:"failures"`
}

// Scorer turns factor lists into a confidence score.
type Scorer interface {
	Score(matching, disqualifying []string) models.ConfidenceScore
}

// Matcher is immutable after construction and safe for concurrent use.
type Matcher struct {
	engine  *rules.Engine
	scorer  Scorer
	assets  *assets.Evaluator
	routing bool
}

type Option func(*Matcher)

// WithAssets enables the resource check for asset-tested programs.
func WithAssets(e *assets.Evaluator) Option {
	return func(m *Matcher) { m.assets = e }
}

// WithRouting controls whether candidates outside the applicant's pathways
// are skipped. Routing is on by default.
func WithRouting(enabled bool) Option {
	return func(m *Matcher) { m.routing = enabled }
}

func New(engine *rules.Engine, scorer Scorer, opts ...Option) *Matcher {
	m := &Matcher{engine: engine, scorer: scorer, routing: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FindMatches evaluates every candidate and returns the programs scoring
// above UnlikelyEligible, best first. An invalid applicant fails the whole
// call. A candidate whose rule cannot be evaluated is reported in
// Result.Failures and the remaining candidates are still evaluated.
func (m *Matcher) FindMatches(applicant models.ApplicantProfile, candidates []Candidate) (Result, error) {
	if err := applicant.Validate(); err != nil {
		return Result{}, err
	}
	pathways, err := pathway.Classify(pathway.AttributesOf(applicant))
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Pathways: pathways,
		Matches:  []models.ProgramMatch{},
		Failures: []RuleFailure{},
	}
	router := pathway.NewRouter(pathways)
	vars := m.engine.Context(applicant)
	year := applicant.EvaluatedAt.Year()

	for _, c := range candidates {
		if m.routing && !router.HasAny(c.Program.Pathway) {
			continue
		}

		verdict, err := m.engine.Check(c.Rule, applicant, vars)
		if err != nil {
			var rErr *rules.RuleEvaluationError
			if errors.As(err, &rErr) {
				result.Failures = append(result.Failures, RuleFailure{
					Program: c.Program,
					RuleID:  rErr.RuleID,
					Path:    rErr.Path,
					Reason:  rErr.Reason,
				})
				continue
			}
			return Result{}, err
		}

		if m.assets != nil && c.Program.Pathway.HasAssetTest() {
			decision, err := m.checkAssets(applicant, c.Program.Pathway, year)
			if err != nil {
				return Result{}, err
			}
			if decision.Eligible {
				verdict.Matching = append(verdict.Matching, decision.Reason)
			} else {
				verdict.Disqualifying = append(verdict.Disqualifying, decision.Reason)
			}
		}

		score := m.scorer.Score(verdict.Matching, verdict.Disqualifying)
		status := models.StatusForScore(score)
		if status == models.StatusUnlikelyEligible {
			continue
		}
		result.Matches = append(result.Matches, models.ProgramMatch{
			Program:              c.Program,
			Pathway:              c.Program.Pathway,
			RuleVersion:          c.Rule.Version.String(),
			Status:               status,
			Confidence:           score,
			MatchingFactors:      verdict.Matching,
			DisqualifyingFactors: verdict.Disqualifying,
		})
	}

	sortMatches(result.Matches)
	sort.SliceStable(result.Failures, func(i, j int) bool {
		a, b := result.Failures[i], result.Failures[j]
		if a.Program.ProgramID != b.Program.ProgramID {
			return a.Program.ProgramID < b.Program.ProgramID
		}
		return a.Program.Jurisdiction < b.Program.Jurisdiction
	})
	return result, nil
}

// sortMatches orders by confidence descending, then program id, then jurisdiction.
func sortMatches(matches []models.ProgramMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if c := a.Confidence.Compare(b.Confidence); c != 0 {
			return c > 0
		}
		if a.Program.ProgramID != b.Program.ProgramID {
			return a.Program.ProgramID < b.Program.ProgramID
		}
		return a.Program.Jurisdiction < b.Program.Jurisdiction
	})
}

// checkAssets runs the asset test. Unreported assets still count against an
// asset-tested program.
func (m *Matcher) checkAssets(applicant models.ApplicantProfile, p models.EligibilityPathway, year int) (assets.Decision, error) {
	if applicant.AssetsCents == nil {
		return m.assets.EvaluateUnreported(p, applicant.Jurisdiction, year)
	}
	return m.assets.Evaluate(*applicant.AssetsCents, p, applicant.Jurisdiction, year)
}
