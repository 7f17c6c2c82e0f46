// internal/workers/eligibility/find-program-matches/models.go
package findprogrammatches

import (
	"time"

	"eligibility-workers/internal/eligibility/matcher"
	"eligibility-workers/internal/models"
)

type Input struct {
	RequestID string                  `json:"requestId"`
	Applicant models.ApplicantProfile `json:"applicant"`
}

// Output is merged into the process instance variables.
type Output struct {
	EvaluationID string                      `json:"evaluationId"`
	RequestID    string                      `json:"requestId,omitempty"`
	Jurisdiction string                      `json:"jurisdiction"`
	Pathways     []models.EligibilityPathway `json:"pathways"`
	Matches      []models.ProgramMatch       `json:"matches"`
	MatchCount   int                         `json:"matchCount"`
	FailedRules  []matcher.RuleFailure       `json:"failedRules"`
	EvaluatedAt  time.Time                   `json:"evaluatedAt"`
}
