// internal/models/program.go
package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Program is a benefit program offered in one jurisdiction.
type Program struct {
	Jurisdiction string             `json:"jurisdiction"`
	ProgramID    string             `json:"programId"`
	Name         string             `json:"name"`
	Pathway      EligibilityPathway `json:"pathway"`
}

// ProgramRule is one stored version of a program's eligibility expression.
// Several versions of a rule may exist; callers pick the one in force.
type ProgramRule struct {
	Jurisdiction  string          `json:"jurisdiction"`
	ProgramID     string          `json:"programId"`
	Expression    json.RawMessage `json:"expression"`
	Version       decimal.Decimal `json:"version"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	EndDate       *time.Time      `json:"endDate,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// RuleID identifies a rule version in errors and logs.
func (r ProgramRule) RuleID() string {
	return r.Jurisdiction + "/" + r.ProgramID + "@v" + r.Version.String()
}

// IsActiveAt reports whether the rule is in force at t. Both ends are inclusive;
// a nil end date never expires.
func (r ProgramRule) IsActiveAt(t time.Time) bool {
	if t.Before(r.EffectiveDate) {
		return false
	}
	return r.EndDate == nil || !t.After(*r.EndDate)
}
