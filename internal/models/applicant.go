// internal/models/applicant.go
package models

import (
	"regexp"
	"time"
)

const (
	MinApplicantAge = 0
	MaxApplicantAge = 120
)

var jurisdictionPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// ApplicantProfile is the household snapshot evaluated in a single request.
// Money is in integer cents. Optional attributes are pointers so that an
// unreported value stays distinguishable from zero.
type ApplicantProfile struct {
	HouseholdSize              int       `json:"householdSize"`
	MonthlyIncomeCents         int64     `json:"monthlyIncomeCents"`
	Age                        *int      `json:"age,omitempty"`
	HasDisability              bool      `json:"hasDisability"`
	IsPregnant                 bool      `json:"isPregnant"`
	IsFemale                   bool      `json:"isFemale"`
	ReceivesCategoricalBenefit bool      `json:"receivesCategoricalBenefit"`
	IsCitizen                  *bool     `json:"isCitizen,omitempty"`
	AssetsCents                *int64    `json:"assetsCents,omitempty"`
	Jurisdiction               string    `json:"jurisdiction"`
	EvaluatedAt                time.Time `json:"evaluatedAt"`
}

// Validate checks the profile invariants and returns the first violation.
func (a ApplicantProfile) Validate() error {
	if a.HouseholdSize < 1 {
		return NewValidationError("householdSize", "must be at least 1, got %d", a.HouseholdSize)
	}
	if a.MonthlyIncomeCents < 0 {
		return NewValidationError("monthlyIncomeCents", "must not be negative, got %d", a.MonthlyIncomeCents)
	}
	if a.Age != nil && (*a.Age < MinApplicantAge || *a.Age > MaxApplicantAge) {
		return NewValidationError("age", "must be between %d and %d, got %d", MinApplicantAge, MaxApplicantAge, *a.Age)
	}
	if a.AssetsCents != nil && *a.AssetsCents < 0 {
		return NewValidationError("assetsCents", "must not be negative, got %d", *a.AssetsCents)
	}
	if !jurisdictionPattern.MatchString(a.Jurisdiction) {
		return NewValidationError("jurisdiction", "must be a two-letter uppercase code, got %q", a.Jurisdiction)
	}
	if a.EvaluatedAt.IsZero() {
		return NewValidationError("evaluatedAt", "is required")
	}
	return nil
}

// AnnualIncomeCents is the monthly income scaled to a year.
func (a ApplicantProfile) AnnualIncomeCents() int64 {
	return a.MonthlyIncomeCents * 12
}

// IntPtr, Int64Ptr and BoolPtr build optional profile fields.
func IntPtr(v int) *int { return &v }

func Int64Ptr(v int64) *int64 { return &v }

func BoolPtr(v bool) *bool { return &v }
