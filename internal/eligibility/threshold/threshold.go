// Package threshold computes percentage-of-poverty-level income limits in
// integer cents. Results are rounded down wherever division occurs.
package threshold

import (
	"eligibility-workers/internal/models"
)

const (
	MinPercentage = 0
	MaxPercentage = 1000
	monthsPerYear = 12
)

// Guideline is one year's baseline annual income table for a region.
// SizeBaselinesCents[0] is the baseline for a household of one.
type Guideline struct {
	Year                    int     `json:"year" mapstructure:"year"`
	Region                  string  `json:"region" mapstructure:"region"`
	SizeBaselinesCents      []int64 `json:"sizeBaselinesCents" mapstructure:"size_baselines_cents"`
	PerPersonIncrementCents int64   `json:"perPersonIncrementCents" mapstructure:"per_person_increment_cents"`
}

// Validate checks that the table is usable.
func (g Guideline) Validate() error {
	if len(g.SizeBaselinesCents) == 0 {
		return models.NewValidationError("sizeBaselinesCents", "guideline %s/%d has no baselines", g.Region, g.Year)
	}
	for i, b := range g.SizeBaselinesCents {
		if b < 0 {
			return models.NewValidationError("sizeBaselinesCents", "baseline for household of %d is negative", i+1)
		}
	}
	if g.PerPersonIncrementCents < 0 {
		return models.NewValidationError("perPersonIncrementCents", "must not be negative, got %d", g.PerPersonIncrementCents)
	}
	return nil
}

// Baseline returns the annual baseline for a household. Sizes past the table
// add the per-person increment to the largest tabled size.
func (g Guideline) Baseline(householdSize int) (int64, error) {
	if householdSize < 1 {
		return 0, models.NewValidationError("householdSize", "must be at least 1, got %d", householdSize)
	}
	if err := g.Validate(); err != nil {
		return 0, err
	}
	tabled := len(g.SizeBaselinesCents)
	if householdSize <= tabled {
		return g.SizeBaselinesCents[householdSize-1], nil
	}
	return g.SizeBaselinesCents[tabled-1] + int64(householdSize-tabled)*g.PerPersonIncrementCents, nil
}

// ApplyPercentage returns percentage% of an annual baseline.
func ApplyPercentage(baselineAnnualCents int64, percentage int) (int64, error) {
	if baselineAnnualCents < 0 {
		return 0, models.NewValidationError("baselineAnnualCents", "must not be negative, got %d", baselineAnnualCents)
	}
	if percentage < MinPercentage || percentage > MaxPercentage {
		return 0, models.NewValidationError("percentage", "must be between %d and %d, got %d", MinPercentage, MaxPercentage, percentage)
	}
	return baselineAnnualCents * int64(percentage) / 100, nil
}

// AnnualThreshold is percentage% of the household's baseline.
func AnnualThreshold(g Guideline, percentage, householdSize int) (int64, error) {
	baseline, err := g.Baseline(householdSize)
	if err != nil {
		return 0, err
	}
	return ApplyPercentage(baseline, percentage)
}

// MonthlyThreshold is AnnualThreshold divided by twelve, rounded down.
func MonthlyThreshold(g Guideline, percentage, householdSize int) (int64, error) {
	annual, err := AnnualThreshold(g, percentage, householdSize)
	if err != nil {
		return 0, err
	}
	return annual / monthsPerYear, nil
}

// IncomePercentOfBaseline expresses an annual income as a whole percent of the
// household baseline, rounded down. A zero baseline yields a validation error.
func IncomePercentOfBaseline(g Guideline, annualIncomeCents int64, householdSize int) (int64, error) {
	if annualIncomeCents < 0 {
		return 0, models.NewValidationError("annualIncomeCents", "must not be negative, got %d", annualIncomeCents)
	}
	baseline, err := g.Baseline(householdSize)
	if err != nil {
		return 0, err
	}
	if baseline == 0 {
		return 0, models.NewValidationError("sizeBaselinesCents", "baseline for household of %d is zero", householdSize)
	}
	return annualIncomeCents * 100 / baseline, nil
}
