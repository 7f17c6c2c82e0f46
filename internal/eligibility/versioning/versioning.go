// Package versioning decides which stored rule version is in force.
package versioning

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"eligibility-workers/internal/models"
)

var (
	ErrNoActiveRule        = errors.New("no active rule")
	ErrAmbiguousActiveRule = errors.New("more than one active rule")
)

// Resolution is the finest instant rule windows distinguish. It matches the
// TIMESTAMPTZ columns of the rule store, so a window closed one Resolution
// before its successor survives a round trip unchanged.
const Resolution = time.Microsecond

// IsActive reports whether rule is in force at t, truncated to Resolution.
// The effective date and the end date are both inclusive; a rule without an
// end date never expires.
func IsActive(rule models.ProgramRule, t time.Time) bool {
	return rule.IsActiveAt(t.Truncate(Resolution))
}

// ActiveAt returns the rules in force at t, in input order.
func ActiveAt(rules []models.ProgramRule, t time.Time) []models.ProgramRule {
	out := make([]models.ProgramRule, 0, 1)
	for _, r := range rules {
		if IsActive(r, t) {
			out = append(out, r)
		}
	}
	return out
}

// Resolve picks the single rule for programID in force at t.
func Resolve(rules []models.ProgramRule, programID string, t time.Time) (models.ProgramRule, error) {
	var found []models.ProgramRule
	for _, r := range rules {
		if r.ProgramID == programID && IsActive(r, t) {
			found = append(found, r)
		}
	}

	switch len(found) {
	case 0:
		return models.ProgramRule{}, fmt.Errorf("%w for %s at %s", ErrNoActiveRule, programID, t.Format(time.RFC3339))
	case 1:
		return found[0], nil
	}
	versions := make([]string, 0, len(found))
	for _, r := range found {
		versions = append(versions, r.Version.String())
	}
	return models.ProgramRule{}, fmt.Errorf("%w for %s at %s: versions %v", ErrAmbiguousActiveRule, programID, t.Format(time.RFC3339), versions)
}

// ValidateHistory checks one program's versions: versions increase strictly
// with effective date, ends do not precede starts, and no two windows overlap.
func ValidateHistory(rules []models.ProgramRule) error {
	sorted := make([]models.ProgramRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveDate.Before(sorted[j].EffectiveDate)
	})

	for i, r := range sorted {
		if r.EndDate != nil && r.EndDate.Before(r.EffectiveDate) {
			return fmt.Errorf("rule %s ends before it takes effect", r.RuleID())
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if !r.Version.GreaterThan(prev.Version) {
			return fmt.Errorf("rule %s must have a higher version than %s", r.RuleID(), prev.RuleID())
		}
		if prev.EndDate == nil || !prev.EndDate.Before(r.EffectiveDate) {
			return fmt.Errorf("%w: %s overlaps %s", ErrAmbiguousActiveRule, prev.RuleID(), r.RuleID())
		}
	}
	return nil
}
