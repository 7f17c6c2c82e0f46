// Package assets applies resource limits to the non-MAGI pathways.
package assets

import (
	"errors"
	"fmt"
	"sort"

	"eligibility-workers/internal/models"

	"github.com/dustin/go-humanize"
)

// AssetLimit is the countable resource ceiling for one pathway in one
// jurisdiction, in force from Year onward until a newer row replaces it.
type AssetLimit struct {
	Year         int                       `json:"year" mapstructure:"year"`
	Jurisdiction string                    `json:"jurisdiction" mapstructure:"jurisdiction"`
	Pathway      models.EligibilityPathway `json:"pathway" mapstructure:"pathway"`
	LimitCents   int64                     `json:"limitCents" mapstructure:"limit_cents"`
}

func (l AssetLimit) Validate() error {
	if l.Year <= 0 {
		return models.NewValidationError("year", "must be positive, got %d", l.Year)
	}
	if l.Jurisdiction == "" {
		return models.NewValidationError("jurisdiction", "is required")
	}
	if !l.Pathway.HasAssetTest() {
		return models.NewValidationError("pathway", "%s has no asset test", l.Pathway)
	}
	if l.LimitCents < 0 {
		return models.NewValidationError("limitCents", "must not be negative, got %d", l.LimitCents)
	}
	return nil
}

type limitKey struct {
	jurisdiction string
	pathway      models.EligibilityPathway
}

// Table indexes limits by jurisdiction and pathway, newest year first.
type Table struct {
	limits map[limitKey][]AssetLimit
}

// NewTable validates limits. Two rows for the same jurisdiction, pathway and
// year are rejected.
func NewTable(limits []AssetLimit) (*Table, error) {
	t := &Table{limits: make(map[limitKey][]AssetLimit)}
	for _, l := range limits {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		key := limitKey{jurisdiction: l.Jurisdiction, pathway: l.Pathway}
		for _, existing := range t.limits[key] {
			if existing.Year == l.Year {
				return nil, fmt.Errorf("duplicate asset limit for %s/%s/%d", l.Jurisdiction, l.Pathway, l.Year)
			}
		}
		t.limits[key] = append(t.limits[key], l)
	}
	for _, rows := range t.limits {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Year > rows[j].Year })
	}
	return t, nil
}

// Lookup returns the newest limit whose year is not after asOfYear.
func (t *Table) Lookup(jurisdiction string, pathway models.EligibilityPathway, asOfYear int) (AssetLimit, error) {
	if t != nil {
		for _, l := range t.limits[limitKey{jurisdiction: jurisdiction, pathway: pathway}] {
			if l.Year <= asOfYear {
				return l, nil
			}
		}
	}
	return AssetLimit{}, &models.UnknownJurisdictionError{Jurisdiction: jurisdiction, Table: "asset limit", Year: asOfYear}
}

// Decision is the result of an asset check. LimitCents is zero when no limit applied.
type Decision struct {
	Eligible   bool   `json:"eligible"`
	Reason     string `json:"reason"`
	LimitCents int64  `json:"limitCents"`
}

// Evaluator checks reported assets against a Table.
type Evaluator struct {
	table *Table
}

func NewEvaluator(table *Table) *Evaluator {
	return &Evaluator{table: table}
}

// Evaluate decides whether assetsCents is within the limit for the pathway.
// Pathways without an asset test always pass. A jurisdiction with no limit
// on file fails: the check is never skipped.
func (e *Evaluator) Evaluate(assetsCents int64, pathway models.EligibilityPathway, jurisdiction string, asOfYear int) (Decision, error) {
	if assetsCents < 0 {
		return Decision{}, models.NewValidationError("assetsCents", "must not be negative, got %d", assetsCents)
	}
	limit, decided, err := e.limitFor(pathway, jurisdiction, asOfYear)
	if err != nil || decided != nil {
		return derefDecision(decided), err
	}

	if assetsCents <= limit.LimitCents {
		return Decision{
			Eligible:   true,
			Reason:     fmt.Sprintf("Assets of %s are within the %s limit for %s", FormatCents(assetsCents), FormatCents(limit.LimitCents), jurisdiction),
			LimitCents: limit.LimitCents,
		}, nil
	}
	return Decision{
		Eligible:   false,
		Reason:     fmt.Sprintf("Assets of %s exceed the %s limit for %s", FormatCents(assetsCents), FormatCents(limit.LimitCents), jurisdiction),
		LimitCents: limit.LimitCents,
	}, nil
}

// EvaluateUnreported is Evaluate for an applicant who reported no assets.
// An asset-tested pathway cannot be confirmed, so the decision is never
// eligible; the reason names the limit that would apply.
func (e *Evaluator) EvaluateUnreported(pathway models.EligibilityPathway, jurisdiction string, asOfYear int) (Decision, error) {
	limit, decided, err := e.limitFor(pathway, jurisdiction, asOfYear)
	if err != nil || decided != nil {
		return derefDecision(decided), err
	}
	return Decision{
		Eligible:   false,
		Reason:     fmt.Sprintf("Assets not reported; the %s limit for %s cannot be confirmed", FormatCents(limit.LimitCents), jurisdiction),
		LimitCents: limit.LimitCents,
	}, nil
}

// limitFor resolves the limit row. A non-nil decision means the outcome is
// already known without comparing assets.
func (e *Evaluator) limitFor(pathway models.EligibilityPathway, jurisdiction string, asOfYear int) (AssetLimit, *Decision, error) {
	if !pathway.Valid() {
		return AssetLimit{}, nil, models.NewValidationError("pathway", "unknown pathway %q", pathway)
	}
	if !pathway.HasAssetTest() {
		return AssetLimit{}, &Decision{Eligible: true, Reason: fmt.Sprintf("No asset test for %s pathway", pathway)}, nil
	}

	limit, err := e.table.Lookup(jurisdiction, pathway, asOfYear)
	if err != nil {
		var ujErr *models.UnknownJurisdictionError
		if errors.As(err, &ujErr) {
			return AssetLimit{}, &Decision{
				Eligible: false,
				Reason:   fmt.Sprintf("Unknown jurisdiction %s: no %s asset limit on file", jurisdiction, pathway),
			}, nil
		}
		return AssetLimit{}, nil, err
	}
	return limit, nil, nil
}

func derefDecision(d *Decision) Decision {
	if d == nil {
		return Decision{}
	}
	return *d
}

// FormatCents renders minor units as dollars, e.g. 1750000 -> "$17,500.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}

// DefaultLimits seeds 2026 limits for the jurisdictions shipped with the catalog.
func DefaultLimits() []AssetLimit {
	rows := []struct {
		jurisdiction string
		cents        int64
	}{
		{"CA", 13000000},
		{"FL", 200000},
		{"IL", 1750000},
		{"NY", 3239600},
		{"PA", 200000},
		{"TX", 200000},
	}

	limits := make([]AssetLimit, 0, len(rows)*2)
	for _, r := range rows {
		for _, p := range []models.EligibilityPathway{models.PathwayNonMagiAged, models.PathwayNonMagiDisabled} {
			limits = append(limits, AssetLimit{Year: 2026, Jurisdiction: r.jurisdiction, Pathway: p, LimitCents: r.cents})
		}
	}
	return limits
}

// DefaultTable indexes DefaultLimits.
func DefaultTable() *Table {
	t, err := NewTable(DefaultLimits())
	if err != nil {
		panic(err)
	}
	return t
}
