package threshold

import (
	"fmt"

	"eligibility-workers/internal/models"
)

// Regions with their own poverty guidelines. Every other jurisdiction uses
// RegionContiguous.
const (
	RegionContiguous = "US48"
	RegionAlaska     = "AK"
	RegionHawaii     = "HI"
)

type tableKey struct {
	year   int
	region string
}

// Table holds guidelines by year and region. It is built once and only read.
type Table struct {
	guidelines map[tableKey]Guideline
}

// NewTable validates and indexes guidelines. Duplicate year/region pairs are rejected.
func NewTable(guidelines []Guideline) (*Table, error) {
	t := &Table{guidelines: make(map[tableKey]Guideline, len(guidelines))}
	for _, g := range guidelines {
		if err := g.Validate(); err != nil {
			return nil, err
		}
		key := tableKey{year: g.Year, region: g.Region}
		if _, dup := t.guidelines[key]; dup {
			return nil, fmt.Errorf("duplicate poverty guideline for %s/%d", g.Region, g.Year)
		}
		baselines := make([]int64, len(g.SizeBaselinesCents))
		copy(baselines, g.SizeBaselinesCents)
		g.SizeBaselinesCents = baselines
		t.guidelines[key] = g
	}
	return t, nil
}

// RegionFor maps a jurisdiction code to its guideline region.
func RegionFor(jurisdiction string) string {
	switch jurisdiction {
	case RegionAlaska:
		return RegionAlaska
	case RegionHawaii:
		return RegionHawaii
	}
	return RegionContiguous
}

// Lookup returns the guideline in force for a jurisdiction and year.
func (t *Table) Lookup(jurisdiction string, year int) (Guideline, error) {
	if t != nil {
		if g, ok := t.guidelines[tableKey{year: year, region: RegionFor(jurisdiction)}]; ok {
			return g, nil
		}
	}
	return Guideline{}, &models.UnknownJurisdictionError{Jurisdiction: jurisdiction, Table: "poverty guideline", Year: year}
}

// DefaultGuidelines are the 2026 baselines: $14,580 for one person plus
// $5,140 per additional person in the contiguous states.
func DefaultGuidelines() []Guideline {
	return []Guideline{
		{
			Year:                    2026,
			Region:                  RegionContiguous,
			SizeBaselinesCents:      []int64{1458000, 1972000, 2486000, 3000000, 3514000, 4028000, 4542000, 5056000},
			PerPersonIncrementCents: 514000,
		},
		{
			Year:                    2026,
			Region:                  RegionAlaska,
			SizeBaselinesCents:      []int64{1822000, 2465000, 3108000, 3751000, 4394000, 5037000, 5680000, 6323000},
			PerPersonIncrementCents: 643000,
		},
		{
			Year:                    2026,
			Region:                  RegionHawaii,
			SizeBaselinesCents:      []int64{1677000, 2268000, 2859000, 3450000, 4041000, 4632000, 5223000, 5814000},
			PerPersonIncrementCents: 591000,
		},
	}
}

// DefaultTable indexes DefaultGuidelines.
func DefaultTable() *Table {
	t, err := NewTable(DefaultGuidelines())
	if err != nil {
		panic(err)
	}
	return t
}
