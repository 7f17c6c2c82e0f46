// internal/models/pathway.go
package models

import (
	"fmt"
	"sort"
)

// EligibilityPathway names the category of program whose income and asset
// rules apply to an applicant.
type EligibilityPathway string

const (
	PathwayMagi            EligibilityPathway = "MAGI"
	PathwayNonMagiAged     EligibilityPathway = "NON_MAGI_AGED"
	PathwayNonMagiDisabled EligibilityPathway = "NON_MAGI_DISABLED"
	PathwaySsiLinked       EligibilityPathway = "SSI_LINKED"
	PathwayPregnancy       EligibilityPathway = "PREGNANCY"
)

// AllPathways lists every pathway in lexicographic tag order.
var AllPathways = []EligibilityPathway{
	PathwayMagi,
	PathwayNonMagiAged,
	PathwayNonMagiDisabled,
	PathwayPregnancy,
	PathwaySsiLinked,
}

// Valid reports whether p is one of the closed set of pathway tags.
func (p EligibilityPathway) Valid() bool {
	switch p {
	case PathwayMagi, PathwayNonMagiAged, PathwayNonMagiDisabled, PathwaySsiLinked, PathwayPregnancy:
		return true
	}
	return false
}

// HasAssetTest reports whether programs on this pathway apply a resource limit.
func (p EligibilityPathway) HasAssetTest() bool {
	return p == PathwayNonMagiAged || p == PathwayNonMagiDisabled
}

// ParsePathway converts a stored tag into an EligibilityPathway.
func ParsePathway(s string) (EligibilityPathway, error) {
	p := EligibilityPathway(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown eligibility pathway %q", s)
	}
	return p, nil
}

// SortPathways orders pathways by tag so repeated classifications compare equal.
func SortPathways(ps []EligibilityPathway) {
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
}
