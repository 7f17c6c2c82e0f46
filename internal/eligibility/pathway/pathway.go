// Package pathway classifies applicants into eligibility pathways and routes
// programs to the pathways that apply.
package pathway

import (
	"eligibility-workers/internal/models"
)

const (
	adultMinAge = 19
	agedMinAge  = 65
)

// Attributes are the applicant facts classification depends on.
type Attributes struct {
	Age                        *int
	HasDisability              bool
	ReceivesCategoricalBenefit bool
	IsPregnant                 bool
	IsFemale                   bool
}

// AttributesOf extracts classification attributes from a profile.
func AttributesOf(a models.ApplicantProfile) Attributes {
	return Attributes{
		Age:                        a.Age,
		HasDisability:              a.HasDisability,
		ReceivesCategoricalBenefit: a.ReceivesCategoricalBenefit,
		IsPregnant:                 a.IsPregnant,
		IsFemale:                   a.IsFemale,
	}
}

// Classify returns every pathway the applicant qualifies to be evaluated
// under, sorted by tag. The result has no duplicates.
func Classify(attrs Attributes) ([]models.EligibilityPathway, error) {
	if attrs.Age != nil && (*attrs.Age < models.MinApplicantAge || *attrs.Age > models.MaxApplicantAge) {
		return nil, models.NewValidationError("age", "must be between %d and %d, got %d",
			models.MinApplicantAge, models.MaxApplicantAge, *attrs.Age)
	}

	aged := attrs.Age != nil && *attrs.Age >= agedMinAge

	out := make([]models.EligibilityPathway, 0, 4)
	if aged {
		out = append(out, models.PathwayNonMagiAged)
	}
	if attrs.HasDisability {
		out = append(out, models.PathwayNonMagiDisabled)
	}
	if attrs.ReceivesCategoricalBenefit {
		out = append(out, models.PathwaySsiLinked)
	}
	if attrs.IsPregnant && attrs.IsFemale {
		out = append(out, models.PathwayPregnancy)
	}
	// Disability and categorical receipt replace the income-based route.
	// Children under 19 stay on it; an unknown age does not.
	if attrs.Age != nil && !aged && !attrs.HasDisability && !attrs.ReceivesCategoricalBenefit {
		out = append(out, models.PathwayMagi)
	}

	models.SortPathways(out)
	return out, nil
}

// Router restricts programs to a classified pathway set.
type Router struct {
	pathways map[models.EligibilityPathway]struct{}
}

func NewRouter(pathways []models.EligibilityPathway) *Router {
	r := &Router{pathways: make(map[models.EligibilityPathway]struct{}, len(pathways))}
	for _, p := range pathways {
		r.pathways[p] = struct{}{}
	}
	return r
}

// HasAny reports whether p is in the routed set.
func (r *Router) HasAny(p models.EligibilityPathway) bool {
	_, ok := r.pathways[p]
	return ok
}

// Count is the number of distinct routed pathways.
func (r *Router) Count() int {
	return len(r.pathways)
}

// Filter keeps programs whose pathway is routed, preserving order.
func (r *Router) Filter(programs []models.Program) []models.Program {
	out := make([]models.Program, 0, len(programs))
	for _, p := range programs {
		if r.HasAny(p.Pathway) {
			out = append(out, p)
		}
	}
	return out
}
