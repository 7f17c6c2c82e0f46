package rules

import "eligibility-workers/internal/models"

// Heuristic factor texts. The confidence scorer matches on their wording, so
// changing one can change scores.
const (
	FactorMeetsRule       = "Meets program eligibility rule"
	FactorFailsRule       = "Does not meet program eligibility rule"
	FactorZeroIncome      = "$0 income meets minimum income threshold"
	FactorAged            = "Age 65 or older qualifies for aged coverage"
	FactorChild           = "Age under 19 qualifies for children's coverage"
	FactorDisability      = "Reported disability qualifies for disability-based coverage"
	FactorPregnancy       = "Pregnancy qualifies for pregnancy-related coverage"
	FactorCategorical     = "Receives SSI (categorical eligibility)"
	FactorCitizenshipMiss = "Citizenship or qualified immigration status not confirmed"
)

const (
	agedMinAge  = 65
	childMaxAge = 19
)

// Verdict is a rule result plus the factors derived for it.
type Verdict struct {
	Passed        bool     `json:"passed"`
	Matching      []string `json:"matching"`
	Disqualifying []string `json:"disqualifying"`
}

// DeriveFactors applies the fixed heuristic set in a fixed order. It looks at
// applicant attributes only, never at the rule expression.
func DeriveFactors(applicant models.ApplicantProfile, passed bool) Verdict {
	v := Verdict{Passed: passed, Matching: []string{}, Disqualifying: []string{}}

	if passed {
		v.Matching = append(v.Matching, FactorMeetsRule)
	} else {
		v.Disqualifying = append(v.Disqualifying, FactorFailsRule)
	}
	if applicant.MonthlyIncomeCents == 0 {
		v.Matching = append(v.Matching, FactorZeroIncome)
	}
	if applicant.Age != nil {
		switch age := *applicant.Age; {
		case age >= agedMinAge:
			v.Matching = append(v.Matching, FactorAged)
		case age < childMaxAge:
			v.Matching = append(v.Matching, FactorChild)
		}
	}
	if applicant.HasDisability {
		v.Matching = append(v.Matching, FactorDisability)
	}
	if applicant.IsPregnant {
		v.Matching = append(v.Matching, FactorPregnancy)
	}
	if applicant.ReceivesCategoricalBenefit {
		v.Matching = append(v.Matching, FactorCategorical)
	}
	// Only a reported non-citizen counts against the applicant.
	if applicant.IsCitizen != nil && !*applicant.IsCitizen {
		v.Disqualifying = append(v.Disqualifying, FactorCitizenshipMiss)
	}
	return v
}
