package rules

import (
	"eligibility-workers/internal/eligibility/threshold"
	"eligibility-workers/internal/models"
)

// Context variable names available to rule expressions.
const (
	VarHouseholdSize    = "household_size"
	VarMonthlyIncome    = "monthly_income"
	VarAnnualIncome     = "annual_income"
	VarAge              = "age"
	VarAssets           = "assets"
	VarIsCitizen        = "is_citizen"
	VarHasDisability    = "has_disability"
	VarIsPregnant       = "is_pregnant"
	VarIsFemale         = "is_female"
	VarReceivesSSI      = "receives_ssi"
	VarState            = "state"
	VarFPLAnnual        = "fpl_annual"
	VarIncomeFPLPercent = "income_fpl_percent"
)

// BuildContext binds the applicant's attributes. Money is in cents. age,
// assets and is_citizen are bound only when reported, so rules see null
// rather than a zero value.
// The guideline variables are bound only when guidelines cover the
// applicant's jurisdiction and evaluation year; guidelines may be nil.
func BuildContext(applicant models.ApplicantProfile, guidelines *threshold.Table) Vars {
	vars := Vars{
		VarHouseholdSize: Int(int64(applicant.HouseholdSize)),
		VarMonthlyIncome: Int(applicant.MonthlyIncomeCents),
		VarAnnualIncome:  Int(applicant.AnnualIncomeCents()),
		VarHasDisability: Bool(applicant.HasDisability),
		VarIsPregnant:    Bool(applicant.IsPregnant),
		VarIsFemale:      Bool(applicant.IsFemale),
		VarReceivesSSI:   Bool(applicant.ReceivesCategoricalBenefit),
		VarState:         String(applicant.Jurisdiction),
	}
	if applicant.Age != nil {
		vars[VarAge] = Int(int64(*applicant.Age))
	}
	if applicant.AssetsCents != nil {
		vars[VarAssets] = Int(*applicant.AssetsCents)
	}
	if applicant.IsCitizen != nil {
		vars[VarIsCitizen] = Bool(*applicant.IsCitizen)
	}

	if guidelines == nil {
		return vars
	}
	g, err := guidelines.Lookup(applicant.Jurisdiction, applicant.EvaluatedAt.Year())
	if err != nil {
		return vars
	}
	baseline, err := g.Baseline(applicant.HouseholdSize)
	if err != nil {
		return vars
	}
	vars[VarFPLAnnual] = Int(baseline)
	if pct, err := threshold.IncomePercentOfBaseline(g, applicant.AnnualIncomeCents(), applicant.HouseholdSize); err == nil {
		vars[VarIncomeFPLPercent] = Int(pct)
	}
	return vars
}
