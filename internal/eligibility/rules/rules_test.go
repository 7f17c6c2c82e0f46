package rules

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"eligibility-workers/internal/eligibility/confidence"
	"eligibility-workers/internal/eligibility/threshold"
	"eligibility-workers/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestApplicant() models.ApplicantProfile {
	return models.ApplicantProfile{
		HouseholdSize:      2,
		MonthlyIncomeCents: 210000,
		Age:                models.IntPtr(35),
		IsCitizen:          models.BoolPtr(true),
		Jurisdiction:       "IL",
		EvaluatedAt:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func createTestRule(expression string) models.ProgramRule {
	return models.ProgramRule{
		Jurisdiction:  "IL",
		ProgramID:     "il-medicaid-adult",
		Expression:    json.RawMessage(expression),
		Version:       decimal.NewFromInt(1),
		EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func evalString(t *testing.T, expression string, vars Vars) (Value, error) {
	t.Helper()
	expr, err := Parse("test", json.RawMessage(expression))
	require.NoError(t, err)
	return Eval("test", expr, vars)
}

func requireRuleError(t *testing.T, err error) *RuleEvaluationError {
	t.Helper()
	var rErr *RuleEvaluationError
	require.True(t, errors.As(err, &rErr), "expected RuleEvaluationError, got %v", err)
	assert.True(t, errors.Is(err, ErrRuleEvaluation))
	return rErr
}

// ==========================
// Parsing
// ==========================

func TestParse_BuildsTypedTree(t *testing.T) {
	expr, err := Parse("r1", json.RawMessage(`{"and":[{"<=":[{"var":"monthly_income"},300000]},{"var":["is_citizen",false]}]}`))
	require.NoError(t, err)

	logical, ok := expr.(*Logical)
	require.True(t, ok)
	assert.Equal(t, OpAnd, logical.Op)
	require.Len(t, logical.Operands, 2)

	cmp, ok := logical.Operands[0].(*Compare)
	require.True(t, ok)
	assert.Equal(t, OpLessEqual, cmp.Op)
	assert.Equal(t, "$.and[0]", cmp.Path())

	v, ok := cmp.Left.(*Var)
	require.True(t, ok)
	assert.Equal(t, "monthly_income", v.Name)
	assert.Equal(t, "$.and[0].<=[0]", v.Path())

	withDefault, ok := logical.Operands[1].(*Var)
	require.True(t, ok)
	require.NotNil(t, withDefault.Default)
	assert.Equal(t, Bool(false), withDefault.Default.Value)
}

func TestParse_RejectsMalformedRules(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		path       string
	}{
		{"empty", ``, "$"},
		{"invalid json", `{"<=":`, "$"},
		{"trailing data", `true false`, "$"},
		{"unknown operator", `{"xor":[true,false]}`, "$"},
		{"two keys", `{"and":[true],"or":[true]}`, "$"},
		{"bare array", `[1,2]`, "$"},
		{"comparison arity", `{"<=":[1]}`, "$.<="},
		{"comparison too many", `{"<=":[1,2,3]}`, "$.<="},
		{"not arity", `{"!":[true,false]}`, "$.!"},
		{"empty and", `{"and":[]}`, "$.and"},
		{"if arity", `{"if":[true,1]}`, "$.if"},
		{"var not string", `{"var":5}`, "$.var"},
		{"var empty name", `{"var":""}`, "$.var"},
		{"var default not literal", `{"var":["age",{"var":"x"}]}`, "$.var[1]"},
		{"nested unknown", `{"and":[true,{"nope":[1]}]}`, "$.and[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("IL/x@v1", json.RawMessage(tt.expression))
			rErr := requireRuleError(t, err)
			assert.Equal(t, "IL/x@v1", rErr.RuleID)
			assert.Equal(t, tt.path, rErr.Path)
			assert.NotEmpty(t, rErr.Reason)
		})
	}
}

func TestParse_NotAcceptsBareOperand(t *testing.T) {
	got, err := evalString(t, `{"!":{"var":"is_citizen"}}`, Vars{"is_citizen": Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, Bool(false), got)
}

// ==========================
// Evaluation
// ==========================

func TestEval_Comparisons(t *testing.T) {
	vars := Vars{
		"monthly_income": Int(210000),
		"state":          String("IL"),
		"is_citizen":     Bool(true),
		"ratio":          String("1.38"),
	}

	tests := []struct {
		expression string
		expected   bool
	}{
		{`{"<=":[{"var":"monthly_income"},300000]}`, true},
		{`{"<=":[{"var":"monthly_income"},210000]}`, true},
		{`{"<":[{"var":"monthly_income"},210000]}`, false},
		{`{">":[{"var":"monthly_income"},209999.99]}`, true},
		{`{">=":[{"var":"monthly_income"},"210000"]}`, true},
		{`{"==":[{"var":"monthly_income"},210000.00]}`, true},
		{`{"!=":[{"var":"monthly_income"},1]}`, true},
		{`{"==":[{"var":"ratio"},1.380]}`, true},
		{`{"==":[{"var":"is_citizen"},true]}`, true},
		{`{"!=":[{"var":"is_citizen"},true]}`, false},
		{`{"==":[{"var":"state"},"IL"]}`, true},
		{`{"!=":[{"var":"state"},"CA"]}`, true},
		{`{"==":[0.1,"0.10"]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			got, err := evalString(t, tt.expression, vars)
			require.NoError(t, err)
			assert.Equal(t, Bool(tt.expected), got)
		})
	}
}

func TestEval_DecimalIsExact(t *testing.T) {
	got, err := evalString(t, `{"==":[0.3,"0.30000000000000000001"]}`, nil)
	require.NoError(t, err)
	assert.Equal(t, Bool(false), got)
}

func TestEval_NullComparisonsAreFalse(t *testing.T) {
	tests := []string{
		`{"<=":[{"var":"age"},64]}`,
		`{">":[{"var":"age"},64]}`,
		`{"==":[{"var":"age"},null]}`,
		`{"!=":[{"var":"age"},30]}`,
		`{"<":[null,1]}`,
	}

	for _, expression := range tests {
		t.Run(expression, func(t *testing.T) {
			got, err := evalString(t, expression, Vars{})
			require.NoError(t, err)
			assert.Equal(t, Bool(false), got)
		})
	}
}

func TestEval_VarDefault(t *testing.T) {
	got, err := evalString(t, `{"<=":[{"var":["age",0]},18]}`, Vars{})
	require.NoError(t, err)
	assert.Equal(t, Bool(true), got)

	got, err = evalString(t, `{"<=":[{"var":["age",0]},18]}`, Vars{"age": Int(40)})
	require.NoError(t, err)
	assert.Equal(t, Bool(false), got)
}

func TestEval_Logical(t *testing.T) {
	tests := []struct {
		expression string
		expected   bool
	}{
		{`{"and":[true,1,"x"]}`, true},
		{`{"and":[true,0]}`, false},
		{`{"and":[true,""]}`, false},
		{`{"or":[false,null,0,"a"]}`, true},
		{`{"or":[false,null]}`, false},
		{`{"!":[0]}`, true},
		{`{"!":["x"]}`, false},
		{`{"and":[true]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			got, err := evalString(t, tt.expression, nil)
			require.NoError(t, err)
			assert.Equal(t, Bool(tt.expected), got)
		})
	}
}

func TestEval_If(t *testing.T) {
	expression := `{"if":[{"var":"has_disability"},{"<=":[{"var":"monthly_income"},400000]},{"<=":[{"var":"monthly_income"},200000]}]}`

	got, err := evalString(t, expression, Vars{"has_disability": Bool(true), "monthly_income": Int(300000)})
	require.NoError(t, err)
	assert.Equal(t, Bool(true), got)

	got, err = evalString(t, expression, Vars{"has_disability": Bool(false), "monthly_income": Int(300000)})
	require.NoError(t, err)
	assert.Equal(t, Bool(false), got)
}

func TestEval_NonNumericOperandFails(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		path       string
	}{
		{"string ordering", `{"<=":[{"var":"state"},5]}`, "$.<=[0]"},
		{"bool ordering", `{">":[10,true]}`, "$.>[1]"},
		{"bool equals number", `{"==":[true,1]}`, "$"},
		{"string equals number", `{"==":[{"var":"state"},1]}`, "$.==[0]"},
		{"nested", `{"and":[true,{"<":["abc","def"]}]}`, "$.and[1].<[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evalString(t, tt.expression, Vars{"state": String("IL")})
			rErr := requireRuleError(t, err)
			assert.Equal(t, "test", rErr.RuleID)
			assert.Equal(t, tt.path, rErr.Path)
		})
	}
}

func TestEval_Deterministic(t *testing.T) {
	expr := MustParse(`{"or":[{"<=":[{"var":"monthly_income"},100]},{"var":"receives_ssi"}]}`)
	vars := Vars{"monthly_income": Int(50), "receives_ssi": Bool(false)}

	first, err := Eval("r", expr, vars)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Eval("r", expr, vars)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// ==========================
// Context and Factors
// ==========================

func TestBuildContext(t *testing.T) {
	applicant := createTestApplicant()
	vars := BuildContext(applicant, threshold.DefaultTable())

	assert.Equal(t, Int(2), vars[VarHouseholdSize])
	assert.Equal(t, Int(210000), vars[VarMonthlyIncome])
	assert.Equal(t, Int(2520000), vars[VarAnnualIncome])
	assert.Equal(t, Int(35), vars[VarAge])
	assert.Equal(t, Bool(true), vars[VarIsCitizen])
	assert.Equal(t, String("IL"), vars[VarState])
	assert.Equal(t, Int(1972000), vars[VarFPLAnnual])
	assert.Equal(t, Int(127), vars[VarIncomeFPLPercent]) // 2,520,000 / 1,972,000

	_, hasAssets := vars[VarAssets]
	assert.False(t, hasAssets)
}

func TestBuildContext_OmitsUnknownValues(t *testing.T) {
	applicant := createTestApplicant()
	applicant.Age = nil
	applicant.EvaluatedAt = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	applicant.IsCitizen = nil

	vars := BuildContext(applicant, threshold.DefaultTable())
	for _, name := range []string{VarAge, VarAssets, VarIsCitizen, VarFPLAnnual, VarIncomeFPLPercent} {
		_, ok := vars[name]
		assert.False(t, ok, name)
	}

	vars = BuildContext(createTestApplicant(), nil)
	_, ok := vars[VarFPLAnnual]
	assert.False(t, ok)
}

func TestDeriveFactors(t *testing.T) {
	applicant := createTestApplicant()
	applicant.Age = models.IntPtr(70)
	applicant.MonthlyIncomeCents = 0
	applicant.HasDisability = true
	applicant.IsPregnant = true
	applicant.ReceivesCategoricalBenefit = true
	applicant.IsCitizen = models.BoolPtr(false)

	v := DeriveFactors(applicant, true)
	assert.True(t, v.Passed)
	assert.Equal(t, []string{
		FactorMeetsRule,
		FactorZeroIncome,
		FactorAged,
		FactorDisability,
		FactorPregnancy,
		FactorCategorical,
	}, v.Matching)
	assert.Equal(t, []string{FactorCitizenshipMiss}, v.Disqualifying)

	child := createTestApplicant()
	child.Age = models.IntPtr(10)
	v = DeriveFactors(child, false)
	assert.Equal(t, []string{FactorChild}, v.Matching)
	assert.Equal(t, []string{FactorFailsRule}, v.Disqualifying)
}

func TestDeriveFactors_CitizenshipOnlyWhenReportedFalse(t *testing.T) {
	applicant := createTestApplicant()

	applicant.IsCitizen = nil
	assert.Empty(t, DeriveFactors(applicant, true).Disqualifying)

	applicant.IsCitizen = models.BoolPtr(true)
	assert.Empty(t, DeriveFactors(applicant, true).Disqualifying)

	applicant.IsCitizen = models.BoolPtr(false)
	assert.Equal(t, []string{FactorCitizenshipMiss}, DeriveFactors(applicant, true).Disqualifying)
}

func TestDeriveFactors_OnlyCategoricalFactorCarriesKeyword(t *testing.T) {
	for _, f := range []string{
		FactorMeetsRule, FactorFailsRule, FactorZeroIncome, FactorAged, FactorChild,
		FactorDisability, FactorPregnancy, FactorCitizenshipMiss,
	} {
		assert.False(t, confidence.HasCategoricalEvidence([]string{f}), f)
	}
	assert.True(t, confidence.HasCategoricalEvidence([]string{FactorCategorical}))
}

// ==========================
// Engine
// ==========================

func TestEngine_Evaluate(t *testing.T) {
	engine := NewEngine(confidence.NewScorer(), threshold.DefaultTable())

	outcome, err := engine.Evaluate(createTestRule(`{"<=":[{"var":"monthly_income"},300000]}`), createTestApplicant())
	require.NoError(t, err)
	assert.Equal(t, models.StatusLikelyEligible, outcome.Status)
	assert.Equal(t, 60, outcome.Confidence.Value())
	assert.Equal(t, []string{FactorMeetsRule}, outcome.MatchingFactors)
	assert.Empty(t, outcome.DisqualifyingFactors)

	outcome, err = engine.Evaluate(createTestRule(`{"<=":[{"var":"income_fpl_percent"},100]}`), createTestApplicant())
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnlikelyEligible, outcome.Status)
	assert.Equal(t, 35, outcome.Confidence.Value())
}

func TestEngine_Evaluate_CategoricalBonus(t *testing.T) {
	engine := NewEngine(confidence.NewScorer(), nil)
	applicant := createTestApplicant()
	applicant.ReceivesCategoricalBenefit = true

	outcome, err := engine.Evaluate(createTestRule(`{"var":"receives_ssi"}`), applicant)
	require.NoError(t, err)
	assert.Equal(t, 100, outcome.Confidence.Value())
	assert.Equal(t, models.StatusLikelyEligible, outcome.Status)
}

func TestEngine_Evaluate_Errors(t *testing.T) {
	engine := NewEngine(confidence.NewScorer(), nil)

	invalid := createTestApplicant()
	invalid.HouseholdSize = 0
	_, err := engine.Evaluate(createTestRule(`true`), invalid)
	var vErr *models.ValidationError
	require.True(t, errors.As(err, &vErr))

	_, err = engine.Evaluate(createTestRule(`{"<=":[{"var":"state"},1]}`), createTestApplicant())
	rErr := requireRuleError(t, err)
	assert.Equal(t, "IL/il-medicaid-adult@v1", rErr.RuleID)
}
