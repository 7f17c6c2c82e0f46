package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Find Matches Schema
// ==========================

func TestFindMatchesSchema(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantValid bool
		field     string
	}{
		{
			name:      "valid applicant",
			doc:       `{"requestId":"r-1","applicant":{"householdSize":3,"monthlyIncomeCents":200000,"age":34,"jurisdiction":"IL","evaluatedAt":"2026-03-01T00:00:00Z"}}`,
			wantValid: true,
		},
		{
			name:      "null age allowed",
			doc:       `{"applicant":{"householdSize":1,"monthlyIncomeCents":0,"age":null,"jurisdiction":"CA"}}`,
			wantValid: true,
		},
		{
			name:  "missing applicant",
			doc:   `{"requestId":"r-1"}`,
			field: "applicant",
		},
		{
			name:  "missing household size",
			doc:   `{"applicant":{"monthlyIncomeCents":0,"jurisdiction":"IL"}}`,
			field: "applicant.householdSize",
		},
		{
			name:  "zero household",
			doc:   `{"applicant":{"householdSize":0,"monthlyIncomeCents":0,"jurisdiction":"IL"}}`,
			field: "applicant.householdSize",
		},
		{
			name:  "age above range",
			doc:   `{"applicant":{"householdSize":1,"monthlyIncomeCents":0,"age":121,"jurisdiction":"IL"}}`,
			field: "applicant.age",
		},
		{
			name:  "lowercase jurisdiction",
			doc:   `{"applicant":{"householdSize":1,"monthlyIncomeCents":0,"jurisdiction":"il"}}`,
			field: "applicant.jurisdiction",
		},
		{
			name:  "fractional income",
			doc:   `{"applicant":{"householdSize":1,"monthlyIncomeCents":10.5,"jurisdiction":"IL"}}`,
			field: "applicant.monthlyIncomeCents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindMatchesSchema.ValidateJSON([]byte(tt.doc))
			assert.Equal(t, tt.wantValid, result.Valid, result.GetErrorMessages())
			if tt.field != "" {
				assert.True(t, result.HasErrors(tt.field), "expected error on %s, got %v", tt.field, result.GetErrorMessages())
			}
		})
	}
}

func TestValidateJSON_Malformed(t *testing.T) {
	result := IncomeThresholdSchema.ValidateJSON([]byte(`{"year":`))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "INVALID_JSON", result.Errors[0].Code)
}

// ==========================
// Worker Schemas
// ==========================

func TestIncomeThresholdSchema(t *testing.T) {
	ok := IncomeThresholdSchema.ValidateInput(map[string]interface{}{
		"jurisdiction": "TX", "year": 2026, "householdSize": 4, "percentage": 138,
	})
	assert.True(t, ok.Valid, ok.GetErrorMessages())

	bad := IncomeThresholdSchema.ValidateInput(map[string]interface{}{
		"jurisdiction": "TX", "year": 2026, "householdSize": 4, "percentage": 1001,
	})
	assert.False(t, bad.Valid)
	require.NotEmpty(t, bad.GetErrorsForField("percentage"))
	assert.Equal(t, "MAXIMUM_VIOLATION", bad.GetErrorsForField("percentage")[0].Code)
}

func TestAssetCheckSchema(t *testing.T) {
	result := AssetCheckSchema.ValidateJSON([]byte(`{"jurisdiction":"IL","pathway":"WELFARE","year":2026,"assetsCents":100}`))
	assert.False(t, result.Valid)
	require.True(t, result.HasErrors("pathway"))
	assert.Equal(t, "INVALID_ENUM_VALUE", result.GetErrorsForField("pathway")[0].Code)

	result = AssetCheckSchema.ValidateJSON([]byte(`{"jurisdiction":"IL","pathway":"NON_MAGI_AGED","year":2026}`))
	assert.True(t, result.HasErrors("assetsCents"))
	assert.Contains(t, result.Error(), "assetsCents")
}

// ==========================
// Catalog Schema
// ==========================

func TestCatalogSchema(t *testing.T) {
	valid := `{
		"version": "2026.1",
		"lastUpdated": "2026-01-15T00:00:00Z",
		"programs": [{
			"jurisdiction": "IL",
			"programId": "aabd-medical",
			"name": "AABD Medical",
			"pathway": "NON_MAGI_AGED",
			"rules": [{"version": "1", "effectiveDate": "2026-01-01T00:00:00Z", "expression": {"<=": [{"var": "income_fpl_percent"}, 100]}}]
		}]
	}`
	result := CatalogSchema.ValidateJSON([]byte(valid))
	assert.True(t, result.Valid, result.GetErrorMessages())

	noRules := `{"version":"1","programs":[{"jurisdiction":"IL","programId":"x","name":"X","pathway":"MAGI","rules":[]}]}`
	result = CatalogSchema.ValidateJSON([]byte(noRules))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.GetErrorsForField("programs"))
}

func TestCompile_RejectsBadSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	assert.Error(t, err)
}
