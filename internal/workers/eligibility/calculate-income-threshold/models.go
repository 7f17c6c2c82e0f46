// internal/workers/eligibility/calculate-income-threshold/models.go
package calculateincomethreshold

type Input struct {
	RequestID     string `json:"requestId"`
	Jurisdiction  string `json:"jurisdiction"`
	Year          int    `json:"year"`
	HouseholdSize int    `json:"householdSize"`
	Percentage    int    `json:"percentage"`
}

type Output struct {
	AnnualThresholdCents  int64  `json:"annualThresholdCents"`
	MonthlyThresholdCents int64  `json:"monthlyThresholdCents"`
	BaselineCents         int64  `json:"baselineCents"`
	Region                string `json:"region"`
	GuidelineYear         int    `json:"guidelineYear"`
	AnnualThreshold       string `json:"annualThreshold"`
	MonthlyThreshold      string `json:"monthlyThreshold"`
}
