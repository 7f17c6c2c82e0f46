// internal/workers/eligibility/check-asset-limit/models.go
package checkassetlimit

import "eligibility-workers/internal/models"

type Input struct {
	RequestID    string                    `json:"requestId"`
	Jurisdiction string                    `json:"jurisdiction"`
	Pathway      models.EligibilityPathway `json:"pathway"`
	Year         int                       `json:"year"`
	AssetsCents  int64                     `json:"assetsCents"`
}

type Output struct {
	Eligible   bool   `json:"eligible"`
	Reason     string `json:"reason"`
	LimitCents int64  `json:"limitCents"`
}
