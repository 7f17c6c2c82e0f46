// pkg/registry/schema.go
package registry

import (
	"encoding/json"
	"time"

	"eligibility-workers/internal/models"

	"github.com/shopspring/decimal"
)

// Catalog is the program catalog file: every program per jurisdiction with
// its full rule history.
type Catalog struct {
	Version     string         `json:"version"`
	LastUpdated string         `json:"lastUpdated"`
	Programs    []ProgramEntry `json:"programs"`
}

type ProgramEntry struct {
	Jurisdiction string                    `json:"jurisdiction"`
	ProgramID    string                    `json:"programId"`
	Name         string                    `json:"name"`
	Pathway      models.EligibilityPathway `json:"pathway"`
	Rules        []RuleEntry               `json:"rules"`
}

type RuleEntry struct {
	Version       decimal.Decimal `json:"version"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	EndDate       *time.Time      `json:"endDate,omitempty"`
	Description   string          `json:"description,omitempty"`
	Expression    json.RawMessage `json:"expression"`
}

// Program returns the entry without its rules.
func (p ProgramEntry) Program() models.Program {
	return models.Program{
		Jurisdiction: p.Jurisdiction,
		ProgramID:    p.ProgramID,
		Name:         p.Name,
		Pathway:      p.Pathway,
	}
}

// ProgramRules returns the entry's rule history as stored rules.
func (p ProgramEntry) ProgramRules() []models.ProgramRule {
	out := make([]models.ProgramRule, 0, len(p.Rules))
	for _, r := range p.Rules {
		out = append(out, models.ProgramRule{
			Jurisdiction:  p.Jurisdiction,
			ProgramID:     p.ProgramID,
			Expression:    r.Expression,
			Version:       r.Version,
			EffectiveDate: r.EffectiveDate,
			EndDate:       r.EndDate,
			Description:   r.Description,
		})
	}
	return out
}
