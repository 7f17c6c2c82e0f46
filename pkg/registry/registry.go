// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"eligibility-workers/internal/common/validation"
	"eligibility-workers/internal/eligibility/rules"
	"eligibility-workers/internal/eligibility/versioning"
	"eligibility-workers/internal/models"
)

// LoadCatalog reads and validates the catalog at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog checks data against the catalog schema, decodes it and runs
// Validate.
func ParseCatalog(data []byte) (*Catalog, error) {
	if result := validation.CatalogSchema.ValidateJSON(data); !result.Valid {
		return nil, fmt.Errorf("catalog schema: %s", result.Error())
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// SaveCatalog writes cat to path through a temporary file in the same
// directory so readers never see a partial catalog.
func SaveCatalog(path string, cat *Catalog) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	cat.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Validate checks what the schema cannot: unique programs, parseable
// expressions, and a version history without overlapping windows.
func (c *Catalog) Validate() error {
	if len(c.Programs) == 0 {
		return fmt.Errorf("catalog contains no programs")
	}

	seen := make(map[string]bool, len(c.Programs))
	for _, p := range c.Programs {
		key := p.Jurisdiction + "/" + p.ProgramID
		if seen[key] {
			return fmt.Errorf("duplicate program: %s", key)
		}
		seen[key] = true

		if p.ProgramID == "" || p.Name == "" {
			return fmt.Errorf("program %s: programId and name are required", key)
		}
		if !p.Pathway.Valid() {
			return fmt.Errorf("program %s: unknown pathway %q", key, p.Pathway)
		}
		if len(p.Rules) == 0 {
			return fmt.Errorf("program %s: no rules", key)
		}

		history := p.ProgramRules()
		for _, r := range history {
			if _, err := rules.Parse(r.RuleID(), r.Expression); err != nil {
				return err
			}
		}
		if err := versioning.ValidateHistory(history); err != nil {
			return fmt.Errorf("program %s: %w", key, err)
		}
	}
	return nil
}

// Jurisdictions lists the jurisdictions with at least one program, sorted.
func (c *Catalog) Jurisdictions() []string {
	set := map[string]bool{}
	for _, p := range c.Programs {
		set[p.Jurisdiction] = true
	}
	out := make([]string, 0, len(set))
	for j := range set {
		out = append(out, j)
	}
	sort.Strings(out)
	return out
}

// ProgramsIn returns the programs of one jurisdiction in catalog order.
func (c *Catalog) ProgramsIn(jurisdiction string) []models.Program {
	var out []models.Program
	for _, p := range c.Programs {
		if p.Jurisdiction == jurisdiction {
			out = append(out, p.Program())
		}
	}
	return out
}

// RulesIn returns every stored rule version of one jurisdiction.
func (c *Catalog) RulesIn(jurisdiction string) []models.ProgramRule {
	var out []models.ProgramRule
	for _, p := range c.Programs {
		if p.Jurisdiction == jurisdiction {
			out = append(out, p.ProgramRules()...)
		}
	}
	return out
}

// AddRule appends a new rule version to a program. An open-ended latest
// version is closed one versioning.Resolution before the new one takes
// effect. The catalog
// is validated afterwards and left unchanged on error.
func (c *Catalog) AddRule(jurisdiction, programID string, rule RuleEntry) error {
	idx := -1
	for i, p := range c.Programs {
		if p.Jurisdiction == jurisdiction && p.ProgramID == programID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("program %s/%s not found", jurisdiction, programID)
	}

	original := c.Programs[idx]
	entry := original
	entry.Rules = append([]RuleEntry(nil), original.Rules...)

	if n := len(entry.Rules); n > 0 {
		last := &entry.Rules[n-1]
		if last.EndDate == nil && last.EffectiveDate.Before(rule.EffectiveDate) {
			end := rule.EffectiveDate.Add(-versioning.Resolution)
			last.EndDate = &end
		}
	}
	entry.Rules = append(entry.Rules, rule)

	c.Programs[idx] = entry
	if err := c.Validate(); err != nil {
		c.Programs[idx] = original
		return err
	}
	return nil
}
