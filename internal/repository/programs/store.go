// Package programs loads benefit programs and their rule histories and
// resolves the candidates an applicant is evaluated against.
package programs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eligibility-workers/internal/common/database"
	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/models"
	"eligibility-workers/pkg/registry"
)

// Store lists one jurisdiction's programs and every stored rule version.
type Store interface {
	ListPrograms(ctx context.Context, jurisdiction string) ([]models.Program, error)
	ListRules(ctx context.Context, jurisdiction string) ([]models.ProgramRule, error)
}

const (
	listProgramsQuery = `SELECT jurisdiction, program_id, name, pathway FROM programs WHERE jurisdiction = $1 ORDER BY program_id`

	listRulesQuery = `SELECT jurisdiction, program_id, version, effective_date, end_date, description, expression FROM program_rules WHERE jurisdiction = $1 ORDER BY program_id, version`

	upsertProgramQuery = `INSERT INTO programs (jurisdiction, program_id, name, pathway)
VALUES ($1, $2, $3, $4)
ON CONFLICT (jurisdiction, program_id) DO UPDATE SET name = EXCLUDED.name, pathway = EXCLUDED.pathway`

	insertRuleQuery = `INSERT INTO program_rules (jurisdiction, program_id, version, effective_date, end_date, description, expression)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (jurisdiction, program_id, version) DO UPDATE SET effective_date = EXCLUDED.effective_date, end_date = EXCLUDED.end_date, description = EXCLUDED.description, expression = EXCLUDED.expression`
)

// SchemaDDL creates the tables PostgresStore reads and writes.
const SchemaDDL = `CREATE TABLE IF NOT EXISTS programs (
	jurisdiction CHAR(2) NOT NULL,
	program_id VARCHAR(100) NOT NULL,
	name VARCHAR(255) NOT NULL,
	pathway VARCHAR(32) NOT NULL,
	PRIMARY KEY (jurisdiction, program_id)
);
CREATE TABLE IF NOT EXISTS program_rules (
	jurisdiction CHAR(2) NOT NULL,
	program_id VARCHAR(100) NOT NULL,
	version NUMERIC NOT NULL,
	effective_date TIMESTAMPTZ NOT NULL,
	end_date TIMESTAMPTZ,
	description TEXT,
	expression JSONB NOT NULL,
	PRIMARY KEY (jurisdiction, program_id, version),
	FOREIGN KEY (jurisdiction, program_id) REFERENCES programs (jurisdiction, program_id)
);`

// PostgresStore reads the programs and program_rules tables. Versions are
// NUMERIC and expressions JSONB.
type PostgresStore struct {
	client *database.PostgresClient
}

func NewPostgresStore(client *database.PostgresClient) *PostgresStore {
	return &PostgresStore{client: client}
}

func (s *PostgresStore) ListPrograms(ctx context.Context, jurisdiction string) ([]models.Program, error) {
	rows, err := s.client.Query(ctx, listProgramsQuery, jurisdiction)
	if err != nil {
		return nil, queryError("list_programs", err)
	}
	defer rows.Close()

	programs := []models.Program{}
	for rows.Next() {
		var (
			p       models.Program
			pathway string
		)
		if err := rows.Scan(&p.Jurisdiction, &p.ProgramID, &p.Name, &pathway); err != nil {
			return nil, queryError("list_programs", err)
		}
		if p.Pathway, err = models.ParsePathway(pathway); err != nil {
			return nil, fmt.Errorf("program %s/%s: %w", p.Jurisdiction, p.ProgramID, err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_programs", err)
	}
	return programs, nil
}

func (s *PostgresStore) ListRules(ctx context.Context, jurisdiction string) ([]models.ProgramRule, error) {
	rows, err := s.client.Query(ctx, listRulesQuery, jurisdiction)
	if err != nil {
		return nil, queryError("list_rules", err)
	}
	defer rows.Close()

	result := []models.ProgramRule{}
	for rows.Next() {
		var (
			r           models.ProgramRule
			endDate     sql.NullTime
			description sql.NullString
			expression  []byte
		)
		if err := rows.Scan(&r.Jurisdiction, &r.ProgramID, &r.Version, &r.EffectiveDate, &endDate, &description, &expression); err != nil {
			return nil, queryError("list_rules", err)
		}
		if endDate.Valid {
			end := endDate.Time
			r.EndDate = &end
		}
		r.Description = description.String
		r.Expression = expression
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_rules", err)
	}
	return result, nil
}

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.Exec(ctx, SchemaDDL); err != nil {
		return queryError("ensure_schema", err)
	}
	return nil
}

// UpsertProgram writes a program and its rule history in one transaction.
func (s *PostgresStore) UpsertProgram(ctx context.Context, program models.Program, history []models.ProgramRule) error {
	return s.client.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertProgramQuery,
			program.Jurisdiction, program.ProgramID, program.Name, string(program.Pathway)); err != nil {
			return queryError("upsert_program", err)
		}
		for _, r := range history {
			if err := insertRule(ctx, tx, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertRule stores one rule version, replacing an existing row with the
// same version.
func (s *PostgresStore) InsertRule(ctx context.Context, rule models.ProgramRule) error {
	return insertRule(ctx, s.client.DB, rule)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertRule(ctx context.Context, db execer, r models.ProgramRule) error {
	var endDate sql.NullTime
	if r.EndDate != nil {
		endDate = sql.NullTime{Time: *r.EndDate, Valid: true}
	}
	_, err := db.ExecContext(ctx, insertRuleQuery,
		r.Jurisdiction, r.ProgramID, r.Version, r.EffectiveDate, endDate, r.Description, []byte(r.Expression))
	if err != nil {
		return queryError("insert_rule", err)
	}
	return nil
}

func queryError(queryType string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(queryType, err)
	}
	return apperrors.NewQueryExecutionFailedError(queryType, err)
}

// CatalogStore serves programs from a loaded catalog file.
type CatalogStore struct {
	catalog *registry.Catalog
}

func NewCatalogStore(catalog *registry.Catalog) *CatalogStore {
	return &CatalogStore{catalog: catalog}
}

// LoadCatalogStore reads the catalog at path.
func LoadCatalogStore(path string) (*CatalogStore, error) {
	cat, err := registry.LoadCatalog(path)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(path, err)
	}
	return NewCatalogStore(cat), nil
}

func (s *CatalogStore) ListPrograms(_ context.Context, jurisdiction string) ([]models.Program, error) {
	out := s.catalog.ProgramsIn(jurisdiction)
	if out == nil {
		out = []models.Program{}
	}
	return out, nil
}

func (s *CatalogStore) ListRules(_ context.Context, jurisdiction string) ([]models.ProgramRule, error) {
	out := s.catalog.RulesIn(jurisdiction)
	if out == nil {
		out = []models.ProgramRule{}
	}
	return out, nil
}

// Snapshot is everything stored for one jurisdiction.
type Snapshot struct {
	Jurisdiction string               `json:"jurisdiction"`
	Programs     []models.Program     `json:"programs"`
	Rules        []models.ProgramRule `json:"rules"`
	LoadedAt     time.Time            `json:"loadedAt"`
}

func loadSnapshot(ctx context.Context, store Store, jurisdiction string, now time.Time) (Snapshot, error) {
	programs, err := store.ListPrograms(ctx, jurisdiction)
	if err != nil {
		return Snapshot{}, err
	}
	ruleRows, err := store.ListRules(ctx, jurisdiction)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Jurisdiction: jurisdiction,
		Programs:     programs,
		Rules:        ruleRows,
		LoadedAt:     now.UTC(),
	}, nil
}
