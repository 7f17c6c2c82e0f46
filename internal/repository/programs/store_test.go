package programs

import (
	"context"
	stderrors "errors"
	"regexp"
	"testing"
	"time"

	"eligibility-workers/internal/common/database"
	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/models"
	"eligibility-workers/pkg/registry"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(database.NewPostgresFromDB(db)), mock
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var programColumns = []string{"jurisdiction", "program_id", "name", "pathway"}

var ruleColumns = []string{"jurisdiction", "program_id", "version", "effective_date", "end_date", "description", "expression"}

// ==========================
// PostgresStore
// ==========================

func TestPostgresStore_ListPrograms(t *testing.T) {
	store, mock := setupPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(listProgramsQuery)).
		WithArgs("IL").
		WillReturnRows(sqlmock.NewRows(programColumns).
			AddRow("IL", "aabd-medical-aged", "AABD Medical (Aged)", "NON_MAGI_AGED").
			AddRow("IL", "all-kids", "All Kids", "MAGI"))

	programs, err := store.ListPrograms(context.Background(), "IL")
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, models.PathwayNonMagiAged, programs[0].Pathway)
	assert.Equal(t, "all-kids", programs[1].ProgramID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPrograms_Errors(t *testing.T) {
	t.Run("query failure is retryable", func(t *testing.T) {
		store, mock := setupPostgresStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(listProgramsQuery)).
			WithArgs("IL").
			WillReturnError(stderrors.New("connection reset"))

		_, err := store.ListPrograms(context.Background(), "IL")
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, stdErr.Code)
		assert.True(t, stdErr.Retryable)
	})

	t.Run("unknown pathway tag", func(t *testing.T) {
		store, mock := setupPostgresStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(listProgramsQuery)).
			WithArgs("IL").
			WillReturnRows(sqlmock.NewRows(programColumns).AddRow("IL", "x", "X", "WELFARE"))

		_, err := store.ListPrograms(context.Background(), "IL")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WELFARE")
	})
}

func TestPostgresStore_ListRules(t *testing.T) {
	store, mock := setupPostgresStore(t)
	end := date(2025, time.December, 31)

	mock.ExpectQuery(regexp.QuoteMeta(listRulesQuery)).
		WithArgs("IL").
		WillReturnRows(sqlmock.NewRows(ruleColumns).
			AddRow("IL", "aabd-medical-aged", "1", date(2025, time.January, 1), end, "old", []byte(`{"<=":[{"var":"income_fpl_percent"},100]}`)).
			AddRow("IL", "aabd-medical-aged", "2.10", date(2026, time.January, 1), nil, nil, []byte(`{"var":"is_citizen"}`)))

	result, err := store.ListRules(context.Background(), "IL")
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.True(t, result[0].Version.Equal(decimal.NewFromInt(1)))
	require.NotNil(t, result[0].EndDate)
	assert.True(t, result[0].EndDate.Equal(end))
	assert.Equal(t, "old", result[0].Description)

	assert.True(t, result[1].Version.Equal(decimal.RequireFromString("2.1")))
	assert.Nil(t, result[1].EndDate)
	assert.Empty(t, result[1].Description)
	assert.JSONEq(t, `{"var":"is_citizen"}`, string(result[1].Expression))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRules_Timeout(t *testing.T) {
	store, mock := setupPostgresStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(listRulesQuery)).
		WithArgs("CA").
		WillReturnError(context.DeadlineExceeded)

	_, err := store.ListRules(context.Background(), "CA")
	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeQueryTimeout, stdErr.Code)
}

func TestPostgresStore_UpsertProgram(t *testing.T) {
	program := models.Program{Jurisdiction: "IL", ProgramID: "all-kids", Name: "All Kids", Pathway: models.PathwayMagi}
	history := []models.ProgramRule{{
		Jurisdiction:  "IL",
		ProgramID:     "all-kids",
		Version:       decimal.NewFromInt(1),
		EffectiveDate: date(2025, time.July, 1),
		Expression:    []byte(`{"<":[{"var":"age"},19]}`),
	}}

	t.Run("commits program and rules", func(t *testing.T) {
		store, mock := setupPostgresStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(upsertProgramQuery)).
			WithArgs("IL", "all-kids", "All Kids", "MAGI").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(insertRuleQuery)).
			WithArgs("IL", "all-kids", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, store.UpsertProgram(context.Background(), program, history))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when a rule fails", func(t *testing.T) {
		store, mock := setupPostgresStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(upsertProgramQuery)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(insertRuleQuery)).
			WillReturnError(stderrors.New("check constraint"))
		mock.ExpectRollback()

		err := store.UpsertProgram(context.Background(), program, history)
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, stdErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// ==========================
// CatalogStore
// ==========================

func TestPostgresStore_EnsureSchema(t *testing.T) {
	store, mock := setupPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS programs")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.EnsureSchema(context.Background()))

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS programs")).
		WillReturnError(stderrors.New("permission denied"))
	err := store.EnsureSchema(context.Background())
	assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, apperrors.FromDomainError(err).Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore(t *testing.T) {
	store := NewCatalogStore(&registry.Catalog{
		Version: "1",
		Programs: []registry.ProgramEntry{{
			Jurisdiction: "TX",
			ProgramID:    "chip",
			Name:         "CHIP",
			Pathway:      models.PathwayMagi,
			Rules: []registry.RuleEntry{{
				Version:       decimal.NewFromInt(1),
				EffectiveDate: date(2026, time.January, 1),
				Expression:    []byte(`true`),
			}},
		}},
	})
	ctx := context.Background()

	programs, err := store.ListPrograms(ctx, "TX")
	require.NoError(t, err)
	require.Len(t, programs, 1)

	ruleRows, err := store.ListRules(ctx, "TX")
	require.NoError(t, err)
	require.Len(t, ruleRows, 1)
	assert.Equal(t, "TX/chip@v1", ruleRows[0].RuleID())

	none, err := store.ListPrograms(ctx, "NY")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLoadCatalogStore_MissingFile(t *testing.T) {
	_, err := LoadCatalogStore("does-not-exist.json")
	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeCatalogLoadFailed, stdErr.Code)
}
