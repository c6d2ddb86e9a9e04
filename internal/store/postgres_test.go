package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sales-lead/leadgen-cli/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewPostgresFromPool(pool), pool
}

func TestPostgresMigrate(t *testing.T) {
	s, pool := newMockPostgres(t)

	pool.ExpectExec("CREATE TABLE IF NOT EXISTS prospects").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresFetchRows(t *testing.T) {
	s, pool := newMockPostgres(t)

	columns := append([]string{"row_index"}, model.FieldOrder...)
	values := make([]any, len(columns))
	values[0] = 1
	for i := 1; i < len(values); i++ {
		values[i] = ""
	}
	values[1] = "Acme株式会社" // company_name
	values[21] = "pending"  // status

	pool.ExpectQuery("SELECT row_index, company_name").
		WillReturnRows(pgxmock.NewRows(columns).AddRow(values...))

	rows, err := s.FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].RowIndex)
	assert.Equal(t, "Acme株式会社", rows[0].CompanyName)
	assert.Equal(t, model.StatusPending, rows[0].Status)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresUpdateRowOrdersFieldsDeterministically(t *testing.T) {
	s, pool := newMockPostgres(t)

	// Clauses follow sheet column order regardless of map iteration.
	pool.ExpectExec(regexp.QuoteMeta(
		"UPDATE prospects SET website_url = $1, status = $2 WHERE row_index = $3",
	)).
		WithArgs("https://acme.co.jp", "ok", 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateRow(context.Background(), 3, map[string]string{
		"status":      "ok",
		"website_url": "https://acme.co.jp",
	})
	require.NoError(t, err)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresUpdateRowMissingRow(t *testing.T) {
	s, pool := newMockPostgres(t)

	pool.ExpectExec("UPDATE prospects SET").
		WithArgs("ok", 42).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRow(context.Background(), 42, map[string]string{"status": "ok"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPostgresUpdateRowRejectsUnknownField(t *testing.T) {
	s, _ := newMockPostgres(t)

	err := s.UpdateRow(context.Background(), 1, map[string]string{"no_such_field": "x"})
	assert.Error(t, err)
}

func TestPostgresAddRow(t *testing.T) {
	s, pool := newMockPostgres(t)

	pool.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(row_index), 0) + 1 FROM prospects")).
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(4))
	pool.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO prospects (row_index, company_name, status) VALUES ($1, $2, $3)",
	)).
		WithArgs(4, "Acme株式会社", "pending").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	idx, err := s.AddRow(context.Background(), "Acme株式会社")
	require.NoError(t, err)
	assert.Equal(t, 4, idx)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresAppendLog(t *testing.T) {
	s, pool := newMockPostgres(t)

	pool.ExpectExec("INSERT INTO logs").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "search", "info", "3 results", "https://acme.co.jp").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.AppendLog(context.Background(), model.LogEntry{
		Stage:     "search",
		Message:   "3 results",
		TargetURL: "https://acme.co.jp",
	})
	require.NoError(t, err)
	assert.NoError(t, pool.ExpectationsWereMet())
}
