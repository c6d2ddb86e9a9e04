package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sales-lead/leadgen-cli/internal/model"
)

// SQLiteStore implements RowStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// prospectColumns is the field list shared by every query, in sheet order.
var prospectColumns = strings.Join(model.FieldOrder, ", ")

func sqliteMigration() string {
	cols := make([]string, len(model.FieldOrder))
	for i, f := range model.FieldOrder {
		cols[i] = fmt.Sprintf("\t%s TEXT NOT NULL DEFAULT ''", f)
	}
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS prospects (
	row_index INTEGER PRIMARY KEY,
%s
);

CREATE TABLE IF NOT EXISTS logs (
	id         TEXT PRIMARY KEY,
	ts         TEXT NOT NULL,
	stage      TEXT NOT NULL,
	status     TEXT NOT NULL,
	message    TEXT NOT NULL,
	target_url TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_prospects_status ON prospects(status);
CREATE INDEX IF NOT EXISTS idx_logs_stage ON logs(stage);
`, strings.Join(cols, ",\n"))
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration())
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FetchRows(ctx context.Context) ([]model.CompanyRow, error) {
	query := fmt.Sprintf("SELECT row_index, %s FROM prospects ORDER BY row_index", prospectColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: fetch rows")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.CompanyRow
	for rows.Next() {
		rowIndex, values, err := scanProspect(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		out = append(out, model.RowFromValues(rowIndex, values))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate rows")
	}
	return out, nil
}

func (s *SQLiteStore) UpdateRow(ctx context.Context, rowIndex int, updates map[string]string) error {
	setClauses, args, err := buildUpdate(updates, func(int) string { return "?" })
	if err != nil {
		return eris.Wrap(err, "sqlite: update row")
	}
	if len(setClauses) == 0 {
		return nil
	}
	args = append(args, rowIndex)

	query := fmt.Sprintf("UPDATE prospects SET %s WHERE row_index = ?", strings.Join(setClauses, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update row %d", rowIndex)
	}
	return checkRowsAffected(res, rowIndex)
}

func (s *SQLiteStore) AddRow(ctx context.Context, companyName string) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(row_index), 0) + 1 FROM prospects`,
	).Scan(&next)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: next row index")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO prospects (row_index, company_name, status) VALUES (?, ?, ?)`,
		next, companyName, string(model.StatusPending),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: insert row for %s", companyName)
	}
	return next, nil
}

func (s *SQLiteStore) AppendLog(ctx context.Context, entry model.LogEntry) error {
	row := entry.ToRow()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO logs (id, ts, stage, status, message, target_url) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), row[0], row[1], row[2], row[3], row[4],
	)
	return eris.Wrap(err, "sqlite: append log")
}

// scanProspect reads row_index plus the prospect columns as strings.
func scanProspect(rows *sql.Rows) (int, []string, error) {
	var rowIndex int
	values := make([]string, len(model.FieldOrder))
	dest := make([]any, 0, len(values)+1)
	dest = append(dest, &rowIndex)
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return 0, nil, err
	}
	return rowIndex, values, nil
}

// buildUpdate validates field names against the schema and renders the SET
// clauses. placeholder maps a 1-based argument position to its SQL token.
func buildUpdate(updates map[string]string, placeholder func(pos int) string) ([]string, []any, error) {
	var clauses []string
	var args []any
	for _, field := range model.FieldOrder {
		value, ok := updates[field]
		if !ok {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s = %s", field, placeholder(len(args)+1)))
		args = append(args, value)
	}
	for field := range updates {
		if _, ok := model.SheetColumns[field]; !ok {
			return nil, nil, eris.Errorf("unknown field %q", field)
		}
	}
	return clauses, args, nil
}

func checkRowsAffected(res sql.Result, rowIndex int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: row %d not found", rowIndex)
	}
	return nil
}
