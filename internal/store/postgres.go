package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sales-lead/leadgen-cli/internal/model"
)

// pgxQuerier is the subset of pgxpool.Pool the store uses; pgxmock
// implements it for tests.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements RowStore using pgx.
type PostgresStore struct {
	pool pgxQuerier
}

// NewPostgres connects a pgx pool to the given DSN.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool, primarily for tests.
func NewPostgresFromPool(pool pgxQuerier) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func postgresMigration() string {
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

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration())
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) FetchRows(ctx context.Context) ([]model.CompanyRow, error) {
	query := fmt.Sprintf("SELECT row_index, %s FROM prospects ORDER BY row_index", prospectColumns)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: fetch rows")
	}
	defer rows.Close()

	var out []model.CompanyRow
	for rows.Next() {
		var rowIndex int
		values := make([]string, len(model.FieldOrder))
		dest := make([]any, 0, len(values)+1)
		dest = append(dest, &rowIndex)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan row")
		}
		out = append(out, model.RowFromValues(rowIndex, values))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate rows")
	}
	return out, nil
}

func (s *PostgresStore) UpdateRow(ctx context.Context, rowIndex int, updates map[string]string) error {
	setClauses, args, err := buildUpdate(updates, func(pos int) string {
		return fmt.Sprintf("$%d", pos)
	})
	if err != nil {
		return eris.Wrap(err, "postgres: update row")
	}
	if len(setClauses) == 0 {
		return nil
	}
	args = append(args, rowIndex)

	query := fmt.Sprintf("UPDATE prospects SET %s WHERE row_index = $%d",
		strings.Join(setClauses, ", "), len(args))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update row %d", rowIndex)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: row %d not found", rowIndex)
	}
	return nil
}

func (s *PostgresStore) AddRow(ctx context.Context, companyName string) (int, error) {
	var next int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(row_index), 0) + 1 FROM prospects`,
	).Scan(&next)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: next row index")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO prospects (row_index, company_name, status) VALUES ($1, $2, $3)`,
		next, companyName, string(model.StatusPending),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: insert row for %s", companyName)
	}
	return next, nil
}

func (s *PostgresStore) AppendLog(ctx context.Context, entry model.LogEntry) error {
	row := entry.ToRow()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO logs (id, ts, stage, status, message, target_url) VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), row[0], row[1], row[2], row[3], row[4],
	)
	return eris.Wrap(err, "postgres: append log")
}
