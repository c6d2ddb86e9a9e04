// Package store persists prospect rows and the processing audit log behind
// interchangeable backends.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sales-lead/leadgen-cli/internal/config"
	"github.com/sales-lead/leadgen-cli/internal/model"
)

// RowStore is the persistence interface for the enrichment pipeline. Row
// indices are stable handles: data rows start at 1 (index 0 is the header
// position in sheet-shaped backends).
type RowStore interface {
	// FetchRows returns all data rows in index order.
	FetchRows(ctx context.Context) ([]model.CompanyRow, error)
	// UpdateRow writes the given field values to one row. Unknown fields
	// in updates are the caller's bug; stores reject them.
	UpdateRow(ctx context.Context, rowIndex int, updates map[string]string) error
	// AddRow appends a pending row for a company and returns its index.
	AddRow(ctx context.Context, companyName string) (int, error)
	// AppendLog records one audit log entry.
	AppendLog(ctx context.Context, entry model.LogEntry) error
	Close() error
}

// New builds the configured store backend and runs its migration.
func New(ctx context.Context, cfg config.StoreConfig) (RowStore, error) {
	switch cfg.Driver {
	case "sqlite":
		s, err := NewSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "xlsx":
		return NewXLSX(cfg.XLSXPath, cfg.SheetName, cfg.LogSheetName)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
