package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sales-lead/leadgen-cli/internal/model"
)

func newTestXLSX(t *testing.T) (*XLSXStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prospects.xlsx")
	s, err := NewXLSX(path, "", "")
	require.NoError(t, err)
	return s, path
}

func TestXLSXCreatesSheetsWithHeaders(t *testing.T) {
	_, path := newTestXLSX(t)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	sheet, ok := f.Sheet["prospects"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "company_name", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "error_detail", sheet.Rows[0].Cells[len(model.FieldOrder)-1].String())

	logSheet, ok := f.Sheet["_logs"]
	require.True(t, ok)
	assert.Equal(t, "timestamp", logSheet.Rows[0].Cells[0].String())
}

func TestXLSXAddRowAndFetch(t *testing.T) {
	s, _ := newTestXLSX(t)
	ctx := context.Background()

	idx, err := s.AddRow(ctx, "Acme株式会社")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx2, err := s.AddRow(ctx, "Beta合同会社")
	require.NoError(t, err)
	assert.Equal(t, 2, idx2)

	rows, err := s.FetchRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme株式会社", rows[0].CompanyName)
	assert.Equal(t, model.StatusPending, rows[0].Status)
	assert.Equal(t, 2, rows[1].RowIndex)
}

func TestXLSXUpdateRowPersists(t *testing.T) {
	s, path := newTestXLSX(t)
	ctx := context.Background()

	idx, err := s.AddRow(ctx, "Acme株式会社")
	require.NoError(t, err)

	err = s.UpdateRow(ctx, idx, map[string]string{
		"website_url": "https://acme.co.jp",
		"status":      string(model.StatusOK),
	})
	require.NoError(t, err)

	// Reopen the file to confirm the write reached disk.
	reopened, err := NewXLSX(path, "", "")
	require.NoError(t, err)
	rows, err := reopened.FetchRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://acme.co.jp", rows[0].WebsiteURL)
	assert.Equal(t, model.StatusOK, rows[0].Status)
	assert.Equal(t, "Acme株式会社", rows[0].CompanyName)
}

func TestXLSXUpdateRowBounds(t *testing.T) {
	s, _ := newTestXLSX(t)
	ctx := context.Background()

	assert.Error(t, s.UpdateRow(ctx, 0, map[string]string{"status": "ok"}))
	assert.Error(t, s.UpdateRow(ctx, 1, map[string]string{"status": "ok"}))

	_, err := s.AddRow(ctx, "Acme")
	require.NoError(t, err)
	assert.NoError(t, s.UpdateRow(ctx, 1, map[string]string{"status": "ok"}))
}

func TestXLSXUpdateRowRejectsUnknownField(t *testing.T) {
	s, _ := newTestXLSX(t)
	ctx := context.Background()

	_, err := s.AddRow(ctx, "Acme")
	require.NoError(t, err)
	assert.Error(t, s.UpdateRow(ctx, 1, map[string]string{"no_such_field": "x"}))
}

func TestXLSXAppendLog(t *testing.T) {
	s, path := newTestXLSX(t)

	err := s.AppendLog(context.Background(), model.LogEntry{
		Stage:     "search",
		Message:   "3 results",
		TargetURL: "https://acme.co.jp",
	})
	require.NoError(t, err)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	logSheet := f.Sheet["_logs"]
	require.Len(t, logSheet.Rows, 2)
	entry := logSheet.Rows[1]
	assert.Equal(t, "search", entry.Cells[1].String())
	assert.Equal(t, "info", entry.Cells[2].String())
	assert.Equal(t, "3 results", entry.Cells[3].String())
	assert.Equal(t, "https://acme.co.jp", entry.Cells[4].String())
}

func TestXLSXReopenExistingFile(t *testing.T) {
	s, path := newTestXLSX(t)
	ctx := context.Background()

	_, err := s.AddRow(ctx, "Acme")
	require.NoError(t, err)

	reopened, err := NewXLSX(path, "", "")
	require.NoError(t, err)
	rows, err := reopened.FetchRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Existing sheets survive a reopen; no duplicate headers are written.
	sheet := reopened.file.Sheet["prospects"]
	assert.Len(t, sheet.Rows, 2)
}
