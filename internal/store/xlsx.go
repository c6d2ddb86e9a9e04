package store

import (
	"context"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sales-lead/leadgen-cli/internal/model"
)

var logHeader = []string{"timestamp", "stage", "status", "message", "target_url"}

// XLSXStore implements RowStore over a local workbook. Row 0 of the
// prospect sheet is the header; data rows start at 1, matching the
// RowIndex contract. Every write saves the whole file, so access is
// serialized with a mutex.
type XLSXStore struct {
	mu        sync.Mutex
	file      *xlsx.File
	path      string
	sheetName string
	logName   string
}

// NewXLSX opens the workbook at path, creating the file, the prospect
// sheet, and the log sheet (with headers) as needed.
func NewXLSX(path, sheetName, logSheetName string) (*XLSXStore, error) {
	if sheetName == "" {
		sheetName = "prospects"
	}
	if logSheetName == "" {
		logSheetName = "_logs"
	}

	var file *xlsx.File
	if _, err := os.Stat(path); err == nil {
		file, err = xlsx.OpenFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "xlsx: open %s", path)
		}
	} else {
		file = xlsx.NewFile()
	}

	s := &XLSXStore{file: file, path: path, sheetName: sheetName, logName: logSheetName}
	if err := s.ensureSheets(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *XLSXStore) ensureSheets() error {
	if _, ok := s.file.Sheet[s.sheetName]; !ok {
		sheet, err := s.file.AddSheet(s.sheetName)
		if err != nil {
			return eris.Wrapf(err, "xlsx: add sheet %s", s.sheetName)
		}
		writeRow(sheet.AddRow(), model.FieldOrder)
	}
	if _, ok := s.file.Sheet[s.logName]; !ok {
		sheet, err := s.file.AddSheet(s.logName)
		if err != nil {
			return eris.Wrapf(err, "xlsx: add sheet %s", s.logName)
		}
		writeRow(sheet.AddRow(), logHeader)
	}
	return s.save()
}

func (s *XLSXStore) Close() error {
	return nil
}

func (s *XLSXStore) FetchRows(_ context.Context) ([]model.CompanyRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet := s.file.Sheet[s.sheetName]
	var out []model.CompanyRow
	for i, row := range sheet.Rows {
		if i == 0 {
			continue
		}
		out = append(out, model.RowFromValues(i, rowValues(row)))
	}
	return out, nil
}

func (s *XLSXStore) UpdateRow(_ context.Context, rowIndex int, updates map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for field := range updates {
		if _, ok := model.SheetColumns[field]; !ok {
			return eris.Errorf("xlsx: unknown field %q", field)
		}
	}

	sheet := s.file.Sheet[s.sheetName]
	if rowIndex <= 0 || rowIndex >= len(sheet.Rows) {
		return eris.Errorf("xlsx: row %d not found", rowIndex)
	}

	row := sheet.Rows[rowIndex]
	for col, field := range model.FieldOrder {
		value, ok := updates[field]
		if !ok {
			continue
		}
		cellAt(row, col).SetString(value)
	}
	return s.save()
}

func (s *XLSXStore) AddRow(_ context.Context, companyName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet := s.file.Sheet[s.sheetName]
	rowIndex := len(sheet.Rows)

	newRow := model.CompanyRow{CompanyName: companyName, Status: model.StatusPending}
	writeRow(sheet.AddRow(), newRow.Values())
	if err := s.save(); err != nil {
		return 0, err
	}
	return rowIndex, nil
}

func (s *XLSXStore) AppendLog(_ context.Context, entry model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet := s.file.Sheet[s.logName]
	writeRow(sheet.AddRow(), entry.ToRow())
	return s.save()
}

func (s *XLSXStore) save() error {
	return eris.Wrapf(s.file.Save(s.path), "xlsx: save %s", s.path)
}

func writeRow(row *xlsx.Row, values []string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// cellAt returns the cell at col, padding the row with empty cells first.
func cellAt(row *xlsx.Row, col int) *xlsx.Cell {
	for len(row.Cells) <= col {
		row.AddCell()
	}
	return row.Cells[col]
}

func rowValues(row *xlsx.Row) []string {
	values := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		values[i] = cell.String()
	}
	return values
}
