package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowFromValuesHandlesMissingColumns(t *testing.T) {
	row := RowFromValues(1, []string{"Acme Inc", "acme.jp", "https://acme.jp"})

	assert.Equal(t, 1, row.RowIndex)
	assert.Equal(t, "Acme Inc", row.CompanyName)
	assert.Equal(t, "acme.jp", row.ResolvedDomain)
	assert.Equal(t, "https://acme.jp", row.WebsiteURL)
	assert.Empty(t, row.Status)
	assert.False(t, row.LockManualOverride)
}

func TestRowFromValuesTrimsAndParsesLock(t *testing.T) {
	values := make([]string, len(FieldOrder))
	values[0] = "  Acme Inc  "
	values[19] = "TRUE"
	values[20] = "ok"

	row := RowFromValues(3, values)
	assert.Equal(t, "Acme Inc", row.CompanyName)
	assert.True(t, row.LockManualOverride)
	assert.Equal(t, StatusOK, row.Status)
}

func TestValuesRoundTrip(t *testing.T) {
	row := CompanyRow{
		RowIndex:           2,
		CompanyName:        "Acme Inc",
		WebsiteURL:         "https://acme.jp",
		PhoneMain:          "+81312345678",
		LockManualOverride: true,
		Status:             StatusReview,
	}

	values := row.Values()
	require.Len(t, values, len(FieldOrder))

	parsed := RowFromValues(2, values)
	assert.Equal(t, row, parsed)
}

func TestSheetColumnsOrder(t *testing.T) {
	assert.Equal(t, "A", SheetColumns["company_name"])
	assert.Equal(t, "H", SheetColumns["phone_main"])
	assert.Equal(t, "V", SheetColumns["error_detail"])
	assert.Len(t, SheetColumns, len(FieldOrder))
}

func TestUpdatePayload(t *testing.T) {
	row := CompanyRow{RowIndex: 1}

	payload := row.UpdatePayload(map[string]string{
		"phone_main":           "+81312345678",
		"lock_manual_override": "true",
		"bogus_field":          "x",
	})

	assert.Equal(t, "+81312345678", payload["phone_main"])
	assert.NotContains(t, payload, "lock_manual_override")
	assert.NotContains(t, payload, "bogus_field")
	assert.NotEmpty(t, payload["last_checked_at"])
}

func TestLogEntryToRowDefaultsStatus(t *testing.T) {
	entry := LogEntry{Stage: "search", Message: "5 results"}

	row := entry.ToRow()
	require.Len(t, row, 5)
	assert.NotEmpty(t, row[0])
	assert.Equal(t, "search", row[1])
	assert.Equal(t, "info", row[2])
	assert.Equal(t, "5 results", row[3])
}
