package schedule

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteDueWorkbook(t *testing.T) {
	rows := []TaskStatus{
		{
			Kind:          KindTask,
			ID:            3,
			Name:          "Change oil",
			EquipmentID:   1,
			EquipmentCode: "GEN-1",
			Due:           true,
			Statuses: []DueStatus{
				{Dimension: DimensionDate, Severity: SeverityWarning, Message: "in 4 days", DueDate: timePtr(day(2024, 1, 31))},
				{Dimension: DimensionPrimary, Severity: SeverityOK, Message: "in 150 hours", DueValue: decPtr(1250)},
			},
		},
		{Kind: KindRepair, ID: 9, Name: "Fix door", EquipmentID: 2, Error: "invalid tracking state: repair task has no due date"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDueWorkbook(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(dueSheet)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, []string{"Kind", "ID", "Equipment", "Name", "Dimension", "Severity", "Message", "Due", "Error"}, got[0])
	assert.Equal(t, []string{"task", "3", "GEN-1", "Change oil", "date", "warning", "in 4 days", "2024-01-31"}, got[1])
	assert.Equal(t, []string{"task", "3", "GEN-1", "Change oil", "primary", "ok", "in 150 hours", "1250"}, got[2])
	assert.Equal(t, "2", got[3][2], "equipment id stands in for a missing code")
	assert.Equal(t, "invalid tracking state: repair task has no due date", got[3][8])
}

func TestExportDue_EmptyListing(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportDue(context.Background(), &buf, day(2024, 1, 1)))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{dueSheet}, wb.GetSheetList())
	got, err := wb.GetRows(dueSheet)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
