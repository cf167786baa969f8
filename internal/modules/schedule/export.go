package schedule

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const dueSheet = "Due"

var dueHeader = []any{"Kind", "ID", "Equipment", "Name", "Dimension", "Severity", "Message", "Due", "Error"}

// ExportDue writes the due listing at now as an xlsx workbook, one row per
// evaluated dimension. Tasks that cannot be evaluated get a single row with
// the error.
func (s *Service) ExportDue(ctx context.Context, w io.Writer, now time.Time) error {
	rows, err := s.ListDue(ctx, now, false)
	if err != nil {
		return err
	}
	return WriteDueWorkbook(w, rows)
}

func WriteDueWorkbook(w io.Writer, rows []TaskStatus) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dueSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(dueSheet, "A1", &dueHeader); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(dueSheet, "A1", "I1", bold); err != nil {
		return err
	}

	line := 2
	for _, ts := range rows {
		equipment := ts.EquipmentCode
		if equipment == "" {
			equipment = fmt.Sprint(ts.EquipmentID)
		}

		if ts.Error != "" || len(ts.Statuses) == 0 {
			row := []any{string(ts.Kind), ts.ID, equipment, ts.Name, "", "", "", "", ts.Error}
			if err := f.SetSheetRow(dueSheet, fmt.Sprintf("A%d", line), &row); err != nil {
				return err
			}
			line++
			continue
		}

		for _, st := range ts.Statuses {
			row := []any{string(ts.Kind), ts.ID, equipment, ts.Name, string(st.Dimension), string(st.Severity), st.Message, dueCell(st), ""}
			if err := f.SetSheetRow(dueSheet, fmt.Sprintf("A%d", line), &row); err != nil {
				return err
			}
			line++
		}
	}

	return f.Write(w)
}

func dueCell(st DueStatus) string {
	switch {
	case st.DueDate != nil:
		return st.DueDate.Format("2006-01-02")
	case st.DueValue != nil:
		return st.DueValue.String()
	default:
		return ""
	}
}
