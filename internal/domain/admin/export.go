package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Service requests"

var exportHeaders = []string{
	"ID", "Status", "Client", "Technician", "Appliance", "Description",
	"Proposed at", "Scheduled at", "Created at", "Completed at",
}

var exportWidths = []float64{8, 12, 24, 24, 24, 48, 20, 20, 20, 20}

const exportTimeLayout = "2006-01-02 15:04"

// ExportServiceRequests builds an xlsx workbook of the matching requests.
// The caller must Close the returned file.
func (s *Service) ExportServiceRequests(ctx context.Context, f ExportFilter) (*excelize.File, string, error) {
	rows, err := s.reports.ExportRows(ctx, f)
	if err != nil {
		return nil, "", err
	}

	book := excelize.NewFile()
	if err := book.SetSheetName("Sheet1", exportSheet); err != nil {
		book.Close()
		return nil, "", err
	}

	headStyle, _ := book.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		book.SetCellValue(exportSheet, cell, h)
		book.SetCellStyle(exportSheet, cell, cell, headStyle)
		book.SetColWidth(exportSheet, col, col, exportWidths[i])
	}

	for i, r := range rows {
		row := i + 2
		values := []any{
			r.ID, r.Status, r.ClientName, r.TechnicianName, r.Appliance, r.Description,
			r.ProposedAt.UTC().Format(exportTimeLayout),
			formatOptional(r.ScheduledAt),
			r.CreatedAt.UTC().Format(exportTimeLayout),
			formatOptional(r.CompletedAt),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := book.SetSheetRow(exportSheet, cell, &values); err != nil {
			book.Close()
			return nil, "", err
		}
	}

	name := fmt.Sprintf("service-requests-%s.xlsx", s.now().Format("20060102-150405"))
	return book, name, nil
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(exportTimeLayout)
}
