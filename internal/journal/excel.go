package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes the session's trades to an Excel workbook with a
// Trades sheet and a Summary sheet.
func (j *Journal) ExportXLSX(dir string) (string, error) {
	if dir == "" {
		dir = "journal"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("trades_%s.xlsx", time.Now().Format("2006-01-02_15-04-05")))

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return "", err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return "", err
	}

	if err := j.writeTradesSheet(fx, tradesSheet, headerStyle); err != nil {
		return "", err
	}
	if err := j.writeSummarySheet(fx, summarySheet, headerStyle); err != nil {
		return "", err
	}

	if err := fx.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

func (j *Journal) writeTradesSheet(fx *excelize.File, sheet string, headerStyle int) error {
	headers := []string{"Symbol", "Kind", "Direction", "Entry", "Exit", "Size", "PnL", "Opened", "Closed"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	if err := fx.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for row, entry := range j.Entries() {
		values := []interface{}{
			entry.Symbol,
			entry.Kind.String(),
			entry.Direction.String(),
			entry.Entry,
			entry.Exit,
			entry.Size,
			entry.PnL,
			entry.OpenedAt.Format(time.RFC3339),
			entry.ClosedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := fx.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return fx.SetColWidth(sheet, "A", "I", 16)
}

func (j *Journal) writeSummarySheet(fx *excelize.File, sheet string, headerStyle int) error {
	summary := j.Summarize()

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Trades", summary.Trades},
		{"Winning", summary.Winning},
		{"Losing", summary.Losing},
		{"Total PnL", summary.TotalPnL},
		{"Session Duration", summary.Duration.Round(time.Second).String()},
	}

	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := fx.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	if err := fx.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	return fx.SetColWidth(sheet, "A", "B", 20)
}
