// Package report exports the bulletin run history kept in the state
// store to a spreadsheet for offline review.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pawtals/ghbulletin/internal/state"
)

type ExcelExporter struct {
	OutputDir string
}

func NewExcelExporter(outputDir string) *ExcelExporter {
	return &ExcelExporter{OutputDir: outputDir}
}

// Export writes one workbook with a Runs sheet (one row per run) and
// returns the file path.
func (e *ExcelExporter) Export(records []state.RunRecord) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("bulletin_runs_%s.xlsx", timestamp))

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Runs"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", err
	}
	f.SetActiveSheet(index)

	headers := []string{"Run ID", "Started At (UTC)", "User", "Title", "Commits", "Issues", "Pull Requests", "Images Uploaded", "Published"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", last, headerStyle)
	}

	for i, r := range records {
		row := i + 2
		values := []any{
			r.ID,
			r.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			r.User,
			r.Title,
			r.Commits,
			r.Issues,
			r.PullRequests,
			r.Uploaded,
			r.Published,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", err
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "B", "D", 22)

	if err := f.DeleteSheet("Sheet1"); err != nil {
		// default sheet may already be gone
	}

	if err := f.SaveAs(filename); err != nil {
		return "", fmt.Errorf("failed to save excel file: %w", err)
	}
	return filename, nil
}
