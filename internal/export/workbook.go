package export

import (
	"fmt"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	ListingsSheet = "Listings"
	ReviewSheet   = "Review"

	maxColumnWidth = 50
)

// WriteWorkbook writes rows to an xlsx file at path. Rows whose review flag
// is not OK are also copied to the Review sheet.
func WriteWorkbook(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ListingsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ReviewSheet); err != nil {
		return fmt.Errorf("failed to create review sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	var review []Row
	for _, r := range rows {
		if flag, _ := r["ReviewFlag"].(string); flag != card.ReviewOK {
			review = append(review, r)
		}
	}

	for _, sheet := range []struct {
		name string
		rows []Row
	}{
		{ListingsSheet, rows},
		{ReviewSheet, review},
	} {
		if err := writeSheet(f, sheet.name, sheet.rows, headerStyle); err != nil {
			return err
		}
	}

	index, _ := f.GetSheetIndex(ListingsSheet)
	f.SetActiveSheet(index)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("rows", len(rows)).
		Int("review", len(review)).
		Msg("workbook written")
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows []Row, headerStyle int) error {
	widths := make([]int, len(Columns))

	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		widths[i] = len(h)
	}

	for r, row := range rows {
		for i, col := range Columns {
			v, ok := row[col]
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
			if n := len(fmt.Sprint(v)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(w+2) * 1.1
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		_ = f.SetColWidth(sheet, name, name, width)
	}

	// Keep the header visible
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
