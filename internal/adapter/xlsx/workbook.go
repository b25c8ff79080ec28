// Package xlsx writes grouped flight statistics to an Excel workbook.
package xlsx

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/flight-delay-eda/internal/domain"
)

// Sheet is one worksheet of grouped statistics.
type Sheet struct {
	Name  string
	Stats []domain.GroupStat
}

var header = []string{"Key", "Label", "Flights", "Mean arrival delay (min)", "Delay rate"}

// WriteSummary writes one worksheet per sheet, in order, to path.
func WriteSummary(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return errors.New("summary workbook: no sheets")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return fmt.Errorf("sheet %s: %w", sh.Name, err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.Name, err)
		}
		if err := writeSheet(f, sh); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sh Sheet) error {
	for i, name := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sh.Name, cell, name); err != nil {
			return err
		}
	}
	for r, st := range sh.Stats {
		row := []any{st.Key, st.Label, st.Flights, nil, st.DelayRate}
		if !math.IsNaN(st.MeanArrDelay) {
			row[3] = st.MeanArrDelay
		}
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sh.Name, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
