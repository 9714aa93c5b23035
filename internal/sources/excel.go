package sources

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"capacity-bknd/internal/models"
)

// ReadExcel reads one sheet of a workbook. The first row is the header.
// Cells are read raw so numeric formats do not leak thousands separators.
func ReadExcel(r io.Reader, name, sheet string) (*models.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", name)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, name, err)
	}

	t := &models.Table{Name: name}
	if len(rows) == 0 {
		return t, nil
	}
	t.Header = rows[0]
	t.Rows = rows[1:]
	return t, nil
}
