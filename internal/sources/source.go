// Package sources loads the equipment and generation tables from uploaded
// workbooks, CSV exports or Postgres.
package sources

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"capacity-bknd/internal/models"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Read picks a reader from the file extension. sheet only applies to
// workbooks; empty means the first sheet.
func Read(r io.Reader, filename, sheet string) (*models.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadExcel(r, filename, sheet)
	case ".csv", ".txt":
		return ReadCSV(r, filename)
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
}
