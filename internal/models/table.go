package models

import "strings"

// Table is a header row plus string cells, as read from a workbook, a CSV
// file or a database query.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Cell returns row[idx] or "" when the row is shorter than the header.
func (t *Table) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// BlankRow reports whether every cell of row is empty.
func BlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
