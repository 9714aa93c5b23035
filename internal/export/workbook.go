// Package export writes reconciliation results as a downloadable workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"capacity-bknd/internal/models"
)

const (
	SummarySheet     = "RESUMEN"
	SubstationsSheet = "SUBESTACIONES"
	ContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SummaryHeader is the header row of the RESUMEN sheet.
var SummaryHeader = []string{
	"Nombre Subestación",
	"Transformadores",
	"Capacidad (MW)",
	"Conectado (MW)",
	"ICC (MW)",
	"SCR (MW)",
	"Potencia Descontada (MW)",
	"Capacidad Disponible (MW)",
	"Alimentadores",
}

// FileName returns the download name for a run finished at now.
func FileName(now time.Time) string {
	return "Resumen_Subestaciones_" + now.Format("20060102_150405") + ".xlsx"
}

// WriteSummary writes one row per summary row on RESUMEN and the list of
// substations with available capacity on SUBESTACIONES.
func WriteSummary(w io.Writer, res *models.ReconcileResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	if err := setRow(f, SummarySheet, 1, toAny(SummaryHeader)); err != nil {
		return err
	}
	for i, r := range res.Rows {
		vals := []any{
			r.Substation,
			r.Transformers,
			r.Capacity,
			r.Connected,
			r.ICC,
			r.SCR,
			r.TotalSubtracted,
			r.Available,
			r.Feeders,
		}
		if err := setRow(f, SummarySheet, i+2, vals); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SubstationsSheet); err != nil {
		return fmt.Errorf("failed to add substations sheet: %w", err)
	}
	if err := setRow(f, SubstationsSheet, 1, []any{"Nombre Subestación"}); err != nil {
		return err
	}
	for i, s := range res.SubstationsWithCapacity {
		if err := setRow(f, SubstationsSheet, i+2, []any{s}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
