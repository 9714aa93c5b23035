package capacity

import (
	"capacity-bknd/internal/models"
)

var equipmentHeader = []string{"Nombre Subestación", "Transformador", "Capacidad", "Aplica", "Alimentador 1", "Alimentador 2"}

var generationHeader = []string{"SUBESTACION", "ALIMENTADOR", "POTENCIA_MW", "ESTADO_PMGD", "ID_PROCESO", "PROPIETARIO"}

func equipmentTable(rows ...[]string) *models.Table {
	return &models.Table{Name: "equipment", Header: equipmentHeader, Rows: rows}
}

func generationTable(rows ...[]string) *models.Table {
	return &models.Table{Name: "generation", Header: generationHeader, Rows: rows}
}

func reversed(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r
	}
	return out
}

func findRow(rows []models.SummaryRow, substation, transformers string) (models.SummaryRow, bool) {
	for _, r := range rows {
		if r.Substation == substation && r.Transformers == transformers {
			return r, true
		}
	}
	return models.SummaryRow{}, false
}
