package capacity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"capacity-bknd/internal/models"
	"capacity-bknd/internal/normalize"
)

// ColumnError is returned when a structurally required column is absent.
// It is raised before any data row is read.
type ColumnError struct {
	Table  string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s table: missing required column %q", e.Table, e.Column)
}

// EquipmentColumns names the equipment table headers. Headers are matched by
// normalized key, so accents and casing do not matter.
type EquipmentColumns struct {
	Substation   string
	Transformer  string
	Capacity     string
	Applies      string
	FeederPrefix string
}

// GenerationColumns names the generation table headers. The last four are
// optional pass-through fields.
type GenerationColumns struct {
	Substation string
	Feeder     string
	Power      string
	Status     string
	ProcessID  string
	Owner      string
	Commune    string
	PoleID     string
}

func DefaultEquipmentColumns() EquipmentColumns {
	return EquipmentColumns{
		Substation:   "Nombre Subestación",
		Transformer:  "Transformador",
		Capacity:     "Capacidad",
		Applies:      "Aplica",
		FeederPrefix: "Alimentador",
	}
}

func DefaultGenerationColumns() GenerationColumns {
	return GenerationColumns{
		Substation: "SUBESTACION",
		Feeder:     "ALIMENTADOR",
		Power:      "POTENCIA_MW",
		Status:     "ESTADO_PMGD",
		ProcessID:  "ID_PROCESO",
		Owner:      "PROPIETARIO",
		Commune:    "COMUNA",
		PoleID:     "ID_POSTE",
	}
}

type equipmentSchema struct {
	substation  int
	transformer int
	capacity    int
	applies     int
	feeders     []int // header order, fixed for the run
}

type generationSchema struct {
	substation int
	feeder     int
	power      int
	status     int
	processID  int
	owner      int
	commune    int
	poleID     int
}

// headerIndex maps normalized header keys to their first column position.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		k := normalize.Key(h)
		if k == "" {
			continue
		}
		if _, dup := idx[k]; !dup {
			idx[k] = i
		}
	}
	return idx
}

func requireColumn(idx map[string]int, table, column string) (int, error) {
	if i, ok := idx[normalize.Key(column)]; ok {
		return i, nil
	}
	return -1, &ColumnError{Table: table, Column: column}
}

func optionalColumn(idx map[string]int, column string) int {
	if column == "" {
		return -1
	}
	if i, ok := idx[normalize.Key(column)]; ok {
		return i
	}
	return -1
}

func bindEquipment(t *models.Table, cols EquipmentColumns) (equipmentSchema, error) {
	idx := headerIndex(t.Header)
	var (
		s   equipmentSchema
		err error
	)
	if s.substation, err = requireColumn(idx, "equipment", cols.Substation); err != nil {
		return s, err
	}
	if s.transformer, err = requireColumn(idx, "equipment", cols.Transformer); err != nil {
		return s, err
	}
	if s.capacity, err = requireColumn(idx, "equipment", cols.Capacity); err != nil {
		return s, err
	}
	if s.applies, err = requireColumn(idx, "equipment", cols.Applies); err != nil {
		return s, err
	}

	bound := map[int]struct{}{s.substation: {}, s.transformer: {}, s.capacity: {}, s.applies: {}}
	prefix := normalize.Key(cols.FeederPrefix)
	for i, h := range t.Header {
		if _, taken := bound[i]; taken {
			continue
		}
		if prefix != "" && strings.HasPrefix(normalize.Key(h), prefix) {
			s.feeders = append(s.feeders, i)
		}
	}
	if len(s.feeders) == 0 {
		return s, &ColumnError{Table: "equipment", Column: cols.FeederPrefix + "*"}
	}
	return s, nil
}

func bindGeneration(t *models.Table, cols GenerationColumns) (generationSchema, error) {
	idx := headerIndex(t.Header)
	var (
		s   generationSchema
		err error
	)
	if s.substation, err = requireColumn(idx, "generation", cols.Substation); err != nil {
		return s, err
	}
	if s.feeder, err = requireColumn(idx, "generation", cols.Feeder); err != nil {
		return s, err
	}
	if s.power, err = requireColumn(idx, "generation", cols.Power); err != nil {
		return s, err
	}
	if s.status, err = requireColumn(idx, "generation", cols.Status); err != nil {
		return s, err
	}
	s.processID = optionalColumn(idx, cols.ProcessID)
	s.owner = optionalColumn(idx, cols.Owner)
	s.commune = optionalColumn(idx, cols.Commune)
	s.poleID = optionalColumn(idx, cols.PoleID)
	return s, nil
}

// parseNumber coerces a cell to a non-negative float. Blank cells are 0
// without counting as a coercion; unparseable, negative or non-finite values
// are 0 and reported as coerced.
func parseNumber(raw string) (v float64, coerced bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, true
	}
	return v, false
}
