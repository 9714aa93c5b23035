package capacity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capacity-bknd/internal/models"
)

func TestReconcile_SharedFeederSet(t *testing.T) {
	e := NewEngine(DefaultOptions())

	res, err := e.Reconcile(
		equipmentTable(
			[]string{"NORTH", "T1", "10", "YES", "A", "B"},
			[]string{"NORTH", "T2", "5", "YES", "A", "B"},
		),
		generationTable(
			[]string{"NORTH", "A", "3", "CONNECTED", "P-1", "Owner A"},
			[]string{"NORTH", "B", "1", "SCR", "P-2", "Owner B"},
			[]string{"NORTH", "C", "99", "CONNECTED", "P-3", "Owner C"},
		),
	)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, "NORTH", row.Substation)
	assert.Equal(t, "T1 + T2", row.Transformers)
	assert.Equal(t, 15.0, row.Capacity)
	assert.Equal(t, 3.0, row.Connected)
	assert.Equal(t, 0.0, row.ICC)
	assert.Equal(t, 1.0, row.SCR)
	assert.Equal(t, 4.0, row.TotalSubtracted)
	assert.Equal(t, 11.0, row.Available)
	assert.Equal(t, "A, B", row.Feeders)

	assert.Equal(t, []string{"NORTH"}, res.SubstationsWithCapacity)
	assert.Equal(t, 1, res.Diagnostics.UnmatchedGeneration)
	assert.Equal(t, 2, res.Diagnostics.FeederColumns)
}

func TestReconcile_TransformerWithoutFeeders(t *testing.T) {
	e := NewEngine(DefaultOptions())

	res, err := e.Reconcile(
		equipmentTable(
			[]string{"SOUTH", "T3", "7.5", "SI", "", ""},
		),
		generationTable(
			[]string{"SOUTH", "Z", "2", "CONECTADO", "", ""},
		),
	)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, "T3", row.Transformers)
	assert.Equal(t, "", row.Feeders)
	assert.Zero(t, row.Connected)
	assert.Zero(t, row.ICC)
	assert.Zero(t, row.SCR)
	assert.Equal(t, 7.5, row.Available)
	assert.Equal(t, []string{"SOUTH"}, res.SubstationsWithCapacity)
}

func TestReconcile_RowOrderDoesNotMatter(t *testing.T) {
	eq := [][]string{
		{"S/E Norte", "TR-2", "12.3", "Sí", "Alim 1", "Alim 2"},
		{"S/E NORTE", "TR-1", "0.1", "si", "alim 2", "ALIM 1"},
		{"S/E Norte", "TR-3", "0.2", "SI", "Alim 3", ""},
		{"Sur", "TR-9", "4", "NO", "X1", ""},
		{"Sur", "TR-8", "4", "YES", "X1", ""},
		{"Centro", "TR-5", "abc", "YES", "", "nan"},
	}
	gen := [][]string{
		{"Norte", "Alim 1", "0.7", "Conectado", "", ""},
		{"NORTE", "ALIM 2", "0.1", "En SCR", "", ""},
		{"norte", "alim 1", "0.2", "ICC vigente", "", ""},
		{"Norte", "Alim 3", "0.3", "Conectado", "", ""},
		{"Sur", "X1", "1.1", "ICC", "", ""},
		{"Sur", "X1", "9", "En estudio", "", ""},
		{"Centro", "", "5", "Conectado", "", ""},
	}

	e := NewEngine(DefaultOptions())
	first, err := e.Reconcile(equipmentTable(eq...), generationTable(gen...))
	require.NoError(t, err)
	second, err := e.Reconcile(equipmentTable(reversed(eq)...), generationTable(reversed(gen)...))
	require.NoError(t, err)
	again, err := e.Reconcile(equipmentTable(eq...), generationTable(gen...))
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.SubstationsWithCapacity, second.SubstationsWithCapacity)
	assert.Equal(t, first, again)

	merged, ok := findRow(first.Rows, "S/E NORTE", "TR-1 + TR-2")
	require.True(t, ok, "rows: %+v", first.Rows)
	assert.InDelta(t, 12.4, merged.Capacity, 1e-9)
	assert.InDelta(t, 0.7, merged.Connected, 1e-9)
	assert.InDelta(t, 0.2, merged.ICC, 1e-9)
	assert.InDelta(t, 0.1, merged.SCR, 1e-9)
	assert.Equal(t, "ALIM 1, Alim 2", merged.Feeders)

	centro, ok := findRow(first.Rows, "Centro", "TR-5")
	require.True(t, ok)
	assert.Zero(t, centro.Capacity)
	assert.Zero(t, centro.Available)
	assert.NotContains(t, first.SubstationsWithCapacity, "Centro")
	assert.Equal(t, 1, first.Diagnostics.CoercedCells)
}

func TestReconcile_AvailableIsNotClamped(t *testing.T) {
	e := NewEngine(DefaultOptions())

	res, err := e.Reconcile(
		equipmentTable([]string{"Este", "T1", "2", "SI", "F1", ""}),
		generationTable(
			[]string{"Este", "F1", "1.5", "Conectado", "", ""},
			[]string{"Este", "F1", "1.5", "ICC", "", ""},
		),
	)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, -1.0, res.Rows[0].Available)
	assert.Empty(t, res.SubstationsWithCapacity)
}

func TestReconcile_Conservation(t *testing.T) {
	e := NewEngine(DefaultOptions())

	res, err := e.Reconcile(
		equipmentTable(
			[]string{"A", "T1", "30", "SI", "F1", "F2"},
			[]string{"A", "T2", "20", "SI", "F3", ""},
			[]string{"B", "T1", "10", "SI", "F1", ""},
		),
		generationTable(
			[]string{"A", "F1", "0.1", "Conectado", "", ""},
			[]string{"A", "F2", "0.2", "SCR", "", ""},
			[]string{"A", "F2", "0.3", "ICC", "", ""},
			[]string{"A", "F3", "1.7", "ICC", "", ""},
			[]string{"B", "F1", "3.3", "Conectado", "", ""},
		),
	)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	for _, r := range res.Rows {
		assert.InDelta(t, r.Connected+r.ICC+r.SCR, r.TotalSubtracted, 1e-9, r.Transformers)
		assert.InDelta(t, r.Capacity-r.TotalSubtracted, r.Available, 1e-9, r.Transformers)
	}

	b, ok := findRow(res.Rows, "B", "T1")
	require.True(t, ok)
	assert.InDelta(t, 3.3, b.Connected, 1e-9)
}

func TestReconcile_ZeroAvailableDoesNotQualify(t *testing.T) {
	e := NewEngine(DefaultOptions())

	res, err := e.Reconcile(
		equipmentTable(
			[]string{"Oeste", "T1", "4", "SI", "F1", ""},
			[]string{"Norte", "T1", "4", "SI", "F1", ""},
		),
		generationTable(
			[]string{"Oeste", "F1", "4", "Conectado", "", ""},
			[]string{"Norte", "F1", "3.9", "Conectado", "", ""},
		),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Norte"}, res.SubstationsWithCapacity)
}

func TestReconcile_UnmappedFeederHasNoEffect(t *testing.T) {
	e := NewEngine(DefaultOptions())
	eq := equipmentTable([]string{"Sur", "T1", "10", "SI", "F1", ""})

	base, err := e.Reconcile(eq, generationTable([]string{"Sur", "F1", "1", "Conectado", "", ""}))
	require.NoError(t, err)

	withStray, err := e.Reconcile(eq, generationTable(
		[]string{"Sur", "F1", "1", "Conectado", "", ""},
		[]string{"Sur", "F9", "50", "Conectado", "", ""},
		[]string{"Nowhere", "F1", "50", "Conectado", "", ""},
	))
	require.NoError(t, err)

	assert.Equal(t, base.Rows, withStray.Rows)
	assert.Equal(t, 2, withStray.Diagnostics.UnmatchedGeneration)
}

func TestReconcile_MissingColumn(t *testing.T) {
	e := NewEngine(DefaultOptions())

	t.Run("equipment", func(t *testing.T) {
		eq := &models.Table{Header: []string{"Nombre Subestación", "Transformador", "Aplica", "Alimentador 1"}}
		_, err := e.Reconcile(eq, generationTable())

		var colErr *ColumnError
		require.True(t, errors.As(err, &colErr))
		assert.Equal(t, "equipment", colErr.Table)
		assert.Equal(t, "Capacidad", colErr.Column)
		assert.Contains(t, err.Error(), "Capacidad")
	})

	t.Run("feeder columns", func(t *testing.T) {
		eq := &models.Table{Header: []string{"Nombre Subestación", "Transformador", "Capacidad", "Aplica"}}
		_, err := e.Reconcile(eq, generationTable())

		var colErr *ColumnError
		require.True(t, errors.As(err, &colErr))
		assert.Equal(t, "Alimentador*", colErr.Column)
	})

	t.Run("generation", func(t *testing.T) {
		gen := &models.Table{Header: []string{"SUBESTACION", "ALIMENTADOR", "ESTADO_PMGD"}}
		_, err := e.Reconcile(equipmentTable(), gen)

		var colErr *ColumnError
		require.True(t, errors.As(err, &colErr))
		assert.Equal(t, "generation", colErr.Table)
		assert.Equal(t, "POTENCIA_MW", colErr.Column)
	})
}

func TestReconcile_HeadersMatchByKey(t *testing.T) {
	e := NewEngine(DefaultOptions())

	eq := &models.Table{
		Header: []string{"NOMBRE SUBESTACION", "transformador", " Capacidad ", "APLICA?", "ALIMENTADOR_A", "Alimentador-B", "Observaciones"},
		Rows:   [][]string{{"Norte", "T1", "5", "si", "F1", "F2", "ninguna"}},
	}
	gen := &models.Table{
		Header: []string{"Subestación", "Alimentador", "Potencia MW", "Estado PMGD"},
		Rows:   [][]string{{"S/E NORTE", "f2", "1", "SCR"}},
	}

	res, err := e.Reconcile(eq, gen)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 2, res.Diagnostics.FeederColumns)
	assert.Equal(t, 1.0, res.Rows[0].SCR)
	assert.Equal(t, "F1, F2", res.Rows[0].Feeders)
}

func TestReconcile_BlankRowsSkipped(t *testing.T) {
	e := NewEngine(DefaultOptions())

	res, err := e.Reconcile(
		equipmentTable([]string{"Norte", "T1", "5", "si", "F1", ""}, []string{"", " ", ""}, nil),
		generationTable([]string{}),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Diagnostics.EquipmentRows)
	assert.Equal(t, 0, res.Diagnostics.GenerationRows)
}

func TestNewEngine_CustomTokens(t *testing.T) {
	e := NewEngine(Options{
		Equipment:     DefaultEquipmentColumns(),
		Generation:    DefaultGenerationColumns(),
		AppliesTokens: []string{"vale"},
	})
	assert.Equal(t, []string{"VALE"}, e.AcceptedTokens())

	res, err := e.Reconcile(
		equipmentTable(
			[]string{"Norte", "T1", "5", "Vale", "F1", ""},
			[]string{"Norte", "T2", "5", "SI", "F1", ""},
		),
		generationTable(),
	)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "T1", res.Rows[0].Transformers)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		coerced bool
	}{
		{"12.5", 12.5, false},
		{" 3 ", 3, false},
		{"", 0, false},
		{"abc", 0, true},
		{"1,5", 0, true},
		{"-2", 0, true},
		{"NaN", 0, true},
		{"+Inf", 0, true},
		{"1e2", 100, false},
	}
	for _, tt := range tests {
		v, coerced := parseNumber(tt.in)
		assert.Equal(t, tt.want, v, tt.in)
		assert.Equal(t, tt.coerced, coerced, tt.in)
	}
}

func TestParseEquipment(t *testing.T) {
	e := NewEngine(DefaultOptions())

	recs, coerced, err := e.ParseEquipment(equipmentTable(
		[]string{"S/E Norte", "T1", "abc", "SI", "A1", ""},
		[]string{"", "", "", "", "", ""},
		[]string{"Norte", "T2", "4.5", "NO", "", "A2"},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, coerced)
	require.Len(t, recs, 2)

	assert.Equal(t, 2, recs[0].Row)
	assert.Equal(t, 0.0, recs[0].Capacity)
	assert.Equal(t, []string{"A1", ""}, recs[0].Feeders)

	// both spellings land on the same key
	assert.Equal(t, recs[0].SubstationKey, recs[1].SubstationKey)
	assert.Equal(t, 4, recs[1].Row)
	assert.Equal(t, 4.5, recs[1].Capacity)
}

func TestReconcile_LowercaseMarker(t *testing.T) {
	opts := DefaultOptions()
	opts.SubstationMarker = "s/e"
	e := NewEngine(opts)

	res, err := e.Reconcile(
		equipmentTable([]string{"S/E Norte", "T1", "10", "SI", "F1", ""}),
		generationTable([]string{"Norte", "F1", "4", "Conectado", "", ""}),
	)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 4.0, res.Rows[0].Connected)
	assert.Equal(t, 6.0, res.Rows[0].Available)
	assert.Equal(t, 0, res.Diagnostics.UnmatchedGeneration)
}

func TestReconcile_DisconnectedNotSubtracted(t *testing.T) {
	e := NewEngine(DefaultOptions())

	res, err := e.Reconcile(
		equipmentTable([]string{"S/E Norte", "T1", "10", "SI", "F1", ""}),
		generationTable(
			[]string{"Norte", "F1", "4", "Conectado", "", ""},
			[]string{"Norte", "F1", "3", "Desconectado", "", ""},
		),
	)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 4.0, res.Rows[0].Connected)
	assert.Equal(t, 6.0, res.Rows[0].Available)
	assert.Equal(t, 1, res.Diagnostics.OtherStatusGeneration)
}

func TestReconcileTables_ReturnsParsedGeneration(t *testing.T) {
	e := NewEngine(DefaultOptions())

	res, gen, err := e.ReconcileTables(
		equipmentTable([]string{"S/E Norte", "T1", "x", "SI", "F1", ""}),
		generationTable(
			[]string{"Norte", "F1", "-2", "ICC", "P-1", "Acme"},
			[]string{"Sur", "F9", "1", "SCR", "", ""},
		),
	)
	require.NoError(t, err)
	require.Len(t, gen, 2)
	assert.Equal(t, "P-1", gen[0].ProcessID)
	assert.Equal(t, "S/E SUR", gen[1].SubstationKey)
	assert.Equal(t, 2, res.Diagnostics.CoercedCells)

	_, _, err = e.ReconcileTables(equipmentTable(), &models.Table{Header: []string{"SUBESTACION"}})
	var colErr *ColumnError
	assert.True(t, errors.As(err, &colErr))
}
