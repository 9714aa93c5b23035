// Package capacity reconciles transformer capacity against distributed
// generation. It is a pure batch transform: tables in, summary rows and the
// set of substations with available capacity out.
//
// Transformers of one substation that share an identical feeder set are
// merged into a single group with a shared capacity pool; their names are
// concatenated.
package capacity

import (
	"sort"
	"strings"

	"capacity-bknd/internal/models"
	"capacity-bknd/internal/normalize"
)

// FeederSeparator joins feeder display names in a summary row.
const FeederSeparator = ", "

// Options configures an Engine.
type Options struct {
	Equipment        EquipmentColumns
	Generation       GenerationColumns
	AppliesTokens    []string
	SubstationMarker string
}

func DefaultOptions() Options {
	return Options{
		Equipment:        DefaultEquipmentColumns(),
		Generation:       DefaultGenerationColumns(),
		AppliesTokens:    DefaultAppliesTokens,
		SubstationMarker: normalize.DefaultSubstationMarker,
	}
}

type Engine struct {
	opts     Options
	accepted TokenSet
}

func NewEngine(opts Options) *Engine {
	opts.SubstationMarker = normalize.Marker(opts.SubstationMarker)
	if len(opts.AppliesTokens) == 0 {
		opts.AppliesTokens = DefaultAppliesTokens
	}
	return &Engine{opts: opts, accepted: NewTokenSet(opts.AppliesTokens)}
}

// AcceptedTokens returns the normalized affirmative tokens in use.
func (e *Engine) AcceptedTokens() []string {
	return e.accepted.Tokens()
}

// ParseEquipment binds the equipment header and converts every non-blank row.
// The second value is the number of numeric cells coerced to zero.
func (e *Engine) ParseEquipment(t *models.Table) ([]models.TransformerRecord, int, error) {
	s, err := bindEquipment(t, e.opts.Equipment)
	if err != nil {
		return nil, 0, err
	}
	recs, coerced := parseTransformers(t, s, e.opts.SubstationMarker)
	return recs, coerced, nil
}

// ParseGeneration binds the generation header and converts every non-blank row.
func (e *Engine) ParseGeneration(t *models.Table) ([]models.GenerationRecord, int, error) {
	s, err := bindGeneration(t, e.opts.Generation)
	if err != nil {
		return nil, 0, err
	}
	recs, coerced := parseGeneration(t, s, e.opts.SubstationMarker)
	return recs, coerced, nil
}

// Reconcile checks both headers before reading any row, then runs the full
// pipeline. A missing column is the only error it returns.
func (e *Engine) Reconcile(equipment, generation *models.Table) (*models.ReconcileResult, error) {
	res, _, err := e.ReconcileTables(equipment, generation)
	return res, err
}

// ReconcileTables is Reconcile that also hands back the parsed generation
// records, so callers building detail listings do not parse the table twice.
func (e *Engine) ReconcileTables(equipment, generation *models.Table) (*models.ReconcileResult, []models.GenerationRecord, error) {
	es, err := bindEquipment(equipment, e.opts.Equipment)
	if err != nil {
		return nil, nil, err
	}
	gs, err := bindGeneration(generation, e.opts.Generation)
	if err != nil {
		return nil, nil, err
	}

	transformers, eqCoerced := parseTransformers(equipment, es, e.opts.SubstationMarker)
	gen, genCoerced := parseGeneration(generation, gs, e.opts.SubstationMarker)

	res := e.ReconcileRecords(transformers, gen)
	res.Diagnostics.FeederColumns = len(es.feeders)
	res.Diagnostics.CoercedCells = eqCoerced + genCoerced
	return res, gen, nil
}

// ReconcileRecords runs filter, expand, group, aggregate and subtract over
// already parsed records. Records may come in any order; duplicate rows of
// one transformer are told apart by position, so Row is informational.
func (e *Engine) ReconcileRecords(transformers []models.TransformerRecord, gen []models.GenerationRecord) *models.ReconcileResult {
	inScopeRecords, inScope := FilterApplicable(transformers, e.accepted)
	assocs := ExpandFeeders(inScopeRecords)
	groups := GroupByFeedset(assocs)
	load := AggregateLoad(gen, inScope, ValidPairs(assocs))

	rows := make([]models.SummaryRow, 0, len(groups))
	withCapacity := make(map[string]struct{})
	for _, g := range groups {
		row := summarize(g, load.LoadForFeedset(g.SubstationKey, g.FeederKeys))
		if row.Available > 0 {
			withCapacity[row.Substation] = struct{}{}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Substation != rows[j].Substation {
			return rows[i].Substation < rows[j].Substation
		}
		return rows[i].Transformers < rows[j].Transformers
	})

	substations := make([]string, 0, len(withCapacity))
	for s := range withCapacity {
		substations = append(substations, s)
	}
	sort.Strings(substations)

	return &models.ReconcileResult{
		Rows:                    rows,
		SubstationsWithCapacity: substations,
		Diagnostics: models.Diagnostics{
			EquipmentRows:         len(transformers),
			GenerationRows:        len(gen),
			InScopeTransformers:   len(inScopeRecords),
			InScopeSubstations:    len(inScope),
			Groups:                len(groups),
			UnmatchedGeneration:   load.Unmatched(),
			OtherStatusGeneration: load.OtherStatus(),
		},
	}
}

func summarize(g models.TransformerGroup, load models.LoadTotals) models.SummaryRow {
	total := load.Total()
	return models.SummaryRow{
		Substation:      g.SubstationName,
		Transformers:    strings.Join(g.Transformers, TransformerSeparator),
		Capacity:        g.Capacity,
		Connected:       load.Connected,
		ICC:             load.ICC,
		SCR:             load.SCR,
		TotalSubtracted: total,
		Available:       g.Capacity - total,
		Feeders:         strings.Join(g.FeederNames, FeederSeparator),
	}
}

func parseTransformers(t *models.Table, s equipmentSchema, marker string) ([]models.TransformerRecord, int) {
	out := make([]models.TransformerRecord, 0, len(t.Rows))
	coercions := 0
	for i, row := range t.Rows {
		if models.BlankRow(row) {
			continue
		}
		capacity, coerced := parseNumber(t.Cell(row, s.capacity))
		if coerced {
			coercions++
		}
		name := t.Cell(row, s.substation)
		feeders := make([]string, len(s.feeders))
		for j, col := range s.feeders {
			feeders[j] = t.Cell(row, col)
		}
		out = append(out, models.TransformerRecord{
			Row:             i + 2, // 1-based, after the header row
			SubstationName:  name,
			SubstationKey:   normalize.SubstationKey(name, marker),
			TransformerName: t.Cell(row, s.transformer),
			Capacity:        capacity,
			AppliesFlag:     t.Cell(row, s.applies),
			Feeders:         feeders,
		})
	}
	return out, coercions
}

func parseGeneration(t *models.Table, s generationSchema, marker string) ([]models.GenerationRecord, int) {
	out := make([]models.GenerationRecord, 0, len(t.Rows))
	coercions := 0
	for i, row := range t.Rows {
		if models.BlankRow(row) {
			continue
		}
		power, coerced := parseNumber(t.Cell(row, s.power))
		if coerced {
			coercions++
		}
		sub := t.Cell(row, s.substation)
		feeder := t.Cell(row, s.feeder)
		status := t.Cell(row, s.status)
		out = append(out, models.GenerationRecord{
			Row:            i + 2,
			SubstationName: sub,
			SubstationKey:  normalize.SubstationKey(sub, marker),
			FeederName:     strings.TrimSpace(feeder),
			FeederKey:      normalize.Key(feeder),
			PowerMW:        power,
			StatusText:     strings.TrimSpace(status),
			Status:         ClassifyStatus(status),
			ProcessID:      strings.TrimSpace(t.Cell(row, s.processID)),
			Owner:          strings.TrimSpace(t.Cell(row, s.owner)),
			Commune:        strings.TrimSpace(t.Cell(row, s.commune)),
			PoleID:         strings.TrimSpace(t.Cell(row, s.poleID)),
		})
	}
	return out, coercions
}
