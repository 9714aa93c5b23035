package capacity

import (
	"sort"

	"capacity-bknd/internal/models"
)

// LoadIndex holds subtracted generation per (substation, feeder) pair.
type LoadIndex struct {
	totals      map[PairKey]models.LoadTotals
	unmatched   int
	otherStatus int
}

// AggregateLoad keeps generation records of in-scope substations whose
// (substation, feeder) pair exists in the equipment associations, drops
// statuses that are not subtracted, and sums power per pair and category.
// Records on unknown feeders cannot be attributed to any group and are only
// counted.
func AggregateLoad(gen []models.GenerationRecord, inScope map[string]struct{}, valid map[PairKey]struct{}) *LoadIndex {
	idx := &LoadIndex{totals: make(map[PairKey]models.LoadTotals)}

	kept := make([]models.GenerationRecord, 0, len(gen))
	for _, g := range gen {
		if _, ok := inScope[g.SubstationKey]; !ok {
			idx.unmatched++
			continue
		}
		if _, ok := valid[PairKey{Substation: g.SubstationKey, Feeder: g.FeederKey}]; !ok {
			idx.unmatched++
			continue
		}
		if !Subtracted(g.Status) {
			idx.otherStatus++
			continue
		}
		kept = append(kept, g)
	}

	// fixed summation order keeps totals bit-identical across row orders
	sort.Slice(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.SubstationKey != b.SubstationKey {
			return a.SubstationKey < b.SubstationKey
		}
		if a.FeederKey != b.FeederKey {
			return a.FeederKey < b.FeederKey
		}
		if a.Status != b.Status {
			return a.Status < b.Status
		}
		return a.PowerMW < b.PowerMW
	})

	for _, g := range kept {
		k := PairKey{Substation: g.SubstationKey, Feeder: g.FeederKey}
		t := idx.totals[k]
		switch g.Status {
		case models.StatusConnected:
			t.Connected += g.PowerMW
		case models.StatusICC:
			t.ICC += g.PowerMW
		case models.StatusSCR:
			t.SCR += g.PowerMW
		}
		idx.totals[k] = t
	}
	return idx
}

// LoadForFeedset sums the per-category totals over every feeder of the set.
// An empty set carries no attributable load.
func (l *LoadIndex) LoadForFeedset(substationKey string, feederKeys []string) models.LoadTotals {
	var out models.LoadTotals
	if len(feederKeys) == 0 {
		return out
	}

	keys := append([]string(nil), feederKeys...)
	sort.Strings(keys)
	seen := make(map[string]struct{}, len(keys))
	for _, fk := range keys {
		if _, dup := seen[fk]; dup {
			continue
		}
		seen[fk] = struct{}{}
		t, ok := l.totals[PairKey{Substation: substationKey, Feeder: fk}]
		if !ok {
			continue
		}
		out.Connected += t.Connected
		out.ICC += t.ICC
		out.SCR += t.SCR
	}
	return out
}

// Pair returns the totals of a single feeder.
func (l *LoadIndex) Pair(substationKey, feederKey string) (models.LoadTotals, bool) {
	t, ok := l.totals[PairKey{Substation: substationKey, Feeder: feederKey}]
	return t, ok
}

// Unmatched is the number of generation records outside any known
// (substation, feeder) pair.
func (l *LoadIndex) Unmatched() int { return l.unmatched }

// OtherStatus is the number of matched records whose status is never subtracted.
func (l *LoadIndex) OtherStatus() int { return l.otherStatus }
