package capacity

import (
	"sort"
	"strings"

	"capacity-bknd/internal/models"
	"capacity-bknd/internal/normalize"
)

// PairKey identifies a feeder within a substation.
type PairKey struct {
	Substation string
	Feeder     string
}

// ExpandFeeders emits one association per populated feeder column of every
// record. Records without feeders still emit one bare association so they
// end up in the empty feeder-set group of their substation. Each association
// carries the position of its record, which identifies duplicate rows of one
// transformer even when Row is unset.
func ExpandFeeders(records []models.TransformerRecord) []models.FeederAssociation {
	out := make([]models.FeederAssociation, 0, len(records)*2)
	for i, r := range records {
		base := models.FeederAssociation{
			Row:             r.Row,
			Source:          i,
			SubstationKey:   r.SubstationKey,
			SubstationName:  strings.TrimSpace(r.SubstationName),
			TransformerName: strings.TrimSpace(r.TransformerName),
			Capacity:        r.Capacity,
		}

		emitted := 0
		for _, raw := range r.Feeders {
			name := strings.TrimSpace(raw)
			key := normalize.Key(name)
			if normalize.IsPlaceholder(key) {
				continue
			}
			a := base
			a.FeederName = name
			a.FeederKey = key
			out = append(out, a)
			emitted++
		}
		if emitted == 0 {
			out = append(out, base)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SubstationKey != b.SubstationKey {
			return a.SubstationKey < b.SubstationKey
		}
		if a.TransformerName != b.TransformerName {
			return a.TransformerName < b.TransformerName
		}
		if a.FeederKey != b.FeederKey {
			return a.FeederKey < b.FeederKey
		}
		if a.FeederName != b.FeederName {
			return a.FeederName < b.FeederName
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Source < b.Source
	})
	return out
}

// ValidPairs returns every (substation, feeder) pair present in the
// equipment associations. Only these pairs can carry subtracted load.
func ValidPairs(assocs []models.FeederAssociation) map[PairKey]struct{} {
	pairs := make(map[PairKey]struct{}, len(assocs))
	for _, a := range assocs {
		if a.Bare() {
			continue
		}
		pairs[PairKey{Substation: a.SubstationKey, Feeder: a.FeederKey}] = struct{}{}
	}
	return pairs
}
