package capacity

import (
	"errors"
	"sort"

	"capacity-bknd/internal/models"
	"capacity-bknd/internal/normalize"
)

// ErrNoMatch is returned when a requested substation does not match any
// substation with available capacity.
var ErrNoMatch = errors.New("no match")

// RecordsForSubstation returns the generation records whose normalized
// substation key equals substationKey, sorted by status text, then feeder.
func RecordsForSubstation(gen []models.GenerationRecord, substationKey string) []models.GenerationRecord {
	var out []models.GenerationRecord
	for _, g := range gen {
		if g.SubstationKey == substationKey {
			out = append(out, g)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := normalize.Key(out[i].StatusText), normalize.Key(out[j].StatusText)
		if si != sj {
			return si < sj
		}
		if out[i].FeederKey != out[j].FeederKey {
			return out[i].FeederKey < out[j].FeederKey
		}
		return out[i].Row < out[j].Row
	})
	return out
}

// LookupSubstation resolves a user supplied name against candidates by
// substation key, so "norte" finds "S/E Norte".
func LookupSubstation(name string, candidates []string, marker string) (string, error) {
	if normalize.Key(name) == "" {
		return "", ErrNoMatch
	}
	want := normalize.SubstationKey(name, marker)

	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	for _, c := range sorted {
		if normalize.SubstationKey(c, marker) == want {
			return c, nil
		}
	}
	return "", ErrNoMatch
}

// Details builds the detail listing for each requested substation. With no
// request, every substation with available capacity is listed.
func (e *Engine) Details(res *models.ReconcileResult, gen []models.GenerationRecord, requested []string) []models.SubstationDetail {
	if len(requested) == 0 {
		requested = res.SubstationsWithCapacity
	}

	out := make([]models.SubstationDetail, 0, len(requested))
	for _, r := range requested {
		d := models.SubstationDetail{Requested: r}
		match, err := LookupSubstation(r, res.SubstationsWithCapacity, e.opts.SubstationMarker)
		if err == nil {
			d.Matched = true
			d.Substation = match
			d.Records = RecordsForSubstation(gen, normalize.SubstationKey(match, e.opts.SubstationMarker))
		}
		out = append(out, d)
	}
	return out
}
