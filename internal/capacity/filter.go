package capacity

import (
	"maps"
	"slices"

	"capacity-bknd/internal/models"
	"capacity-bknd/internal/normalize"
)

// DefaultAppliesTokens are the spellings of "yes" accepted in the applies
// column. Anything else, including unanticipated typos, means "no".
var DefaultAppliesTokens = []string{"SI", "SÍ", "S", "SII", "SIP", "SI APLICA", "APLICA", "YES", "Y", "X", "OK", "TRUE"}

// TokenSet is a set of normalized affirmative tokens.
type TokenSet map[string]struct{}

func NewTokenSet(tokens []string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, t := range tokens {
		k := normalize.Key(t)
		if normalize.IsPlaceholder(k) {
			continue
		}
		set[k] = struct{}{}
	}
	return set
}

func (s TokenSet) Accepts(flag string) bool {
	_, ok := s[normalize.Key(flag)]
	return ok
}

// Tokens returns the normalized members, for diagnostics.
func (s TokenSet) Tokens() []string {
	return slices.Sorted(maps.Keys(s))
}

// FilterApplicable keeps the records whose applies flag is accepted and
// returns them together with the set of in-scope substation keys. A
// substation with no accepted record contributes nothing.
func FilterApplicable(records []models.TransformerRecord, accepted TokenSet) ([]models.TransformerRecord, map[string]struct{}) {
	inScope := make(map[string]struct{})
	for _, r := range records {
		if accepted.Accepts(r.AppliesFlag) {
			inScope[r.SubstationKey] = struct{}{}
		}
	}

	kept := make([]models.TransformerRecord, 0, len(records))
	for _, r := range records {
		if _, ok := inScope[r.SubstationKey]; !ok {
			continue
		}
		if !accepted.Accepts(r.AppliesFlag) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, inScope
}
