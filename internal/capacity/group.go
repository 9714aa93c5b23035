package capacity

import (
	"maps"
	"slices"
	"sort"
	"strings"

	"capacity-bknd/internal/models"
)

// TransformerSeparator joins transformer names inside a group.
const TransformerSeparator = " + "

type transformerKey struct {
	substation string
	name       string
}

// transformerFeeds is one transformer with every feeder it was listed on.
type transformerFeeds struct {
	substationKey string
	name          string
	capacities    map[int]float64   // source record -> capacity
	feeders       map[string]string // feeder key -> display name
}

func (t *transformerFeeds) capacity() float64 {
	return sumSorted(slices.Collect(maps.Values(t.capacities)))
}

func (t *transformerFeeds) feedsetKey() string {
	return t.substationKey + "\x00" + strings.Join(slices.Sorted(maps.Keys(t.feeders)), "\x1f")
}

// GroupByFeedset folds associations into transformers, then merges the
// transformers of a substation whose feeder-key sets are equal. Transformers
// without feeders share the empty-set group of their substation.
func GroupByFeedset(assocs []models.FeederAssociation) []models.TransformerGroup {
	names := substationNames(assocs)
	transformers := collectTransformers(assocs)

	type pending struct {
		substationKey string
		members       []*transformerFeeds
	}
	bySet := make(map[string]*pending)
	for _, tf := range transformers {
		k := tf.feedsetKey()
		p, ok := bySet[k]
		if !ok {
			p = &pending{substationKey: tf.substationKey}
			bySet[k] = p
		}
		p.members = append(p.members, tf)
	}

	groups := make([]models.TransformerGroup, 0, len(bySet))
	for _, p := range bySet {
		sort.Slice(p.members, func(i, j int) bool { return p.members[i].name < p.members[j].name })

		display := make(map[string]string)
		caps := make([]float64, 0, len(p.members))
		g := models.TransformerGroup{
			SubstationKey:  p.substationKey,
			SubstationName: names[p.substationKey],
			Transformers:   make([]string, 0, len(p.members)),
		}
		for _, m := range p.members {
			g.Transformers = append(g.Transformers, m.name)
			caps = append(caps, m.capacity())
			for k, n := range m.feeders {
				if cur, ok := display[k]; !ok || n < cur {
					display[k] = n
				}
			}
		}
		g.Capacity = sumSorted(caps)
		g.FeederKeys = slices.Sorted(maps.Keys(display))
		g.FeederNames = slices.Sorted(maps.Values(display))
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.SubstationName != b.SubstationName {
			return a.SubstationName < b.SubstationName
		}
		an, bn := strings.Join(a.Transformers, TransformerSeparator), strings.Join(b.Transformers, TransformerSeparator)
		if an != bn {
			return an < bn
		}
		if a.SubstationKey != b.SubstationKey {
			return a.SubstationKey < b.SubstationKey
		}
		return strings.Join(a.FeederKeys, ",") < strings.Join(b.FeederKeys, ",")
	})
	return groups
}

func collectTransformers(assocs []models.FeederAssociation) []*transformerFeeds {
	byKey := make(map[transformerKey]*transformerFeeds)
	for _, a := range assocs {
		k := transformerKey{substation: a.SubstationKey, name: a.TransformerName}
		tf, ok := byKey[k]
		if !ok {
			tf = &transformerFeeds{
				substationKey: a.SubstationKey,
				name:          a.TransformerName,
				capacities:    make(map[int]float64),
				feeders:       make(map[string]string),
			}
			byKey[k] = tf
		}
		tf.capacities[a.Source] = a.Capacity
		if a.Bare() {
			continue
		}
		if cur, ok := tf.feeders[a.FeederKey]; !ok || a.FeederName < cur {
			tf.feeders[a.FeederKey] = a.FeederName
		}
	}

	out := slices.Collect(maps.Values(byKey))
	sort.Slice(out, func(i, j int) bool {
		if out[i].substationKey != out[j].substationKey {
			return out[i].substationKey < out[j].substationKey
		}
		return out[i].name < out[j].name
	})
	return out
}

// substationNames picks one display name per substation key: the smallest
// raw spelling, so the choice does not depend on row order.
func substationNames(assocs []models.FeederAssociation) map[string]string {
	names := make(map[string]string)
	for _, a := range assocs {
		if cur, ok := names[a.SubstationKey]; !ok || a.SubstationName < cur {
			names[a.SubstationKey] = a.SubstationName
		}
	}
	return names
}

// sumSorted adds values in ascending order so the float result does not
// depend on input order.
func sumSorted(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	var total float64
	for _, v := range sorted {
		total += v
	}
	return total
}
