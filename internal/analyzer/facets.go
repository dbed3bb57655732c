package analyzer

import (
	"fmt"
	"sort"

	"github.com/sozercan/upi-search/apimodels"
)

// FacetGenerator suggests "field: value" refinements from result fields.
type FacetGenerator struct {
	fields []string
	max    int
}

func NewFacetGenerator(fields []string, maxFacets int) *FacetGenerator {
	return &FacetGenerator{fields: fields, max: maxFacets}
}

type facetCount struct {
	field int
	value string
	count int
}

// Generate counts scalar values of the configured fields across results and
// returns the most frequent ones, at most max.
func (g *FacetGenerator) Generate(results []apimodels.Result) []string {
	if g.max <= 0 || len(g.fields) == 0 {
		return nil
	}

	counts := map[string]*facetCount{}
	for _, res := range results {
		for fi, field := range g.fields {
			value, ok := scalar(res.Fields[field])
			if !ok {
				continue
			}
			key := field + "\x00" + value
			if fc, ok := counts[key]; ok {
				fc.count++
				continue
			}
			counts[key] = &facetCount{field: fi, value: value, count: 1}
		}
	}

	all := make([]*facetCount, 0, len(counts))
	for _, fc := range counts {
		all = append(all, fc)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		if all[i].field != all[j].field {
			return all[i].field < all[j].field
		}
		return all[i].value < all[j].value
	})

	if len(all) > g.max {
		all = all[:g.max]
	}
	facets := make([]string, 0, len(all))
	for _, fc := range all {
		facets = append(facets, fmt.Sprintf("%s: %s", g.fields[fc.field], fc.value))
	}
	return facets
}

func scalar(v interface{}) (string, bool) {
	switch v.(type) {
	case nil, map[string]interface{}, []interface{}:
		return "", false
	}
	s := stringify(v)
	return s, s != ""
}
