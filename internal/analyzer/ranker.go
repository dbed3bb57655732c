package analyzer

import (
	"sort"

	"github.com/sozercan/upi-search/apimodels"
)

// Ranker orders results by relevance.
type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank returns results best first. Results without a positive relevance get
// 1/(1+i) from their backend position i, so unscored backends keep their
// order. Ties keep their input order.
func (r *Ranker) Rank(results []apimodels.Result) []apimodels.Result {
	ranked := make([]apimodels.Result, len(results))
	copy(ranked, results)

	for i := range ranked {
		if ranked[i].Relevance <= 0 {
			ranked[i].Relevance = 1 / float64(1+i)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})
	return ranked
}
