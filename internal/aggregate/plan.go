package aggregate

import "github.com/oppscout/oppscout/internal/model"

// Call is one planned adapter invocation.
type Call struct {
	Adapter  model.SourceAdapter
	Query    string
	Location string
}

// BuildPlan expands queries and locations into an ordered list of adapter
// calls. Preferred locations get every query variant; secondary locations are
// capped at secondaryLimit variants to bound total external calls. Plan order
// matters: deduplication is first-wins, so earlier adapters own the postings
// they discover.
func BuildPlan(adapters []model.SourceAdapter, queries, preferred, secondary []string, secondaryLimit int) []Call {
	var plan []Call
	for _, a := range adapters {
		for _, loc := range preferred {
			for _, q := range queries {
				plan = append(plan, Call{Adapter: a, Query: q, Location: loc})
			}
		}
		limited := queries
		if secondaryLimit > 0 && len(limited) > secondaryLimit {
			limited = limited[:secondaryLimit]
		}
		for _, loc := range secondary {
			for _, q := range limited {
				plan = append(plan, Call{Adapter: a, Query: q, Location: loc})
			}
		}
	}
	return plan
}
