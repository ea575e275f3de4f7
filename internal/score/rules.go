package score

import (
	"sort"
	"strings"
)

// Rules is the deterministic half of scoring: a location weight table with
// synonym-group fallback, and a target-company bonus. It never touches the
// network, so the same posting always yields the same adjustments.
type Rules struct {
	// weightKeys holds the location table keys longest-first, so the most
	// specific configured key wins when several are substrings of the input.
	weightKeys   []string
	weights      map[string]int      // lowercased key -> weight
	groupKeys    []string            // canonical locations, same ordering rule
	groups       map[string][]string // canonical -> lowercased synonyms
	targets      []string            // lowercased target companies, flattened
	companyBonus int
}

// NewRules builds the rule evaluator from the configured tables. Group
// canonical names resolve their weight through the weight table; a group
// whose canonical location has no weight contributes zero.
func NewRules(locationWeights map[string]int, locationGroups map[string][]string, targetCompanies map[string][]string, companyBonus int) *Rules {
	r := &Rules{
		weights:      make(map[string]int, len(locationWeights)),
		groups:       make(map[string][]string, len(locationGroups)),
		companyBonus: companyBonus,
	}

	for k, w := range locationWeights {
		key := strings.ToLower(strings.TrimSpace(k))
		r.weights[key] = w
		r.weightKeys = append(r.weightKeys, key)
	}
	sortBySpecificity(r.weightKeys)

	for canonical, syns := range locationGroups {
		key := strings.ToLower(strings.TrimSpace(canonical))
		lowered := make([]string, 0, len(syns))
		for _, s := range syns {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(s)))
		}
		r.groups[key] = lowered
		r.groupKeys = append(r.groupKeys, key)
	}
	sortBySpecificity(r.groupKeys)

	// Categories only matter for configuration bookkeeping; the bonus is the
	// same whichever category a company appears under.
	for _, companies := range targetCompanies {
		for _, c := range companies {
			r.targets = append(r.targets, strings.ToLower(strings.TrimSpace(c)))
		}
	}
	sort.Strings(r.targets)

	return r
}

// sortBySpecificity orders keys longest-first, ties broken lexically, so
// lookup order is deterministic and the most specific key matches first.
func sortBySpecificity(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
}

// LocationWeight returns the adjustment for a free-text location: first an
// exact substring match against configured keys, then a synonym-group match.
// No match yields zero.
func (r *Rules) LocationWeight(location string) int {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return 0
	}

	for _, key := range r.weightKeys {
		if strings.Contains(loc, key) {
			return r.weights[key]
		}
	}

	for _, canonical := range r.groupKeys {
		for _, syn := range r.groups[canonical] {
			if syn != "" && strings.Contains(loc, syn) {
				return r.weights[canonical]
			}
		}
	}

	return 0
}

// CompanyBonus returns the fixed bonus when the company matches any entry of
// the target list, case-insensitive substring in either direction.
func (r *Rules) CompanyBonus(company string) int {
	c := strings.ToLower(strings.TrimSpace(company))
	if c == "" {
		return 0
	}
	for _, t := range r.targets {
		if t == "" {
			continue
		}
		if strings.Contains(c, t) || strings.Contains(t, c) {
			return r.companyBonus
		}
	}
	return 0
}
