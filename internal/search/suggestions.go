package search

import (
	"sort"
	"strings"
)

// MaxPopular bounds the popular-categories list.
const MaxPopular = 5

// Suggestions is what the search box offers while focused.
type Suggestions struct {
	Recent   []string `json:"recent"`
	Popular  []string `json:"popular"`
	Query    string   `json:"query,omitempty"`
	Matching []string `json:"matching"`
}

// PopularCategories ranks categories by number of occurrences, descending.
// Ties keep the order in which categories first appear.
func PopularCategories(categories []string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, c := range categories {
		if c == "" {
			continue
		}
		if _, seen := counts[c]; !seen {
			order = append(order, c)
		}
		counts[c]++
	}

	ranked := order
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// BuildSuggestions combines the session's recent searches, the popular
// categories and the popular categories containing the current query.
func BuildSuggestions(state State, popular []string) Suggestions {
	s := Suggestions{
		Recent:   append([]string{}, state.Recent...),
		Popular:  append([]string{}, popular...),
		Query:    state.Query,
		Matching: []string{},
	}
	q := strings.ToLower(state.Query)
	if q == "" {
		return s
	}
	for _, c := range popular {
		if strings.Contains(strings.ToLower(c), q) {
			s.Matching = append(s.Matching, c)
		}
	}
	return s
}
