package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopularCategories(t *testing.T) {
	cats := []string{"Books", "Misc", "Vehicles", "Misc", "Books", "Misc", "Electronics", "", "Sports", "Furniture"}
	assert.Equal(t, []string{"Misc", "Books", "Vehicles", "Electronics", "Sports"}, PopularCategories(cats, MaxPopular))
	assert.Empty(t, PopularCategories(nil, MaxPopular))
}

func TestBuildSuggestions(t *testing.T) {
	st := State{Query: "bo", Recent: []string{"cycle"}}
	s := BuildSuggestions(st, []string{"Misc", "Books", "Notebooks"})

	assert.Equal(t, []string{"cycle"}, s.Recent)
	assert.Equal(t, []string{"Misc", "Books", "Notebooks"}, s.Popular)
	assert.Equal(t, []string{"Books", "Notebooks"}, s.Matching)

	empty := BuildSuggestions(State{}, []string{"Misc"})
	assert.Empty(t, empty.Matching)
}
