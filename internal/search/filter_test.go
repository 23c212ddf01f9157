package search

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/collex/internal/models"
)

func listing(id, title, category, location, owner string) *models.Listing {
	return &models.Listing{ID: id, Title: title, Category: category, Location: location, OwnerName: owner}
}

func sampleListings() []*models.Listing {
	return []*models.Listing{
		listing("1", "Desk Lamp", "Misc", "Hostel H4", "Asha"),
		listing("2", "Cycle", "Vehicles", "Main Gate", "Ravi"),
		listing("3", "Physics Notes", "Books", "Library", "Lampwala"),
		listing("4", "Kettle", "", "", ""),
	}
}

func ids(ls []*models.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func TestFilter_BlankQueryIsIdentity(t *testing.T) {
	in := sampleListings()
	for _, q := range []string{"", "   ", "\t\n"} {
		out := Filter(in, q)
		require.Len(t, out, len(in))
		for i := range in {
			assert.Same(t, in[i], out[i])
		}
	}
}

func TestFilter_MatchesAnyField(t *testing.T) {
	in := sampleListings()

	tests := []struct {
		query string
		want  []string
	}{
		{"lamp", []string{"1", "3"}}, // title and owner name
		{"BOOKS", []string{"3"}},     // category, case-insensitive
		{"gate", []string{"2"}},      // location
		{"ravi", []string{"2"}},      // owner name
		{"  kettle ", []string{"4"}}, // trimmed
		{"piano", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ids(Filter(in, tt.query)), tt.query)
	}
}

func TestFilter_EmptyOptionalFieldsNeverMatch(t *testing.T) {
	in := []*models.Listing{listing("x", "Kettle", "", "", ""), nil}
	assert.Empty(t, Filter(in, "h"))
}

// Every kept listing matches in some field; every dropped listing matches none.
func TestFilter_Soundness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"lamp", "Desk", "cycle", "H4", "notes", "Misc", "asha", "gate", ""}
	pick := func() string { return words[rng.Intn(len(words))] }

	for round := 0; round < 200; round++ {
		var in []*models.Listing
		for i := 0; i < rng.Intn(12); i++ {
			in = append(in, listing(fmt.Sprint(i), pick()+" "+pick(), pick(), pick(), pick()))
		}
		q := pick()
		out := Filter(in, q)

		kept := make(map[*models.Listing]bool)
		for _, l := range out {
			kept[l] = true
		}
		lq := strings.ToLower(strings.TrimSpace(q))
		for _, l := range in {
			fields := strings.ToLower(strings.Join([]string{l.Title, l.Category, l.Location, l.OwnerName}, "\x00"))
			anyField := lq == "" || strings.Contains(fields, lq)
			assert.Equal(t, anyField, kept[l], "round %d query %q listing %+v", round, q, l)
		}

		// order preserved
		j := 0
		for _, l := range in {
			if j < len(out) && out[j] == l {
				j++
			}
		}
		assert.Equal(t, len(out), j)
	}
}
