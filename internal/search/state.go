package search

import "strings"

// MaxRecent bounds the recent-search list.
const MaxRecent = 5

// State is the search box state of one browser session.
// Searching is true whenever Query is non-empty or a search was triggered.
type State struct {
	Query     string   `json:"query"`
	Searching bool     `json:"searching"`
	Recent    []string `json:"recent,omitempty"`
}

// View is the read-only projection handed to screens that render results.
type View struct {
	Query     string `json:"query"`
	Searching bool   `json:"searching"`
}

// SetQuery replaces the query text, as typed.
func (s State) SetQuery(q string) State {
	s.Query = q
	s.Searching = q != ""
	return s
}

// Trigger marks an explicit search submission.
func (s State) Trigger() State {
	s.Searching = true
	return s
}

// Clear resets the query and the searching flag together.
func (s State) Clear() State {
	s.Query = ""
	s.Searching = false
	return s
}

// HandleKey applies a key press from the search box. Escape clears a non-empty query.
func (s State) HandleKey(key string) State {
	if key == "Escape" && s.Query != "" {
		return s.Clear()
	}
	return s
}

// SelectSuggestion searches for suggestion and records it as the most recent search.
func (s State) SelectSuggestion(suggestion string) State {
	s.Query = suggestion
	s.Searching = true
	s.Recent = pushRecent(s.Recent, suggestion)
	return s
}

// View returns the read-only projection of s.
func (s State) View() View {
	return View{Query: s.Query, Searching: s.Searching}
}

func pushRecent(recent []string, term string) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return recent
	}
	out := make([]string, 0, MaxRecent)
	out = append(out, term)
	for _, r := range recent {
		if r != term && len(out) < MaxRecent {
			out = append(out, r)
		}
	}
	return out
}
