// Package resolve turns user-typed area names into area IDs.
package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mottu/mottu-cli/internal/api"
)

// Named represents any resource with an ID and display name.
type Named struct {
	ID   int
	Name string
}

// Match is a fuzzy match result with score.
type Match struct {
	ID    int
	Name  string
	Score int
}

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrEmptyItems = errors.New("no items to match against")
)

// AmbiguousError indicates multiple candidates matched equally well.
type AmbiguousError struct {
	Query   string
	Matches []Match
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "ambiguous match for %q", e.Query)
	if len(e.Matches) > 0 {
		b.WriteString(", candidates:")
		for _, m := range e.Matches {
			_, _ = fmt.Fprintf(&b, "\n  %d: %s", m.ID, m.Name)
		}
	}
	return b.String()
}

type lowerNames []Named

func (s lowerNames) String(i int) string { return strings.ToLower(s[i].Name) }
func (s lowerNames) Len() int            { return len(s) }

// FuzzyMatch finds the best matching item by name and returns its ID.
// An exact case-insensitive name wins outright; a tie between the two best
// fuzzy scores is an *AmbiguousError.
func FuzzyMatch(query string, items []Named) (int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, ErrEmptyQuery
	}
	if len(items) == 0 {
		return 0, ErrEmptyItems
	}

	for _, item := range items {
		if strings.EqualFold(item.Name, query) {
			return item.ID, nil
		}
	}

	results := fuzzy.FindFrom(strings.ToLower(query), lowerNames(items))
	if len(results) == 0 {
		return 0, fmt.Errorf("no match found for %q", query)
	}
	if len(results) > 1 && results[0].Score == results[1].Score {
		return 0, &AmbiguousError{Query: query, Matches: topMatches(items, results, 5)}
	}
	return items[results[0].Index].ID, nil
}

func topMatches(items []Named, results fuzzy.Matches, limit int) []Match {
	if len(results) > limit {
		results = results[:limit]
	}
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{ID: items[r.Index].ID, Name: items[r.Index].Name, Score: r.Score}
	}
	return matches
}

// AreaNames adapts areas for FuzzyMatch.
func AreaNames(areas []api.Area) []Named {
	named := make([]Named, len(areas))
	for i, a := range areas {
		named[i] = Named{ID: a.ID, Name: a.Nome}
	}
	return named
}

// IsID reports whether ref is a plain positive integer.
func IsID(ref string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(ref))
	return err == nil && n > 0
}

// Area resolves ref, either a numeric ID or an area name, against areas.
// Numeric refs are returned as is without consulting the list.
func Area(ref string, areas []api.Area) (int, error) {
	if IsID(ref) {
		n, _ := strconv.Atoi(strings.TrimSpace(ref))
		return n, nil
	}
	id, err := FuzzyMatch(ref, AreaNames(areas))
	if err != nil {
		return 0, fmt.Errorf("resolve area: %w", err)
	}
	return id, nil
}
