// Package grouping turns the flat result list of the inference service into
// the head-indexed view shown to users.
package grouping

import (
	"slices"
	"strings"

	"github.com/mpilhlt/kogito-playground/internal/models"
)

// NotFound is the position of a head none of whose words occur in the
// reference tokens. It sorts before every real position.
const NotFound = -1

// Group buckets records by head and orders the buckets by the position at
// which the head first appears in tokens. Within a bucket the records keep
// their input order. Heads with no word in tokens come first, longer heads
// precede shorter ones at the same position, and the lower-cased head breaks
// remaining ties.
func Group(records []models.InferenceRecord, tokens []string) models.GroupedResult {
	grouped := models.GroupedResult{}
	index := map[string]int{}

	for _, r := range records {
		i, ok := index[r.Head]
		if !ok {
			i = len(grouped)
			index[r.Head] = i
			grouped = append(grouped, models.HeadGroup{Head: r.Head})
		}
		grouped[i].Entries = append(grouped[i].Entries, models.RelationEntry{Relation: r.Relation, Tails: r.Tails})
	}

	type sortKey struct {
		position int
		words    int
		lower    string
	}
	keys := make(map[string]sortKey, len(grouped))
	for _, g := range grouped {
		keys[g.Head] = sortKey{
			position: Position(g.Head, tokens),
			words:    -len(strings.Fields(g.Head)),
			lower:    strings.ToLower(g.Head),
		}
	}

	slices.SortStableFunc(grouped, func(a, b models.HeadGroup) int {
		ka, kb := keys[a.Head], keys[b.Head]
		if ka.position != kb.position {
			return ka.position - kb.position
		}
		if ka.words != kb.words {
			return ka.words - kb.words
		}
		return strings.Compare(ka.lower, kb.lower)
	})

	return grouped
}

// Position returns the smallest token index at which any word of head occurs,
// or NotFound. Only the first occurrence of a word counts.
func Position(head string, tokens []string) int {
	position := NotFound
	if len(tokens) == 0 {
		return position
	}
	for _, word := range strings.Fields(head) {
		i := slices.Index(tokens, strings.ToLower(word))
		if i == -1 {
			continue
		}
		if position == NotFound || i < position {
			position = i
		}
	}
	return position
}
