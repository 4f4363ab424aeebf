package models

// RelationEntry is one relation of a head together with its tails.
type RelationEntry struct {
	Relation string   `json:"relation" doc:"Relation"`
	Tails    []string `json:"tails" doc:"Generated tails"`
}

// HeadGroup bundles all relation entries of one head.
type HeadGroup struct {
	Head    string          `json:"head" doc:"Head phrase"`
	Entries []RelationEntry `json:"entries" doc:"Relation entries in the order they were returned"`
}

// GroupedResult is the display-ordered view of a result list. It is derived
// from the records on every read and never stored.
type GroupedResult []HeadGroup

// Count returns the number of relation entries over all groups.
func (g GroupedResult) Count() int {
	n := 0
	for _, h := range g {
		n += len(h.Entries)
	}
	return n
}

// Heads returns the heads in display order.
func (g GroupedResult) Heads() []string {
	heads := make([]string, 0, len(g))
	for _, h := range g {
		heads = append(heads, h.Head)
	}
	return heads
}
