package types

import "encoding/json"

// RawEvent is one element of the upstream `articles` array.
// Every field is optional; the ranking engine decides what is usable.
type RawEvent struct {
	Title   *string `json:"group_title"`
	Summary *string `json:"group_summary"`

	// Importance is kept raw so the ranking engine can accept both JSON
	// numbers and numeric strings. Nil when the field is absent.
	Importance json.RawMessage `json:"importance"`

	// EarliestPublished is formatted "YYYY-MM-DD HH:MM:SS <weekday>" in UTC.
	EarliestPublished *string `json:"earliest_published"`
}

// ScoredEvent is one ranked entry of a snapshot. It is never mutated after
// the ranking engine creates it.
type ScoredEvent struct {
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	PublishedAt string  `json:"published_at"` // upstream string, verbatim
	Score       float64 `json:"score"`
}
