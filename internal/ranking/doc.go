// Package ranking turns raw upstream events into a ranked hot list.
//
// score.go provides the pure decay formula:
//
//	score = importance / (age_hours + 2) ^ gravity
//
// with negative ages clamped to zero, plus the timestamp and importance
// parsers.
//
// ranker.go provides Ranker, which scores a batch, drops malformed events
// one by one, sorts by score descending (stable on ties) and truncates to
// the configured cap. Ranker.now is injectable so tests are deterministic.
package ranking
