// Package types defines the event types shared by the fetcher, the ranking
// engine, the snapshot store and the read API.
//
// RawEvent is the untrusted upstream record as decoded from the `articles`
// array. ScoredEvent is the derived, immutable record exposed to readers.
package types
