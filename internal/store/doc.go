// Package store holds the process-wide ranked snapshot.
//
// The store is a single slot: Publish replaces the whole Snapshot value
// atomically and Read returns whichever complete value is current. Readers
// never take a lock and never wait on a publisher; publishers are serialised
// so at most one replacement is in flight.
package store
