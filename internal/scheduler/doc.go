// Package scheduler drives the fetch → rank → publish pipeline.
//
// Run executes one cycle immediately and then one cycle per interval until
// its context is cancelled. Each cycle either publishes a new snapshot or is
// skipped with a logged cause; nothing that happens inside a cycle, panics
// included, stops the loop.
//
// A fetch failure or a fetch that yields no events leaves the previously
// published snapshot in place. A panic after the snapshot was published
// still reports the cycle as published.
package scheduler
