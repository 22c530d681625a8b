// Package fetcher retrieves raw events from the upstream HTTP source.
//
// Client.Fetch issues one GET per call and never returns an error or panics
// to its caller: every failure becomes a Result with Err set and no events,
// which the scheduler treats as "skip this cycle". A body without an
// `articles` field is a successful result with no events; the scheduler
// skips those cycles as well.
//
// Authentication (API key, bearer token, basic) is injected by the
// authRoundTripper in transport.go; requests go through a resty client
// built on top of that transport.
package fetcher
