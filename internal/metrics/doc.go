// Package metrics exposes the refresh pipeline's Prometheus collectors.
//
// New(registry) registers, under the "hotlist" namespace:
//
//	cycles_total{outcome}            published | skipped
//	fetch_duration_seconds           histogram of upstream round trips
//	fetch_failures_total             fetches that ended in an error
//	events_skipped_total             undecodable or malformed events
//	snapshot_items                   size of the live snapshot
//	last_publish_timestamp_seconds   unix time of the last publish
//
// All recording methods accept a nil *Metrics and do nothing, so callers
// and tests can run without a registry.
//
// Handler serves the registry for scraping. Dump and Totals read any
// prometheus.Gatherer back through client_model families for shutdown
// logging.
package metrics
