package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hotlist/hotlist/internal/config"
	"github.com/hotlist/hotlist/pkg/types"
)

// Result is the outcome of one fetch.
//
// Err != nil means the upstream could not be used this cycle and Events is
// empty. Err == nil means Events is the authoritative upstream list, which
// may legitimately be empty.
type Result struct {
	Events    []types.RawEvent
	FetchedAt time.Time
	Duration  time.Duration

	// Dropped counts `articles` elements that were not decodable objects.
	Dropped int

	Err error
}

// OK reports whether the fetch produced a usable event list.
func (r Result) OK() bool { return r.Err == nil }

// Client fetches the event list from one upstream URL.
type Client struct {
	url  string
	http *resty.Client
	now  func() time.Time
}

// New returns a Client for the given upstream configuration.
// The underlying HTTP client is built once and reused across fetches.
func New(cfg config.UpstreamConfig) *Client {
	rc := resty.NewWithClient(buildHTTPClient(cfg)).
		SetHeader("Accept", "application/json")
	return &Client{url: cfg.URL, http: rc, now: time.Now}
}

// envelope is the upstream body. Articles stays raw so that one bad element
// does not fail the whole decode.
type envelope struct {
	Articles *[]json.RawMessage `json:"articles"`
}

// Fetch performs one GET against the upstream and decodes the event list.
func (c *Client) Fetch(ctx context.Context) (res Result) {
	start := c.now()
	res.FetchedAt = start.UTC()
	defer func() {
		if r := recover(); r != nil {
			res = Result{FetchedAt: res.FetchedAt, Err: fmt.Errorf("fetch: unexpected panic: %v", r)}
			slog.Error("fetcher: unexpected failure", "url", c.url, "err", res.Err)
		}
		res.Duration = c.now().Sub(start)
	}()

	resp, err := c.http.R().SetContext(ctx).Get(c.url)
	if err != nil {
		res.Err = fmt.Errorf("fetch: http get: %w", err)
		slog.Error("fetcher: upstream request failed", "url", c.url, "err", err)
		return res
	}
	if !resp.IsSuccess() {
		res.Err = fmt.Errorf("fetch: unexpected status %d", resp.StatusCode())
		slog.Error("fetcher: upstream returned error status",
			"url", c.url, "status", resp.StatusCode())
		return res
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		res.Err = fmt.Errorf("fetch: decode body: %w", err)
		slog.Error("fetcher: upstream body is not valid JSON", "url", c.url, "err", err)
		return res
	}
	if env.Articles == nil {
		slog.Warn("fetcher: upstream response has no articles field, treating as empty", "url", c.url)
		return res
	}

	res.Events, res.Dropped = decodeEvents(*env.Articles)
	slog.Debug("fetcher: fetched events",
		"url", c.url, "events", len(res.Events), "dropped", res.Dropped)
	return res
}

// decodeEvents decodes each article independently and returns the usable
// ones together with the number that could not be decoded.
func decodeEvents(raw []json.RawMessage) ([]types.RawEvent, int) {
	events := make([]types.RawEvent, 0, len(raw))
	var dropped int
	for i, msg := range raw {
		var ev types.RawEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			dropped++
			slog.Warn("fetcher: dropping undecodable article", "index", i, "err", err)
			continue
		}
		events = append(events, ev)
	}
	return events, dropped
}
