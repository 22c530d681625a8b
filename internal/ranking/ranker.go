package ranking

import (
	"log/slog"
	"sort"
	"time"

	"github.com/hotlist/hotlist/pkg/types"
)

// Default tuning, matching config defaults.
const (
	DefaultGravity  = 1.8
	DefaultMaxItems = 50
)

// Stats summarises one Rank call.
type Stats struct {
	Input   int // events received
	Scored  int // events that produced a score
	Skipped int // malformed events dropped
	Kept    int // events left after truncation
}

// Ranker scores, sorts and truncates event batches.
//
// A Ranker holds no per-batch state; Rank is safe for concurrent use.
type Ranker struct {
	gravity  float64
	maxItems int
	now      func() time.Time // injectable for deterministic tests
}

// New returns a Ranker. Non-positive arguments fall back to the defaults.
func New(gravity float64, maxItems int) *Ranker {
	if gravity <= 0 {
		gravity = DefaultGravity
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Ranker{gravity: gravity, maxItems: maxItems, now: time.Now}
}

// Rank scores every usable event, sorts by score descending (original order
// on ties) and keeps at most maxItems. A malformed event is logged and
// skipped; it never fails the batch. The returned slice is never nil.
func (r *Ranker) Rank(events []types.RawEvent) ([]types.ScoredEvent, Stats) {
	stats := Stats{Input: len(events)}
	out := make([]types.ScoredEvent, 0, len(events))

	if len(events) == 0 {
		slog.Info("ranking: no events to rank")
		return out, stats
	}

	now := r.now().UTC()
	for i, ev := range events {
		scored, err := r.scoreEvent(ev, now)
		if err != nil {
			stats.Skipped++
			slog.Warn("ranking: skipping malformed event",
				"index", i, "title", deref(ev.Title), "err", err)
			continue
		}
		out = append(out, scored)
	}
	stats.Scored = len(out)

	if len(out) == 0 {
		slog.Warn("ranking: all events malformed, ranking is empty", "input", stats.Input)
		return out, stats
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > r.maxItems {
		out = out[:r.maxItems]
	}
	stats.Kept = len(out)
	return out, stats
}

// scoreEvent builds the ScoredEvent for one raw event.
func (r *Ranker) scoreEvent(ev types.RawEvent, now time.Time) (types.ScoredEvent, error) {
	importance, err := ParseImportance(ev.Importance)
	if err != nil {
		return types.ScoredEvent{}, err
	}
	if ev.EarliestPublished == nil {
		return types.ScoredEvent{}, errNoTimestamp
	}
	published, err := ParsePublished(*ev.EarliestPublished)
	if err != nil {
		return types.ScoredEvent{}, err
	}

	return types.ScoredEvent{
		Title:       deref(ev.Title),
		Summary:     deref(ev.Summary),
		PublishedAt: *ev.EarliestPublished,
		Score:       Score(importance, AgeHours(published, now), r.gravity),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
