package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hotlist/hotlist/pkg/types"
)

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func items(prefix string, n int) []types.ScoredEvent {
	out := make([]types.ScoredEvent, n)
	for i := range out {
		out[i] = types.ScoredEvent{Title: fmt.Sprintf("%s-%d", prefix, i), Score: float64(n - i)}
	}
	return out
}

func TestRead_InitialSnapshotEmpty(t *testing.T) {
	st := New()
	snap := st.Read()
	if snap == nil {
		t.Fatal("Read on new store returned nil")
	}
	if snap.Len() != 0 {
		t.Errorf("Len = %d, want 0", snap.Len())
	}
	if snap.Items == nil {
		t.Error("initial Items is nil, want empty slice")
	}
	if !snap.PublishedAt.IsZero() {
		t.Errorf("PublishedAt = %v, want zero", snap.PublishedAt)
	}
}

func TestPublishAndRead(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st := New()
	st.now = fixedClock(base)

	st.Publish("cycle-1", items("a", 3))

	snap := st.Read()
	if snap.ID != "cycle-1" {
		t.Errorf("ID = %q, want cycle-1", snap.ID)
	}
	if snap.Len() != 3 {
		t.Errorf("Len = %d, want 3", snap.Len())
	}
	if !snap.PublishedAt.Equal(base) {
		t.Errorf("PublishedAt = %v, want %v", snap.PublishedAt, base)
	}
}

func TestPublish_Replaces(t *testing.T) {
	st := New()
	st.Publish("one", items("a", 5))
	st.Publish("two", items("b", 2))

	snap := st.Read()
	if snap.ID != "two" || snap.Len() != 2 {
		t.Fatalf("Read = %q/%d, want two/2", snap.ID, snap.Len())
	}
	if snap.Items[0].Title != "b-0" {
		t.Errorf("Items[0] = %q, want b-0", snap.Items[0].Title)
	}
}

func TestPublish_CopiesItems(t *testing.T) {
	st := New()
	src := items("a", 2)
	st.Publish("one", src)

	src[0].Title = "mutated"
	if got := st.Read().Items[0].Title; got != "a-0" {
		t.Errorf("published item changed through caller slice: %q", got)
	}
}

func TestRead_OldSnapshotUnaffectedByPublish(t *testing.T) {
	st := New()
	st.Publish("one", items("a", 4))
	held := st.Read()

	st.Publish("two", items("b", 1))

	if held.ID != "one" || held.Len() != 4 || held.Items[0].Title != "a-0" {
		t.Errorf("held snapshot changed: %q/%d", held.ID, held.Len())
	}
}

// TestConcurrentReadIsolation checks that a reader always sees a snapshot
// whose items all come from the same publish.
func TestConcurrentReadIsolation(t *testing.T) {
	st := New()
	const publishes = 200

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := st.Read()
				if snap.Len() == 0 {
					continue
				}
				prefix := snap.ID
				for _, it := range snap.Items {
					if it.Title[:len(prefix)] != prefix {
						t.Errorf("mixed snapshot: id %q contains %q", prefix, it.Title)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < publishes; i++ {
		id := fmt.Sprintf("p%03d", i)
		st.Publish(id, items(id, 1+i%50))
	}
	close(stop)
	wg.Wait()

	if got := st.Read().ID; got != fmt.Sprintf("p%03d", publishes-1) {
		t.Errorf("final ID = %q", got)
	}
}

func TestConcurrentPublishes(t *testing.T) {
	st := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			st.Publish(fmt.Sprintf("w%d", n), items("x", 10))
		}(i)
	}
	wg.Wait()

	if st.Read().Len() != 10 {
		t.Errorf("Len after concurrent publishes = %d, want 10", st.Read().Len())
	}
}
