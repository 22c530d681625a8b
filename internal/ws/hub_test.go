package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hotlist/hotlist/internal/store"
	"github.com/hotlist/hotlist/internal/ws"
	"github.com/hotlist/hotlist/pkg/types"
)

const testInterval = 20 * time.Millisecond

// --- helpers ----------------------------------------------------------------

func scored(titles ...string) []types.ScoredEvent {
	out := make([]types.ScoredEvent, len(titles))
	for i, title := range titles {
		out[i] = types.ScoredEvent{Title: title, PublishedAt: "2025-06-18 09:00:00 Wed", Score: float64(len(titles) - i)}
	}
	return out
}

// startHub starts a test HTTP server with the hub as its handler and runs
// the hub loop until the test ends. Returns the ws:// URL and the hub.
func startHub(t *testing.T, st *store.Store) (string, *ws.Hub) {
	t.Helper()

	hub := ws.New(st, testInterval)
	ctx, cancel := context.WithCancel(context.Background())

	srv := httptest.NewServer(hub)
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http"), hub
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads and decodes one message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var msg ws.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return msg
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// --- tests --------------------------------------------------------------------

func TestHub_SendsCurrentListOnConnect(t *testing.T) {
	st := store.New()
	st.Publish("cycle-1", scored("a", "b"))
	wsURL, _ := startHub(t, st)

	msg := readMessage(t, dial(t, wsURL))
	if msg.Event != "hot_list" {
		t.Errorf("Event = %q, want hot_list", msg.Event)
	}
	if msg.SnapshotID != "cycle-1" {
		t.Errorf("SnapshotID = %q, want cycle-1", msg.SnapshotID)
	}
	if msg.Data.ItemCount != 2 || msg.Data.Data[0].Title != "a" {
		t.Errorf("Data = %+v", msg.Data)
	}
}

func TestHub_EmptyStoreOnConnect(t *testing.T) {
	wsURL, _ := startHub(t, store.New())

	msg := readMessage(t, dial(t, wsURL))
	if msg.Data.ItemCount != 0 || msg.Data.Data == nil {
		t.Errorf("Data = %+v, want empty list", msg.Data)
	}
}

func TestHub_BroadcastsOnPublish(t *testing.T) {
	st := store.New()
	wsURL, hub := startHub(t, st)

	conn := dial(t, wsURL)
	readMessage(t, conn) // initial
	waitFor(t, func() bool { return hub.Count() == 1 })

	st.Publish("cycle-2", scored("fresh"))

	msg := readMessage(t, conn)
	if msg.SnapshotID != "cycle-2" || msg.Data.ItemCount != 1 {
		t.Errorf("broadcast = %+v", msg)
	}
}

func TestHub_NoBroadcastWithoutPublish(t *testing.T) {
	st := store.New()
	wsURL, _ := startHub(t, st)

	conn := dial(t, wsURL)
	readMessage(t, conn) // initial

	conn.SetReadDeadline(time.Now().Add(5 * testInterval)) //nolint:errcheck
	if _, raw, err := conn.ReadMessage(); err == nil {
		t.Errorf("unexpected message without a new snapshot: %s", raw)
	}
}

func TestHub_MultipleClients(t *testing.T) {
	st := store.New()
	wsURL, hub := startHub(t, st)

	c1, c2 := dial(t, wsURL), dial(t, wsURL)
	readMessage(t, c1)
	readMessage(t, c2)
	waitFor(t, func() bool { return hub.Count() == 2 })

	st.Publish("cycle-3", scored("x", "y", "z"))

	for _, c := range []*websocket.Conn{c1, c2} {
		if msg := readMessage(t, c); msg.SnapshotID != "cycle-3" {
			t.Errorf("SnapshotID = %q, want cycle-3", msg.SnapshotID)
		}
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	wsURL, hub := startHub(t, store.New())

	conn := dial(t, wsURL)
	readMessage(t, conn)
	waitFor(t, func() bool { return hub.Count() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.Count() == 0 })
}

func TestHub_RejectsPlainHTTP(t *testing.T) {
	hub := ws.New(store.New(), testInterval)
	rr := httptest.NewRecorder()
	hub.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws/hot-list", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}
