package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hotlist/hotlist/internal/api"
	"github.com/hotlist/hotlist/internal/store"
)

const (
	writeWait   = 10 * time.Second
	idleTimeout = 60 * time.Second
	pingEvery   = idleTimeout * 9 / 10 // must stay below idleTimeout
	queueDepth  = 4
	maxInbound  = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event      string              `json:"event"`
	SnapshotID string              `json:"snapshot_id,omitempty"`
	Data       api.HotListResponse `json:"data"`
}

// Hub tracks connected clients and fans out new snapshots to them.
type Hub struct {
	store    *store.Store
	interval time.Duration

	mu    sync.RWMutex
	peers map[*peer]struct{}
	seen  *store.Snapshot // owned by Run
}

// peer is one subscribed connection and its outbound queue.
type peer struct {
	conn  *websocket.Conn
	queue chan []byte
}

// New returns a Hub over st that looks for a new snapshot every interval.
func New(st *store.Store, interval time.Duration) *Hub {
	return &Hub{
		store:    st,
		interval: interval,
		peers:    make(map[*peer]struct{}),
		seen:     st.Read(),
	}
}

// Run polls the store until ctx is cancelled and then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	tick := time.NewTicker(h.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			h.dropAll()
			return
		case <-tick.C:
			if snap := h.store.Read(); snap != h.seen {
				h.seen = snap
				h.fanOut(snap)
			}
		}
	}
}

// ServeHTTP upgrades the request, queues the current hot list and serves the
// connection until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	p := &peer{conn: conn, queue: make(chan []byte, queueDepth)}
	h.add(p)
	defer h.remove(p)

	if frame, err := encode(h.store.Read()); err == nil {
		h.enqueue(p, frame)
	}

	go p.send()
	p.receive()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	h.mu.Unlock()
}

// remove forgets p and closes its queue. Safe to call more than once.
func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(p)
}

// detach requires h.mu held.
func (h *Hub) detach(p *peer) {
	if _, ok := h.peers[p]; ok {
		delete(h.peers, p)
		close(p.queue)
	}
}

func (h *Hub) fanOut(snap *store.Snapshot) {
	frame, err := encode(snap)
	if err != nil {
		return
	}

	h.mu.RLock()
	targets := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		targets = append(targets, p)
	}
	h.mu.RUnlock()

	for _, p := range targets {
		h.enqueue(p, frame)
	}
}

// enqueue hands frame to p, or disconnects p if its queue is full.
func (h *Hub) enqueue(p *peer, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p]; !ok {
		return
	}
	select {
	case p.queue <- frame:
	default:
		h.detach(p)
	}
}

func (h *Hub) dropAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		h.detach(p)
	}
}

func encode(snap *store.Snapshot) ([]byte, error) {
	return json.Marshal(Message{
		Event:      "hot_list",
		SnapshotID: snap.ID,
		Data:       api.BuildHotList(snap, time.Now()),
	})
}

// send writes queued frames and keepalive pings. A closed queue ends the
// connection with a close frame.
func (p *peer) send() {
	ping := time.NewTicker(pingEvery)
	defer ping.Stop()
	defer p.conn.Close()

	for {
		var (
			kind    = websocket.PingMessage
			payload []byte
		)
		select {
		case frame, open := <-p.queue:
			if !open {
				p.write(websocket.CloseMessage, nil) //nolint:errcheck
				return
			}
			kind, payload = websocket.TextMessage, frame
		case <-ping.C:
		}
		if err := p.write(kind, payload); err != nil {
			return
		}
	}
}

func (p *peer) write(kind int, payload []byte) error {
	p.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	return p.conn.WriteMessage(kind, payload)
}

// receive discards inbound frames; it only exists to process pongs and
// notice the client leaving.
func (p *peer) receive() {
	defer p.conn.Close()
	p.conn.SetReadLimit(maxInbound)
	p.conn.SetReadDeadline(time.Now().Add(idleTimeout)) //nolint:errcheck
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})
	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			return
		}
	}
}
