package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hotlist/hotlist/internal/store"
	"github.com/hotlist/hotlist/pkg/types"
)

// Handler is the HTTP handler for the read API.
type Handler struct {
	store *store.Store
	mux   *http.ServeMux
	now   func() time.Time
}

// New creates a Handler wired to the given snapshot store and registers all routes.
func New(st *store.Store) http.Handler {
	h := &Handler{store: st, mux: http.NewServeMux(), now: time.Now}

	h.mux.HandleFunc("/", h.root)
	h.mux.HandleFunc("/api/hot-list", h.hotList)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// root serves GET / as a liveness probe. The store is not consulted.
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// hotList serves GET /api/hot-list from the current snapshot.
func (h *Handler) hotList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildHotList(h.store.Read(), h.now()))
}

// BuildHotList renders snap as the hot-list payload, stamped with now.
// Data is never nil so it always encodes as a JSON array.
func BuildHotList(snap *store.Snapshot, now time.Time) HotListResponse {
	data := snap.Items
	if data == nil {
		data = []types.ScoredEvent{}
	}
	return HotListResponse{
		RetrievedAtUTC: now.UTC().Format(time.RFC3339),
		ItemCount:      len(data),
		Data:           data,
	}
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
