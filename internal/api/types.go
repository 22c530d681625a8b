package api

import "github.com/hotlist/hotlist/pkg/types"

// HotListResponse is the payload for GET /api/hot-list.
type HotListResponse struct {
	RetrievedAtUTC string              `json:"retrieved_at_utc"` // RFC3339, time of the request
	ItemCount      int                 `json:"item_count"`
	Data           []types.ScoredEvent `json:"data"`
}

// StatusResponse is the payload for GET /.
type StatusResponse struct {
	Status string `json:"status"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
