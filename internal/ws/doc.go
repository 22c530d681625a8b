// Package ws pushes the hot list to WebSocket clients at /ws/hot-list.
//
// A client gets the current hot list as soon as it connects. After that the
// hub checks the store every interval and broadcasts only when the scheduler
// has published a new snapshot, so idle periods send nothing but pings.
//
// Each message wraps the GET /api/hot-list payload:
//
//	{
//	  "event":       "hot_list",
//	  "snapshot_id": "<cycle uuid>",
//	  "data":        { "retrieved_at_utc": ..., "item_count": ..., "data": [...] }
//	}
//
// A client whose send buffer is full is disconnected rather than slowing
// the broadcast for the others. Origins are not checked here.
package ws
