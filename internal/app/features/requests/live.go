// internal/app/features/requests/live.go
package requests

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/sessionhub/internal/app/system/timeouts"
	"github.com/dalemusser/sessionhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RequestWatcher is implemented by stores that can push fresh snapshots
// of one request. The HTTP layer treats it as optional: without it the
// live endpoint is unavailable and clients poll instead.
type RequestWatcher interface {
	Watch(ctx context.Context, id primitive.ObjectID, fn func(models.GroupRequest)) (func(), error)
}

// HandleLive streams request snapshots as server-sent events. The first
// event is the current state; each accepted write pushes the next one.
// Views delivered here are eventually consistent; the stored document is
// the only truth, and countdowns are recomputed per event.
// GET /api/requests/{id}/live
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	watcher, ok := h.Reader.(RequestWatcher)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Live updates are not available.")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Streaming is not supported.")
		return
	}

	loadCtx, cancelLoad := context.WithTimeout(r.Context(), timeouts.Short())
	snap, err := h.Reader.Get(loadCtx, id)
	cancelLoad()
	if err == mongo.ErrNoDocuments {
		writeError(w, http.StatusNotFound, "Request not found.")
		return
	}
	if err != nil {
		h.Log.Error("load request failed", zap.String("request_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}

	snapshots := make(chan models.GroupRequest, 8)
	unsubscribe, err := watcher.Watch(r.Context(), id, func(req models.GroupRequest) {
		select {
		case snapshots <- req:
		default:
			// A slow consumer drops intermediate snapshots; the next
			// event carries the full current state anyway.
		}
	})
	if err != nil {
		h.Log.Warn("request watch unavailable", zap.String("request_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Live updates are temporarily unavailable.")
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent(w, snap)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case req := <-snapshots:
			writeEvent(w, req)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, req models.GroupRequest) {
	buf, err := json.Marshal(viewOf(req, time.Now().UTC()))
	if err != nil {
		return
	}
	w.Write([]byte("data: "))
	w.Write(buf)
	w.Write([]byte("\n\n"))
}
