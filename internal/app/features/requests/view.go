// internal/app/features/requests/view.go
package requests

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/sessionhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleView returns the current snapshot of one request.
// GET /api/requests/{id}
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	req, err := h.Reader.Get(ctx, id)
	if err == mongo.ErrNoDocuments {
		writeError(w, http.StatusNotFound, "Request not found.")
		return
	}
	if err != nil {
		h.Log.Error("load request failed", zap.String("request_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(req, time.Now().UTC()))
}

// HandleListByGroup returns a group's requests, newest first.
// GET /api/requests/group/{gid}
func (h *Handler) HandleListByGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	gid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "gid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reqs, err := h.Reader.ListByGroup(ctx, gid)
	if err != nil {
		h.Log.Error("list group requests failed", zap.String("group_id", gid.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}

	now := time.Now().UTC()
	views := make([]RequestView, 0, len(reqs))
	for _, req := range reqs {
		views = append(views, viewOf(req, now))
	}
	writeJSON(w, http.StatusOK, views)
}
