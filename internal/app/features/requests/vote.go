// internal/app/features/requests/vote.go
package requests

import (
	"net/http"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/go-chi/chi/v5"
)

// HandleVote casts the actor's vote on a pending request.
// POST /api/requests/{id}/vote
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.submit(w, r, id, actorID, lifecycle.CastVote{})
}

// HandleUnvote withdraws the actor's vote.
// POST /api/requests/{id}/unvote
func (h *Handler) HandleUnvote(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.submit(w, r, id, actorID, lifecycle.Unvote{})
}
