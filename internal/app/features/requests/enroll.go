// internal/app/features/requests/enroll.go
package requests

import (
	"net/http"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/go-chi/chi/v5"
)

// HandleJoin enrolls the actor as a participant.
// POST /api/requests/{id}/join
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.submit(w, r, id, actorID, lifecycle.Join{})
}

// HandleLeave removes the actor from the participants.
// POST /api/requests/{id}/leave
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.submit(w, r, id, actorID, lifecycle.Leave{})
}
