// internal/app/features/requests/cancel.go
package requests

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/dalemusser/sessionhub/internal/app/system/htmlsanitize"
	"github.com/go-chi/chi/v5"
)

// cancelRequest is the JSON body for cancellation.
type cancelRequest struct {
	Reason string `json:"reason"`
}

// HandleCancel closes the request permanently. The reason is free text
// from the creator and is sanitized before it is stored.
// POST /api/requests/{id}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var body cancelRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body) // reason is optional
	}
	reason := htmlsanitize.Sanitize(strings.TrimSpace(body.Reason))

	h.submit(w, r, id, actorID, lifecycle.Cancel{Reason: reason})
}

// HandleComplete closes out a running session.
// POST /api/requests/{id}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.submit(w, r, id, actorID, lifecycle.AdvanceToCompleted{})
}
