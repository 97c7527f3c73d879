// internal/app/features/requests/respond.go
package requests

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/dalemusser/sessionhub/internal/app/system/timeouts"
	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RequestReader is the read-side slice of the request store the feature
// needs for views.
type RequestReader interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.GroupRequest, error)
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupRequest, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// submit runs one lifecycle event through the runner and writes either
// the fresh request view or the mapped error. Conflicts are already
// retried inside the runner; one surfacing here means the retry budget
// was exhausted under sustained contention.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request, id, actorID primitive.ObjectID, ev lifecycle.Event) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	req, err := h.Runner.Submit(ctx, id, actorID, ev)
	if err != nil {
		h.writeLifecycleError(w, r, ev, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(req, time.Now().UTC()))
}

func (h *Handler) writeLifecycleError(w http.ResponseWriter, r *http.Request, ev lifecycle.Event, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lifecycle.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, lifecycle.ErrNotAMember):
		writeError(w, http.StatusForbidden, "You are not a member of this group.")
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "That action is not available in the request's current state.")
	case errors.Is(err, lifecycle.ErrTerminal):
		writeError(w, http.StatusGone, "This request is closed.")
	case errors.Is(err, lifecycle.ErrConflict):
		writeError(w, http.StatusConflict, "The request is being updated by others; please try again.")
	case errors.Is(err, mongo.ErrNoDocuments):
		writeError(w, http.StatusNotFound, "Request not found.")
	default:
		h.Log.Error("lifecycle submit failed",
			zap.String("event", ev.Kind()),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "A server error occurred.")
	}
}
