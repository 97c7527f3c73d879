// internal/app/features/requests/teach.go
package requests

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleTeachApply adds the actor as a candidate teacher.
// POST /api/requests/{id}/teach
func (h *Handler) HandleTeachApply(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.submit(w, r, id, actorID, lifecycle.TeachApply{})
}

// HandleTeachWithdraw removes the actor from the candidate teachers.
// POST /api/requests/{id}/withdraw
func (h *Handler) HandleTeachWithdraw(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.submit(w, r, id, actorID, lifecycle.TeachWithdraw{})
}

// selectTeacherRequest is the JSON body for teacher selection.
type selectTeacherRequest struct {
	TeacherID     string `json:"teacher_id"`
	DeadlineHours int    `json:"deadline_hours"`
}

// HandleSelectTeacher picks the instructor and opens the funding window.
// Creator only; the engine enforces that and the deadline option set.
// POST /api/requests/{id}/select-teacher
func (h *Handler) HandleSelectTeacher(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var body selectTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	teacherID, err := primitive.ObjectIDFromHex(body.TeacherID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid teacher ID.")
		return
	}

	h.submit(w, r, id, actorID, lifecycle.SelectTeacher{
		TeacherID:     teacherID,
		DeadlineHours: body.DeadlineHours,
	})
}
