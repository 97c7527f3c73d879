// internal/app/features/requests/payment.go
package requests

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/go-chi/chi/v5"
)

// payRequest is the JSON body for recording a payment. Amounts are exact
// cents; currency parsing and formatting happen upstream of this service.
type payRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// HandlePay records the actor's payment during the funding window.
// POST /api/requests/{id}/pay
func (h *Handler) HandlePay(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := requestID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var body payRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	h.submit(w, r, id, actorID, lifecycle.RecordPayment{
		UserID:      actorID,
		AmountCents: body.AmountCents,
	})
}
