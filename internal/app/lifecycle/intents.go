// internal/app/lifecycle/intents.go
package lifecycle

import (
	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Intent kinds produced by the engine. They name what happened, not how
// it is delivered; the notification sink decides presentation.
const (
	IntentVotingOpened    = "request.voting_open"
	IntentTeacherApplied  = "request.teacher_applied"
	IntentBackToVoting    = "request.back_to_voting"
	IntentFundingOpened   = "request.funding_open"
	IntentPaymentReceived = "request.payment_received"
	IntentPaymentComplete = "request.payment_complete"
	IntentPaymentExpired  = "request.payment_expired"
	IntentSessionStarting = "request.session_starting"
	IntentSessionStarted  = "request.session_started"
	IntentCompleted       = "request.completed"
	IntentCancelled       = "request.cancelled"
)

// Intent is a side-effect the caller should attempt after the winning
// write commits. Delivery is best-effort and never affects correctness.
type Intent struct {
	Kind       string
	Recipients []primitive.ObjectID
	Payload    map[string]string
}

// audience returns everyone with a stake in the request: creator,
// participants, and candidate teachers, de-duplicated.
func audience(r *models.GroupRequest) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(r.Participants)+len(r.Teachers)+1)
	var out []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	add(r.CreatorID)
	for _, id := range r.Participants {
		add(id)
	}
	for _, id := range r.Teachers {
		add(id)
	}
	return out
}
