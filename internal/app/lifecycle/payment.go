// internal/app/lifecycle/payment.go
package lifecycle

import (
	"fmt"
	"time"

	"github.com/dalemusser/sessionhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment subsystem: recording payments during the funding window,
// the completion and expiry predicates, and the scheduling handoff.

// recordPayment records one payment in exact cents. The payer must be an
// enrolled participant; amounts are validated even though the HTTP layer
// already parsed them. When the last unpaid participant pays, the request
// moves to payment_complete and the session is scheduled.
func recordPayment(next *models.GroupRequest, actorID primitive.ObjectID, e RecordPayment, now time.Time) ([]Intent, error) {
	payer := e.UserID
	if payer.IsZero() {
		payer = actorID
	}
	if e.AmountCents <= 0 {
		return nil, fmt.Errorf("payment amount must be positive: %w", ErrValidation)
	}
	if !next.IsParticipant(payer) {
		return nil, fmt.Errorf("only enrolled participants can pay: %w", ErrForbidden)
	}

	next.PaidParticipants = addID(next.PaidParticipants, payer)
	next.TotalPaidCents += e.AmountCents

	intents := []Intent{{
		Kind:       IntentPaymentReceived,
		Recipients: []primitive.ObjectID{next.CreatorID},
		Payload: map[string]string{
			"request_id":   next.ID.Hex(),
			"payer_id":     payer.Hex(),
			"amount_cents": fmt.Sprintf("%d", e.AmountCents),
		},
	}}

	if len(next.PaidParticipants) >= len(next.Participants) {
		scheduled := now.Add(SessionLeadTime)
		next.ScheduledAt = &scheduled
		next.PaymentDeadline = nil
		next.Status = models.StatusPaymentComplete
		intents = append(intents, Intent{
			Kind:       IntentPaymentComplete,
			Recipients: audience(next),
			Payload: map[string]string{
				"request_id":   next.ID.Hex(),
				"scheduled_at": scheduled.Format(time.RFC3339),
			},
		})
	}
	return intents, nil
}

// deadlineExpired closes the funding window. It only fires once the
// stored deadline has genuinely passed; delivered early (a racing tick)
// it is a no-op. The transition table already restricts it to funding, so
// a RecordPayment that commits first simply turns the loser into a no-op
// instead of corrupting state.
func deadlineExpired(next *models.GroupRequest, now time.Time) ([]Intent, bool) {
	if next.PaymentDeadline == nil || now.Before(*next.PaymentDeadline) {
		return nil, true
	}
	expiredAt := now
	next.PaymentExpiredAt = &expiredAt
	next.PaymentDeadline = nil
	next.Status = models.StatusPaid
	return []Intent{{
		Kind:       IntentPaymentExpired,
		Recipients: audience(next),
		Payload:    map[string]string{"request_id": next.ID.Hex()},
	}}, false
}

// issueConferenceLink attaches the meeting link once the session start is
// inside the conference window. Idempotent on the link field.
func issueConferenceLink(next *models.GroupRequest, now time.Time) ([]Intent, bool) {
	if next.ConferenceLink != "" || next.ScheduledAt == nil {
		return nil, true
	}
	if Remaining(*next.ScheduledAt, now) > ConferenceLinkWindow {
		return nil, true
	}
	next.ConferenceLink = newConferenceLink()
	return []Intent{{
		Kind:       IntentSessionStarting,
		Recipients: audience(next),
		Payload: map[string]string{
			"request_id":      next.ID.Hex(),
			"conference_link": next.ConferenceLink,
		},
	}}, false
}

// advanceToInProgress starts the session once the countdown has elapsed.
// The link is issued here as well in case the window tick never ran.
func advanceToInProgress(next *models.GroupRequest, now time.Time) ([]Intent, bool) {
	if next.ScheduledAt == nil || now.Before(*next.ScheduledAt) {
		return nil, true
	}
	if next.ConferenceLink == "" {
		next.ConferenceLink = newConferenceLink()
	}
	next.Status = models.StatusInProgress
	return []Intent{{
		Kind:       IntentSessionStarted,
		Recipients: audience(next),
		Payload: map[string]string{
			"request_id":      next.ID.Hex(),
			"conference_link": next.ConferenceLink,
		},
	}}, false
}

func newConferenceLink() string {
	return "https://meet.sessionhub.app/" + uuid.NewString()
}
