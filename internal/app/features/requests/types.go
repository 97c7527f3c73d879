// internal/app/features/requests/types.go
package requests

import (
	"time"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestView is the JSON shape returned to clients. Countdowns are
// computed at render time from the stored deadlines — no timer state
// lives server-side, and clients treat these as provisional until the
// next authoritative snapshot.
type RequestView struct {
	ID        string `json:"id"`
	GroupID   string `json:"group_id"`
	CreatorID string `json:"creator_id"`

	Topic       string `json:"topic"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`

	Votes            []string `json:"votes"`
	Participants     []string `json:"participants"`
	Teachers         []string `json:"teachers"`
	PaidParticipants []string `json:"paid_participants"`

	SelectedTeacherID string `json:"selected_teacher_id,omitempty"`

	VoteCount        int `json:"vote_count"`
	ParticipantCount int `json:"participant_count"`
	TeacherCount     int `json:"teacher_count"`
	PaidCount        int `json:"paid_count"`

	RateCents      int64 `json:"rate_cents"`
	TotalPaidCents int64 `json:"total_paid_cents"`

	PaymentDeadline  *time.Time `json:"payment_deadline,omitempty"`
	PaymentExpiredAt *time.Time `json:"payment_expired_at,omitempty"`
	ScheduledAt      *time.Time `json:"scheduled_datetime,omitempty"`

	// Seconds until the relevant deadline, clamped at zero. Present only
	// while the corresponding deadline is set.
	PaymentSecondsLeft *int64 `json:"payment_seconds_left,omitempty"`
	StartSecondsLeft   *int64 `json:"start_seconds_left,omitempty"`

	ConferenceLink     string `json:"conference_link,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewOf(req models.GroupRequest, now time.Time) RequestView {
	v := RequestView{
		ID:                 req.ID.Hex(),
		GroupID:            req.GroupID.Hex(),
		CreatorID:          req.CreatorID.Hex(),
		Topic:              req.Topic,
		Description:        req.Description,
		Status:             string(req.Status),
		Votes:              hexIDs(req.Votes),
		Participants:       hexIDs(req.Participants),
		Teachers:           hexIDs(req.Teachers),
		PaidParticipants:   hexIDs(req.PaidParticipants),
		VoteCount:          req.VoteCount,
		ParticipantCount:   req.ParticipantCount,
		TeacherCount:       req.TeacherCount,
		PaidCount:          req.PaidCount,
		RateCents:          req.RateCents,
		TotalPaidCents:     req.TotalPaidCents,
		PaymentDeadline:    req.PaymentDeadline,
		PaymentExpiredAt:   req.PaymentExpiredAt,
		ScheduledAt:        req.ScheduledAt,
		ConferenceLink:     req.ConferenceLink,
		CancellationReason: req.CancellationReason,
		Version:            req.Version,
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
	}
	if req.SelectedTeacherID != nil {
		v.SelectedTeacherID = req.SelectedTeacherID.Hex()
	}
	if req.PaymentDeadline != nil {
		secs := int64(lifecycle.Remaining(*req.PaymentDeadline, now).Seconds())
		v.PaymentSecondsLeft = &secs
	}
	if req.ScheduledAt != nil && !req.Status.Terminal() {
		secs := int64(lifecycle.Remaining(*req.ScheduledAt, now).Seconds())
		v.StartSecondsLeft = &secs
	}
	return v
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
