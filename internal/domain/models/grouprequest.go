// internal/domain/models/grouprequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the closed set of lifecycle states for a GroupRequest.
// Transitions between statuses are validated by the lifecycle engine; no
// other code writes the status field.
type RequestStatus string

const (
	StatusPending         RequestStatus = "pending"
	StatusVotingOpen      RequestStatus = "voting_open"
	StatusAccepted        RequestStatus = "accepted"
	StatusFunding         RequestStatus = "funding"
	StatusPaid            RequestStatus = "paid"
	StatusPaymentComplete RequestStatus = "payment_complete"
	StatusInProgress      RequestStatus = "in_progress"
	StatusCompleted       RequestStatus = "completed"
	StatusCancelled       RequestStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusVotingOpen, StatusAccepted, StatusFunding,
		StatusPaid, StatusPaymentComplete, StatusInProgress,
		StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further events.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// GroupRequest is a collaborative learning-session proposal inside a group.
//
// One document per request lives in the group_requests collection. The
// document is never locked; every write goes through the lifecycle engine
// and a compare-and-swap on the version field. The count fields are derived
// caches recomputed from their source sets on every transition and must
// never be written independently.
//
// Money fields are exact integer cents, so payment totals accumulate
// without rounding drift.
type GroupRequest struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	CreatorID primitive.ObjectID `bson:"creator_id" json:"creator_id"`

	Topic       string `bson:"topic" json:"topic"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	Status RequestStatus `bson:"status" json:"status"`

	Votes            []primitive.ObjectID `bson:"votes" json:"votes"`
	Participants     []primitive.ObjectID `bson:"participants" json:"participants"`
	Teachers         []primitive.ObjectID `bson:"teachers" json:"teachers"`
	PaidParticipants []primitive.ObjectID `bson:"paid_participants" json:"paid_participants"`

	SelectedTeacherID *primitive.ObjectID `bson:"selected_teacher_id,omitempty" json:"selected_teacher_id,omitempty"`

	// Derived caches; see RecomputeCounts.
	VoteCount        int `bson:"vote_count" json:"vote_count"`
	ParticipantCount int `bson:"participant_count" json:"participant_count"`
	TeacherCount     int `bson:"teacher_count" json:"teacher_count"`
	PaidCount        int `bson:"paid_count" json:"paid_count"`

	RateCents      int64 `bson:"rate_cents" json:"rate_cents"`
	TotalPaidCents int64 `bson:"total_paid_cents" json:"total_paid_cents"`

	PaymentDeadline  *time.Time `bson:"payment_deadline,omitempty" json:"payment_deadline,omitempty"`
	PaymentExpiredAt *time.Time `bson:"payment_expired_at,omitempty" json:"payment_expired_at,omitempty"`
	ScheduledAt      *time.Time `bson:"scheduled_datetime,omitempty" json:"scheduled_datetime,omitempty"`

	ConferenceLink     string `bson:"conference_link,omitempty" json:"conference_link,omitempty"`
	CancellationReason string `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`

	// Version is the optimistic-concurrency token. It strictly increases
	// on every accepted write; writes against a stale version are rejected.
	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasVoted reports whether userID has cast a vote on the request.
func (r *GroupRequest) HasVoted(userID primitive.ObjectID) bool {
	return containsID(r.Votes, userID)
}

// IsParticipant reports whether userID is enrolled to attend.
func (r *GroupRequest) IsParticipant(userID primitive.ObjectID) bool {
	return containsID(r.Participants, userID)
}

// IsTeacher reports whether userID has applied to teach.
func (r *GroupRequest) IsTeacher(userID primitive.ObjectID) bool {
	return containsID(r.Teachers, userID)
}

// HasPaid reports whether userID has been recorded as paid.
func (r *GroupRequest) HasPaid(userID primitive.ObjectID) bool {
	return containsID(r.PaidParticipants, userID)
}

// RecomputeCounts refreshes the derived count fields from their source sets.
func (r *GroupRequest) RecomputeCounts() {
	r.VoteCount = len(r.Votes)
	r.ParticipantCount = len(r.Participants)
	r.TeacherCount = len(r.Teachers)
	r.PaidCount = len(r.PaidParticipants)
}

// Clone returns a deep copy of the request. The lifecycle engine mutates
// only the clone, never the snapshot it was handed.
func (r *GroupRequest) Clone() GroupRequest {
	out := *r
	out.Votes = append([]primitive.ObjectID(nil), r.Votes...)
	out.Participants = append([]primitive.ObjectID(nil), r.Participants...)
	out.Teachers = append([]primitive.ObjectID(nil), r.Teachers...)
	out.PaidParticipants = append([]primitive.ObjectID(nil), r.PaidParticipants...)
	if r.SelectedTeacherID != nil {
		id := *r.SelectedTeacherID
		out.SelectedTeacherID = &id
	}
	out.PaymentDeadline = cloneTime(r.PaymentDeadline)
	out.PaymentExpiredAt = cloneTime(r.PaymentExpiredAt)
	out.ScheduledAt = cloneTime(r.ScheduledAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
