// internal/app/lifecycle/enrollment.go
package lifecycle

import (
	"fmt"
	"time"

	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment subsystem: the participant and teacher sets, and the
// teacher-count transitions between voting_open and accepted.
//
// A user may appear in both participants and teachers at once. That is
// observed product behavior kept as a relaxed invariant; the subsystem
// does not silently correct it.

// join enrolls the actor as a participant. Joining twice is idempotent.
// The creator is enrolled automatically at promotion and cannot join (or
// leave) by hand; abandoning your own request is Cancel.
func join(next *models.GroupRequest, actorID primitive.ObjectID) error {
	if actorID == next.CreatorID {
		return fmt.Errorf("the creator is always a participant: %w", ErrForbidden)
	}
	next.Participants = addID(next.Participants, actorID)
	return nil
}

// leave removes the actor from the participants. Leaving when not
// enrolled is idempotent.
func leave(next *models.GroupRequest, actorID primitive.ObjectID) error {
	if actorID == next.CreatorID {
		return fmt.Errorf("the creator cannot leave their own request: %w", ErrForbidden)
	}
	next.Participants = removeID(next.Participants, actorID)
	return nil
}

// teachApply adds the actor as a candidate teacher. The first teacher
// promotes the request from voting_open to accepted.
func teachApply(next *models.GroupRequest, actorID primitive.ObjectID) ([]Intent, error) {
	if actorID == next.CreatorID {
		return nil, fmt.Errorf("the creator cannot teach their own request: %w", ErrForbidden)
	}
	next.Teachers = addID(next.Teachers, actorID)

	var intents []Intent
	if next.Status == models.StatusVotingOpen {
		next.Status = models.StatusAccepted
		intents = append(intents, Intent{
			Kind:       IntentTeacherApplied,
			Recipients: []primitive.ObjectID{next.CreatorID},
			Payload: map[string]string{
				"request_id": next.ID.Hex(),
				"teacher_id": actorID.Hex(),
			},
		})
	}
	return intents, nil
}

// teachWithdraw removes the actor from the candidate teachers. When the
// last candidate withdraws the request falls back to voting_open.
func teachWithdraw(next *models.GroupRequest, actorID primitive.ObjectID) ([]Intent, error) {
	next.Teachers = removeID(next.Teachers, actorID)

	var intents []Intent
	if len(next.Teachers) == 0 && next.Status == models.StatusAccepted {
		next.Status = models.StatusVotingOpen
		intents = append(intents, Intent{
			Kind:       IntentBackToVoting,
			Recipients: []primitive.ObjectID{next.CreatorID},
			Payload:    map[string]string{"request_id": next.ID.Hex()},
		})
	}
	return intents, nil
}

// selectTeacher is the creator's pick of the instructor; it opens the
// funding window and stamps the payment deadline.
func selectTeacher(next *models.GroupRequest, actorID primitive.ObjectID, e SelectTeacher, now time.Time) ([]Intent, error) {
	if actorID != next.CreatorID {
		return nil, fmt.Errorf("only the creator can select a teacher: %w", ErrForbidden)
	}
	if !next.IsTeacher(e.TeacherID) {
		return nil, fmt.Errorf("selected teacher has not applied: %w", ErrValidation)
	}
	if !validDeadlineHours(e.DeadlineHours) {
		return nil, fmt.Errorf("payment deadline must be one of %v hours: %w", DeadlineHourOptions, ErrValidation)
	}

	teacherID := e.TeacherID
	deadline := now.Add(time.Duration(e.DeadlineHours) * time.Hour)
	next.SelectedTeacherID = &teacherID
	next.PaymentDeadline = &deadline
	next.Status = models.StatusFunding

	return []Intent{{
		Kind:       IntentFundingOpened,
		Recipients: audience(next),
		Payload: map[string]string{
			"request_id":       next.ID.Hex(),
			"teacher_id":       teacherID.Hex(),
			"payment_deadline": deadline.Format(time.RFC3339),
		},
	}}, nil
}

func validDeadlineHours(h int) bool {
	for _, opt := range DeadlineHourOptions {
		if h == opt {
			return true
		}
	}
	return false
}
