package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

// newRequest builds a minimal request in the given status for engine
// tests. The creator is always the first return value's CreatorID.
func newRequest(status models.RequestStatus) models.GroupRequest {
	return models.GroupRequest{
		ID:               primitive.NewObjectID(),
		GroupID:          primitive.NewObjectID(),
		CreatorID:        primitive.NewObjectID(),
		Topic:            "Engine test topic",
		Status:           status,
		Votes:            []primitive.ObjectID{},
		Participants:     []primitive.ObjectID{},
		Teachers:         []primitive.ObjectID{},
		PaidParticipants: []primitive.ObjectID{},
		RateCents:        2500,
		Version:          3,
		CreatedAt:        testNow.Add(-time.Hour),
		UpdatedAt:        testNow.Add(-time.Hour),
	}
}

func TestApply_TerminalRejectsUserEvents(t *testing.T) {
	for _, status := range []models.RequestStatus{models.StatusCompleted, models.StatusCancelled} {
		req := newRequest(status)
		_, err := Apply(req, primitive.NewObjectID(), CastVote{}, testNow)
		if !errors.Is(err, ErrTerminal) {
			t.Errorf("status %s: got %v, want ErrTerminal", status, err)
		}
	}
}

func TestApply_TerminalSwallowsSchedulerEvents(t *testing.T) {
	req := newRequest(models.StatusCancelled)
	out, err := Apply(req, SystemActor, DeadlineExpired{}, testNow)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !out.Noop {
		t.Error("expected scheduler event on a terminal request to be a no-op")
	}
}

func TestApply_InvalidTransition(t *testing.T) {
	tests := []struct {
		status models.RequestStatus
		ev     Event
	}{
		{models.StatusPending, Join{}},
		{models.StatusPending, RecordPayment{AmountCents: 100}},
		{models.StatusVotingOpen, CastVote{}},
		{models.StatusAccepted, RecordPayment{AmountCents: 100}},
		{models.StatusFunding, Join{}},
		{models.StatusPaid, RecordPayment{AmountCents: 100}},
		{models.StatusInProgress, TeachApply{}},
	}
	for _, tc := range tests {
		req := newRequest(tc.status)
		_, err := Apply(req, primitive.NewObjectID(), tc.ev, testNow)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s in %s: got %v, want ErrInvalidTransition", tc.ev.Kind(), tc.status, err)
		}
	}
}

func TestApply_SchedulerEventWrongStatusIsNoop(t *testing.T) {
	tests := []struct {
		status models.RequestStatus
		ev     Event
	}{
		{models.StatusPending, DeadlineExpired{}},
		{models.StatusVotingOpen, AdvanceToInProgress{}},
		{models.StatusFunding, IssueConferenceLink{}},
		{models.StatusInProgress, DeadlineExpired{}},
	}
	for _, tc := range tests {
		req := newRequest(tc.status)
		out, err := Apply(req, SystemActor, tc.ev, testNow)
		if err != nil {
			t.Fatalf("%s in %s: Apply failed: %v", tc.ev.Kind(), tc.status, err)
		}
		if !out.Noop {
			t.Errorf("%s in %s: expected a no-op", tc.ev.Kind(), tc.status)
		}
		if out.State.Status != tc.status {
			t.Errorf("%s in %s: status changed to %s", tc.ev.Kind(), tc.status, out.State.Status)
		}
	}
}

func TestApply_DoesNotMutateSnapshot(t *testing.T) {
	req := newRequest(models.StatusPending)
	voter := primitive.NewObjectID()

	out, err := Apply(req, voter, CastVote{}, testNow)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(req.Votes) != 0 {
		t.Error("Apply mutated the input snapshot")
	}
	if len(out.State.Votes) != 1 {
		t.Errorf("expected 1 vote in the outcome, got %d", len(out.State.Votes))
	}
	if !out.State.UpdatedAt.Equal(testNow) {
		t.Errorf("UpdatedAt: got %v, want %v", out.State.UpdatedAt, testNow)
	}
}

func TestApply_RecomputesCounts(t *testing.T) {
	req := newRequest(models.StatusVotingOpen)
	req.Participants = []primitive.ObjectID{req.CreatorID}
	req.ParticipantCount = 99 // stale cache

	out, err := Apply(req, primitive.NewObjectID(), Join{}, testNow)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.State.ParticipantCount != 2 {
		t.Errorf("ParticipantCount: got %d, want 2", out.State.ParticipantCount)
	}
}

func TestCancel_CreatorOnly(t *testing.T) {
	req := newRequest(models.StatusFunding)
	_, err := Apply(req, primitive.NewObjectID(), Cancel{Reason: "nope"}, testNow)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestCancel_SetsReasonAndClearsDeadline(t *testing.T) {
	req := newRequest(models.StatusFunding)
	deadline := testNow.Add(12 * time.Hour)
	req.PaymentDeadline = &deadline

	out, err := Apply(req, req.CreatorID, Cancel{Reason: "teacher unavailable"}, testNow)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.State.Status != models.StatusCancelled {
		t.Errorf("status: got %s, want cancelled", out.State.Status)
	}
	if out.State.CancellationReason != "teacher unavailable" {
		t.Errorf("reason: got %q", out.State.CancellationReason)
	}
	if out.State.PaymentDeadline != nil {
		t.Error("expected payment deadline to be cleared on cancel")
	}
}

func TestAdvanceToCompleted_Permissions(t *testing.T) {
	teacher := primitive.NewObjectID()
	req := newRequest(models.StatusInProgress)
	req.SelectedTeacherID = &teacher

	if _, err := Apply(req, primitive.NewObjectID(), AdvanceToCompleted{}, testNow); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger: got %v, want ErrForbidden", err)
	}

	out, err := Apply(req, teacher, AdvanceToCompleted{}, testNow)
	if err != nil {
		t.Fatalf("selected teacher: Apply failed: %v", err)
	}
	if out.State.Status != models.StatusCompleted {
		t.Errorf("status: got %s, want completed", out.State.Status)
	}

	out, err = Apply(req, req.CreatorID, AdvanceToCompleted{}, testNow)
	if err != nil {
		t.Fatalf("creator: Apply failed: %v", err)
	}
	if out.State.Status != models.StatusCompleted {
		t.Errorf("status: got %s, want completed", out.State.Status)
	}
}
