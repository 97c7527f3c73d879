package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fundingRequest builds a request mid-funding with the given enrolled
// participants and a deadline one hour out.
func fundingRequest(participants ...primitive.ObjectID) models.GroupRequest {
	req := newRequest(models.StatusFunding)
	teacher := primitive.NewObjectID()
	deadline := testNow.Add(time.Hour)
	req.Participants = append([]primitive.ObjectID{req.CreatorID}, participants...)
	req.Teachers = []primitive.ObjectID{teacher}
	req.SelectedTeacherID = &teacher
	req.PaymentDeadline = &deadline
	req.RecomputeCounts()
	return req
}

func TestRecordPayment_AmountMustBePositive(t *testing.T) {
	payer := primitive.NewObjectID()
	req := fundingRequest(payer)

	for _, cents := range []int64{0, -1, -5000} {
		_, err := Apply(req, payer, RecordPayment{AmountCents: cents}, testNow)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("amount=%d: got %v, want ErrValidation", cents, err)
		}
	}
}

func TestRecordPayment_NonParticipantForbidden(t *testing.T) {
	req := fundingRequest(primitive.NewObjectID())
	_, err := Apply(req, primitive.NewObjectID(), RecordPayment{AmountCents: 2500}, testNow)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestRecordPayment_PartialKeepsFunding(t *testing.T) {
	payer := primitive.NewObjectID()
	req := fundingRequest(payer, primitive.NewObjectID())

	out, err := Apply(req, payer, RecordPayment{AmountCents: 2500}, testNow)
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if out.State.Status != models.StatusFunding {
		t.Errorf("status: got %s, want funding", out.State.Status)
	}
	if out.State.TotalPaidCents != 2500 {
		t.Errorf("TotalPaidCents: got %d, want 2500", out.State.TotalPaidCents)
	}
	if out.State.PaidCount != 1 {
		t.Errorf("PaidCount: got %d, want 1", out.State.PaidCount)
	}
	if out.State.PaymentDeadline == nil {
		t.Error("deadline must survive a partial payment")
	}
}

func TestRecordPayment_LastPayerCompletesAndSchedules(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	req := fundingRequest(a, b)
	req.PaidParticipants = []primitive.ObjectID{req.CreatorID, a}
	req.TotalPaidCents = 5000
	req.RecomputeCounts()

	out, err := Apply(req, b, RecordPayment{AmountCents: 2500}, testNow)
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if out.State.Status != models.StatusPaymentComplete {
		t.Fatalf("status: got %s, want payment_complete", out.State.Status)
	}
	wantStart := testNow.Add(SessionLeadTime)
	if out.State.ScheduledAt == nil || !out.State.ScheduledAt.Equal(wantStart) {
		t.Errorf("ScheduledAt: got %v, want %v", out.State.ScheduledAt, wantStart)
	}
	if out.State.PaymentDeadline != nil {
		t.Error("deadline must be cleared once funding completes")
	}
	if out.State.TotalPaidCents != 7500 {
		t.Errorf("TotalPaidCents: got %d, want 7500", out.State.TotalPaidCents)
	}
}

func TestRecordPayment_RepeatPayerAccumulatesCents(t *testing.T) {
	payer := primitive.NewObjectID()
	req := fundingRequest(payer, primitive.NewObjectID())

	out, err := Apply(req, payer, RecordPayment{AmountCents: 1000}, testNow)
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	out, err = Apply(out.State, payer, RecordPayment{AmountCents: 1500}, testNow)
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	if out.State.PaidCount != 1 {
		t.Errorf("PaidCount: got %d, want 1 (repeat payer counted once)", out.State.PaidCount)
	}
	if out.State.TotalPaidCents != 2500 {
		t.Errorf("TotalPaidCents: got %d, want 2500", out.State.TotalPaidCents)
	}
}

func TestDeadlineExpired_EarlyTickIsNoop(t *testing.T) {
	req := fundingRequest(primitive.NewObjectID())

	out, err := Apply(req, SystemActor, DeadlineExpired{}, testNow)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !out.Noop {
		t.Error("tick before the deadline must be a no-op")
	}
}

func TestDeadlineExpired_ClosesFundingWindow(t *testing.T) {
	req := fundingRequest(primitive.NewObjectID())
	past := testNow.Add(-time.Minute)
	req.PaymentDeadline = &past

	out, err := Apply(req, SystemActor, DeadlineExpired{}, testNow)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.Noop {
		t.Fatal("expected a real transition, got a no-op")
	}
	if out.State.Status != models.StatusPaid {
		t.Errorf("status: got %s, want paid", out.State.Status)
	}
	if out.State.PaymentExpiredAt == nil || !out.State.PaymentExpiredAt.Equal(testNow) {
		t.Errorf("PaymentExpiredAt: got %v, want %v", out.State.PaymentExpiredAt, testNow)
	}
	if out.State.PaymentDeadline != nil {
		t.Error("deadline must be cleared on expiry")
	}
}

func TestIssueConferenceLink_OutsideWindowIsNoop(t *testing.T) {
	req := newRequest(models.StatusPaymentComplete)
	start := testNow.Add(ConferenceLinkWindow + time.Minute)
	req.ScheduledAt = &start

	out, err := Apply(req, SystemActor, IssueConferenceLink{}, testNow)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !out.Noop {
		t.Error("link issued outside the conference window")
	}
}

func TestIssueConferenceLink_InsideWindow(t *testing.T) {
	req := newRequest(models.StatusPaymentComplete)
	start := testNow.Add(5 * time.Minute)
	req.ScheduledAt = &start

	out, err := Apply(req, SystemActor, IssueConferenceLink{}, testNow)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.Noop {
		t.Fatal("expected the link to be issued")
	}
	if out.State.ConferenceLink == "" {
		t.Error("conference link is empty")
	}

	// A second tick must not mint a new link.
	again, err := Apply(out.State, SystemActor, IssueConferenceLink{}, testNow)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if !again.Noop {
		t.Error("repeat tick should be a no-op once the link exists")
	}
}

func TestAdvanceToInProgress_EarlyTickIsNoop(t *testing.T) {
	req := newRequest(models.StatusPaymentComplete)
	start := testNow.Add(time.Minute)
	req.ScheduledAt = &start

	out, err := Apply(req, SystemActor, AdvanceToInProgress{}, testNow)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !out.Noop {
		t.Error("start before the scheduled time must be a no-op")
	}
}

func TestAdvanceToInProgress_StartsSession(t *testing.T) {
	req := newRequest(models.StatusPaymentComplete)
	start := testNow.Add(-time.Second)
	req.ScheduledAt = &start

	out, err := Apply(req, SystemActor, AdvanceToInProgress{}, testNow)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.State.Status != models.StatusInProgress {
		t.Errorf("status: got %s, want in_progress", out.State.Status)
	}
	if out.State.ConferenceLink == "" {
		t.Error("starting a session must ensure a conference link exists")
	}
}

func TestRecordPayment_EveryParticipantPaysExactRate(t *testing.T) {
	u1 := primitive.NewObjectID()
	u5 := primitive.NewObjectID()
	req := fundingRequest(u1, u5)
	req.RateCents = 200

	payers := []primitive.ObjectID{req.CreatorID, u1, u5}
	for i, payer := range payers {
		out, err := Apply(req, payer, RecordPayment{AmountCents: 200}, testNow)
		if err != nil {
			t.Fatalf("payment %d failed: %v", i+1, err)
		}
		req = out.State
	}

	// Exact accumulation: three payments of 200 cents, no drift.
	if req.TotalPaidCents != 600 {
		t.Errorf("TotalPaidCents: got %d, want 600", req.TotalPaidCents)
	}
	if req.Status != models.StatusPaymentComplete {
		t.Errorf("status: got %s, want payment_complete", req.Status)
	}
}

func TestDeadlineExpired_TotalPaidUnchanged(t *testing.T) {
	payer := primitive.NewObjectID()
	req := fundingRequest(payer, primitive.NewObjectID())

	out, err := Apply(req, payer, RecordPayment{AmountCents: 2500}, testNow)
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	req = out.State

	past := testNow.Add(-time.Minute)
	req.PaymentDeadline = &past
	out, err = Apply(req, SystemActor, DeadlineExpired{}, testNow)
	if err != nil {
		t.Fatalf("expiry failed: %v", err)
	}
	if out.State.Status != models.StatusPaid {
		t.Errorf("status: got %s, want paid", out.State.Status)
	}
	if out.State.TotalPaidCents != 2500 {
		t.Errorf("TotalPaidCents: got %d, want 2500 (unchanged by expiry)", out.State.TotalPaidCents)
	}
}
