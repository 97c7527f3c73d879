// internal/app/lifecycle/engine.go

// Package lifecycle is the authority over the group-request state machine.
//
// Apply is a pure function: it validates an event against the transition
// table, hands it to the voting, enrollment, or payment subsystem, and
// returns the next canonical state plus the side-effect intents to
// deliver. All I/O — reading the snapshot, the membership check, the
// compare-and-swap write — happens in the surrounding Runner, never here.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fixed policy values. These are deliberately constants, not config: the
// promotion rules are part of the product, not deployment tuning.
const (
	// VoteThreshold is the number of distinct non-creator votes that
	// promotes a pending request to voting_open.
	VoteThreshold = 5

	// ConferenceLinkWindow is how close to the scheduled start the
	// conference link is issued.
	ConferenceLinkWindow = 10 * time.Minute

	// SessionLeadTime is how far ahead the session is scheduled once
	// every participant has paid.
	SessionLeadTime = 24 * time.Hour
)

// DeadlineHourOptions is the closed set of funding-window lengths the
// creator may choose from when selecting a teacher.
var DeadlineHourOptions = []int{6, 12, 24, 48, 72}

// allowedEvents is the explicit finite-state table. An event kind absent
// from the current status row is rejected with ErrInvalidTransition
// (scheduler events instead degrade to idempotent no-ops).
var allowedEvents = map[models.RequestStatus]map[string]struct{}{
	models.StatusPending: kinds(CastVote{}, Unvote{}, Cancel{}),
	models.StatusVotingOpen: kinds(
		Join{}, Leave{}, TeachApply{}, Cancel{}),
	models.StatusAccepted: kinds(
		Join{}, Leave{}, TeachApply{}, TeachWithdraw{},
		SelectTeacher{}, Cancel{}),
	models.StatusFunding: kinds(
		RecordPayment{}, DeadlineExpired{}, Cancel{}),
	models.StatusPaid: kinds(Cancel{}),
	models.StatusPaymentComplete: kinds(
		IssueConferenceLink{}, AdvanceToInProgress{}, Cancel{}),
	models.StatusInProgress: kinds(AdvanceToCompleted{}, Cancel{}),
	models.StatusCompleted:  {},
	models.StatusCancelled:  {},
}

func kinds(evs ...Event) map[string]struct{} {
	m := make(map[string]struct{}, len(evs))
	for _, ev := range evs {
		m[ev.Kind()] = struct{}{}
	}
	return m
}

// Outcome is the result of applying one event.
type Outcome struct {
	// State is the next canonical state. When Noop is true it equals the
	// input snapshot and must not be written back.
	State models.GroupRequest

	// Intents are best-effort side effects for the winning write.
	Intents []Intent

	// Noop marks a scheduler event that arrived too early, twice, or
	// after a user action already moved the request on. Swallowing these
	// silently is deliberate: duplicate timer deliveries are expected.
	Noop bool
}

// Apply validates ev against the state machine and produces the next
// state. It never mutates snap and performs no I/O; the caller owns
// reading the snapshot, gating on group membership, persisting the result
// with a versioned write, and retrying on conflict.
func Apply(snap models.GroupRequest, actorID primitive.ObjectID, ev Event, now time.Time) (Outcome, error) {
	if schedulerEvent(ev) {
		if _, ok := allowedEvents[snap.Status][ev.Kind()]; !ok {
			return Outcome{State: snap, Noop: true}, nil
		}
	} else {
		if snap.Status.Terminal() {
			return Outcome{}, ErrTerminal
		}
		if _, ok := allowedEvents[snap.Status][ev.Kind()]; !ok {
			return Outcome{}, fmt.Errorf("%s in status %q: %w", ev.Kind(), snap.Status, ErrInvalidTransition)
		}
	}

	next := snap.Clone()

	var (
		intents []Intent
		noop    bool
		err     error
	)
	switch e := ev.(type) {
	case CastVote:
		intents, err = castVote(&next, actorID)
	case Unvote:
		err = unvote(&next, actorID)
	case Join:
		err = join(&next, actorID)
	case Leave:
		err = leave(&next, actorID)
	case TeachApply:
		intents, err = teachApply(&next, actorID)
	case TeachWithdraw:
		intents, err = teachWithdraw(&next, actorID)
	case SelectTeacher:
		intents, err = selectTeacher(&next, actorID, e, now)
	case RecordPayment:
		intents, err = recordPayment(&next, actorID, e, now)
	case DeadlineExpired:
		intents, noop = deadlineExpired(&next, now)
	case IssueConferenceLink:
		intents, noop = issueConferenceLink(&next, now)
	case AdvanceToInProgress:
		intents, noop = advanceToInProgress(&next, now)
	case AdvanceToCompleted:
		intents, err = advanceToCompleted(&next, actorID)
	case Cancel:
		intents, err = cancel(&next, actorID, e)
	default:
		return Outcome{}, fmt.Errorf("unknown event %q: %w", ev.Kind(), ErrValidation)
	}
	if err != nil {
		return Outcome{}, err
	}
	if noop {
		return Outcome{State: snap, Noop: true}, nil
	}

	next.RecomputeCounts()
	next.UpdatedAt = now
	return Outcome{State: next, Intents: intents}, nil
}

// schedulerEvent reports whether ev is injected by the deadline scheduler
// rather than a user session. Scheduler events delivered in the wrong
// status are no-ops, never user-facing errors.
func schedulerEvent(ev Event) bool {
	switch ev.(type) {
	case DeadlineExpired, IssueConferenceLink, AdvanceToInProgress:
		return true
	}
	return false
}

// advanceToCompleted closes out a running session.
func advanceToCompleted(next *models.GroupRequest, actorID primitive.ObjectID) ([]Intent, error) {
	if actorID != next.CreatorID && !selectedTeacherIs(next, actorID) {
		return nil, fmt.Errorf("only the creator or the selected teacher can complete a session: %w", ErrForbidden)
	}
	next.Status = models.StatusCompleted
	return []Intent{{
		Kind:       IntentCompleted,
		Recipients: audience(next),
		Payload:    map[string]string{"request_id": next.ID.Hex()},
	}}, nil
}

// cancel closes the request permanently. Cancellation is a terminal
// status, not a deletion; the record stays queryable.
func cancel(next *models.GroupRequest, actorID primitive.ObjectID, e Cancel) ([]Intent, error) {
	if actorID != next.CreatorID {
		return nil, fmt.Errorf("only the creator can cancel a request: %w", ErrForbidden)
	}
	next.Status = models.StatusCancelled
	next.CancellationReason = e.Reason
	next.PaymentDeadline = nil
	return []Intent{{
		Kind:       IntentCancelled,
		Recipients: audience(next),
		Payload: map[string]string{
			"request_id": next.ID.Hex(),
			"reason":     e.Reason,
		},
	}}, nil
}

func selectedTeacherIs(r *models.GroupRequest, userID primitive.ObjectID) bool {
	return r.SelectedTeacherID != nil && *r.SelectedTeacherID == userID
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
