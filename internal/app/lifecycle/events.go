// internal/app/lifecycle/events.go
package lifecycle

import "go.mongodb.org/mongo-driver/bson/primitive"

// Event is a request-lifecycle event submitted by a user session or by
// the deadline scheduler. The set is sealed: only the types in this file
// implement it, and the engine's transition table is keyed on Kind.
type Event interface {
	// Kind is a stable identifier used by the transition table, logs,
	// and notification intents.
	Kind() string
}

// CastVote endorses a pending request. Creator votes are rejected.
type CastVote struct{}

// Unvote withdraws a previously cast vote.
type Unvote struct{}

// Join enrolls the actor as a participant.
type Join struct{}

// Leave removes the actor from the participants.
type Leave struct{}

// TeachApply adds the actor as a candidate teacher.
type TeachApply struct{}

// TeachWithdraw removes the actor from the candidate teachers.
type TeachWithdraw struct{}

// SelectTeacher picks the instructor and opens the funding window.
// Only the creator may select, and the teacher must have applied.
type SelectTeacher struct {
	TeacherID     primitive.ObjectID
	DeadlineHours int
}

// RecordPayment records a participant's payment in exact cents.
type RecordPayment struct {
	UserID      primitive.ObjectID
	AmountCents int64
}

// DeadlineExpired is injected by the scheduler when the funding deadline
// has passed. Delivered in any other status it is a documented no-op.
type DeadlineExpired struct{}

// IssueConferenceLink is injected by the scheduler when the session start
// is ten minutes away or less. Idempotent: a request that already has a
// link is left unchanged.
type IssueConferenceLink struct{}

// AdvanceToInProgress is injected by the scheduler once the scheduled
// start time is reached. Duplicate deliveries are idempotent no-ops.
type AdvanceToInProgress struct{}

// AdvanceToCompleted closes out a running session. Only the creator or
// the selected teacher may complete.
type AdvanceToCompleted struct{}

// Cancel closes the request permanently. Creator only.
type Cancel struct {
	Reason string
}

func (CastVote) Kind() string            { return "cast_vote" }
func (Unvote) Kind() string              { return "unvote" }
func (Join) Kind() string                { return "join" }
func (Leave) Kind() string               { return "leave" }
func (TeachApply) Kind() string          { return "teach_apply" }
func (TeachWithdraw) Kind() string       { return "teach_withdraw" }
func (SelectTeacher) Kind() string       { return "select_teacher" }
func (RecordPayment) Kind() string       { return "record_payment" }
func (DeadlineExpired) Kind() string     { return "deadline_expired" }
func (IssueConferenceLink) Kind() string { return "issue_conference_link" }
func (AdvanceToInProgress) Kind() string { return "advance_in_progress" }
func (AdvanceToCompleted) Kind() string  { return "advance_completed" }
func (Cancel) Kind() string              { return "cancel" }
