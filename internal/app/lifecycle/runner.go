// internal/app/lifecycle/runner.go
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dalemusser/sessionhub/internal/app/notify"
	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SystemActor is the actor ID the deadline scheduler submits under.
// Scheduler events carry no permission checks, so the zero ObjectID is
// never compared against a real user.
var SystemActor = primitive.NilObjectID

// RequestStore is the slice of the request store the runner needs: a
// versioned read and a compare-and-swap write.
type RequestStore interface {
	// Get returns the current snapshot, version included.
	Get(ctx context.Context, id primitive.ObjectID) (models.GroupRequest, error)

	// UpdateIfVersion persists next only if the stored version still
	// equals expectedVersion, bumping the version by one. A lost race
	// returns an error satisfying errors.Is(err, ErrConflict).
	UpdateIfVersion(ctx context.Context, next models.GroupRequest, expectedVersion int64) (models.GroupRequest, error)
}

// MembershipDirectory answers the group-membership question for the
// events that require it. The directory itself is maintained elsewhere.
type MembershipDirectory interface {
	IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)
}

const (
	// DefaultMaxAttempts bounds the optimistic-write retry loop.
	DefaultMaxAttempts = 5

	// retryBackoffBase is the first retry delay; subsequent delays grow
	// linearly with a random jitter so racing writers spread out.
	retryBackoffBase = 25 * time.Millisecond
)

// Runner is the I/O shell around the pure Apply function. One Runner is
// shared by every caller — HTTP handlers and the deadline scheduler —
// and holds no per-request state, so an abandoned call simply discards
// its pending write.
type Runner struct {
	Store       RequestStore
	Memberships MembershipDirectory
	Sink        notify.Sink
	Log         *zap.Logger

	// MaxAttempts overrides DefaultMaxAttempts when > 0.
	MaxAttempts int
}

// NewRunner constructs a Runner with the default retry budget.
func NewRunner(store RequestStore, memberships MembershipDirectory, sink notify.Sink, logger *zap.Logger) *Runner {
	return &Runner{
		Store:       store,
		Memberships: memberships,
		Sink:        sink,
		Log:         logger,
	}
}

// Submit reads the current snapshot, applies ev, and attempts the
// versioned write, retrying on conflict against fresh state. Two
// concurrent writers both land: the loser recomputes against the winner's
// snapshot before writing. Only ErrConflict is retried; every other error
// surfaces verbatim.
func (rn *Runner) Submit(ctx context.Context, requestID, actorID primitive.ObjectID, ev Event) (models.GroupRequest, error) {
	maxAttempts := rn.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	gated := false
	for attempt := 1; ; attempt++ {
		snap, err := rn.Store.Get(ctx, requestID)
		if err != nil {
			return models.GroupRequest{}, fmt.Errorf("read request %s: %w", requestID.Hex(), err)
		}

		// Membership gate for events open to any group member. The
		// group never changes, so one check per Submit is enough.
		if !gated && membershipGated(ev) {
			ok, err := rn.Memberships.IsMember(ctx, snap.GroupID, actorID)
			if err != nil {
				return models.GroupRequest{}, fmt.Errorf("membership check: %w", err)
			}
			if !ok {
				return models.GroupRequest{}, ErrNotAMember
			}
			gated = true
		}

		out, err := Apply(snap, actorID, ev, time.Now().UTC())
		if err != nil {
			return models.GroupRequest{}, err
		}
		if out.Noop {
			rn.Log.Debug("lifecycle event was a no-op",
				zap.String("request_id", requestID.Hex()),
				zap.String("event", ev.Kind()),
				zap.String("status", string(snap.Status)))
			return snap, nil
		}

		stored, err := rn.Store.UpdateIfVersion(ctx, out.State, snap.Version)
		if err == nil {
			rn.deliver(ctx, out.Intents)
			return stored, nil
		}
		if !errors.Is(err, ErrConflict) {
			return models.GroupRequest{}, fmt.Errorf("write request %s: %w", requestID.Hex(), err)
		}
		if attempt >= maxAttempts {
			rn.Log.Warn("optimistic write retries exhausted",
				zap.String("request_id", requestID.Hex()),
				zap.String("event", ev.Kind()),
				zap.Int("attempts", attempt))
			return models.GroupRequest{}, ErrConflict
		}

		select {
		case <-ctx.Done():
			return models.GroupRequest{}, ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}
}

// membershipGated lists the events any group member may fire, which
// therefore need the directory check. The rest are restricted to users
// already on the record (or to the scheduler) and are authorized by the
// engine itself.
func membershipGated(ev Event) bool {
	switch ev.(type) {
	case CastVote, Join, TeachApply:
		return true
	}
	return false
}

// deliver fans the winning write's intents out to the sink. Best effort:
// the write has already committed and is never rolled back here.
func (rn *Runner) deliver(ctx context.Context, intents []Intent) {
	if rn.Sink == nil {
		return
	}
	for _, in := range intents {
		for _, userID := range in.Recipients {
			rn.Sink.Notify(ctx, userID, in.Kind, in.Payload)
		}
	}
}

func backoff(attempt int) time.Duration {
	jitter := time.Duration(rand.Int63n(int64(retryBackoffBase)))
	return time.Duration(attempt)*retryBackoffBase + jitter
}
