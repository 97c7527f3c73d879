// internal/app/lifecycle/voting.go
package lifecycle

import (
	"fmt"

	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Voting subsystem: pending-phase endorsements and the promotion to
// voting_open. Once the request has left pending the transition table
// rejects voting events with InvalidTransition rather than silently
// ignoring them, so a stale client gets an auditable answer.

// castVote toggles the actor's vote on and promotes the request once the
// threshold is crossed. Casting an already-present vote is idempotent.
//
// The promotion merge (votes ∪ participants ∪ creator) is computed from
// the snapshot of the winning write: the engine only ever sees the
// freshly read state inside the CAS retry loop, so a concurrently added
// participant cannot be dropped.
func castVote(next *models.GroupRequest, actorID primitive.ObjectID) ([]Intent, error) {
	if actorID == next.CreatorID {
		return nil, fmt.Errorf("the creator cannot vote on their own request: %w", ErrForbidden)
	}
	next.Votes = addID(next.Votes, actorID)
	if len(next.Votes) < VoteThreshold {
		return nil, nil
	}

	// Threshold crossed: voters become participants alongside anyone
	// already enrolled, and the creator always attends.
	for _, id := range next.Votes {
		next.Participants = addID(next.Participants, id)
	}
	next.Participants = addID(next.Participants, next.CreatorID)
	next.Status = models.StatusVotingOpen
	return []Intent{{
		Kind:       IntentVotingOpened,
		Recipients: audience(next),
		Payload:    map[string]string{"request_id": next.ID.Hex()},
	}}, nil
}

// unvote toggles the actor's vote off. Removing an absent vote is
// idempotent. Dropping below the threshold after promotion does not
// demote: the threshold check happens only on cast, while pending.
func unvote(next *models.GroupRequest, actorID primitive.ObjectID) error {
	if actorID == next.CreatorID {
		return fmt.Errorf("the creator cannot vote on their own request: %w", ErrForbidden)
	}
	next.Votes = removeID(next.Votes, actorID)
	return nil
}
