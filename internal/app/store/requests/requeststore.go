// internal/app/store/requests/requeststore.go
package requeststore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists GroupRequest documents in the group_requests collection.
//
// The document is never locked: every mutation goes through
// UpdateIfVersion, a compare-and-swap on (_id, version). Readers always
// see a complete snapshot at some version; writers against a stale
// version lose and must recompute from a fresh read.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_requests")}
}

// Create inserts a new pending request at version 1. This is the entry
// point used by the external creation collaborator (and test fixtures);
// every later mutation goes through the lifecycle engine.
func (s *Store) Create(ctx context.Context, req models.GroupRequest) (models.GroupRequest, error) {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	req.Version = 1
	req.RecomputeCounts()

	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return models.GroupRequest{}, err
	}
	return req, nil
}

// Get loads the current snapshot of a request, version included.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.GroupRequest, error) {
	var req models.GroupRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return models.GroupRequest{}, err
	}
	return req, nil
}

// UpdateIfVersion writes next only if the stored version still equals
// expectedVersion. The stored version becomes expectedVersion+1. A lost
// race returns lifecycle.ErrConflict (wrapped); the caller re-reads and
// retries.
func (s *Store) UpdateIfVersion(ctx context.Context, next models.GroupRequest, expectedVersion int64) (models.GroupRequest, error) {
	next.Version = expectedVersion + 1

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": next.ID, "version": expectedVersion}, next)
	if err != nil {
		return models.GroupRequest{}, err
	}
	if res.MatchedCount == 0 {
		return models.GroupRequest{}, fmt.Errorf("request %s at version %d: %w",
			next.ID.Hex(), expectedVersion, lifecycle.ErrConflict)
	}
	return next, nil
}

// ListByGroup returns the group's requests, newest first.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupRequest, error) {
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []models.GroupRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDuePaymentDeadlines returns funding requests whose payment deadline
// has passed as of now. The scheduler turns each into a DeadlineExpired
// event.
func (s *Store) ListDuePaymentDeadlines(ctx context.Context, now time.Time) ([]models.GroupRequest, error) {
	return s.list(ctx, bson.M{
		"status":           models.StatusFunding,
		"payment_deadline": bson.M{"$lte": now},
	})
}

// ListDueSessionStarts returns payment-complete requests whose scheduled
// start time has arrived.
func (s *Store) ListDueSessionStarts(ctx context.Context, now time.Time) ([]models.GroupRequest, error) {
	return s.list(ctx, bson.M{
		"status":             models.StatusPaymentComplete,
		"scheduled_datetime": bson.M{"$lte": now},
	})
}

// ListConferenceLinkDue returns payment-complete requests inside the
// conference-link window that have no link yet.
func (s *Store) ListConferenceLinkDue(ctx context.Context, now time.Time, window time.Duration) ([]models.GroupRequest, error) {
	return s.list(ctx, bson.M{
		"status":             models.StatusPaymentComplete,
		"scheduled_datetime": bson.M{"$lte": now.Add(window)},
		"conference_link":    bson.M{"$in": bson.A{nil, ""}},
	})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.GroupRequest, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var out []models.GroupRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Watch subscribes to changes on one request document and delivers each
// fresh snapshot to fn until the returned unsubscribe func is called (or
// ctx is cancelled). Views built on this are eventually consistent; the
// stored document remains the only truth.
//
// Change streams need a replica set; on a standalone mongod Watch returns
// the server's error and callers fall back to polling reads.
func (s *Store) Watch(ctx context.Context, id primitive.ObjectID, fn func(models.GroupRequest)) (func(), error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": id}}},
	}
	cs, err := s.c.Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cs.Close(context.Background())
		for cs.Next(ctx) {
			var ev struct {
				FullDocument models.GroupRequest `bson:"fullDocument"`
			}
			if err := cs.Decode(&ev); err != nil {
				continue
			}
			if !ev.FullDocument.ID.IsZero() {
				fn(ev.FullDocument)
			}
		}
	}()
	return cancel, nil
}
