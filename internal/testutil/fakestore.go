// internal/testutil/fakestore.go
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FakeRequestStore is an in-memory stand-in for the MongoDB request
// store with the same compare-and-swap contract: UpdateIfVersion only
// succeeds when the stored version still matches, so runner and handler
// tests can exercise conflict handling without a server.
type FakeRequestStore struct {
	mu       sync.Mutex
	docs     map[primitive.ObjectID]models.GroupRequest
	watchers map[primitive.ObjectID][]func(models.GroupRequest)

	// FailUpdates forces the next N UpdateIfVersion calls to report a
	// version conflict regardless of the actual version, for retry tests.
	FailUpdates int

	// Updates counts accepted writes.
	Updates int
}

// NewFakeRequestStore seeds a fake store with the given documents.
func NewFakeRequestStore(docs ...models.GroupRequest) *FakeRequestStore {
	s := &FakeRequestStore{
		docs:     make(map[primitive.ObjectID]models.GroupRequest),
		watchers: make(map[primitive.ObjectID][]func(models.GroupRequest)),
	}
	for _, d := range docs {
		s.docs[d.ID] = d.Clone()
	}
	return s
}

func (s *FakeRequestStore) Get(ctx context.Context, id primitive.ObjectID) (models.GroupRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return models.GroupRequest{}, fmt.Errorf("get group request %s: %w", id.Hex(), mongo.ErrNoDocuments)
	}
	return doc.Clone(), nil
}

func (s *FakeRequestStore) UpdateIfVersion(ctx context.Context, next models.GroupRequest, expectedVersion int64) (models.GroupRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailUpdates > 0 {
		s.FailUpdates--
		return models.GroupRequest{}, fmt.Errorf("update group request %s: %w", next.ID.Hex(), lifecycle.ErrConflict)
	}

	cur, ok := s.docs[next.ID]
	if !ok || cur.Version != expectedVersion {
		return models.GroupRequest{}, fmt.Errorf("update group request %s: %w", next.ID.Hex(), lifecycle.ErrConflict)
	}

	next.Version = expectedVersion + 1
	s.docs[next.ID] = next.Clone()
	s.Updates++
	for _, fn := range s.watchers[next.ID] {
		fn(next.Clone())
	}
	return next, nil
}

// Watch registers fn for every accepted write to id, mirroring the
// change-stream contract of the MongoDB store.
func (s *FakeRequestStore) Watch(ctx context.Context, id primitive.ObjectID, fn func(models.GroupRequest)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers[id] = append(s.watchers[id], fn)
	return func() {}, nil
}

// Watchers reports how many subscriptions exist for id.
func (s *FakeRequestStore) Watchers(id primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers[id])
}

func (s *FakeRequestStore) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.GroupRequest
	for _, d := range s.docs {
		if d.GroupID == groupID {
			out = append(out, d.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// FakeMemberships is an in-memory membership directory.
type FakeMemberships struct {
	mu      sync.Mutex
	members map[string]bool
}

// NewFakeMemberships builds a directory where every listed user belongs
// to the given group.
func NewFakeMemberships(groupID primitive.ObjectID, userIDs ...primitive.ObjectID) *FakeMemberships {
	f := &FakeMemberships{members: make(map[string]bool)}
	for _, id := range userIDs {
		f.Add(groupID, id)
	}
	return f
}

func (f *FakeMemberships) Add(groupID, userID primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[groupID.Hex()+"/"+userID.Hex()] = true
}

func (f *FakeMemberships) IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[groupID.Hex()+"/"+userID.Hex()], nil
}
