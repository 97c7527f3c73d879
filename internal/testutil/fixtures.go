// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewGroupRequest builds a pending request document with sensible
// defaults. Tests mutate the returned value (status, sets, deadlines)
// before seeding it into a store.
func NewGroupRequest(groupID, creatorID primitive.ObjectID) models.GroupRequest {
	now := time.Now().UTC()
	return models.GroupRequest{
		ID:               primitive.NewObjectID(),
		GroupID:          groupID,
		CreatorID:        creatorID,
		Topic:            "Intro to Distributed Consensus",
		Description:      "Test request description",
		Status:           models.StatusPending,
		Votes:            []primitive.ObjectID{},
		Participants:     []primitive.ObjectID{},
		Teachers:         []primitive.ObjectID{},
		PaidParticipants: []primitive.ObjectID{},
		RateCents:        5000,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// FundingRequest builds a request already in the funding phase: voting
// passed, a teacher is selected, and a payment deadline is set.
func FundingRequest(groupID, creatorID primitive.ObjectID, participants []primitive.ObjectID, deadline time.Time) models.GroupRequest {
	req := NewGroupRequest(groupID, creatorID)
	teacher := primitive.NewObjectID()
	req.Status = models.StatusFunding
	req.Votes = append([]primitive.ObjectID{}, participants...)
	req.Participants = append([]primitive.ObjectID{creatorID}, participants...)
	req.Teachers = []primitive.ObjectID{teacher}
	req.SelectedTeacherID = &teacher
	req.PaymentDeadline = &deadline
	req.RecomputeCounts()
	return req
}

// Fixtures provides helper methods for creating test data in MongoDB.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGroup creates a test group.
func (f *Fixtures) CreateGroup(ctx context.Context, name string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: "Test group description",
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateGroupMembership creates a membership record linking a user to a group.
func (f *Fixtures) CreateGroupMembership(ctx context.Context, groupID, userID primitive.ObjectID, role string) models.GroupMembership {
	f.t.Helper()

	membership := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, membership); err != nil {
		f.t.Fatalf("failed to create test group membership: %v", err)
	}
	return membership
}

// CreateGroupRequest inserts a request document as-is.
func (f *Fixtures) CreateGroupRequest(ctx context.Context, req models.GroupRequest) models.GroupRequest {
	f.t.Helper()

	if _, err := f.db.Collection("group_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test group request: %v", err)
	}
	return req
}
