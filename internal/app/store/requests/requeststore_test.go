package requeststore_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	requeststore "github.com/dalemusser/sessionhub/internal/app/store/requests"
	"github.com/dalemusser/sessionhub/internal/domain/models"
	"github.com/dalemusser/sessionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewGroupRequest(primitive.NewObjectID(), primitive.NewObjectID())
	created, err := store.Create(ctx, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Version != 1 {
		t.Errorf("Version: got %d, want 1", created.Version)
	}
	if created.Status != models.StatusPending {
		t.Errorf("Status: got %s, want pending", created.Status)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Topic != req.Topic {
		t.Errorf("Topic: got %q, want %q", got.Topic, req.Topic)
	}
	if got.Version != 1 {
		t.Errorf("Version after round trip: got %d, want 1", got.Version)
	}
}

func TestStore_UpdateIfVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req, err := store.Create(ctx, testutil.NewGroupRequest(primitive.NewObjectID(), primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req.Topic = "Updated topic"
	updated, err := store.UpdateIfVersion(ctx, req, 1)
	if err != nil {
		t.Fatalf("UpdateIfVersion failed: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("Version: got %d, want 2", updated.Version)
	}

	got, err := store.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Topic != "Updated topic" {
		t.Errorf("Topic: got %q, want %q", got.Topic, "Updated topic")
	}
}

func TestStore_UpdateIfVersion_StaleVersionConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req, err := store.Create(ctx, testutil.NewGroupRequest(primitive.NewObjectID(), primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// First writer wins.
	if _, err := store.UpdateIfVersion(ctx, req, 1); err != nil {
		t.Fatalf("first write failed: %v", err)
	}

	// Second writer still holds version 1 and must lose.
	_, err = store.UpdateIfVersion(ctx, req, 1)
	if !errors.Is(err, lifecycle.ErrConflict) {
		t.Fatalf("stale write: got %v, want ErrConflict", err)
	}

	got, err := store.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("Version: got %d, want 2 (losing write must not land)", got.Version)
	}
}

func TestStore_ListByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, testutil.NewGroupRequest(groupID, primitive.NewObjectID())); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := store.Create(ctx, testutil.NewGroupRequest(primitive.NewObjectID(), primitive.NewObjectID())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.ListByGroup(ctx, groupID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 requests for the group, got %d", len(got))
	}
}

func TestStore_ListDuePaymentDeadlines(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	groupID := primitive.NewObjectID()

	due := testutil.FundingRequest(groupID, primitive.NewObjectID(), nil, now.Add(-time.Minute))
	fixtures.CreateGroupRequest(ctx, due)

	notYet := testutil.FundingRequest(groupID, primitive.NewObjectID(), nil, now.Add(time.Hour))
	fixtures.CreateGroupRequest(ctx, notYet)

	got, err := store.ListDuePaymentDeadlines(ctx, now)
	if err != nil {
		t.Fatalf("ListDuePaymentDeadlines failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 due request, got %d", len(got))
	}
	if got[0].ID != due.ID {
		t.Errorf("wrong request returned: got %s, want %s", got[0].ID.Hex(), due.ID.Hex())
	}
}

func TestStore_ListConferenceLinkDue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	groupID := primitive.NewObjectID()

	inside := testutil.NewGroupRequest(groupID, primitive.NewObjectID())
	inside.Status = models.StatusPaymentComplete
	start := now.Add(5 * time.Minute)
	inside.ScheduledAt = &start
	fixtures.CreateGroupRequest(ctx, inside)

	linked := testutil.NewGroupRequest(groupID, primitive.NewObjectID())
	linked.Status = models.StatusPaymentComplete
	linked.ScheduledAt = &start
	linked.ConferenceLink = "https://meet.sessionhub.app/existing"
	fixtures.CreateGroupRequest(ctx, linked)

	got, err := store.ListConferenceLinkDue(ctx, now, lifecycle.ConferenceLinkWindow)
	if err != nil {
		t.Fatalf("ListConferenceLinkDue failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 link-due request, got %d", len(got))
	}
	if got[0].ID != inside.ID {
		t.Errorf("wrong request returned: got %s, want %s", got[0].ID.Hex(), inside.ID.Hex())
	}
}
