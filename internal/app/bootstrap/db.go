// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes the request flow depends on.
//
// The compound (status, deadline) indexes serve the deadline scanner's
// periodic queries; the unique membership index backs the external
// directory's one-document-per-(group,user) contract.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	requests := []mongo.IndexModel{
		// Group listing, newest first.
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_gr_group_created"),
		},
		// Deadline scanner: funding requests past their payment deadline.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "payment_deadline", Value: 1}},
			Options: options.Index().SetName("idx_gr_status_deadline"),
		},
		// Deadline scanner: payment-complete requests near their start.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "scheduled_datetime", Value: 1}},
			Options: options.Index().SetName("idx_gr_status_scheduled"),
		},
	}
	if _, err := db.Collection("group_requests").Indexes().CreateMany(ctx, requests); err != nil {
		return err
	}

	memberships := []mongo.IndexModel{
		// Exactly one membership per (group, user); role changes update
		// the document in place.
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_gm_group_user"),
		},
	}
	if _, err := db.Collection("group_memberships").Indexes().CreateMany(ctx, memberships); err != nil {
		return err
	}

	logger.Info("ensured MongoDB indexes")
	return nil
}
