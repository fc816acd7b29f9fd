package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

const accessEventsCollection = "access_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(accessEventsCollection)}
}

// EnsureIndexes creates the lookup indexes for per-user and per-resource
// audit queries. Existing indexes are left alone.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "at", Value: -1}},
			Options: options.Index().SetName("username_at"),
		},
		{
			Keys:    bson.D{{Key: "resource", Value: 1}, {Key: "at", Value: -1}},
			Options: options.Index().SetName("resource_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo: ensure audit indexes: %w", err)
	}
	return nil
}

// InsertAccessEvent stores one decision. Event ids are unique, so a
// redelivered event is treated as already written.
func (r *AuditRepository) InsertAccessEvent(ctx context.Context, event *domain.AccessEvent) error {
	doc := *event
	doc.At = event.At.UTC()

	_, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("mongo: insert access event: %w", err)
	}
	return nil
}
