package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"duopet-backend/models"
)

// AuditRecorder stores login attempts.
type AuditRecorder interface {
	Record(ctx context.Context, event models.LoginEvent) error
}

// AuditStats counts stored login attempts.
type AuditStats interface {
	CountAttempts(ctx context.Context) (total, failed int64, err error)
}

// MongoAuditRecorder writes login events to a MongoDB collection.
type MongoAuditRecorder struct {
	coll *mongo.Collection
}

func NewMongoAuditRecorder(coll *mongo.Collection) *MongoAuditRecorder {
	return &MongoAuditRecorder{coll: coll}
}

func (r *MongoAuditRecorder) Record(ctx context.Context, event models.LoginEvent) error {
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert login event: %w", err)
	}
	return nil
}

func (r *MongoAuditRecorder) CountAttempts(ctx context.Context) (int64, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, 0, fmt.Errorf("count login events: %w", err)
	}
	failed, err := r.coll.CountDocuments(ctx, bson.D{{Key: "success", Value: false}})
	if err != nil {
		return 0, 0, fmt.Errorf("count failed login events: %w", err)
	}
	return total, failed, nil
}

// NopAuditRecorder drops events. Used when MongoDB is not configured.
type NopAuditRecorder struct{}

func (NopAuditRecorder) Record(context.Context, models.LoginEvent) error { return nil }

func (NopAuditRecorder) CountAttempts(context.Context) (int64, int64, error) { return 0, 0, nil }
