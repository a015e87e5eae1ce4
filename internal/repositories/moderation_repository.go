package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ModerationLogRepository stores content analysis verdicts
type ModerationLogRepository interface {
	Record(ctx context.Context, record *models.ModerationRecord) error
	ListRecent(ctx context.Context, limit int64) ([]models.ModerationRecord, error)
	ListByUser(ctx context.Context, userID uint, limit int64) ([]models.ModerationRecord, error)
}

// MongoModerationLogRepository implements ModerationLogRepository for MongoDB
type MongoModerationLogRepository struct {
	collection *mongo.Collection
}

// NewMongoModerationLogRepository creates a new MongoModerationLogRepository
func NewMongoModerationLogRepository(db *mongo.Database) *MongoModerationLogRepository {
	return &MongoModerationLogRepository{collection: db.Collection("moderation_logs")}
}

func (r *MongoModerationLogRepository) Record(ctx context.Context, record *models.ModerationRecord) error {
	record.ID = primitive.NewObjectID()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *MongoModerationLogRepository) ListRecent(ctx context.Context, limit int64) ([]models.ModerationRecord, error) {
	return r.find(ctx, bson.M{}, limit)
}

func (r *MongoModerationLogRepository) ListByUser(ctx context.Context, userID uint, limit int64) ([]models.ModerationRecord, error) {
	return r.find(ctx, bson.M{"user_id": userID}, limit)
}

func (r *MongoModerationLogRepository) find(ctx context.Context, filter bson.M, limit int64) ([]models.ModerationRecord, error) {
	records := []models.ModerationRecord{}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
