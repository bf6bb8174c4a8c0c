package repository

import (
	"context"
	"time"

	"focusflow/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepo handles MongoDB operations for work sessions
type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) (string, error)
	GetByID(ctx context.Context, id, userID string) (*model.Session, error)
	UpdateNotes(ctx context.Context, id, userID, notes string) (*model.Session, error)
	UpdateDuration(ctx context.Context, id, userID string, duration int) (*model.Session, error)
	Finalize(ctx context.Context, id, userID, notes string, duration int, finishedAt time.Time, reflectionID string) (*model.Session, error)
	ListRecentByContext(ctx context.Context, contextID, userID string, limit int) ([]*model.Session, error)
	CountByContext(ctx context.Context, contextID, userID string) (int64, error)
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) (string, error) {
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	if session.Duration < 0 {
		session.Duration = 0
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id, userID string) (*model.Session, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var session model.Session
	err = r.collection.FindOne(ctx, bson.M{"_id": oid, "userId": userID}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	session.ID = id
	return &session, nil
}

func (r *sessionRepo) UpdateNotes(ctx context.Context, id, userID, notes string) (*model.Session, error) {
	return r.patch(ctx, id, userID, bson.M{
		"notes":     notes,
		"updatedAt": time.Now(),
	})
}

func (r *sessionRepo) UpdateDuration(ctx context.Context, id, userID string, duration int) (*model.Session, error) {
	return r.patch(ctx, id, userID, bson.M{
		"duration":  duration,
		"updatedAt": time.Now(),
	})
}

// Finalize writes notes, duration, finish timestamp and reflection reference
// as a single logical update.
func (r *sessionRepo) Finalize(ctx context.Context, id, userID, notes string, duration int, finishedAt time.Time, reflectionID string) (*model.Session, error) {
	return r.patch(ctx, id, userID, bson.M{
		"notes":        notes,
		"duration":     duration,
		"finishedAt":   finishedAt,
		"reflectionId": reflectionID,
		"updatedAt":    time.Now(),
	})
}

func (r *sessionRepo) patch(ctx context.Context, id, userID string, set bson.M) (*model.Session, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "userId": userID},
		bson.M{"$set": set},
	)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id, userID)
}

func (r *sessionRepo) ListRecentByContext(ctx context.Context, contextID, userID string, limit int) ([]*model.Session, error) {
	if limit <= 0 {
		limit = 10
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"contextId": contextID, "userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) CountByContext(ctx context.Context, contextID, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"contextId": contextID, "userId": userID})
}
