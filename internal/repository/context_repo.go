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

// ContextRepo handles MongoDB operations for contexts
type ContextRepo interface {
	Create(ctx context.Context, c *model.Context) (string, error)
	GetByID(ctx context.Context, id, userID string) (*model.Context, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Context, error)
	Update(ctx context.Context, id, userID, title, description string) (*model.Context, error)
	Touch(ctx context.Context, id, userID string) error
}

type contextRepo struct {
	collection *mongo.Collection
}

// NewContextRepo creates a new context repository
func NewContextRepo(db *mongo.Database) ContextRepo {
	return &contextRepo{
		collection: db.Collection("contexts"),
	}
}

func (r *contextRepo) Create(ctx context.Context, c *model.Context) (string, error) {
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *contextRepo) GetByID(ctx context.Context, id, userID string) (*model.Context, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var c model.Context
	err = r.collection.FindOne(ctx, bson.M{"_id": oid, "userId": userID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

func (r *contextRepo) ListByUser(ctx context.Context, userID string) ([]*model.Context, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var contexts []*model.Context
	if err := cursor.All(ctx, &contexts); err != nil {
		return nil, err
	}
	return contexts, nil
}

func (r *contextRepo) Update(ctx context.Context, id, userID, title, description string) (*model.Context, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "userId": userID},
		bson.M{"$set": bson.M{
			"title":       title,
			"description": description,
			"updatedAt":   time.Now(),
		}},
	)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id, userID)
}

func (r *contextRepo) Touch(ctx context.Context, id, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "userId": userID},
		bson.M{"$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
