package repository

import (
	"context"
	"time"

	"focusflow/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReflectionRepo handles MongoDB operations for session reflections
type ReflectionRepo interface {
	Create(ctx context.Context, reflection *model.Reflection) (string, error)
	GetByID(ctx context.Context, id, userID string) (*model.Reflection, error)
}

type reflectionRepo struct {
	collection *mongo.Collection
}

// NewReflectionRepo creates a new reflection repository
func NewReflectionRepo(db *mongo.Database) ReflectionRepo {
	return &reflectionRepo{
		collection: db.Collection("session_reflections"),
	}
}

func (r *reflectionRepo) Create(ctx context.Context, reflection *model.Reflection) (string, error) {
	reflection.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, reflection)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *reflectionRepo) GetByID(ctx context.Context, id, userID string) (*model.Reflection, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var reflection model.Reflection
	err = r.collection.FindOne(ctx, bson.M{"_id": oid, "userId": userID}).Decode(&reflection)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	reflection.ID = id
	return &reflection, nil
}
