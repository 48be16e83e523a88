package repository

import (
	"context"
	"errors"
	"fmt"
	requestererrors "roomly/internal/requesters/errors"
	"roomly/pkg/config"
	"roomly/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Requesters"
)

type RequesterRepository interface {
	Create(ctx context.Context, requester *model.Requester) error
	FindByID(ctx context.Context, id string) (*model.Requester, error)
	FindByEmail(ctx context.Context, email string) (*model.Requester, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Requester, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, requester *model.Requester) error
	Delete(ctx context.Context, id string) error
}

type mongoRequesterRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRequesterRepository(cfg *config.Config) RequesterRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRequesterRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRequesterRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Create inserts the requester. The collection carries a unique index on
// email, so a duplicate surfaces as ErrDuplicateEmail.
func (r *mongoRequesterRepository) Create(ctx context.Context, requester *model.Requester) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	requester.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, requester)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return requestererrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create requester: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		requester.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRequesterRepository) FindByID(ctx context.Context, id string) (*model.Requester, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", requestererrors.ErrInvalidID, id)
	}

	var requester model.Requester
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&requester)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, requestererrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find requester: %w", err)
	}

	return &requester, nil
}

func (r *mongoRequesterRepository) FindByEmail(ctx context.Context, email string) (*model.Requester, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var requester model.Requester
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&requester)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, requestererrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find requester by email: %w", err)
	}

	return &requester, nil
}

func (r *mongoRequesterRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Requester, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find requesters: %w", err)
	}
	defer cursor.Close(ctx)

	var requesters []*model.Requester
	if err = cursor.All(ctx, &requesters); err != nil {
		return nil, fmt.Errorf("failed to decode requesters: %w", err)
	}

	return requesters, nil
}

func (r *mongoRequesterRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count requesters: %w", err)
	}
	return count, nil
}

func (r *mongoRequesterRepository) Update(ctx context.Context, id string, requester *model.Requester) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", requestererrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":  requester.Name,
			"email": requester.Email,
			"role":  requester.Role,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return requestererrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update requester: %w", err)
	}

	if result.MatchedCount == 0 {
		return requestererrors.ErrNotFound
	}

	return nil
}

func (r *mongoRequesterRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", requestererrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete requester: %w", err)
	}

	if result.DeletedCount == 0 {
		return requestererrors.ErrNotFound
	}

	return nil
}
