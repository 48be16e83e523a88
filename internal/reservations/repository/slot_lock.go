package repository

import (
	"context"
	"fmt"
	reservationerrors "roomly/internal/reservations/errors"
	"roomly/pkg/config"
	"roomly/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Reservation_locks"

// SlotLockID derives the advisory lock key for a (room, day) slot. All
// writers touching the same slot contend on the same document _id.
func SlotLockID(roomID, date string) string {
	return fmt.Sprintf("slot_%s_%s", roomID, date)
}

// SlotLockRepository provides the per-slot exclusion. Acquisition is a
// unique _id insert; a duplicate key means another request holds the slot.
type SlotLockRepository interface {
	Acquire(ctx context.Context, lockID string, ttl time.Duration) error
	Release(ctx context.Context, lockID string) error
}

type mongoSlotLockRepository struct {
	collection *mongo.Collection
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoSlotLockRepository) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	err := r.insert(ctx, lockID, ttl)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}

	// A stale lock from a crashed holder may still be present until the TTL
	// monitor sweeps it. Reap it ourselves and retry once.
	reaped, reapErr := r.reapExpired(ctx, lockID)
	if reapErr != nil {
		return fmt.Errorf("failed to reap expired slot lock: %w", reapErr)
	}
	if !reaped {
		return reservationerrors.ErrLockHeld
	}

	err = r.insert(ctx, lockID, ttl)
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return reservationerrors.ErrLockHeld
	}
	return fmt.Errorf("failed to acquire slot lock: %w", err)
}

func (r *mongoSlotLockRepository) insert(ctx context.Context, lockID string, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, &model.SlotLock{
		ID:        lockID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	return err
}

func (r *mongoSlotLockRepository) reapExpired(ctx context.Context, lockID string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lockID,
		"expires_at": bson.M{"$lte": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
