package repository

import (
	"context"
	"innkeep/pkg/config"
	mongotx "innkeep/pkg/db/mongo"
	"innkeep/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Reservation_locks"
)

// ReservationLockRepository stores advisory lock documents. The collection
// carries a TTL index on expires_at so abandoned locks disappear.
type ReservationLockRepository interface {
	// Create returns a duplicate key error if the lock already exists.
	Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error)
	// Delete removes the lock only if it still carries token.
	Delete(ctx context.Context, lockID, token string) error
	// DeleteExpired removes a lock whose TTL passed but that the TTL monitor
	// has not yet collected.
	DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error)
}

type mongoReservationLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewReservationLockRepository(cfg *config.Config) ReservationLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoReservationLockRepository) Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoReservationLockRepository) Delete(ctx context.Context, lockID, token string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "token": token})
	return err
}

func (r *mongoReservationLockRepository) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
