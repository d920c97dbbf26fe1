package repository

import (
	"context"
	"errors"
	"fmt"
	reservationserrors "innkeep/internal/reservations/errors"
	"innkeep/pkg/config"
	mongotx "innkeep/pkg/db/mongo"
	"innkeep/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservations"
)

type ReservationRepository interface {
	// Create stores a new reservation and assigns its ID. A taken reference
	// code yields ErrDuplicateReference.
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindByReferenceCode(ctx context.Context, code string) (*model.Reservation, error)
	FindByUnit(ctx context.Context, unitID string, limit int, offset int64) ([]*model.Reservation, error)
	CountByUnit(ctx context.Context, unitID string) (int64, error)
	// ListByUnitInRange returns the unit's inventory-holding reservations
	// whose stay intersects [from, to).
	ListByUnitInRange(ctx context.Context, unitID string, from, to time.Time) ([]*model.Reservation, error)
	// UpdateIfVersion overwrites the stored reservation only if its version
	// still equals expected, then bumps reservation.Version. A mismatch
	// yields ErrConcurrentModification.
	UpdateIfVersion(ctx context.Context, reservation *model.Reservation, expected int64) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc := reservation.Clone()
	doc.ID = ""
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", reservationserrors.ErrDuplicateReference, reservation.ReferenceCode)
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoReservationRepository) FindByReferenceCode(ctx context.Context, code string) (*model.Reservation, error) {
	return r.findOne(ctx, bson.M{"reference_code": code})
}

func (r *mongoReservationRepository) findOne(ctx context.Context, filter bson.M) (*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, filter).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindByUnit(ctx context.Context, unitID string, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "check_in_date", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{"unit_id": unitID}, opts)
}

func (r *mongoReservationRepository) CountByUnit(ctx context.Context, unitID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"unit_id": unitID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) ListByUnitInRange(ctx context.Context, unitID string, from, to time.Time) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"unit_id": unitID,
		"booking_status": bson.M{"$nin": []model.BookingStatus{
			model.BookingCancelled,
			model.BookingNoShow,
		}},
		"check_in_date":  bson.M{"$lt": to},
		"check_out_date": bson.M{"$gt": from},
	}
	opts := options.Find().SetSort(bson.D{{Key: "check_in_date", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) UpdateIfVersion(ctx context.Context, reservation *model.Reservation, expected int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(reservation.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, reservation.ID)
	}

	doc := reservation.Clone()
	doc.ID = ""
	doc.Version = expected + 1

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": objectID, "version": expected}, doc)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if err != nil {
			return fmt.Errorf("failed to check reservation existence: %w", err)
		}
		if n == 0 {
			return reservationserrors.ErrNotFound
		}
		return fmt.Errorf("%w: expected version %d", reservationserrors.ErrConcurrentModification, expected)
	}

	reservation.Version = expected + 1
	return nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
