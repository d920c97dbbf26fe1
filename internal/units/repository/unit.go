package repository

import (
	"context"
	"errors"
	"fmt"
	unitserrors "innkeep/internal/units/errors"
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
	CollectionName = "Units"
)

type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	FindByID(ctx context.Context, id string) (*model.Unit, error)
	// FindByHotel lists a hotel's units ordered by name. A limit of zero
	// returns all of them.
	FindByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Unit, error)
	CountByHotel(ctx context.Context, hotelID string) (int64, error)
	Update(ctx context.Context, id string, unit *model.Unit) error
}

type mongoUnitRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUnitRepository(cfg *config.Config) UnitRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUnitRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoUnitRepository) Create(ctx context.Context, unit *model.Unit) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	unit.CreatedAt = now
	unit.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, unit)
	if err != nil {
		return fmt.Errorf("failed to create unit: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		unit.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUnitRepository) FindByID(ctx context.Context, id string) (*model.Unit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	var unit model.Unit
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&unit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, unitserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}

	return &unit, nil
}

func (r *mongoUnitRepository) FindByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Unit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(offset)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"hotel_id": hotelID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find units: %w", err)
	}
	defer cursor.Close(ctx)

	var units []*model.Unit
	if err = cursor.All(ctx, &units); err != nil {
		return nil, fmt.Errorf("failed to decode units: %w", err)
	}

	return units, nil
}

func (r *mongoUnitRepository) CountByHotel(ctx context.Context, hotelID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"hotel_id": hotelID})
	if err != nil {
		return 0, fmt.Errorf("failed to count units: %w", err)
	}
	return count, nil
}

func (r *mongoUnitRepository) Update(ctx context.Context, id string, unit *model.Unit) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	unit.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":         unit.Name,
			"max_adults":   unit.MaxAdults,
			"max_children": unit.MaxChildren,
			"max_guests":   unit.MaxGuests,
			"rates":        unit.Rates,
			"available":    unit.Available,
			"updated_at":   unit.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update unit: %w", err)
	}
	if result.MatchedCount == 0 {
		return unitserrors.ErrNotFound
	}
	return nil
}
