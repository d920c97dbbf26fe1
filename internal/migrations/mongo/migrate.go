package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"innkeep/internal/migrations/mongo/validators"
	reservationsrepo "innkeep/internal/reservations/repository"
	unitsrepo "innkeep/internal/units/repository"
	"innkeep/pkg/logger"
)

var (
	UnitsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "hotel_id", Value: 1},
			{Key: "kind", Value: 1},
			{Key: "name", Value: 1},
		}},
	}

	ReservationsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reference_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{
			{Key: "unit_id", Value: 1},
			{Key: "check_in_date", Value: 1},
			{Key: "check_out_date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "hotel_id", Value: 1},
			{Key: "booking_status", Value: 1},
		}},
	}

	// Expired lock documents are reaped by the TTL monitor at expires_at.
	ReservationLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		unitsrepo.CollectionName: {
			Indexes:   UnitsIndexes,
			Validator: validators.UnitValidator,
		},
		reservationsrepo.CollectionName: {
			Indexes:   ReservationsIndexes,
			Validator: validators.ReservationValidator,
		},
		reservationsrepo.LockCollectionName: {
			Indexes:   ReservationLocksIndexes,
			Validator: validators.ReservationLockValidator,
		},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
