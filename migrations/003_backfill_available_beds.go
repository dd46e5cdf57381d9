package migrations

import (
	"context"

	"HospitalHub/database"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// availableBedsPipeline recomputes available as total minus occupied, missing counts read as zero.
var availableBedsPipeline = mongo.Pipeline{
	{{Key: "$set", Value: bson.M{
		"bedCapacity.total":    bson.M{"$ifNull": bson.A{"$bedCapacity.total", 0}},
		"bedCapacity.occupied": bson.M{"$ifNull": bson.A{"$bedCapacity.occupied", 0}},
	}}},
	{{Key: "$set", Value: bson.M{
		"bedCapacity.available": bson.M{"$subtract": bson.A{"$bedCapacity.total", "$bedCapacity.occupied"}},
	}}},
}

func BackfillAvailableBeds(ctx context.Context, db *mongo.Database) error {
	res, err := db.Collection(database.DepartmentCollection).UpdateMany(ctx, bson.M{}, availableBedsPipeline)
	if err != nil {
		return err
	}
	log.Info().Int64("updated", res.ModifiedCount).Msg("backfilled available beds")
	return nil
}
