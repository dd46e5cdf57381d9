package migrations

import (
	"context"
	"time"

	"HospitalHub/database"
	"HospitalHub/models"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func ScheduledToPending(ctx context.Context, db *mongo.Database) error {
	res, err := db.Collection(database.AppointmentCollection).UpdateMany(ctx,
		bson.M{"status": models.StatusScheduled},
		bson.M{"$set": bson.M{
			"status":    models.StatusPending,
			"updatedAt": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	log.Info().Int64("updated", res.ModifiedCount).Msg("renamed scheduled appointments to pending")
	return nil
}
