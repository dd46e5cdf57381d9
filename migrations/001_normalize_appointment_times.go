package migrations

import (
	"context"
	"strings"
	"time"

	"HospitalHub/database"
	"HospitalHub/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// canonicalClock reports the HH:MM form of a stored time and whether it differs.
func canonicalClock(stored string) (string, bool) {
	clock, err := util.ParseClock(stored)
	if err != nil || clock == strings.TrimSpace(stored) {
		return stored, false
	}
	return clock, true
}

func NormalizeAppointmentTimes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(database.AppointmentCollection)
	cursor, err := coll.Find(ctx, bson.M{"time": bson.M{"$regex": "[AaPp][Mm]$"}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	updated := 0
	for cursor.Next(ctx) {
		var doc struct {
			ID   primitive.ObjectID `bson:"_id"`
			Time string             `bson:"time"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		clock, changed := canonicalClock(doc.Time)
		if !changed {
			log.Warn().Str("id", doc.ID.Hex()).Str("time", doc.Time).Msg("unparseable appointment time left as is")
			continue
		}
		if _, err := coll.UpdateByID(ctx, doc.ID, bson.M{"$set": bson.M{
			"time":      clock,
			"updatedAt": time.Now().UTC(),
		}}); err != nil {
			return err
		}
		updated++
	}
	log.Info().Int("updated", updated).Msg("normalized appointment times")
	return cursor.Err()
}
