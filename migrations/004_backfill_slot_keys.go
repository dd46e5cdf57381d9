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

func activeStatuses() bson.A {
	out := bson.A{}
	for _, s := range models.AppointmentStatuses {
		if s.Active() {
			out = append(out, s)
		}
	}
	return out
}

/*
* Give every slot holding appointment its slot key
* A second booking of the same slot keeps no key and is reported for manual review
 */
func BackfillSlotKeys(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(database.AppointmentCollection)
	cursor, err := coll.Find(ctx, bson.M{
		"status":  bson.M{"$in": activeStatuses()},
		"slotKey": bson.M{"$exists": false},
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	updated, clashes := 0, 0
	for cursor.Next(ctx) {
		var a models.Appointment
		if err := cursor.Decode(&a); err != nil {
			return err
		}
		key := models.SlotKey(a.Doctor, a.Date, a.Time)
		_, err := coll.UpdateByID(ctx, a.ID, bson.M{"$set": bson.M{
			"slotKey":   key,
			"updatedAt": time.Now().UTC(),
		}})
		if mongo.IsDuplicateKeyError(err) {
			log.Warn().Str("appointmentId", a.AppointmentID).Str("slotKey", key).Msg("slot already held by another appointment")
			clashes++
			continue
		}
		if err != nil {
			return err
		}
		updated++
	}
	log.Info().Int("updated", updated).Int("clashes", clashes).Msg("backfilled slot keys")
	return cursor.Err()
}
