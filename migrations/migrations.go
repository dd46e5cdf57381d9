package migrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"HospitalHub/database"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Migration struct {
	ID          string
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
}

// All lists the migrations in the order they must run.
var All = []Migration{
	{ID: "001_normalize_appointment_times", Description: "rewrite h:mm AM/PM appointment times to HH:MM", Up: NormalizeAppointmentTimes},
	{ID: "002_scheduled_to_pending", Description: "rename the legacy scheduled status to pending", Up: ScheduledToPending},
	{ID: "003_backfill_available_beds", Description: "derive bedCapacity.available from total and occupied", Up: BackfillAvailableBeds},
	{ID: "004_backfill_slot_keys", Description: "add slot keys to appointments still holding a slot", Up: BackfillSlotKeys},
}

type record struct {
	ID          string    `bson:"_id"`
	Description string    `bson:"description"`
	AppliedAt   time.Time `bson:"appliedAt"`
}

/*
* Run every migration not yet recorded in the migrations collection
* Stop at the first failure so later steps never see a half migrated store
 */
func Run(ctx context.Context, db *mongo.Database) (int, error) {
	coll := db.Collection(database.MigrationCollection)
	applied := 0
	for _, m := range All {
		err := coll.FindOne(ctx, bson.M{"_id": m.ID}).Err()
		if err == nil {
			log.Debug().Str("migration", m.ID).Msg("already applied")
			continue
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return applied, fmt.Errorf("check migration %s: %w", m.ID, err)
		}

		log.Info().Str("migration", m.ID).Msg(m.Description)
		if err := m.Up(ctx, db); err != nil {
			log.Error().Err(err).Str("migration", m.ID).Msg("migration failed")
			return applied, fmt.Errorf("migration %s: %w", m.ID, err)
		}
		if _, err := coll.InsertOne(ctx, record{ID: m.ID, Description: m.Description, AppliedAt: time.Now().UTC()}); err != nil {
			return applied, fmt.Errorf("record migration %s: %w", m.ID, err)
		}
		applied++
	}
	return applied, nil
}
