// Package mongostore implements the repository ports on MongoDB.
package mongostore

import (
	"context"
	"errors"

	"HospitalHub/database"
	"HospitalHub/repository"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func New(db *mongo.Database) repository.Set {
	return repository.Set{
		Users:         &userRepo{coll: db.Collection(database.UserCollection)},
		Admins:        &adminRepo{coll: db.Collection(database.AdminCollection)},
		Doctors:       &doctorRepo{coll: db.Collection(database.DoctorCollection)},
		Patients:      &patientRepo{coll: db.Collection(database.PatientCollection)},
		Appointments:  &appointmentRepo{coll: db.Collection(database.AppointmentCollection)},
		Departments:   &departmentRepo{coll: db.Collection(database.DepartmentCollection)},
		Leaves:        &leaveRepo{coll: db.Collection(database.LeaveCollection)},
		Prescriptions: &prescriptionRepo{coll: db.Collection(database.PrescriptionCollection)},
		Notifications: &notificationRepo{coll: db.Collection(database.NotificationCollection)},
		Activity:      &activityRepo{db: db},
		Counters:      &counterRepo{db: db},
	}
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	}
	return err
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func findPage(p repository.Page) *options.FindOptions {
	return options.Find().SetSkip(int64(p.Skip())).SetLimit(int64(p.Limit))
}

/*
* Decode every document of a cursor into out
* The cursor is always closed
 */
func decodeAll(ctx context.Context, cur *mongo.Cursor, err error, out interface{}) error {
	if err != nil {
		log.Error().Err(err).Msg("mongo find failed")
		return err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, out); err != nil {
		log.Error().Err(err).Msg("mongo cursor decode failed")
		return err
	}
	return nil
}

type counterRepo struct{ db *mongo.Database }

func (r *counterRepo) Next(ctx context.Context, name string) (int64, error) {
	return database.NextSequence(ctx, r.db, name)
}
