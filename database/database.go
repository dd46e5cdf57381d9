package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UserCollection         = "users"
	AdminCollection        = "admins"
	DoctorCollection       = "doctors"
	PatientCollection      = "patients"
	AppointmentCollection  = "appointments"
	DepartmentCollection   = "departments"
	LeaveCollection        = "leaves"
	PrescriptionCollection = "prescriptions"
	NotificationCollection = "notifications"
	CounterCollection      = "counters"
	MigrationCollection    = "migrations"
)

const connectTimeout = 10 * time.Second

/*
* Connect to the cluster and ping the primary
* The caller owns the client and disconnects it on shutdown
 */
func Connect(ctx context.Context, uri, name string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Error().Err(err).Msg("mongo connect failed")
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Error().Err(err).Msg("mongo ping failed")
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info().Str("database", name).Msg("connected to mongo")
	return client, client.Database(name), nil
}

/*
* Indexes the write paths rely on
* slotKey is unique only where the field is a string so cancelled appointments release the slot
 */
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		AppointmentCollection: {
			{Keys: bson.D{{Key: "appointmentId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{
				Keys: bson.D{{Key: "slotKey", Value: 1}},
				Options: options.Index().
					SetName("slotKey_unique_active").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"slotKey": bson.M{"$type": "string"}}),
			},
			{Keys: bson.D{{Key: "doctor", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "patient", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
		},
		DepartmentCollection: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		AdminCollection: {
			{Keys: bson.D{{Key: "adminId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PrescriptionCollection: {
			{Keys: bson.D{{Key: "appointment", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		LeaveCollection: {
			{Keys: bson.D{{Key: "doctor", Value: 1}, {Key: "status", Value: 1}, {Key: "startDate", Value: 1}}},
		},
		NotificationCollection: {
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			log.Error().Err(err).Str("collection", coll).Msg("index creation failed")
			return fmt.Errorf("indexes for %s: %w", coll, err)
		}
	}
	return nil
}

/*
* Atomically increment the named counter and return the new value
* The first call creates the counter at 1
 */
func NextSequence(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection(CounterCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		log.Error().Err(err).Str("counter", name).Msg("sequence increment failed")
		return 0, err
	}
	return doc.Seq, nil
}
