package mongostore

import (
	"context"
	"errors"
	"time"

	"HospitalHub/models"
	"HospitalHub/repository"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type appointmentRepo struct{ coll *mongo.Collection }

func (r *appointmentRepo) Insert(ctx context.Context, a *models.Appointment) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, a)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		log.Error().Err(err).Str("appointmentId", a.AppointmentID).Msg("insert appointment failed")
	}
	return translate(err)
}

func (r *appointmentRepo) FindByAppointmentID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	var a models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"appointmentId": appointmentID}).Decode(&a)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *appointmentRepo) SlotTaken(ctx context.Context, slotKey string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"slotKey": slotKey})
	if err != nil {
		log.Error().Err(err).Str("slotKey", slotKey).Msg("slot lookup failed")
		return false, err
	}
	return n > 0, nil
}

/*
* Compare-and-set on the current status
* No match means either the appointment is gone or someone moved it first
 */
func (r *appointmentRepo) UpdateStatus(ctx context.Context, appointmentID string, from models.AppointmentStatus, change repository.StatusChange) (*models.Appointment, error) {
	set := bson.M{
		"status":    change.To,
		"updatedAt": change.At,
		"updatedBy": change.By,
	}
	if change.Notes != "" {
		set["notes"] = change.Notes
	}
	update := bson.M{}
	switch change.To {
	case models.StatusCancelled:
		set["cancellationReason"] = change.Reason
		set["cancelledBy"] = string(change.ActorRole)
		set["cancelledAt"] = change.At
		update["$unset"] = bson.M{"slotKey": ""}
	case models.StatusCompleted:
		set["completedAt"] = change.At
	}
	update["$set"] = set

	var a models.Appointment
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"appointmentId": appointmentID, "status": from}, update, afterUpdate()).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.staleOrMissing(ctx, appointmentID)
	}
	if err != nil {
		log.Error().Err(err).Str("appointmentId", appointmentID).Msg("status update failed")
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepo) staleOrMissing(ctx context.Context, appointmentID string) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"appointmentId": appointmentID})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrStale
}

func (r *appointmentRepo) ClaimPrescription(ctx context.Context, appointmentID string, prescriptionID primitive.ObjectID, at time.Time) (*models.Appointment, error) {
	filter := bson.M{
		"appointmentId": appointmentID,
		"status":        models.StatusCompleted,
		"prescription":  bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"prescription": prescriptionID, "updatedAt": at}}

	var a models.Appointment
	err := r.coll.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.staleOrMissing(ctx, appointmentID)
	}
	if err != nil {
		log.Error().Err(err).Str("appointmentId", appointmentID).Msg("prescription claim failed")
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepo) ReleasePrescription(ctx context.Context, appointmentID string, prescriptionID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"appointmentId": appointmentID, "prescription": prescriptionID},
		bson.M{"$unset": bson.M{"prescription": ""}},
	)
	if err != nil {
		log.Error().Err(err).Str("appointmentId", appointmentID).Msg("prescription release failed")
	}
	return err
}

func (r *appointmentRepo) List(ctx context.Context, q repository.AppointmentQuery) ([]models.Appointment, int64, error) {
	q.Normalize()
	filter := q.Filter()
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("count appointments failed")
		return nil, 0, err
	}
	items := []models.Appointment{}
	cur, err := r.coll.Find(ctx, filter, findPage(q.Page).SetSort(q.Sort()))
	if err := decodeAll(ctx, cur, err, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *appointmentRepo) ListActiveFor(ctx context.Context, field string, id primitive.ObjectID) ([]models.Appointment, error) {
	filter := bson.M{
		field:    id,
		"status": bson.M{"$in": bson.A{models.StatusPending, models.StatusConfirmed}},
	}
	var items []models.Appointment
	cur, err := r.coll.Find(ctx, filter)
	if err := decodeAll(ctx, cur, err, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *appointmentRepo) ListPendingBefore(ctx context.Context, day time.Time) ([]models.Appointment, error) {
	filter := bson.M{"status": models.StatusPending, "date": bson.M{"$lt": day}}
	var items []models.Appointment
	cur, err := r.coll.Find(ctx, filter)
	if err := decodeAll(ctx, cur, err, &items); err != nil {
		return nil, err
	}
	return items, nil
}

/*
* One round trip with $facet
* Each facet groups the same date-bounded match differently
 */
func (r *appointmentRepo) Stats(ctx context.Context, since time.Time) (*repository.AppointmentStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": since}}}},
		{{Key: "$facet", Value: bson.M{
			"total": bson.A{bson.M{"$count": "count"}},
			"byStatus": bson.A{
				bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
			},
			"byDay": bson.A{
				bson.M{"$group": bson.M{
					"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$date"}},
					"count": bson.M{"$sum": 1},
				}},
				bson.M{"$sort": bson.M{"_id": 1}},
			},
			"byDepartment": bson.A{
				bson.M{"$group": bson.M{"_id": "$department", "name": bson.M{"$first": "$departmentName"}, "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "name", Value: 1}}},
			},
			"byDoctor": bson.A{
				bson.M{"$group": bson.M{"_id": "$doctor", "name": bson.M{"$first": "$doctorName"}, "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "name", Value: 1}}},
			},
		}}},
	}

	var facets []struct {
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
		ByStatus []struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		} `bson:"byStatus"`
		ByDay        []repository.DayCount   `bson:"byDay"`
		ByDepartment []repository.NamedCount `bson:"byDepartment"`
		ByDoctor     []repository.NamedCount `bson:"byDoctor"`
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err := decodeAll(ctx, cur, err, &facets); err != nil {
		return nil, err
	}

	stats := &repository.AppointmentStats{ByStatus: map[string]int64{}}
	if len(facets) == 0 {
		return stats, nil
	}
	f := facets[0]
	if len(f.Total) > 0 {
		stats.Total = f.Total[0].Count
	}
	for _, s := range f.ByStatus {
		stats.ByStatus[s.Status] = s.Count
	}
	stats.ByDay = f.ByDay
	stats.ByDepartment = f.ByDepartment
	stats.ByDoctor = f.ByDoctor
	return stats, nil
}

func (r *appointmentRepo) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"date": bson.M{"$gte": from, "$lt": to}})
	if err != nil {
		log.Error().Err(err).Msg("count appointments in range failed")
	}
	return n, err
}

func (r *appointmentRepo) RevenueByMonth(ctx context.Context, since time.Time) ([]repository.MonthRevenue, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusCompleted, "date": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$date"}},
			"revenue":      bson.M{"$sum": "$consultationFee"},
			"appointments": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	out := []repository.MonthRevenue{}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err := decodeAll(ctx, cur, err, &out); err != nil {
		return nil, err
	}
	return out, nil
}
