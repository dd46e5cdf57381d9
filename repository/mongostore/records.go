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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type departmentRepo struct{ coll *mongo.Collection }

func (r *departmentRepo) Insert(ctx context.Context, d *models.Department) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, d)
	return translate(err)
}

func (r *departmentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Department, error) {
	var d models.Department
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *departmentRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"code": code}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *departmentRepo) List(ctx context.Context, activeOnly bool) ([]models.Department, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	items := []models.Department{}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err := decodeAll(ctx, cur, err, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *departmentRepo) UpdateBeds(ctx context.Context, id primitive.ObjectID, beds models.BedCapacity, by string, at time.Time) (*models.Department, error) {
	var d models.Department
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"bedCapacity": beds, "updatedAt": at, "updatedBy": by}},
		afterUpdate(),
	).Decode(&d)
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *departmentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error().Err(err).Str("department", id.Hex()).Msg("delete department failed")
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *departmentRepo) BedTotals(ctx context.Context) (int64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"total":    bson.M{"$sum": "$bedCapacity.total"},
			"occupied": bson.M{"$sum": "$bedCapacity.occupied"},
		}}},
	}
	var rows []struct {
		Total    int64 `bson:"total"`
		Occupied int64 `bson:"occupied"`
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err := decodeAll(ctx, cur, err, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Total, rows[0].Occupied, nil
}

type leaveRepo struct{ coll *mongo.Collection }

func (r *leaveRepo) Insert(ctx context.Context, l *models.Leave) error {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, l)
	return translate(err)
}

func (r *leaveRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Leave, error) {
	var l models.Leave
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *leaveRepo) List(ctx context.Context, q repository.LeaveQuery) ([]models.Leave, int64, error) {
	q.Normalize()
	filter := q.Filter()
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("count leaves failed")
		return nil, 0, err
	}
	items := []models.Leave{}
	cur, err := r.coll.Find(ctx, filter, findPage(q.Page).SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err := decodeAll(ctx, cur, err, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

/*
* Only a pending leave can be reviewed or withdrawn
* The status filter makes the second reviewer miss
 */
func (r *leaveRepo) Review(ctx context.Context, id primitive.ObjectID, review repository.LeaveReview) (*models.Leave, error) {
	filter := bson.M{"_id": id, "status": models.LeavePending}
	if review.Doctor != nil {
		filter["doctor"] = *review.Doctor
	}
	set := bson.M{"status": review.Status, "updatedAt": review.At}
	if review.RejectionReason != "" {
		set["rejectionReason"] = review.RejectionReason
	}
	if review.Reviewer != nil {
		set["reviewedBy"] = *review.Reviewer
		set["reviewedAt"] = review.At
	}

	var l models.Leave
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, afterUpdate()).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := r.coll.CountDocuments(ctx, bson.M{"_id": id})
		if cerr != nil {
			return nil, cerr
		}
		if n == 0 {
			return nil, repository.ErrNotFound
		}
		return nil, repository.ErrStale
	}
	if err != nil {
		log.Error().Err(err).Str("leave", id.Hex()).Msg("leave review failed")
		return nil, err
	}
	return &l, nil
}

func (r *leaveRepo) HasApprovedOn(ctx context.Context, doctor primitive.ObjectID, day time.Time) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"doctor":    doctor,
		"status":    models.LeaveApproved,
		"startDate": bson.M{"$lte": day},
		"endDate":   bson.M{"$gte": day},
	}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *leaveRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"status": status})
}

type prescriptionRepo struct{ coll *mongo.Collection }

func (r *prescriptionRepo) Insert(ctx context.Context, p *models.Prescription) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *prescriptionRepo) FindByAppointment(ctx context.Context, appointment primitive.ObjectID) (*models.Prescription, error) {
	var p models.Prescription
	if err := r.coll.FindOne(ctx, bson.M{"appointment": appointment}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

type notificationRepo struct{ coll *mongo.Collection }

func (r *notificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, n)
	return translate(err)
}

func (r *notificationRepo) List(ctx context.Context, q repository.NotificationQuery) ([]models.Notification, int64, error) {
	q.Normalize()
	filter := q.Filter()
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items := []models.Notification{}
	cur, err := r.coll.Find(ctx, filter, findPage(q.Page).SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err := decodeAll(ctx, cur, err, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) (*models.Notification, error) {
	var n models.Notification
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "recipient": recipient},
		bson.M{"$set": bson.M{"read": true, "readAt": at}},
		afterUpdate(),
	).Decode(&n)
	if err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"recipient": recipient, "read": false})
}
