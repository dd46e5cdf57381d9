package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"HospitalHub/database"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepo struct{ coll *mongo.Collection }

func (r *userRepo) Insert(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.coll.InsertOne(ctx, u)
	return translate(err)
}

func (r *userRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": at}})
	return err
}

func (r *userRepo) SetActiveByProfile(ctx context.Context, profile primitive.ObjectID, active bool) error {
	_, err := r.coll.UpdateMany(ctx, bson.M{"profile": profile}, bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}})
	if err != nil {
		log.Error().Err(err).Str("profile", profile.Hex()).Msg("user activation update failed")
	}
	return err
}

func (r *userRepo) CountByRole(ctx context.Context) (map[role.Role]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	}
	var rows []struct {
		Role  role.Role `bson:"_id"`
		Count int64     `bson:"count"`
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err := decodeAll(ctx, cur, err, &rows); err != nil {
		return nil, err
	}
	out := map[role.Role]int64{}
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}

type adminRepo struct{ coll *mongo.Collection }

func (r *adminRepo) Insert(ctx context.Context, a *models.Admin) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, a)
	return translate(err)
}

func (r *adminRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var a models.Admin
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *adminRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

type doctorRepo struct{ coll *mongo.Collection }

func (r *doctorRepo) Insert(ctx context.Context, d *models.Doctor) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, d)
	return translate(err)
}

func (r *doctorRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	var d models.Doctor
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *doctorRepo) FindBookable(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	filter := repository.BookableFilter()
	filter["_id"] = id
	var d models.Doctor
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *doctorRepo) List(ctx context.Context, q repository.DoctorQuery) ([]models.Doctor, int64, error) {
	q.Normalize()
	filter := q.Filter()
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("count doctors failed")
		return nil, 0, err
	}
	opts := findPage(q.Page).
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(bson.M{"activityLog": 0})
	items := []models.Doctor{}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err := decodeAll(ctx, cur, err, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SetApproval only moves a pending doctor, a reviewed one reports ErrStale.
func (r *doctorRepo) SetApproval(ctx context.Context, id primitive.ObjectID, status string, at time.Time) (*models.Doctor, error) {
	var d models.Doctor
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "approvalStatus": models.ApprovalPending},
		bson.M{"$set": bson.M{"approvalStatus": status, "updatedAt": at}},
		afterUpdate(),
	).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.staleOrMissing(ctx, id)
	}
	if err != nil {
		log.Error().Err(err).Str("doctor", id.Hex()).Msg("doctor approval failed")
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepo) SetAvailability(ctx context.Context, id primitive.ObjectID, availability map[string][]models.TimeWindow, at time.Time) (*models.Doctor, error) {
	var d models.Doctor
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"availability": availability, "updatedAt": at, "updatedBy": id.Hex()}},
		afterUpdate(),
	).Decode(&d)
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *doctorRepo) Deactivate(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Doctor, error) {
	var d models.Doctor
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "deactivatedAt": at, "updatedAt": at}},
		afterUpdate(),
	).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.staleOrMissing(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepo) staleOrMissing(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrStale
}

func (r *doctorRepo) CountActiveInDepartment(ctx context.Context, department primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"department": department, "isActive": true})
}

func (r *doctorRepo) CountByApproval(ctx context.Context, status string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"approvalStatus": status})
}

type patientRepo struct{ coll *mongo.Collection }

func (r *patientRepo) Insert(ctx context.Context, p *models.Patient) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *patientRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	var p models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *patientRepo) Deactivate(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Patient, error) {
	var p models.Patient
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "deactivatedAt": at, "updatedAt": at}},
		afterUpdate(),
	).Decode(&p)
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
		return nil, err
	}
	return &p, nil
}

type activityRepo struct{ db *mongo.Database }

func (r *activityRepo) collection(owner role.Role) (*mongo.Collection, error) {
	switch owner {
	case role.Admin:
		return r.db.Collection(database.AdminCollection), nil
	case role.Doctor:
		return r.db.Collection(database.DoctorCollection), nil
	case role.Patient:
		return r.db.Collection(database.PatientCollection), nil
	}
	return nil, fmt.Errorf("no activity log for role %q", owner)
}

/*
* Prepend and truncate in one atomic update
* $position 0 keeps the newest first, $slice drops the oldest past the limit
 */
func (r *activityRepo) Push(ctx context.Context, owner role.Role, profile primitive.ObjectID, entry models.ActivityEntry) error {
	coll, err := r.collection(owner)
	if err != nil {
		return err
	}
	update := bson.M{"$push": bson.M{"activityLog": bson.M{
		"$each":     bson.A{entry},
		"$position": 0,
		"$slice":    models.ActivityLogLimit,
	}}}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": profile}, update)
	if err != nil {
		log.Error().Err(err).Str("role", string(owner)).Str("profile", profile.Hex()).Msg("activity push failed")
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *activityRepo) Recent(ctx context.Context, owner role.Role, profile primitive.ObjectID, limit int) ([]models.ActivityEntry, error) {
	coll, err := r.collection(owner)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > models.ActivityLogLimit {
		limit = models.ActivityLogLimit
	}
	var doc struct {
		ActivityLog []models.ActivityEntry `bson:"activityLog"`
	}
	opts := options.FindOne().SetProjection(bson.M{"activityLog": bson.M{"$slice": limit}})
	if err := coll.FindOne(ctx, bson.M{"_id": profile}, opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	if doc.ActivityLog == nil {
		return []models.ActivityEntry{}, nil
	}
	return doc.ActivityLog, nil
}
