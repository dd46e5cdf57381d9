package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"HospitalHub/cache"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultActivityLimit = 20
)

type AdminService struct {
	repos        repository.Set
	cache        cache.Cache
	effects      *Effects
	appointments *AppointmentService
	now          func() time.Time
}

// HasPermission looks the flag up in the admin's permission bag.
func (s *AdminService) HasPermission(ctx context.Context, actor role.Actor, permission string) (bool, error) {
	if actor.Role != role.Admin {
		return false, nil
	}
	admin, err := s.repos.Admins.FindByID(ctx, actor.ProfileID)
	if err != nil {
		return false, storeError(err, util.ADMIN_NOT_FOUND)
	}
	return admin.Can(permission), nil
}

// Activity returns the newest entries first, limit is clamped to 1..100.
func (s *AdminService) Activity(ctx context.Context, actor role.Actor, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > models.ActivityLogLimit {
		limit = models.ActivityLogLimit
	}
	entries, err := s.repos.Activity.Recent(ctx, actor.Role, actor.ProfileID, limit)
	if err != nil {
		return nil, storeError(err, util.ADMIN_NOT_FOUND)
	}
	if entries == nil {
		entries = []models.ActivityEntry{}
	}
	return entries, nil
}

type DoctorPage struct {
	Items []models.Doctor
	Total int64
	Page  repository.Page
}

// ListDoctors is the unfiltered admin view, every approval state included.
func (s *AdminService) ListDoctors(ctx context.Context, q repository.DoctorQuery) (*DoctorPage, error) {
	q.BookableOnly = false
	q.Normalize()
	items, total, err := s.repos.Doctors.List(ctx, q)
	if err != nil {
		return nil, storeError(err, util.DOCTOR_NOT_FOUND)
	}
	return &DoctorPage{Items: items, Total: total, Page: q.Page}, nil
}

/*
* Approval happens once, from pending only
* A reviewed doctor is removed through RemoveDoctor instead
 */
func (s *AdminService) ReviewDoctor(ctx context.Context, actor role.Actor, id primitive.ObjectID, status string) (*models.Doctor, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != models.ApprovalApproved && status != models.ApprovalRejected {
		return nil, util.ValidationError(util.INVALID_APPROVAL_STATUS)
	}
	d, err := s.repos.Doctors.SetApproval(ctx, id, status, s.now())
	if errors.Is(err, repository.ErrStale) {
		log.Info().Str("doctor", id.Hex()).Str("status", status).Msg("doctor already reviewed")
		return nil, util.ConflictError(util.DOCTOR_ALREADY_REVIEWED)
	}
	if err != nil {
		return nil, storeError(err, util.DOCTOR_NOT_FOUND)
	}
	s.dropDoctor(ctx, id)

	s.effects.Record(ctx, actor, "doctor_"+status,
		fmt.Sprintf("Doctor %s %s", d.Name, status),
		"doctor", id.Hex())
	s.effects.Notify(ctx, Message{
		Type:  models.NotifyDoctorReviewed,
		Title: "Profile " + status,
		Body:  fmt.Sprintf("Your doctor profile was %s by the hospital administration.", status),
	}, Recipient{ID: id, Role: role.Doctor})
	return d, nil
}

func (s *AdminService) dropDoctor(ctx context.Context, id primitive.ObjectID) {
	if err := s.cache.Delete(ctx, cache.DoctorKey(id.Hex())); err != nil {
		log.Warn().Err(err).Str("doctor", id.Hex()).Msg("doctor cache invalidation failed")
	}
}

type RemovalResult struct {
	ID                    primitive.ObjectID `json:"_id"`
	CancelledAppointments int                `json:"cancelledAppointments"`
}

/*
* Deactivate the doctor and the login, history stays
* Every pending or confirmed appointment is cancelled by the system
 */
func (s *AdminService) RemoveDoctor(ctx context.Context, actor role.Actor, id primitive.ObjectID) (*RemovalResult, error) {
	d, err := s.repos.Doctors.Deactivate(ctx, id, s.now())
	if errors.Is(err, repository.ErrStale) {
		return nil, util.ConflictError(util.DOCTOR_ALREADY_INACTIVE)
	}
	if err != nil {
		return nil, storeError(err, util.DOCTOR_NOT_FOUND)
	}
	if err := s.repos.Users.SetActiveByProfile(ctx, id, false); err != nil {
		log.Error().Err(err).Str("doctor", id.Hex()).Msg("doctor login deactivation failed")
	}
	s.dropDoctor(ctx, id)

	cancelled, err := s.appointments.CancelForRemovedDoctor(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("doctor", id.Hex()).Msg("doctor cascade failed")
	}
	s.effects.Record(ctx, actor, "doctor_removed",
		fmt.Sprintf("Removed doctor %s, cancelled %d appointments", d.Name, cancelled),
		"doctor", id.Hex())
	return &RemovalResult{ID: id, CancelledAppointments: cancelled}, nil
}

func (s *AdminService) RemovePatient(ctx context.Context, actor role.Actor, id primitive.ObjectID) (*RemovalResult, error) {
	p, err := s.repos.Patients.Deactivate(ctx, id, s.now())
	if errors.Is(err, repository.ErrStale) {
		return nil, util.ConflictError(util.PATIENT_ALREADY_INACTIVE)
	}
	if err != nil {
		return nil, storeError(err, util.PATIENT_NOT_FOUND)
	}
	if err := s.repos.Users.SetActiveByProfile(ctx, id, false); err != nil {
		log.Error().Err(err).Str("patient", id.Hex()).Msg("patient login deactivation failed")
	}

	cancelled, err := s.appointments.CancelForRemovedPatient(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("patient", id.Hex()).Msg("patient cascade failed")
	}
	s.effects.Record(ctx, actor, "patient_removed",
		fmt.Sprintf("Removed patient %s, cancelled %d appointments", p.Name, cancelled),
		"patient", id.Hex())
	return &RemovalResult{ID: id, CancelledAppointments: cancelled}, nil
}
