package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"HospitalHub/dto"
	"HospitalHub/lifecycle"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LeaveService struct {
	repos   repository.Set
	effects *Effects
	now     func() time.Time
}

func validLeaveType(t string) bool {
	for _, v := range models.LeaveTypes {
		if v == t {
			return true
		}
	}
	return false
}

/*
* Doctors file their own leave as pending
* Start must not be after end
 */
func (s *LeaveService) Request(ctx context.Context, actor role.Actor, req dto.LeaveRequest) (*models.Leave, error) {
	if actor.Role != role.Doctor {
		return nil, util.ForbiddenError(util.ROLE_NOT_PERMITTED)
	}
	start, err := util.NormalizeDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := util.NormalizeDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, util.ValidationError(util.LEAVE_DATES_INVALID)
	}
	leaveType := strings.ToLower(strings.TrimSpace(req.Type))
	if !validLeaveType(leaveType) {
		return nil, util.ValidationError(util.LEAVE_TYPE_INVALID)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, util.ValidationError(util.LEAVE_REASON_REQUIRED)
	}

	doctor, err := s.repos.Doctors.FindByID(ctx, actor.ProfileID)
	if err != nil {
		return nil, storeError(err, util.DOCTOR_NOT_FOUND)
	}

	now := s.now()
	l := &models.Leave{
		ID:         primitive.NewObjectID(),
		Doctor:     doctor.ID,
		DoctorName: doctor.Name,
		StartDate:  start,
		EndDate:    end,
		Type:       leaveType,
		Reason:     reason,
		Status:     models.LeavePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repos.Leaves.Insert(ctx, l); err != nil {
		log.Error().Err(err).Str("doctor", doctor.ID.Hex()).Msg("leave insert failed")
		return nil, storeError(err, util.LEAVE_NOT_FOUND)
	}
	s.effects.Record(ctx, actor, "leave_requested",
		fmt.Sprintf("Requested %s leave from %s to %s", leaveType, start.Format(util.DateLayout), end.Format(util.DateLayout)),
		"leave", l.ID.Hex())
	return l, nil
}

type LeavePage struct {
	Items []models.Leave
	Total int64
	Page  repository.Page
}

// List forces the doctor filter for doctors.
func (s *LeaveService) List(ctx context.Context, actor role.Actor, q repository.LeaveQuery) (*LeavePage, error) {
	switch actor.Role {
	case role.Doctor:
		id := actor.ProfileID
		q.Doctor = &id
	case role.Admin:
	default:
		return nil, util.ForbiddenError(util.ROLE_NOT_PERMITTED)
	}
	q.Normalize()
	items, total, err := s.repos.Leaves.List(ctx, q)
	if err != nil {
		return nil, storeError(err, util.LEAVE_NOT_FOUND)
	}
	return &LeavePage{Items: items, Total: total, Page: q.Page}, nil
}

/*
* A doctor may withdraw a leave that nobody reviewed yet
 */
func (s *LeaveService) Cancel(ctx context.Context, actor role.Actor, id primitive.ObjectID) (*models.Leave, error) {
	l, err := s.repos.Leaves.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, util.LEAVE_NOT_FOUND)
	}
	if actor.Role != role.Doctor || l.Doctor != actor.ProfileID {
		return nil, util.ForbiddenError(util.LEAVE_ACCESS_DENIED)
	}
	doctor := actor.ProfileID
	updated, err := s.repos.Leaves.Review(ctx, id, repository.LeaveReview{
		Status: models.LeaveCancelled,
		Doctor: &doctor,
		At:     s.now(),
	})
	if errors.Is(err, repository.ErrStale) {
		return nil, util.ConflictError(util.LEAVE_ALREADY_PROCESSED)
	}
	if err != nil {
		return nil, storeError(err, util.LEAVE_NOT_FOUND)
	}
	s.effects.Record(ctx, actor, "leave_cancelled", "Withdrew leave request", "leave", id.Hex())
	return updated, nil
}

/*
* Approve or reject a pending leave exactly once
* Rejection needs a reason of at least ten characters, approval needs none
* The second reviewer loses on the pending precondition
 */
func (s *LeaveService) Review(ctx context.Context, actor role.Actor, id primitive.ObjectID, req dto.LeaveApprovalRequest) (*models.Leave, error) {
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != models.LeaveApproved && status != models.LeaveRejected {
		return nil, util.ValidationError(util.LEAVE_STATUS_REQUIRED)
	}
	review := repository.LeaveReview{Status: status, At: s.now()}
	if status == models.LeaveRejected {
		if !lifecycle.ReasonLongEnough(req.RejectionReason) {
			return nil, util.ValidationError(util.REJECTION_REASON_TOO_SHORT)
		}
		review.RejectionReason = strings.TrimSpace(req.RejectionReason)
	}
	reviewer := actor.ProfileID
	review.Reviewer = &reviewer

	updated, err := s.repos.Leaves.Review(ctx, id, review)
	if errors.Is(err, repository.ErrStale) {
		log.Info().Str("leave", id.Hex()).Msg("leave already processed")
		return nil, util.ConflictError(util.LEAVE_ALREADY_PROCESSED)
	}
	if err != nil {
		return nil, storeError(err, util.LEAVE_NOT_FOUND)
	}

	s.effects.Record(ctx, actor, "leave_"+status,
		fmt.Sprintf("Leave of %s %s", updated.DoctorName, status),
		"leave", updated.ID.Hex())
	body := fmt.Sprintf("Your leave from %s to %s was %s.", updated.StartDate.Format(util.DateLayout), updated.EndDate.Format(util.DateLayout), status)
	if status == models.LeaveRejected {
		body += " Reason: " + updated.RejectionReason
	}
	s.effects.Notify(ctx, Message{
		Type:  models.NotifyLeaveReviewed,
		Title: "Leave request " + status,
		Body:  body,
	}, Recipient{ID: updated.Doctor, Role: role.Doctor})
	return updated, nil
}
