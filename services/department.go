package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"HospitalHub/dto"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxCodeAttempts = 20

type DepartmentService struct {
	repos   repository.Set
	effects *Effects
	now     func() time.Time
}

/*
* An explicit code must be free
* A derived code starts from the name and takes the next counter suffix on collision
 */
func (s *DepartmentService) allocateCode(ctx context.Context, requested, name string) (string, error) {
	if code := strings.ToUpper(strings.TrimSpace(requested)); code != "" {
		exists, err := s.repos.Departments.CodeExists(ctx, code)
		if err != nil {
			return "", storeError(err, util.DEPARTMENT_NOT_FOUND)
		}
		if exists {
			return "", util.ConflictError(util.DEPARTMENT_CODE_TAKEN)
		}
		return code, nil
	}

	base := util.DepartmentCodeBase(name)
	code := base
	for i := 0; i < maxCodeAttempts; i++ {
		exists, err := s.repos.Departments.CodeExists(ctx, code)
		if err != nil {
			return "", storeError(err, util.DEPARTMENT_NOT_FOUND)
		}
		if !exists {
			return code, nil
		}
		seq, err := s.repos.Counters.Next(ctx, "DEPT_"+base)
		if err != nil {
			return "", storeError(err, util.DEPARTMENT_NOT_FOUND)
		}
		code = fmt.Sprintf("%s%d", base, seq+1)
	}
	return "", util.ConflictError(util.DEPARTMENT_CODE_TAKEN)
}

func (s *DepartmentService) Create(ctx context.Context, actor role.Actor, req dto.DepartmentRequest) (*models.Department, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, util.ValidationError(util.DEPARTMENT_NAME_REQUIRED)
	}
	if req.TotalBeds < 0 || req.OccupiedBeds < 0 {
		return nil, util.ValidationError(util.BEDS_CANNOT_BE_NEGATIVE)
	}
	if req.OccupiedBeds > req.TotalBeds {
		return nil, util.ValidationError(util.OCCUPIED_EXCEEDS_TOTAL)
	}
	var head *primitive.ObjectID
	if req.HeadOfDepartment != "" {
		id, err := util.ParseObjectID(req.HeadOfDepartment)
		if err != nil {
			return nil, err
		}
		head = &id
	}
	code, err := s.allocateCode(ctx, req.Code, name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := &models.Department{
		ID:                primitive.NewObjectID(),
		Code:              code,
		Name:              name,
		Description:       strings.TrimSpace(req.Description),
		HeadOfDepartment:  head,
		BedCapacity:       models.BedCapacity{Total: req.TotalBeds, Occupied: req.OccupiedBeds},
		OperatingHours:    req.OperatingHours,
		EmergencyServices: req.EmergencyServices,
		Equipment:         req.Equipment,
		Specializations:   req.Specializations,
		InsuranceAccepted: req.InsuranceAccepted,
		IsActive:          true,
		CreatedAt:         now,
		CreatedBy:         actor.ProfileID.Hex(),
		UpdatedAt:         now,
		UpdatedBy:         actor.ProfileID.Hex(),
	}
	d.BedCapacity.Normalize()

	if err := s.repos.Departments.Insert(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, util.ConflictError(util.DEPARTMENT_CODE_TAKEN)
		}
		log.Error().Err(err).Str("code", code).Msg("department insert failed")
		return nil, storeError(err, util.DEPARTMENT_NOT_FOUND)
	}
	s.effects.Record(ctx, actor, "department_created",
		fmt.Sprintf("Created department %s (%s)", d.Name, d.Code),
		"department", d.ID.Hex())
	return d, nil
}

func (s *DepartmentService) List(ctx context.Context, activeOnly bool) ([]models.Department, error) {
	items, err := s.repos.Departments.List(ctx, activeOnly)
	if err != nil {
		return nil, storeError(err, util.DEPARTMENT_NOT_FOUND)
	}
	return items, nil
}

/*
* Resolve the new capacity from total plus either available or occupied
* Neither given keeps the current occupancy
 */
func resolveBeds(current models.BedCapacity, req dto.BedUpdateRequest) (models.BedCapacity, error) {
	if req.Total == nil {
		return current, util.ValidationError(util.BED_TOTAL_REQUIRED)
	}
	if req.Available != nil && req.Occupied != nil {
		return current, util.ValidationError(util.AVAILABLE_OR_OCCUPIED_ONLY)
	}
	total := *req.Total
	if total < 0 {
		return current, util.ValidationError(util.BEDS_CANNOT_BE_NEGATIVE)
	}
	beds := models.BedCapacity{Total: total}
	switch {
	case req.Available != nil:
		available := *req.Available
		if available < 0 {
			return current, util.ValidationError(util.BEDS_CANNOT_BE_NEGATIVE)
		}
		if available > total {
			return current, util.ValidationError(util.AVAILABLE_EXCEEDS_TOTAL)
		}
		beds.Occupied = total - available
	case req.Occupied != nil:
		beds.Occupied = *req.Occupied
	default:
		beds.Occupied = current.Occupied
	}
	if beds.Occupied < 0 {
		return current, util.ValidationError(util.BEDS_CANNOT_BE_NEGATIVE)
	}
	if beds.Occupied > total {
		return current, util.ValidationError(util.OCCUPIED_EXCEEDS_TOTAL)
	}
	beds.Normalize()
	return beds, nil
}

func (s *DepartmentService) UpdateBeds(ctx context.Context, actor role.Actor, id primitive.ObjectID, req dto.BedUpdateRequest) (*models.Department, error) {
	d, err := s.repos.Departments.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, util.DEPARTMENT_NOT_FOUND)
	}
	beds, err := resolveBeds(d.BedCapacity, req)
	if err != nil {
		return nil, err
	}
	updated, err := s.repos.Departments.UpdateBeds(ctx, id, beds, actor.ProfileID.Hex(), s.now())
	if err != nil {
		return nil, storeError(err, util.DEPARTMENT_NOT_FOUND)
	}
	s.effects.Record(ctx, actor, "department_beds_updated",
		fmt.Sprintf("Set %s beds to %d total, %d occupied, %d available", updated.Name, beds.Total, beds.Occupied, beds.Available),
		"department", updated.ID.Hex())
	return updated, nil
}

// Delete refuses while active doctors still belong to the department.
func (s *DepartmentService) Delete(ctx context.Context, actor role.Actor, id primitive.ObjectID) error {
	d, err := s.repos.Departments.FindByID(ctx, id)
	if err != nil {
		return storeError(err, util.DEPARTMENT_NOT_FOUND)
	}
	n, err := s.repos.Doctors.CountActiveInDepartment(ctx, id)
	if err != nil {
		return storeError(err, util.DEPARTMENT_NOT_FOUND)
	}
	if n > 0 {
		log.Info().Str("department", id.Hex()).Int64("doctors", n).Msg("department delete refused")
		return util.ConflictError(util.DEPARTMENT_HAS_DOCTORS)
	}
	if err := s.repos.Departments.Delete(ctx, id); err != nil {
		return storeError(err, util.DEPARTMENT_NOT_FOUND)
	}
	s.effects.Record(ctx, actor, "department_deleted",
		fmt.Sprintf("Deleted department %s (%s)", d.Name, d.Code),
		"department", id.Hex())
	return nil
}
