package jobs

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
	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SeedOptions struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

var defaultDepartments = []dto.DepartmentRequest{
	{Name: "General Medicine", Code: "GEN", TotalBeds: 40, EmergencyServices: true},
	{Name: "Cardiology", Code: "CAR", TotalBeds: 20, EmergencyServices: true},
	{Name: "Orthopedics", Code: "ORT", TotalBeds: 15},
	{Name: "Pediatrics", Code: "PED", TotalBeds: 25},
	{Name: "Neurology", Code: "NEU", TotalBeds: 10},
}

/*
* Create the first admin and the default departments
* Anything that already exists is left untouched so the seed can run on every deploy
 */
func Seed(ctx context.Context, repos repository.Set, departments *services.DepartmentService, opts SeedOptions, now time.Time) error {
	if err := seedAdmin(ctx, repos, opts, now); err != nil {
		return err
	}
	for _, req := range defaultDepartments {
		exists, err := repos.Departments.CodeExists(ctx, req.Code)
		if err != nil {
			log.Error().Err(err).Str("code", req.Code).Msg("department lookup failed")
			return err
		}
		if exists {
			continue
		}
		if _, err := departments.Create(ctx, role.SystemActor(), req); err != nil {
			log.Error().Err(err).Str("code", req.Code).Msg("seeding department failed")
			return err
		}
		log.Info().Str("code", req.Code).Msg("seeded department")
	}
	return nil
}

func seedAdmin(ctx context.Context, repos repository.Set, opts SeedOptions, now time.Time) error {
	email := strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	if email == "" {
		return nil
	}
	if _, err := repos.Users.FindByEmail(ctx, email); err == nil {
		log.Debug().Str("email", email).Msg("admin already seeded")
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if opts.AdminPassword == "" {
		return fmt.Errorf("seed admin %s needs a password", email)
	}

	hash, err := services.HashPassword(opts.AdminPassword)
	if err != nil {
		return err
	}
	seq, err := repos.Counters.Next(ctx, "ADMIN")
	if err != nil {
		return err
	}
	name := opts.AdminName
	if name == "" {
		name = "System Administrator"
	}

	perms := make(map[string]bool, len(role.AllPermissions))
	for _, p := range role.AllPermissions {
		perms[p] = true
	}
	admin := &models.Admin{
		ID:          primitive.NewObjectID(),
		AdminID:     util.FormatAdminID(seq),
		User:        primitive.NewObjectID(),
		Name:        name,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	user := &models.User{
		ID:        admin.User,
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      role.Admin,
		Profile:   admin.ID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repos.Admins.Insert(ctx, admin); err != nil {
		return err
	}
	if err := repos.Users.Insert(ctx, user); err != nil {
		return err
	}
	log.Info().Str("adminId", admin.AdminID).Str("email", email).Msg("seeded admin")
	return nil
}
