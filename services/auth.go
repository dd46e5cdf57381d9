package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"HospitalHub/dto"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	repos  repository.Set
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

/*
* Look the user up by email and compare the bcrypt hash
* Unknown email and wrong password give the same answer
* A disabled login is refused before a token is issued
 */
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repos.Users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, util.UnauthorizedError(util.INVALID_CREDENTIALS)
	}
	if err != nil {
		return nil, storeError(err, util.USER_NOT_FOUND)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Info().Str("email", email).Msg("login with wrong password")
		return nil, util.UnauthorizedError(util.INVALID_CREDENTIALS)
	}
	if !user.IsActive {
		return nil, util.UnauthorizedError(util.ACCOUNT_DISABLED)
	}

	now := s.now()
	if err := s.repos.Users.TouchLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("user", user.ID.Hex()).Msg("last login update failed")
	}
	user.LastLogin = &now

	token, expires, err := s.IssueToken(user)
	if err != nil {
		return nil, util.InternalError(err)
	}
	return &dto.LoginResponse{Token: token, ExpiresAt: expires, User: *user}, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	return util.GenerateToken(s.secret, s.ttl, util.Claims{
		UserID:    user.ID.Hex(),
		ProfileID: user.Profile.Hex(),
		Role:      user.Role,
		Name:      user.Name,
	}, s.now())
}

/*
* Parse the bearer token and reload the login
* A deactivated login loses access even with an unexpired token
 */
func (s *AuthService) Authenticate(ctx context.Context, token string) (role.Actor, error) {
	claims, err := util.ValidateToken(token, s.secret, s.now())
	if err != nil {
		return role.Actor{}, util.UnauthorizedError(util.INVALID_TOKEN)
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return role.Actor{}, util.UnauthorizedError(util.INVALID_TOKEN)
	}
	user, err := s.repos.Users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return role.Actor{}, util.UnauthorizedError(util.INVALID_TOKEN)
	}
	if err != nil {
		return role.Actor{}, storeError(err, util.USER_NOT_FOUND)
	}
	if !user.IsActive {
		return role.Actor{}, util.UnauthorizedError(util.ACCOUNT_DISABLED)
	}
	return role.Actor{Role: user.Role, UserID: user.ID, ProfileID: user.Profile, Name: user.Name}, nil
}

func (s *AuthService) Me(ctx context.Context, actor role.Actor) (*models.User, error) {
	user, err := s.repos.Users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, util.USER_NOT_FOUND)
	}
	return user, nil
}

/*
* Create the profile first, then the login pointing at it
* Patients are active at once, doctors wait in pending approval
* A failed login insert leaves an orphan profile that no token can reach
 */
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	r := role.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if r != role.Patient && r != role.Doctor {
		return nil, util.ValidationError(util.INVALID_ROLE)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repos.Users.FindByEmail(ctx, email); err == nil {
		return nil, util.ConflictError(util.EMAIL_ALREADY_REGISTERED)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, util.USER_NOT_FOUND)
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, util.InternalError(err)
	}

	now := s.now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Password:  hash,
		Role:      r,
		Profile:   primitive.NewObjectID(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch r {
	case role.Patient:
		err = s.repos.Patients.Insert(ctx, &models.Patient{
			ID:        user.Profile,
			User:      user.ID,
			Name:      user.Name,
			Email:     email,
			Phone:     strings.TrimSpace(req.Phone),
			IsActive:  true,
			CreatedAt: now,
			CreatedBy: user.ID.Hex(),
			UpdatedAt: now,
			UpdatedBy: user.ID.Hex(),
		})
	case role.Doctor:
		err = s.registerDoctor(ctx, user, req)
	}
	if err != nil {
		return nil, err
	}

	if err := s.repos.Users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, util.ConflictError(util.EMAIL_ALREADY_REGISTERED)
		}
		log.Error().Err(err).Str("email", email).Msg("user insert failed")
		return nil, storeError(err, util.USER_NOT_FOUND)
	}
	log.Info().Str("user", user.ID.Hex()).Str("role", string(r)).Msg("user registered")
	return user, nil
}

func (s *AuthService) registerDoctor(ctx context.Context, user *models.User, req dto.RegisterRequest) error {
	if req.Department == "" {
		return util.ValidationError(util.DEPARTMENT_REQUIRED)
	}
	deptID, err := util.ParseObjectID(req.Department)
	if err != nil {
		return err
	}
	dept, err := s.repos.Departments.FindByID(ctx, deptID)
	if err != nil {
		return storeError(err, util.DEPARTMENT_NOT_FOUND)
	}
	availability, err := normalizeAvailability(req.Availability)
	if err != nil {
		return err
	}
	err = s.repos.Doctors.Insert(ctx, &models.Doctor{
		ID:              user.Profile,
		User:            user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Specialization:  strings.TrimSpace(req.Specialization),
		LicenseNumber:   strings.TrimSpace(req.LicenseNumber),
		ConsultationFee: req.ConsultationFee,
		Availability:    availability,
		ApprovalStatus:  models.ApprovalPending,
		Department:      dept.ID,
		DepartmentName:  dept.Name,
		IsActive:        true,
		CreatedAt:       user.CreatedAt,
		CreatedBy:       user.ID.Hex(),
		UpdatedAt:       user.CreatedAt,
		UpdatedBy:       user.ID.Hex(),
	})
	return storeError(err, util.DOCTOR_NOT_FOUND)
}
