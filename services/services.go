package services

import (
	"context"
	"errors"
	"time"

	"HospitalHub/cache"
	"HospitalHub/events"
	"HospitalHub/repository"
	"HospitalHub/util"

	"github.com/rs/zerolog/log"
)

type Deps struct {
	Repos     repository.Set
	Cache     cache.Cache
	Events    events.Publisher
	Now       func() time.Time
	JWTSecret string
	TokenTTL  time.Duration
}

type Services struct {
	Appointments  *AppointmentService
	Leaves        *LeaveService
	Departments   *DepartmentService
	Admin         *AdminService
	Stats         *StatsService
	Notifications *NotificationService
	Doctors       *DoctorService
	Auth          *AuthService
}

/*
* Fill the optional collaborators with their no-op forms
* Build every service over the same repositories and clock
 */
func New(d Deps) *Services {
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.TokenTTL <= 0 {
		d.TokenTTL = 24 * time.Hour
	}

	effects := NewEffects(d.Repos.Activity, d.Repos.Notifications, d.Events, d.Now)
	appointments := &AppointmentService{repos: d.Repos, cache: d.Cache, effects: effects, now: d.Now}

	return &Services{
		Appointments:  appointments,
		Leaves:        &LeaveService{repos: d.Repos, effects: effects, now: d.Now},
		Departments:   &DepartmentService{repos: d.Repos, effects: effects, now: d.Now},
		Admin:         &AdminService{repos: d.Repos, cache: d.Cache, effects: effects, appointments: appointments, now: d.Now},
		Stats:         &StatsService{repos: d.Repos, now: d.Now},
		Notifications: &NotificationService{repos: d.Repos, now: d.Now},
		Doctors:       &DoctorService{repos: d.Repos, cache: d.Cache, effects: effects, now: d.Now},
		Auth:          &AuthService{repos: d.Repos, secret: d.JWTSecret, ttl: d.TokenTTL, now: d.Now},
	}
}

/*
* Map repository sentinels onto the client facing error kinds
* notFound is the message used when the document is missing
 */
func storeError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return util.NotFoundError(notFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return util.InternalError(err)
	}
	var appErr *util.AppError
	if errors.As(err, &appErr) {
		return err
	}
	log.Error().Err(err).Msg("store operation failed")
	return util.InternalError(err)
}
