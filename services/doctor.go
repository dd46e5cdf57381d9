package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"HospitalHub/cache"
	"HospitalHub/dto"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DoctorService struct {
	repos   repository.Set
	cache   cache.Cache
	effects *Effects
	now     func() time.Time
}

type PublicDoctorPage struct {
	Items []dto.DoctorResponse
	Total int64
	Page  repository.Page
}

// ListPublic only ever shows approved, active doctors.
func (s *DoctorService) ListPublic(ctx context.Context, q repository.DoctorQuery) (*PublicDoctorPage, error) {
	q.BookableOnly = true
	q.ApprovalStatus = ""
	q.Normalize()
	items, total, err := s.repos.Doctors.List(ctx, q)
	if err != nil {
		return nil, storeError(err, util.DOCTOR_NOT_FOUND)
	}
	return &PublicDoctorPage{Items: dto.NewDoctorResponses(items), Total: total, Page: q.Page}, nil
}

/*
* Serve the public profile from cache when present
* On a miss read the bookable doctor and fill the cache
* Cache failures fall through to the store
 */
func (s *DoctorService) GetPublic(ctx context.Context, id primitive.ObjectID) (*dto.DoctorResponse, error) {
	key := cache.DoctorKey(id.Hex())
	var cached dto.DoctorResponse
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("key", key).Msg("doctor cache read failed")
	}

	d, err := s.repos.Doctors.FindBookable(ctx, id)
	if err != nil {
		return nil, storeError(err, util.DOCTOR_NOT_FOUND)
	}
	resp := dto.NewDoctorResponse(d)
	if err := s.cache.Set(ctx, key, resp); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("doctor cache write failed")
	}
	return &resp, nil
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

/*
* Weekday keys are lowercased and must name a day
* Times are stored as HH:MM and every window must end after it starts
* Windows come back sorted by start time
 */
func normalizeAvailability(in dto.Weekly) (map[string][]models.TimeWindow, error) {
	out := make(map[string][]models.TimeWindow, len(in))
	for day, windows := range in {
		key := strings.ToLower(strings.TrimSpace(day))
		if !weekdays[key] {
			return nil, util.ValidationError(util.INVALID_WEEKDAY)
		}
		for _, w := range windows {
			start, err := util.ParseClock(w.StartTime)
			if err != nil {
				return nil, err
			}
			end, err := util.ParseClock(w.EndTime)
			if err != nil {
				return nil, err
			}
			if start >= end {
				return nil, util.ValidationError(util.INVALID_WINDOW)
			}
			out[key] = append(out[key], models.TimeWindow{StartTime: start, EndTime: end})
		}
		sort.Slice(out[key], func(i, j int) bool { return out[key][i].StartTime < out[key][j].StartTime })
	}
	return out, nil
}

// UpdateAvailability replaces the calling doctor's weekly schedule.
func (s *DoctorService) UpdateAvailability(ctx context.Context, actor role.Actor, req dto.AvailabilityRequest) (*dto.DoctorResponse, error) {
	if actor.Role != role.Doctor {
		return nil, util.ForbiddenError(util.ROLE_NOT_PERMITTED)
	}
	availability, err := normalizeAvailability(req.Availability)
	if err != nil {
		return nil, err
	}
	d, err := s.repos.Doctors.SetAvailability(ctx, actor.ProfileID, availability, s.now())
	if err != nil {
		return nil, storeError(err, util.DOCTOR_NOT_FOUND)
	}
	if err := s.cache.Delete(ctx, cache.DoctorKey(d.ID.Hex())); err != nil {
		log.Warn().Err(err).Str("doctor", d.ID.Hex()).Msg("doctor cache invalidation failed")
	}
	s.effects.Record(ctx, actor, "availability_updated",
		"Updated weekly availability", "doctor", d.ID.Hex())
	log.Info().Str("doctor", d.ID.Hex()).Int("days", len(availability)).Msg("availability updated")

	resp := dto.NewDoctorResponse(d)
	return &resp, nil
}
