package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"HospitalHub/cache"
	"HospitalHub/dto"
	"HospitalHub/events"
	"HospitalHub/lifecycle"
	"HospitalHub/metrics"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentService struct {
	repos   repository.Set
	cache   cache.Cache
	effects *Effects
	now     func() time.Time
}

var appointmentTypes = map[string]bool{
	models.AppointmentTypeInPerson: true,
	models.AppointmentTypeVideo:    true,
	models.AppointmentTypePhone:    true,
}

/*
* Only the two parties of an appointment act on it
* Admins and the system act on any appointment
 */
func authorizeParticipant(actor role.Actor, a *models.Appointment) error {
	switch actor.Role {
	case role.Admin, role.System:
		return nil
	case role.Doctor:
		if a.Doctor == actor.ProfileID {
			return nil
		}
	case role.Patient:
		if a.Patient == actor.ProfileID {
			return nil
		}
	}
	log.Warn().Str("role", string(actor.Role)).Str("appointmentId", a.AppointmentID).Msg("appointment access denied")
	return util.ForbiddenError(util.APPOINTMENT_ACCESS_DENIED)
}

/*
* A doctor with no availability configured accepts any time
* Otherwise the weekday must have a window that holds the whole visit
 */
func checkAvailability(d *models.Doctor, day time.Time, clock string, duration int) error {
	if len(d.Availability) == 0 {
		return nil
	}
	windows := d.Availability[strings.ToLower(day.Weekday().String())]
	if len(windows) == 0 {
		return util.ValidationError(util.DOCTOR_NOT_AVAILABLE_DAY)
	}
	start, err := util.ClockMinutes(clock)
	if err != nil {
		return err
	}
	end := start + duration
	for _, w := range windows {
		ws, err1 := clockOf(w.StartTime)
		we, err2 := clockOf(w.EndTime)
		if err1 != nil || err2 != nil {
			log.Warn().Str("doctor", d.ID.Hex()).Msg("skipping malformed availability window")
			continue
		}
		if start >= ws && end <= we {
			return nil
		}
	}
	return util.ValidationError(util.OUTSIDE_AVAILABILITY)
}

func clockOf(value string) (int, error) {
	clock, err := util.ParseClock(value)
	if err != nil {
		return 0, err
	}
	return util.ClockMinutes(clock)
}

/*
* Validate the request and resolve the patient and a bookable doctor
* Reject dates in the past, approved leave days and times outside the doctor's hours
* Check the slot, insert with the slot key and let the unique index settle races
* Log on the patient, notify the doctor, publish the event
 */
func (s *AppointmentService) Book(ctx context.Context, actor role.Actor, req dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	if actor.Role != role.Patient {
		return nil, util.ForbiddenError(util.ROLE_NOT_PERMITTED)
	}
	doctorID, err := util.ParseObjectID(req.DoctorID)
	if err != nil {
		return nil, err
	}
	day, err := util.NormalizeDate(req.Date)
	if err != nil {
		return nil, err
	}
	clock, err := util.ParseClock(req.Time)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, util.ValidationError(util.REASON_REQUIRED)
	}
	apptType := req.Type
	if apptType == "" {
		apptType = models.AppointmentTypeInPerson
	}
	if !appointmentTypes[apptType] {
		return nil, util.ValidationError(util.INVALID_APPOINTMENT_TYPE)
	}
	duration := req.Duration
	if duration == 0 {
		duration = models.DefaultAppointmentDuration
	}
	if duration < 5 || duration > 240 {
		return nil, util.ValidationError(util.INVALID_DURATION)
	}

	now := s.now()
	if day.Before(util.StartOfDay(now)) {
		return nil, util.ValidationError(util.APPOINTMENT_DATE_IN_PAST)
	}

	patient, err := s.repos.Patients.FindByID(ctx, actor.ProfileID)
	if err != nil {
		log.Error().Err(err).Str("patient", actor.ProfileID.Hex()).Msg("booking patient lookup failed")
		return nil, storeError(err, util.PATIENT_NOT_FOUND)
	}
	if !patient.IsActive {
		return nil, util.ForbiddenError(util.ACCOUNT_DISABLED)
	}
	doctor, err := s.repos.Doctors.FindBookable(ctx, doctorID)
	if err != nil {
		log.Error().Err(err).Str("doctor", doctorID.Hex()).Msg("booking doctor lookup failed")
		return nil, storeError(err, util.DOCTOR_NOT_FOUND)
	}

	onLeave, err := s.repos.Leaves.HasApprovedOn(ctx, doctor.ID, day)
	if err != nil {
		return nil, storeError(err, util.LEAVE_NOT_FOUND)
	}
	if onLeave {
		return nil, util.ValidationError(util.DOCTOR_ON_LEAVE)
	}
	if err := checkAvailability(doctor, day, clock, duration); err != nil {
		return nil, err
	}

	slotKey := models.SlotKey(doctor.ID, day, clock)
	taken, err := s.repos.Appointments.SlotTaken(ctx, slotKey)
	if err != nil {
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	if taken {
		return nil, util.ConflictError(util.SLOT_ALREADY_BOOKED)
	}

	symptoms := make([]string, 0, len(req.Symptoms))
	for _, sym := range req.Symptoms {
		if sym = strings.TrimSpace(sym); sym != "" {
			symptoms = append(symptoms, sym)
		}
	}
	a := &models.Appointment{
		ID:              primitive.NewObjectID(),
		AppointmentID:   util.NewAppointmentID(now),
		Patient:         patient.ID,
		PatientName:     patient.Name,
		Doctor:          doctor.ID,
		DoctorName:      doctor.Name,
		Department:      doctor.Department,
		DepartmentName:  doctor.DepartmentName,
		Date:            day,
		Time:            clock,
		Duration:        duration,
		Type:            apptType,
		Reason:          reason,
		Symptoms:        symptoms,
		Status:          models.StatusPending,
		Notes:           strings.TrimSpace(req.Notes),
		ConsultationFee: doctor.ConsultationFee,
		SlotKey:         &slotKey,
		CreatedAt:       now,
		CreatedBy:       actor.ProfileID.Hex(),
		UpdatedAt:       now,
		UpdatedBy:       actor.ProfileID.Hex(),
	}
	if err := s.repos.Appointments.Insert(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Info().Str("slotKey", slotKey).Msg("slot taken by a concurrent booking")
			return nil, util.ConflictError(util.SLOT_ALREADY_BOOKED)
		}
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	metrics.BookingsTotal.Inc()

	s.effects.Record(ctx, actor, "appointment_booked",
		fmt.Sprintf("Booked appointment %s with %s", a.AppointmentID, a.DoctorName),
		"appointment", a.AppointmentID)
	s.effects.Notify(ctx, Message{
		Type:          models.NotifyAppointmentBooked,
		Title:         "New appointment request",
		Body:          fmt.Sprintf("%s requested an appointment on %s at %s.", a.PatientName, a.Date.Format("Jan 2, 2006"), a.Time),
		AppointmentID: a.AppointmentID,
	}, doctorOf(a))
	s.effects.Publish(ctx, events.AppointmentEvent{
		Type:          events.AppointmentBooked,
		AppointmentID: a.AppointmentID,
		Doctor:        a.Doctor.Hex(),
		Patient:       a.Patient.Hex(),
		To:            string(a.Status),
		ActorRole:     string(actor.Role),
		OccurredAt:    now,
	})

	resp := dto.NewAppointmentResponse(a, actor.Role)
	return &resp, nil
}

/*
* The single commit path for every status change
* Load, check ownership, check the edge, check requirements
* Write with the current status as the precondition, a miss means someone else won
* Then log, notify, publish and drop the cached copy
 */
func (s *AppointmentService) Transition(ctx context.Context, actor role.Actor, appointmentID string, to models.AppointmentStatus, reason, notes string) (*dto.AppointmentResponse, error) {
	a, err := s.repos.Appointments.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		log.Error().Err(err).Str("appointmentId", appointmentID).Msg("transition lookup failed")
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	if err := authorizeParticipant(actor, a); err != nil {
		return nil, err
	}
	from := a.Status
	if err := lifecycle.Allowed(from, to, actor.Role); err != nil {
		metrics.TransitionRejections.WithLabelValues("illegal").Inc()
		log.Info().Str("appointmentId", appointmentID).Str("from", string(from)).Str("to", string(to)).Str("role", string(actor.Role)).Msg("transition rejected")
		return nil, err
	}
	now := s.now()
	if err := lifecycle.CheckRequirements(to, lifecycle.Input{
		Actor:    actor.Role,
		Reason:   reason,
		Now:      now,
		StartsAt: a.StartsAt(),
	}); err != nil {
		metrics.TransitionRejections.WithLabelValues("requirement").Inc()
		return nil, err
	}

	by := string(actor.Role)
	if !actor.ProfileID.IsZero() {
		by = actor.ProfileID.Hex()
	}
	updated, err := s.repos.Appointments.UpdateStatus(ctx, appointmentID, from, repository.StatusChange{
		To:        to,
		Reason:    strings.TrimSpace(reason),
		Notes:     strings.TrimSpace(notes),
		ActorRole: actor.Role,
		By:        by,
		At:        now,
	})
	if errors.Is(err, repository.ErrStale) {
		metrics.TransitionRejections.WithLabelValues("stale").Inc()
		log.Info().Str("appointmentId", appointmentID).Str("expected", string(from)).Msg("status changed concurrently")
		return nil, util.ConflictError(util.APPOINTMENT_STATUS_CHANGED)
	}
	if err != nil {
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	metrics.TransitionsTotal.WithLabelValues(string(from), string(to)).Inc()

	s.effects.Record(ctx, actor, "appointment_"+string(to),
		fmt.Sprintf("Moved appointment %s from %s to %s", updated.AppointmentID, from, to),
		"appointment", updated.AppointmentID)
	s.effects.Notify(ctx, transitionMessage(updated), transitionRecipients(updated, actor.Role)...)
	s.effects.Publish(ctx, events.AppointmentEvent{
		Type:          events.AppointmentStatusChange,
		AppointmentID: updated.AppointmentID,
		Doctor:        updated.Doctor.Hex(),
		Patient:       updated.Patient.Hex(),
		From:          string(from),
		To:            string(to),
		ActorRole:     string(actor.Role),
		Reason:        updated.CancellationReason,
		OccurredAt:    now,
	})
	s.invalidate(ctx, updated.AppointmentID)

	resp := dto.NewAppointmentResponse(updated, actor.Role)
	return &resp, nil
}

func (s *AppointmentService) invalidate(ctx context.Context, appointmentID string) {
	if err := s.cache.Delete(ctx, cache.AppointmentKey(appointmentID)); err != nil {
		metrics.SideEffectFailures.WithLabelValues(metrics.EffectCache).Inc()
		log.Warn().Err(err).Str("appointmentId", appointmentID).Msg("cache invalidation failed")
	}
}

// UpdateStatus is the doctor endpoint, the body carries the target status and optional notes.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actor role.Actor, appointmentID string, req dto.StatusUpdateRequest) (*dto.AppointmentResponse, error) {
	to := models.AppointmentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !to.Valid() {
		return nil, util.ValidationError(util.INVALID_STATUS)
	}
	return s.Transition(ctx, actor, appointmentID, to, req.CancellationReason, req.Notes)
}

func (s *AppointmentService) Cancel(ctx context.Context, actor role.Actor, appointmentID, reason string) (*dto.AppointmentResponse, error) {
	return s.Transition(ctx, actor, appointmentID, models.StatusCancelled, reason, "")
}

/*
* Read through the cache
* A write that lands between our read and our fill has already invalidated,
* so the fill is checked against the store and dropped if it went stale
* Participants and admins only
 */
func (s *AppointmentService) Get(ctx context.Context, actor role.Actor, appointmentID string) (*dto.AppointmentResponse, error) {
	var a models.Appointment
	key := cache.AppointmentKey(appointmentID)
	if err := s.cache.Get(ctx, key, &a); err != nil {
		found, err := s.fill(ctx, key, appointmentID)
		if err != nil {
			return nil, err
		}
		a = *found
	}
	if err := authorizeParticipant(actor, &a); err != nil {
		return nil, err
	}
	resp := dto.NewAppointmentResponse(&a, actor.Role)
	return &resp, nil
}

func (s *AppointmentService) fill(ctx context.Context, key, appointmentID string) (*models.Appointment, error) {
	found, err := s.repos.Appointments.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	if err := s.cache.Set(ctx, key, found); err != nil {
		metrics.SideEffectFailures.WithLabelValues(metrics.EffectCache).Inc()
		return found, nil
	}
	current, err := s.repos.Appointments.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		s.invalidate(ctx, appointmentID)
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	if !sameVersion(found, current) {
		log.Debug().Str("appointmentId", appointmentID).Msg("appointment changed during cache fill")
		s.invalidate(ctx, appointmentID)
	}
	return current, nil
}

func sameVersion(a, b *models.Appointment) bool {
	return a.Status == b.Status && a.UpdatedAt.Equal(b.UpdatedAt) && (a.Prescription == nil) == (b.Prescription == nil)
}

type AppointmentPage struct {
	Items []dto.AppointmentResponse
	Total int64
	Page  repository.Page
}

// List scopes the query to the caller, admins see everything.
func (s *AppointmentService) List(ctx context.Context, actor role.Actor, q repository.AppointmentQuery) (*AppointmentPage, error) {
	switch actor.Role {
	case role.Patient:
		id := actor.ProfileID
		q.Patient = &id
	case role.Doctor:
		id := actor.ProfileID
		q.Doctor = &id
	case role.Admin, role.System:
	default:
		return nil, util.ForbiddenError(util.ROLE_NOT_PERMITTED)
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, util.ValidationError(util.INVALID_STATUS)
	}
	q.Normalize()
	items, total, err := s.repos.Appointments.List(ctx, q)
	if err != nil {
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	return &AppointmentPage{Items: dto.NewAppointmentResponses(items, actor.Role), Total: total, Page: q.Page}, nil
}

/*
* Claim the link on the appointment first, then write the prescription
* A failed write gives the claim back so the doctor can retry
 */
func (s *AppointmentService) CreatePrescription(ctx context.Context, actor role.Actor, appointmentID string, req dto.PrescriptionRequest) (*dto.PrescriptionResponse, error) {
	if actor.Role != role.Doctor {
		return nil, util.ForbiddenError(util.ROLE_NOT_PERMITTED)
	}
	a, err := s.repos.Appointments.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	if err := authorizeParticipant(actor, a); err != nil {
		return nil, err
	}
	if a.Prescription != nil {
		return nil, util.ConflictError(util.PRESCRIPTION_ALREADY_EXISTS)
	}
	if a.Status != models.StatusCompleted {
		return nil, util.ConflictError(util.PRESCRIPTION_NEEDS_COMPLETION)
	}
	diagnosis := strings.TrimSpace(req.Diagnosis)
	if diagnosis == "" {
		return nil, util.ValidationError(util.DIAGNOSIS_REQUIRED)
	}
	if len(req.Medications) == 0 {
		return nil, util.ValidationError(util.PRESCRIPTION_NEEDS_MEDICATIONS)
	}
	var followUp *time.Time
	if strings.TrimSpace(req.FollowUpDate) != "" {
		d, err := util.NormalizeDate(req.FollowUpDate)
		if err != nil {
			return nil, err
		}
		followUp = &d
	}

	now := s.now()
	p := &models.Prescription{
		ID:            primitive.NewObjectID(),
		Appointment:   a.ID,
		AppointmentID: a.AppointmentID,
		Patient:       a.Patient,
		Doctor:        a.Doctor,
		Diagnosis:     diagnosis,
		Medications:   req.MedicationModels(),
		Notes:         strings.TrimSpace(req.Notes),
		FollowUpDate:  followUp,
		CreatedAt:     now,
		CreatedBy:     actor.ProfileID.Hex(),
	}

	linked, err := s.repos.Appointments.ClaimPrescription(ctx, appointmentID, p.ID, now)
	if errors.Is(err, repository.ErrStale) {
		return nil, util.ConflictError(util.PRESCRIPTION_ALREADY_EXISTS)
	}
	if err != nil {
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	if err := s.repos.Prescriptions.Insert(ctx, p); err != nil {
		log.Error().Err(err).Str("appointmentId", appointmentID).Msg("prescription insert failed, releasing link")
		if rerr := s.repos.Appointments.ReleasePrescription(ctx, appointmentID, p.ID); rerr != nil {
			log.Error().Err(rerr).Str("appointmentId", appointmentID).Msg("prescription link release failed")
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, util.ConflictError(util.PRESCRIPTION_ALREADY_EXISTS)
		}
		return nil, util.InternalError(err)
	}

	s.effects.Record(ctx, actor, "prescription_created",
		fmt.Sprintf("Wrote prescription for appointment %s", a.AppointmentID),
		"prescription", p.ID.Hex())
	s.effects.Notify(ctx, Message{
		Type:          models.NotifyPrescriptionCreated,
		Title:         "New prescription",
		Body:          fmt.Sprintf("%s added a prescription for your appointment on %s.", a.DoctorName, a.Date.Format("Jan 2, 2006")),
		AppointmentID: a.AppointmentID,
	}, patientOf(a))
	s.effects.Publish(ctx, events.AppointmentEvent{
		Type:          events.PrescriptionCreated,
		AppointmentID: a.AppointmentID,
		Doctor:        a.Doctor.Hex(),
		Patient:       a.Patient.Hex(),
		To:            string(a.Status),
		ActorRole:     string(actor.Role),
		OccurredAt:    now,
	})
	s.invalidate(ctx, a.AppointmentID)

	return &dto.PrescriptionResponse{
		Prescription: *p,
		Appointment:  dto.NewAppointmentResponse(linked, actor.Role),
	}, nil
}

/*
* Cancel every pending or confirmed appointment that references the removed party
* Items someone else already moved are skipped
 */
func (s *AppointmentService) cancelActiveFor(ctx context.Context, field string, id primitive.ObjectID, reason string) (int, error) {
	items, err := s.repos.Appointments.ListActiveFor(ctx, field, id)
	if err != nil {
		return 0, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	cancelled := 0
	for _, a := range items {
		if _, err := s.Transition(ctx, role.SystemActor(), a.AppointmentID, models.StatusCancelled, reason, ""); err != nil {
			log.Warn().Err(err).Str("appointmentId", a.AppointmentID).Msg("cascade cancel skipped")
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *AppointmentService) CancelForRemovedDoctor(ctx context.Context, doctor primitive.ObjectID) (int, error) {
	return s.cancelActiveFor(ctx, repository.ByDoctor, doctor, util.DOCTOR_REMOVED_REASON)
}

func (s *AppointmentService) CancelForRemovedPatient(ctx context.Context, patient primitive.ObjectID) (int, error) {
	return s.cancelActiveFor(ctx, repository.ByPatient, patient, util.PATIENT_REMOVED_REASON)
}

// ExpireStalePending cancels requests nobody confirmed before their day passed.
func (s *AppointmentService) ExpireStalePending(ctx context.Context) (int, error) {
	items, err := s.repos.Appointments.ListPendingBefore(ctx, util.StartOfDay(s.now()))
	if err != nil {
		return 0, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	expired := 0
	for _, a := range items {
		if _, err := s.Transition(ctx, role.SystemActor(), a.AppointmentID, models.StatusCancelled, util.EXPIRED_REASON, ""); err != nil {
			log.Warn().Err(err).Str("appointmentId", a.AppointmentID).Msg("expiry skipped")
			continue
		}
		expired++
	}
	log.Info().Int("expired", expired).Int("candidates", len(items)).Msg("stale pending appointments expired")
	return expired, nil
}
