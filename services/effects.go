package services

import (
	"context"
	"fmt"
	"time"

	"HospitalHub/events"
	"HospitalHub/metrics"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/*
* Effects runs the secondary writes that follow a committed change
* Each one is independent, a failure is logged and counted and never undoes the primary write
 */
type Effects struct {
	activity      repository.ActivityRepository
	notifications repository.NotificationRepository
	publisher     events.Publisher
	now           func() time.Time
}

func NewEffects(activity repository.ActivityRepository, notifications repository.NotificationRepository, publisher events.Publisher, now func() time.Time) *Effects {
	return &Effects{activity: activity, notifications: notifications, publisher: publisher, now: now}
}

type Recipient struct {
	ID   primitive.ObjectID
	Role role.Role
}

type Message struct {
	Type          string
	Title         string
	Body          string
	AppointmentID string
}

// Record appends to the actor's own activity log, system actions are not logged.
func (e *Effects) Record(ctx context.Context, actor role.Actor, action, description, targetType, targetID string) {
	if actor.IsSystem() || actor.ProfileID.IsZero() {
		return
	}
	entry := models.ActivityEntry{
		Action:      action,
		Description: description,
		TargetType:  targetType,
		TargetID:    targetID,
		Timestamp:   e.now(),
	}
	if err := e.activity.Push(ctx, actor.Role, actor.ProfileID, entry); err != nil {
		metrics.SideEffectFailures.WithLabelValues(metrics.EffectActivity).Inc()
		log.Error().Err(err).Str("action", action).Str("profile", actor.ProfileID.Hex()).Msg("activity log write failed")
	}
}

func (e *Effects) Notify(ctx context.Context, msg Message, recipients ...Recipient) {
	for _, r := range recipients {
		n := &models.Notification{
			ID:            primitive.NewObjectID(),
			Recipient:     r.ID,
			RecipientRole: r.Role,
			Type:          msg.Type,
			Title:         msg.Title,
			Message:       msg.Body,
			AppointmentID: msg.AppointmentID,
			CreatedAt:     e.now(),
		}
		if err := e.notifications.Insert(ctx, n); err != nil {
			metrics.SideEffectFailures.WithLabelValues(metrics.EffectNotification).Inc()
			log.Error().Err(err).Str("type", msg.Type).Str("recipient", r.ID.Hex()).Msg("notification write failed")
		}
	}
}

func (e *Effects) Publish(ctx context.Context, evt events.AppointmentEvent) {
	if err := e.publisher.PublishAppointment(ctx, evt); err != nil {
		metrics.SideEffectFailures.WithLabelValues(metrics.EffectEvent).Inc()
		log.Warn().Err(err).Str("type", evt.Type).Str("appointmentId", evt.AppointmentID).Msg("event publish failed")
	}
}

func doctorOf(a *models.Appointment) Recipient {
	return Recipient{ID: a.Doctor, Role: role.Doctor}
}

func patientOf(a *models.Appointment) Recipient {
	return Recipient{ID: a.Patient, Role: role.Patient}
}

/*
* Pick who hears about a committed status change
* Cancellations go to the other party, or to both when an admin or the system cancelled
 */
func transitionRecipients(a *models.Appointment, actor role.Role) []Recipient {
	switch a.Status {
	case models.StatusConfirmed, models.StatusCompleted:
		return []Recipient{patientOf(a)}
	case models.StatusCancelled:
		switch actor {
		case role.Patient:
			return []Recipient{doctorOf(a)}
		case role.Doctor:
			return []Recipient{patientOf(a)}
		default:
			return []Recipient{patientOf(a), doctorOf(a)}
		}
	}
	return nil
}

func transitionMessage(a *models.Appointment) Message {
	when := fmt.Sprintf("%s at %s", a.Date.UTC().Format("Jan 2, 2006"), a.Time)
	msg := Message{AppointmentID: a.AppointmentID}
	switch a.Status {
	case models.StatusConfirmed:
		msg.Type = models.NotifyAppointmentConfirmed
		msg.Title = "Appointment confirmed"
		msg.Body = fmt.Sprintf("Your appointment with %s on %s has been confirmed.", a.DoctorName, when)
	case models.StatusCompleted:
		msg.Type = models.NotifyAppointmentCompleted
		msg.Title = "Appointment completed"
		msg.Body = fmt.Sprintf("Your appointment with %s on %s is marked as completed.", a.DoctorName, when)
	case models.StatusCancelled:
		msg.Type = models.NotifyAppointmentCancelled
		msg.Title = "Appointment cancelled"
		msg.Body = fmt.Sprintf("The appointment between %s and %s on %s was cancelled: %s", a.PatientName, a.DoctorName, when, a.CancellationReason)
	default:
		msg.Type = string(a.Status)
		msg.Title = "Appointment updated"
		msg.Body = fmt.Sprintf("The appointment on %s is now %s.", when, a.Status)
	}
	return msg
}
