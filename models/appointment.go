package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "pending"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusInProgress  AppointmentStatus = "in_progress"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusRescheduled AppointmentStatus = "rescheduled"
	StatusNoShow      AppointmentStatus = "no_show"

	// StatusScheduled only exists in legacy documents, migrations rewrite it to pending.
	StatusScheduled AppointmentStatus = "scheduled"
)

var AppointmentStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusRescheduled,
	StatusNoShow,
}

func (s AppointmentStatus) Valid() bool {
	for _, v := range AppointmentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Active statuses hold the doctor's slot.
func (s AppointmentStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInProgress || s == StatusRescheduled
}

const (
	AppointmentTypeInPerson = "in-person"
	AppointmentTypeVideo    = "video"
	AppointmentTypePhone    = "phone"

	DefaultAppointmentDuration = 30
)

type Appointment struct {
	ID                 primitive.ObjectID  `json:"_id" bson:"_id"`
	AppointmentID      string              `json:"appointmentId" bson:"appointmentId"`
	Patient            primitive.ObjectID  `json:"patient" bson:"patient"`
	PatientName        string              `json:"patientName" bson:"patientName"`
	Doctor             primitive.ObjectID  `json:"doctor" bson:"doctor"`
	DoctorName         string              `json:"doctorName" bson:"doctorName"`
	Department         primitive.ObjectID  `json:"department" bson:"department"`
	DepartmentName     string              `json:"departmentName" bson:"departmentName"`
	Date               time.Time           `json:"date" bson:"date"`
	Time               string              `json:"time" bson:"time"`
	Duration           int                 `json:"duration" bson:"duration"`
	Type               string              `json:"type" bson:"type"`
	Reason             string              `json:"reason" bson:"reason"`
	Symptoms           []string            `json:"symptoms" bson:"symptoms"`
	Status             AppointmentStatus   `json:"status" bson:"status"`
	Notes              string              `json:"notes,omitempty" bson:"notes,omitempty"`
	CancellationReason string              `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	CancelledBy        string              `json:"cancelledBy,omitempty" bson:"cancelledBy,omitempty"`
	CancelledAt        *time.Time          `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	CompletedAt        *time.Time          `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	Prescription       *primitive.ObjectID `json:"prescription,omitempty" bson:"prescription,omitempty"`
	ConsultationFee    float64             `json:"consultationFee" bson:"consultationFee"`
	SlotKey            *string             `json:"-" bson:"slotKey,omitempty"`
	CreatedAt          time.Time           `json:"createdAt" bson:"createdAt"`
	CreatedBy          string              `json:"createdBy" bson:"createdBy"`
	UpdatedAt          time.Time           `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy          string              `json:"updatedBy" bson:"updatedBy"`
}

/*
* SlotKey identifies a doctor's (date, time) slot
* It is unique across appointments that still hold the slot
 */
func SlotKey(doctor primitive.ObjectID, date time.Time, clock string) string {
	return doctor.Hex() + "|" + date.UTC().Format("2006-01-02") + "|" + clock
}

// StartsAt combines the calendar date and the HH:MM clock in UTC.
func (a *Appointment) StartsAt() time.Time {
	t, err := time.Parse("15:04", a.Time)
	if err != nil {
		return a.Date
	}
	d := a.Date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}
