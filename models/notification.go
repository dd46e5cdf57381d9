package models

import (
	"time"

	"HospitalHub/role"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotifyAppointmentBooked    = "appointment_booked"
	NotifyAppointmentConfirmed = "appointment_confirmed"
	NotifyAppointmentCompleted = "appointment_completed"
	NotifyAppointmentCancelled = "appointment_cancelled"
	NotifyPrescriptionCreated  = "prescription_created"
	NotifyLeaveReviewed        = "leave_reviewed"
	NotifyDoctorReviewed       = "doctor_reviewed"
)

type Notification struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id"`
	Recipient     primitive.ObjectID `json:"recipient" bson:"recipient"`
	RecipientRole role.Role          `json:"recipientRole" bson:"recipientRole"`
	Type          string             `json:"type" bson:"type"`
	Title         string             `json:"title" bson:"title"`
	Message       string             `json:"message" bson:"message"`
	AppointmentID string             `json:"appointmentId,omitempty" bson:"appointmentId,omitempty"`
	Read          bool               `json:"read" bson:"read"`
	ReadAt        *time.Time         `json:"readAt,omitempty" bson:"readAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}
