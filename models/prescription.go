package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Medication struct {
	Name         string `json:"name" bson:"name"`
	Dosage       string `json:"dosage" bson:"dosage"`
	Frequency    string `json:"frequency" bson:"frequency"`
	Duration     string `json:"duration" bson:"duration"`
	Instructions string `json:"instructions,omitempty" bson:"instructions,omitempty"`
}

type Prescription struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id"`
	Appointment   primitive.ObjectID `json:"appointment" bson:"appointment"`
	AppointmentID string             `json:"appointmentId" bson:"appointmentId"`
	Patient       primitive.ObjectID `json:"patient" bson:"patient"`
	Doctor        primitive.ObjectID `json:"doctor" bson:"doctor"`
	Diagnosis     string             `json:"diagnosis" bson:"diagnosis"`
	Medications   []Medication       `json:"medications" bson:"medications"`
	Notes         string             `json:"notes,omitempty" bson:"notes,omitempty"`
	FollowUpDate  *time.Time         `json:"followUpDate,omitempty" bson:"followUpDate,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	CreatedBy     string             `json:"createdBy" bson:"createdBy"`
}
