package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	LeavePending   = "pending"
	LeaveApproved  = "approved"
	LeaveRejected  = "rejected"
	LeaveCancelled = "cancelled"
)

var LeaveTypes = []string{"sick", "casual", "vacation", "emergency", "other"}

type Leave struct {
	ID              primitive.ObjectID  `json:"_id" bson:"_id"`
	Doctor          primitive.ObjectID  `json:"doctor" bson:"doctor"`
	DoctorName      string              `json:"doctorName" bson:"doctorName"`
	StartDate       time.Time           `json:"startDate" bson:"startDate"`
	EndDate         time.Time           `json:"endDate" bson:"endDate"`
	Type            string              `json:"type" bson:"type"`
	Reason          string              `json:"reason" bson:"reason"`
	Status          string              `json:"status" bson:"status"`
	RejectionReason string              `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	ReviewedBy      *primitive.ObjectID `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time          `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Covers reports whether the given calendar day falls inside the leave.
func (l *Leave) Covers(day time.Time) bool {
	return !day.Before(l.StartDate) && !day.After(l.EndDate)
}
