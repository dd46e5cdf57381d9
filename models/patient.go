package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmergencyContact struct {
	Name         string `json:"name" bson:"name"`
	Phone        string `json:"phone" bson:"phone"`
	Relationship string `json:"relationship" bson:"relationship"`
}

type Patient struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id"`
	User             primitive.ObjectID `json:"user" bson:"user"`
	Name             string             `json:"name" bson:"name"`
	Email            string             `json:"email" bson:"email"`
	Phone            string             `json:"phone" bson:"phone"`
	Address          string             `json:"address" bson:"address"`
	BloodGroup       string             `json:"bloodGroup" bson:"bloodGroup"`
	EmergencyContact EmergencyContact   `json:"emergencyContact" bson:"emergencyContact"`
	IsActive         bool               `json:"isActive" bson:"isActive"`
	DeactivatedAt    *time.Time         `json:"deactivatedAt,omitempty" bson:"deactivatedAt,omitempty"`
	ActivityLog      []ActivityEntry    `json:"activityLog,omitempty" bson:"activityLog,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	CreatedBy        string             `json:"createdBy" bson:"createdBy"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy        string             `json:"updatedBy" bson:"updatedBy"`
}
