package models

import (
	"time"

	"HospitalHub/role"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Role      role.Role          `json:"role" bson:"role"`
	Profile   primitive.ObjectID `json:"profile" bson:"profile"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	LastLogin *time.Time         `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type Admin struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	AdminID     string             `json:"adminId" bson:"adminId"`
	User        primitive.ObjectID `json:"user" bson:"user"`
	Name        string             `json:"name" bson:"name"`
	Permissions map[string]bool    `json:"permissions" bson:"permissions"`
	ActivityLog []ActivityEntry    `json:"activityLog,omitempty" bson:"activityLog,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (a *Admin) Can(permission string) bool {
	return a.Permissions[permission]
}
