package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

type Qualification struct {
	Degree      string `json:"degree" bson:"degree"`
	Institution string `json:"institution" bson:"institution"`
	Year        int    `json:"year" bson:"year"`
}

type TimeWindow struct {
	StartTime string `json:"startTime" bson:"startTime"`
	EndTime   string `json:"endTime" bson:"endTime"`
}

type Doctor struct {
	ID              primitive.ObjectID      `json:"_id" bson:"_id"`
	User            primitive.ObjectID      `json:"user" bson:"user"`
	Name            string                  `json:"name" bson:"name"`
	Email           string                  `json:"email" bson:"email"`
	Specialization  string                  `json:"specialization" bson:"specialization"`
	Qualifications  []Qualification         `json:"qualifications" bson:"qualifications"`
	LicenseNumber   string                  `json:"licenseNumber" bson:"licenseNumber"`
	Experience      int                     `json:"experience" bson:"experience"`
	ConsultationFee float64                 `json:"consultationFee" bson:"consultationFee"`
	Bio             string                  `json:"bio" bson:"bio"`
	Languages       []string                `json:"languages" bson:"languages"`
	Availability    map[string][]TimeWindow `json:"availability" bson:"availability"`
	ApprovalStatus  string                  `json:"approvalStatus" bson:"approvalStatus"`
	Department      primitive.ObjectID      `json:"department" bson:"department"`
	DepartmentName  string                  `json:"departmentName" bson:"departmentName"`
	IsActive        bool                    `json:"isActive" bson:"isActive"`
	DeactivatedAt   *time.Time              `json:"deactivatedAt,omitempty" bson:"deactivatedAt,omitempty"`
	ActivityLog     []ActivityEntry         `json:"activityLog,omitempty" bson:"activityLog,omitempty"`
	CreatedAt       time.Time               `json:"createdAt" bson:"createdAt"`
	CreatedBy       string                  `json:"createdBy" bson:"createdBy"`
	UpdatedAt       time.Time               `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy       string                  `json:"updatedBy" bson:"updatedBy"`
}

// Bookable reports whether patients may see and book this doctor.
func (d *Doctor) Bookable() bool {
	return d.IsActive && d.ApprovalStatus == ApprovalApproved
}
