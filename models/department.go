package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BedCapacity struct {
	Total     int `json:"total" bson:"total"`
	Occupied  int `json:"occupied" bson:"occupied"`
	Available int `json:"available" bson:"available"`
}

// Normalize recomputes the derived available count.
func (b *BedCapacity) Normalize() {
	b.Available = b.Total - b.Occupied
}

// OccupancyRate is occupied over total in percent, zero for an empty ward.
func (b BedCapacity) OccupancyRate() float64 {
	if b.Total <= 0 {
		return 0
	}
	return float64(b.Occupied) / float64(b.Total) * 100
}

type OperatingHours struct {
	Open     string `json:"open" bson:"open"`
	Close    string `json:"close" bson:"close"`
	IsClosed bool   `json:"isClosed" bson:"isClosed"`
}

type Department struct {
	ID                primitive.ObjectID        `json:"_id" bson:"_id"`
	Code              string                    `json:"code" bson:"code"`
	Name              string                    `json:"name" bson:"name"`
	Description       string                    `json:"description" bson:"description"`
	HeadOfDepartment  *primitive.ObjectID       `json:"headOfDepartment,omitempty" bson:"headOfDepartment,omitempty"`
	BedCapacity       BedCapacity               `json:"bedCapacity" bson:"bedCapacity"`
	OperatingHours    map[string]OperatingHours `json:"operatingHours" bson:"operatingHours"`
	EmergencyServices bool                      `json:"emergencyServices" bson:"emergencyServices"`
	Equipment         []string                  `json:"equipment" bson:"equipment"`
	Specializations   []string                  `json:"specializations" bson:"specializations"`
	InsuranceAccepted []string                  `json:"insuranceAccepted" bson:"insuranceAccepted"`
	IsActive          bool                      `json:"isActive" bson:"isActive"`
	CreatedAt         time.Time                 `json:"createdAt" bson:"createdAt"`
	CreatedBy         string                    `json:"createdBy" bson:"createdBy"`
	UpdatedAt         time.Time                 `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy         string                    `json:"updatedBy" bson:"updatedBy"`
}
