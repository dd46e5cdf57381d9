package dto

import (
	"time"

	"HospitalHub/lifecycle"
	"HospitalHub/models"
	"HospitalHub/role"
	"HospitalHub/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PartyRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

type AppointmentResponse struct {
	ID                 primitive.ObjectID         `json:"_id"`
	AppointmentID      string                     `json:"appointmentId"`
	Patient            PartyRef                   `json:"patient"`
	Doctor             PartyRef                   `json:"doctor"`
	Department         PartyRef                   `json:"department"`
	Date               string                     `json:"date"`
	Time               string                     `json:"time"`
	DisplayTime        string                     `json:"displayTime"`
	Duration           int                        `json:"duration"`
	Type               string                     `json:"type"`
	Reason             string                     `json:"reason"`
	Symptoms           []string                   `json:"symptoms"`
	Status             models.AppointmentStatus   `json:"status"`
	Notes              string                     `json:"notes,omitempty"`
	CancellationReason string                     `json:"cancellationReason,omitempty"`
	CancelledBy        string                     `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time                 `json:"cancelledAt,omitempty"`
	CompletedAt        *time.Time                 `json:"completedAt,omitempty"`
	Prescription       *primitive.ObjectID        `json:"prescription,omitempty"`
	ConsultationFee    float64                    `json:"consultationFee"`
	NextStatuses       []models.AppointmentStatus `json:"nextStatuses"`
	CreatedAt          time.Time                  `json:"createdAt"`
	UpdatedAt          time.Time                  `json:"updatedAt"`
}

// NewAppointmentResponse shapes a stored appointment for the given viewer.
func NewAppointmentResponse(a *models.Appointment, viewer role.Role) AppointmentResponse {
	symptoms := a.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	next := lifecycle.Next(a.Status, viewer)
	if next == nil {
		next = []models.AppointmentStatus{}
	}
	return AppointmentResponse{
		ID:                 a.ID,
		AppointmentID:      a.AppointmentID,
		Patient:            PartyRef{ID: a.Patient, Name: a.PatientName},
		Doctor:             PartyRef{ID: a.Doctor, Name: a.DoctorName},
		Department:         PartyRef{ID: a.Department, Name: a.DepartmentName},
		Date:               a.Date.UTC().Format(util.DateLayout),
		Time:               a.Time,
		DisplayTime:        util.FormatClock12(a.Time),
		Duration:           a.Duration,
		Type:               a.Type,
		Reason:             a.Reason,
		Symptoms:           symptoms,
		Status:             a.Status,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CancelledBy:        a.CancelledBy,
		CancelledAt:        a.CancelledAt,
		CompletedAt:        a.CompletedAt,
		Prescription:       a.Prescription,
		ConsultationFee:    a.ConsultationFee,
		NextStatuses:       next,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func NewAppointmentResponses(list []models.Appointment, viewer role.Role) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for i := range list {
		out = append(out, NewAppointmentResponse(&list[i], viewer))
	}
	return out
}

// DoctorResponse is the patient facing doctor profile.
type DoctorResponse struct {
	ID              primitive.ObjectID             `json:"_id"`
	Name            string                         `json:"name"`
	Specialization  string                         `json:"specialization"`
	Qualifications  []models.Qualification         `json:"qualifications"`
	Experience      int                            `json:"experience"`
	ConsultationFee float64                        `json:"consultationFee"`
	Bio             string                         `json:"bio"`
	Languages       []string                       `json:"languages"`
	Availability    map[string][]models.TimeWindow `json:"availability"`
	Department      PartyRef                       `json:"department"`
}

func NewDoctorResponse(d *models.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:              d.ID,
		Name:            d.Name,
		Specialization:  d.Specialization,
		Qualifications:  d.Qualifications,
		Experience:      d.Experience,
		ConsultationFee: d.ConsultationFee,
		Bio:             d.Bio,
		Languages:       d.Languages,
		Availability:    d.Availability,
		Department:      PartyRef{ID: d.Department, Name: d.DepartmentName},
	}
}

func NewDoctorResponses(list []models.Doctor) []DoctorResponse {
	out := make([]DoctorResponse, 0, len(list))
	for i := range list {
		out = append(out, NewDoctorResponse(&list[i]))
	}
	return out
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

type PrescriptionResponse struct {
	Prescription models.Prescription `json:"prescription"`
	Appointment  AppointmentResponse `json:"appointment"`
}

type Dashboard struct {
	Users                  map[string]int64 `json:"users"`
	TodayAppointments      int64            `json:"todayAppointments"`
	PendingLeaves          int64            `json:"pendingLeaves"`
	PendingDoctorApprovals int64            `json:"pendingDoctorApprovals"`
	BedOccupancyRate       float64          `json:"bedOccupancyRate"`
	TotalBeds              int64            `json:"totalBeds"`
	OccupiedBeds           int64            `json:"occupiedBeds"`
	Revenue                []MonthRevenue   `json:"revenue"`
}

type MonthRevenue struct {
	Month        string  `json:"month"`
	Revenue      float64 `json:"revenue"`
	Appointments int64   `json:"appointments"`
}
