package dto

import "HospitalHub/models"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

/*
* Patients register straight into an active account
* Doctors register against a department and wait for admin approval
 */
type RegisterRequest struct {
	Name            string  `json:"name" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=8"`
	Role            string  `json:"role" binding:"required,oneof=patient doctor"`
	Phone           string  `json:"phone"`
	Department      string  `json:"department" binding:"omitempty,objectid"`
	Specialization  string  `json:"specialization"`
	LicenseNumber   string  `json:"licenseNumber"`
	ConsultationFee float64 `json:"consultationFee" binding:"gte=0"`
	Availability    Weekly  `json:"availability" binding:"omitempty,dive,dive"`
}

type AvailabilityWindow struct {
	StartTime string `json:"startTime" binding:"required,clock"`
	EndTime   string `json:"endTime" binding:"required,clock"`
}

// Weekly maps a lowercase weekday name to its working windows.
type Weekly map[string][]AvailabilityWindow

// AvailabilityRequest replaces the doctor's whole weekly schedule, an empty map clears it.
type AvailabilityRequest struct {
	Availability Weekly `json:"availability" binding:"required,dive,dive"`
}

type BookAppointmentRequest struct {
	DoctorID string   `json:"doctorId" binding:"required,objectid"`
	Date     string   `json:"date" binding:"required"`
	Time     string   `json:"time" binding:"required,clock"`
	Reason   string   `json:"reason" binding:"required"`
	Symptoms []string `json:"symptoms"`
	Type     string   `json:"type" binding:"omitempty,oneof=in-person video phone"`
	Duration int      `json:"duration" binding:"omitempty,min=5,max=240"`
	Notes    string   `json:"notes"`
}

// StatusUpdateRequest drives the doctor status endpoint.
type StatusUpdateRequest struct {
	Status             string `json:"status" binding:"required"`
	CancellationReason string `json:"cancellationReason"`
	Notes              string `json:"notes"`
}

type CancelRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

type MedicationRequest struct {
	Name         string `json:"name" binding:"required"`
	Dosage       string `json:"dosage" binding:"required"`
	Frequency    string `json:"frequency" binding:"required"`
	Duration     string `json:"duration" binding:"required"`
	Instructions string `json:"instructions"`
}

type PrescriptionRequest struct {
	Diagnosis    string              `json:"diagnosis"`
	Medications  []MedicationRequest `json:"medications" binding:"dive"`
	Notes        string              `json:"notes"`
	FollowUpDate string              `json:"followUpDate"`
}

func (r PrescriptionRequest) MedicationModels() []models.Medication {
	out := make([]models.Medication, 0, len(r.Medications))
	for _, m := range r.Medications {
		out = append(out, models.Medication{
			Name:         m.Name,
			Dosage:       m.Dosage,
			Frequency:    m.Frequency,
			Duration:     m.Duration,
			Instructions: m.Instructions,
		})
	}
	return out
}

type LeaveRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Reason    string `json:"reason"`
}

type LeaveApprovalRequest struct {
	Status          string `json:"status" binding:"required"`
	RejectionReason string `json:"rejectionReason"`
}

type DoctorApprovalRequest struct {
	Status string `json:"status" binding:"required"`
}

type DepartmentRequest struct {
	Name              string                           `json:"name" binding:"required"`
	Code              string                           `json:"code"`
	Description       string                           `json:"description"`
	HeadOfDepartment  string                           `json:"headOfDepartment" binding:"omitempty,objectid"`
	TotalBeds         int                              `json:"totalBeds" binding:"gte=0"`
	OccupiedBeds      int                              `json:"occupiedBeds" binding:"gte=0"`
	OperatingHours    map[string]models.OperatingHours `json:"operatingHours"`
	EmergencyServices bool                             `json:"emergencyServices"`
	Equipment         []string                         `json:"equipment"`
	Specializations   []string                         `json:"specializations"`
	InsuranceAccepted []string                         `json:"insuranceAccepted"`
}

/*
* Total is required
* Either available or occupied may be given, the other one is derived
 */
type BedUpdateRequest struct {
	Total     *int `json:"total"`
	Available *int `json:"available"`
	Occupied  *int `json:"occupied"`
}
