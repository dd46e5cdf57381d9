// Package repository declares the persistence ports the services depend on.
//
// mongostore implements them on MongoDB, memory implements them in process
// for STORAGE=memory and for tests. Both honour the same conditional-write
// contracts: a compare-and-set that matches nothing returns ErrStale.
package repository

import (
	"context"
	"errors"
	"time"

	"HospitalHub/models"
	"HospitalHub/role"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrStale     = errors.New("document no longer matches the expected state")
	ErrDuplicate = errors.New("duplicate key")
)

/*
* StatusChange is the write half of a lifecycle transition
* Cancelling also releases the slot key
* Empty notes leave the stored notes alone
 */
type StatusChange struct {
	To        models.AppointmentStatus
	Reason    string
	Notes     string
	ActorRole role.Role
	By        string
	At        time.Time
}

type AppointmentRepository interface {
	Insert(ctx context.Context, a *models.Appointment) error
	FindByAppointmentID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	SlotTaken(ctx context.Context, slotKey string) (bool, error)
	UpdateStatus(ctx context.Context, appointmentID string, from models.AppointmentStatus, change StatusChange) (*models.Appointment, error)
	ClaimPrescription(ctx context.Context, appointmentID string, prescriptionID primitive.ObjectID, at time.Time) (*models.Appointment, error)
	ReleasePrescription(ctx context.Context, appointmentID string, prescriptionID primitive.ObjectID) error
	List(ctx context.Context, q AppointmentQuery) ([]models.Appointment, int64, error)
	ListActiveFor(ctx context.Context, field string, id primitive.ObjectID) ([]models.Appointment, error)
	ListPendingBefore(ctx context.Context, day time.Time) ([]models.Appointment, error)
	Stats(ctx context.Context, since time.Time) (*AppointmentStats, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	RevenueByMonth(ctx context.Context, since time.Time) ([]MonthRevenue, error)
}

// Reference fields accepted by ListActiveFor.
const (
	ByDoctor  = "doctor"
	ByPatient = "patient"
)

type DoctorRepository interface {
	Insert(ctx context.Context, d *models.Doctor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	FindBookable(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	List(ctx context.Context, q DoctorQuery) ([]models.Doctor, int64, error)
	SetApproval(ctx context.Context, id primitive.ObjectID, status string, at time.Time) (*models.Doctor, error)
	SetAvailability(ctx context.Context, id primitive.ObjectID, availability map[string][]models.TimeWindow, at time.Time) (*models.Doctor, error)
	Deactivate(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Doctor, error)
	CountActiveInDepartment(ctx context.Context, department primitive.ObjectID) (int64, error)
	CountByApproval(ctx context.Context, status string) (int64, error)
}

type PatientRepository interface {
	Insert(ctx context.Context, p *models.Patient) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	Deactivate(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Patient, error)
}

type AdminRepository interface {
	Insert(ctx context.Context, a *models.Admin) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

type UserRepository interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetActiveByProfile(ctx context.Context, profile primitive.ObjectID, active bool) error
	CountByRole(ctx context.Context) (map[role.Role]int64, error)
}

// ActivityRepository writes the capped activity log embedded in admin, doctor and patient profiles.
type ActivityRepository interface {
	Push(ctx context.Context, owner role.Role, profile primitive.ObjectID, entry models.ActivityEntry) error
	Recent(ctx context.Context, owner role.Role, profile primitive.ObjectID, limit int) ([]models.ActivityEntry, error)
}

type DepartmentRepository interface {
	Insert(ctx context.Context, d *models.Department) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Department, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, activeOnly bool) ([]models.Department, error)
	UpdateBeds(ctx context.Context, id primitive.ObjectID, beds models.BedCapacity, by string, at time.Time) (*models.Department, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	BedTotals(ctx context.Context) (total int64, occupied int64, err error)
}

type LeaveRepository interface {
	Insert(ctx context.Context, l *models.Leave) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Leave, error)
	List(ctx context.Context, q LeaveQuery) ([]models.Leave, int64, error)
	Review(ctx context.Context, id primitive.ObjectID, review LeaveReview) (*models.Leave, error)
	HasApprovedOn(ctx context.Context, doctor primitive.ObjectID, day time.Time) (bool, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

/*
* LeaveReview moves a pending leave to Status
* Reviewer is nil when the doctor withdraws the request
 */
type LeaveReview struct {
	Status          string
	RejectionReason string
	Reviewer        *primitive.ObjectID
	Doctor          *primitive.ObjectID
	At              time.Time
}

type PrescriptionRepository interface {
	Insert(ctx context.Context, p *models.Prescription) error
	FindByAppointment(ctx context.Context, appointment primitive.ObjectID) (*models.Prescription, error)
}

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, q NotificationQuery) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) (*models.Notification, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
}

type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Set bundles one implementation of every port.
type Set struct {
	Users         UserRepository
	Admins        AdminRepository
	Doctors       DoctorRepository
	Patients      PatientRepository
	Appointments  AppointmentRepository
	Departments   DepartmentRepository
	Leaves        LeaveRepository
	Prescriptions PrescriptionRepository
	Notifications NotificationRepository
	Activity      ActivityRepository
	Counters      CounterRepository
}

type NamedCount struct {
	ID    primitive.ObjectID `json:"id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Count int64              `json:"count" bson:"count"`
}

type DayCount struct {
	Date  string `json:"date" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

type AppointmentStats struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"byStatus"`
	ByDay        []DayCount       `json:"byDay"`
	ByDepartment []NamedCount     `json:"byDepartment"`
	ByDoctor     []NamedCount     `json:"byDoctor"`
}

type MonthRevenue struct {
	Month        string  `json:"month" bson:"_id"`
	Revenue      float64 `json:"revenue" bson:"revenue"`
	Appointments int64   `json:"appointments" bson:"appointments"`
}
