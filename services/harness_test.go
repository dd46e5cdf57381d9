package services

import (
	"context"
	"testing"
	"time"

	"HospitalHub/dto"
	"HospitalHub/events"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/repository/memory"
	"HospitalHub/role"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type harness struct {
	t       *testing.T
	ctx     context.Context
	repos   repository.Set
	events  *events.Recorder
	now     time.Time
	svc     *Services
	patient role.Actor
	doctor  role.Actor
	admin   role.Actor
	dept    *models.Department
}

// Monday 2026-03-02 08:00 UTC.
var testStart = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		ctx:    context.Background(),
		repos:  memory.New().Repositories(),
		events: &events.Recorder{},
		now:    testStart,
	}
	h.svc = New(Deps{
		Repos:     h.repos,
		Events:    h.events,
		Now:       func() time.Time { return h.now },
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
	})

	h.dept = &models.Department{ID: primitive.NewObjectID(), Code: "CAR", Name: "Cardiology", IsActive: true,
		BedCapacity: models.BedCapacity{Total: 50, Occupied: 10, Available: 40}}
	require.NoError(t, h.repos.Departments.Insert(h.ctx, h.dept))

	h.patient = h.addPatient("Pat Lee")
	h.doctor = h.addDoctor("Dr. Rao", models.ApprovalApproved)
	h.admin = h.addAdmin("Root Admin", map[string]bool{
		role.ManageAppointments: true,
		role.ManageLeaves:       true,
		role.ManageDepartments:  true,
		role.ManageDoctors:      true,
		role.ManagePatients:     true,
		role.ViewReports:        true,
	})
	return h
}

func (h *harness) addUser(name string, r role.Role, profile primitive.ObjectID) primitive.ObjectID {
	hash, err := HashPassword("password123")
	require.NoError(h.t, err)
	u := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Email:    profile.Hex() + "@hospital.test",
		Password: hash,
		Role:     r,
		Profile:  profile,
		IsActive: true,
	}
	require.NoError(h.t, h.repos.Users.Insert(h.ctx, u))
	return u.ID
}

func (h *harness) addPatient(name string) role.Actor {
	p := &models.Patient{ID: primitive.NewObjectID(), Name: name, IsActive: true}
	p.User = h.addUser(name, role.Patient, p.ID)
	require.NoError(h.t, h.repos.Patients.Insert(h.ctx, p))
	return role.Actor{Role: role.Patient, UserID: p.User, ProfileID: p.ID, Name: name}
}

func (h *harness) addDoctor(name, approval string) role.Actor {
	d := &models.Doctor{
		ID:              primitive.NewObjectID(),
		Name:            name,
		Specialization:  "Cardiology",
		ConsultationFee: 500,
		ApprovalStatus:  approval,
		Department:      h.dept.ID,
		DepartmentName:  h.dept.Name,
		IsActive:        true,
	}
	d.User = h.addUser(name, role.Doctor, d.ID)
	require.NoError(h.t, h.repos.Doctors.Insert(h.ctx, d))
	return role.Actor{Role: role.Doctor, UserID: d.User, ProfileID: d.ID, Name: name}
}

func (h *harness) addAdmin(name string, perms map[string]bool) role.Actor {
	a := &models.Admin{ID: primitive.NewObjectID(), AdminID: "ADM0001", Name: name, Permissions: perms}
	a.User = h.addUser(name, role.Admin, a.ID)
	require.NoError(h.t, h.repos.Admins.Insert(h.ctx, a))
	return role.Actor{Role: role.Admin, UserID: a.User, ProfileID: a.ID, Name: name}
}

// book reserves the doctor's slot on Wednesday 2026-03-04.
func (h *harness) book(clock string) *dto.AppointmentResponse {
	h.t.Helper()
	resp, err := h.svc.Appointments.Book(h.ctx, h.patient, dto.BookAppointmentRequest{
		DoctorID: h.doctor.ProfileID.Hex(),
		Date:     "2026-03-04",
		Time:     clock,
		Reason:   "Chest pain on exertion",
	})
	require.NoError(h.t, err)
	return resp
}

func (h *harness) notificationsFor(id primitive.ObjectID) []models.Notification {
	items, _, err := h.repos.Notifications.List(h.ctx, repository.NotificationQuery{
		Page:      repository.Page{Page: 1, Limit: 100},
		Recipient: id,
	})
	require.NoError(h.t, err)
	return items
}

func (h *harness) activityOf(actor role.Actor) []models.ActivityEntry {
	entries, err := h.repos.Activity.Recent(h.ctx, actor.Role, actor.ProfileID, 0)
	require.NoError(h.t, err)
	return entries
}
