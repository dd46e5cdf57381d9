// Package memory keeps every collection in process behind one mutex.
//
// Conditional updates check and write under the same lock, which gives the
// same single-document guarantees the mongo store relies on.
package memory

import (
	"sync"

	"HospitalHub/models"
	"HospitalHub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]*models.User
	admins        map[primitive.ObjectID]*models.Admin
	doctors       map[primitive.ObjectID]*models.Doctor
	patients      map[primitive.ObjectID]*models.Patient
	appointments  map[string]*models.Appointment
	departments   map[primitive.ObjectID]*models.Department
	leaves        map[primitive.ObjectID]*models.Leave
	prescriptions map[primitive.ObjectID]*models.Prescription
	notifications map[primitive.ObjectID]*models.Notification
	counters      map[string]int64
}

func New() *Store {
	return &Store{
		users:         map[primitive.ObjectID]*models.User{},
		admins:        map[primitive.ObjectID]*models.Admin{},
		doctors:       map[primitive.ObjectID]*models.Doctor{},
		patients:      map[primitive.ObjectID]*models.Patient{},
		appointments:  map[string]*models.Appointment{},
		departments:   map[primitive.ObjectID]*models.Department{},
		leaves:        map[primitive.ObjectID]*models.Leave{},
		prescriptions: map[primitive.ObjectID]*models.Prescription{},
		notifications: map[primitive.ObjectID]*models.Notification{},
		counters:      map[string]int64{},
	}
}

func (s *Store) Repositories() repository.Set {
	return repository.Set{
		Users:         &userRepo{s},
		Admins:        &adminRepo{s},
		Doctors:       &doctorRepo{s},
		Patients:      &patientRepo{s},
		Appointments:  &appointmentRepo{s},
		Departments:   &departmentRepo{s},
		Leaves:        &leaveRepo{s},
		Prescriptions: &prescriptionRepo{s},
		Notifications: &notificationRepo{s},
		Activity:      &activityRepo{s},
		Counters:      &counterRepo{s},
	}
}

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}
