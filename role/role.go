package role

import "go.mongodb.org/mongo-driver/bson/primitive"

type Role string

const (
	Patient Role = "patient"
	Doctor  Role = "doctor"
	Admin   Role = "admin"
	// System is never carried by a token; jobs and cascades act with it.
	System Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case Patient, Doctor, Admin:
		return true
	}
	return false
}

// Admin permission flags stored in the admin permission bag.
const (
	ManageAppointments = "manageAppointments"
	ManageLeaves       = "manageLeaves"
	ManageDepartments  = "manageDepartments"
	ManageDoctors      = "manageDoctors"
	ManagePatients     = "managePatients"
	ViewReports        = "viewReports"
)

var AllPermissions = []string{
	ManageAppointments,
	ManageLeaves,
	ManageDepartments,
	ManageDoctors,
	ManagePatients,
	ViewReports,
}

/*
* Actor is the resolved caller of an operation
* ProfileID points into the patients, doctors or admins collection depending on Role
 */
type Actor struct {
	Role      Role
	UserID    primitive.ObjectID
	ProfileID primitive.ObjectID
	Name      string
}

func SystemActor() Actor {
	return Actor{Role: System, Name: "system"}
}

func (a Actor) IsSystem() bool {
	return a.Role == System
}
