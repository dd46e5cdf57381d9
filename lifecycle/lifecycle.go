// Package lifecycle holds the appointment status machine.
//
// The table below is the only source of legal status changes. Any pair not
// listed, self transitions included, is rejected before anything is written.
package lifecycle

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"HospitalHub/models"
	"HospitalHub/role"
	"HospitalHub/util"
)

// MinReasonLength applies to patient cancellations and leave rejections.
const MinReasonLength = 10

type Edge struct {
	From models.AppointmentStatus
	To   models.AppointmentStatus
}

var table = map[Edge][]role.Role{
	{models.StatusPending, models.StatusConfirmed}:     {role.Doctor},
	{models.StatusPending, models.StatusCancelled}:     {role.Patient, role.Doctor, role.Admin, role.System},
	{models.StatusConfirmed, models.StatusCancelled}:   {role.Patient, role.Doctor, role.Admin, role.System},
	{models.StatusConfirmed, models.StatusCompleted}:   {role.Doctor},
	{models.StatusInProgress, models.StatusCancelled}:  {role.Admin, role.System},
	{models.StatusRescheduled, models.StatusCancelled}: {role.Admin, role.System},
}

func (e Edge) String() string {
	return fmt.Sprintf("%s to %s", e.From, e.To)
}

// Exists reports whether the pair is in the table for any actor.
func Exists(from, to models.AppointmentStatus) bool {
	_, ok := table[Edge{from, to}]
	return ok
}

/*
* Reject unknown statuses
* Reject pairs missing from the table with a conflict naming the pair
* Reject actors the row does not list with forbidden
 */
func Allowed(from, to models.AppointmentStatus, actor role.Role) error {
	if !to.Valid() {
		return util.ValidationError(util.INVALID_STATUS)
	}
	actors, ok := table[Edge{from, to}]
	if !ok {
		return util.ConflictError(fmt.Sprintf("Invalid status transition from %s to %s", from, to))
	}
	for _, a := range actors {
		if a == actor {
			return nil
		}
	}
	return util.ForbiddenError(fmt.Sprintf("A %s cannot change an appointment from %s to %s", actor, from, to))
}

// Next lists the statuses the actor may move the appointment to.
func Next(from models.AppointmentStatus, actor role.Role) []models.AppointmentStatus {
	var out []models.AppointmentStatus
	for _, to := range models.AppointmentStatuses {
		if Allowed(from, to, actor) == nil {
			out = append(out, to)
		}
	}
	return out
}

func Terminal(s models.AppointmentStatus) bool {
	for e := range table {
		if e.From == s {
			return false
		}
	}
	return true
}

type Input struct {
	Actor    role.Role
	Reason   string
	Now      time.Time
	StartsAt time.Time
}

/*
* Cancellation always carries a reason, patients need at least MinReasonLength characters
* Completion needs the scheduled start to have passed
 */
func CheckRequirements(to models.AppointmentStatus, in Input) error {
	switch to {
	case models.StatusCancelled:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			return util.ValidationError(util.CANCELLATION_REASON_REQUIRED)
		}
		if in.Actor == role.Patient && utf8.RuneCountInString(reason) < MinReasonLength {
			return util.ValidationError(util.CANCELLATION_REASON_TOO_SHORT)
		}
	case models.StatusCompleted:
		if in.Now.Before(in.StartsAt) {
			return util.ValidationError(util.APPOINTMENT_NOT_ELAPSED)
		}
	}
	return nil
}

// ReasonLongEnough is shared with the leave rejection rule.
func ReasonLongEnough(reason string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(reason)) >= MinReasonLength
}
