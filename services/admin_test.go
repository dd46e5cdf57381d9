package services

import (
	"fmt"
	"testing"
	"time"

	"HospitalHub/dto"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHasPermission(t *testing.T) {
	h := newHarness(t)
	limited := h.addAdmin("Desk Admin", map[string]bool{role.ViewReports: true})

	ok, err := h.svc.Admin.HasPermission(h.ctx, limited, role.ViewReports)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.svc.Admin.HasPermission(h.ctx, limited, role.ManageDoctors)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.svc.Admin.HasPermission(h.ctx, h.doctor, role.ViewReports)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActivityLogCappedAndNewestFirst(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 101; i++ {
		h.svc.Admin.effects.Record(h.ctx, h.admin, "test", fmt.Sprintf("entry %d", i), "", "")
	}

	entries, err := h.svc.Admin.Activity(h.ctx, h.admin, 500)
	require.NoError(t, err)
	require.Len(t, entries, models.ActivityLogLimit)
	assert.Equal(t, "entry 100", entries[0].Description)
	assert.Equal(t, "entry 1", entries[len(entries)-1].Description)

	entries, err = h.svc.Admin.Activity(h.ctx, h.admin, 0)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultActivityLimit)
}

func TestReviewDoctor(t *testing.T) {
	h := newHarness(t)
	pending := h.addDoctor("Dr. New", models.ApprovalPending)

	_, err := h.svc.Admin.ReviewDoctor(h.ctx, h.admin, pending.ProfileID, "maybe")
	assert.Equal(t, util.INVALID_APPROVAL_STATUS, util.PublicMessage(err))

	_, err = h.svc.Doctors.GetPublic(h.ctx, pending.ProfileID)
	assert.True(t, util.IsKind(err, util.KindNotFound))

	d, err := h.svc.Admin.ReviewDoctor(h.ctx, h.admin, pending.ProfileID, "Approved")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, d.ApprovalStatus)

	pub, err := h.svc.Doctors.GetPublic(h.ctx, pending.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. New", pub.Name)
	assert.Equal(t, "Cardiology", pub.Department.Name)

	inbox := h.notificationsFor(pending.ProfileID)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotifyDoctorReviewed, inbox[0].Type)
	assert.Equal(t, "doctor_approved", h.activityOf(h.admin)[0].Action)
}

func TestReviewDoctorHappensOnce(t *testing.T) {
	h := newHarness(t)
	pending := h.addDoctor("Dr. New", models.ApprovalPending)

	_, err := h.svc.Admin.ReviewDoctor(h.ctx, h.admin, pending.ProfileID, "approved")
	require.NoError(t, err)

	for _, status := range []string{"approved", "rejected"} {
		_, err = h.svc.Admin.ReviewDoctor(h.ctx, h.admin, pending.ProfileID, status)
		require.Error(t, err, status)
		assert.True(t, util.IsKind(err, util.KindConflict), status)
		assert.Equal(t, util.DOCTOR_ALREADY_REVIEWED, util.PublicMessage(err))
	}

	d, err := h.repos.Doctors.FindByID(h.ctx, pending.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, d.ApprovalStatus)
	assert.Len(t, h.notificationsFor(pending.ProfileID), 1)
	assert.Len(t, h.activityOf(h.admin), 1)

	// the harness doctor is already approved
	_, err = h.svc.Admin.ReviewDoctor(h.ctx, h.admin, h.doctor.ProfileID, "rejected")
	assert.True(t, util.IsKind(err, util.KindConflict))

	_, err = h.svc.Admin.ReviewDoctor(h.ctx, h.admin, primitive.NewObjectID(), "approved")
	assert.True(t, util.IsKind(err, util.KindNotFound))
}

func TestDoctorVisibility(t *testing.T) {
	h := newHarness(t)
	h.addDoctor("Dr. Pending", models.ApprovalPending)
	h.addDoctor("Dr. Rejected", models.ApprovalRejected)

	public, err := h.svc.Doctors.ListPublic(h.ctx, repository.DoctorQuery{ApprovalStatus: models.ApprovalPending})
	require.NoError(t, err)
	require.EqualValues(t, 1, public.Total)
	assert.Equal(t, "Dr. Rao", public.Items[0].Name)

	all, err := h.svc.Admin.ListDoctors(h.ctx, repository.DoctorQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)

	pending, err := h.svc.Admin.ListDoctors(h.ctx, repository.DoctorQuery{ApprovalStatus: models.ApprovalPending})
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending.Total)
}

func TestRemoveDoctorCancelsActiveAppointments(t *testing.T) {
	h := newHarness(t)
	first := h.book("10:00")
	second := h.book("11:00")
	_, err := h.svc.Appointments.UpdateStatus(h.ctx, h.doctor, second.AppointmentID, dto.StatusUpdateRequest{Status: "confirmed"})
	require.NoError(t, err)

	res, err := h.svc.Admin.RemoveDoctor(h.ctx, h.admin, h.doctor.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.CancelledAppointments)

	for _, id := range []string{first.AppointmentID, second.AppointmentID} {
		a, err := h.repos.Appointments.FindByAppointmentID(h.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, a.Status)
		assert.Equal(t, "system", a.CancelledBy)
		assert.Equal(t, util.DOCTOR_REMOVED_REASON, a.CancellationReason)
	}

	cancelNotes := func(list []models.Notification) int {
		n := 0
		for _, item := range list {
			if item.Type == models.NotifyAppointmentCancelled {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 2, cancelNotes(h.notificationsFor(h.patient.ProfileID)))
	assert.Equal(t, 2, cancelNotes(h.notificationsFor(h.doctor.ProfileID)))

	assert.Equal(t, "doctor_removed", h.activityOf(h.admin)[0].Action)

	_, err = h.svc.Auth.Login(h.ctx, dto.LoginRequest{Email: h.doctor.ProfileID.Hex() + "@hospital.test", Password: "password123"})
	assert.Equal(t, util.ACCOUNT_DISABLED, util.PublicMessage(err))

	_, err = h.svc.Admin.RemoveDoctor(h.ctx, h.admin, h.doctor.ProfileID)
	assert.Equal(t, util.DOCTOR_ALREADY_INACTIVE, util.PublicMessage(err))

	_, err = h.svc.Appointments.Book(h.ctx, h.patient, dto.BookAppointmentRequest{
		DoctorID: h.doctor.ProfileID.Hex(), Date: "2026-03-04", Time: "12:00", Reason: "Checkup",
	})
	assert.True(t, util.IsKind(err, util.KindNotFound))
}

func TestRemovePatientCancelsActiveAppointments(t *testing.T) {
	h := newHarness(t)
	booked := h.book("10:00")

	res, err := h.svc.Admin.RemovePatient(h.ctx, h.admin, h.patient.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CancelledAppointments)

	a, err := h.repos.Appointments.FindByAppointmentID(h.ctx, booked.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, util.PATIENT_REMOVED_REASON, a.CancellationReason)

	_, err = h.svc.Admin.RemovePatient(h.ctx, h.admin, h.patient.ProfileID)
	assert.Equal(t, util.PATIENT_ALREADY_INACTIVE, util.PublicMessage(err))
}

func TestStatsAndDashboard(t *testing.T) {
	h := newHarness(t)
	booked := h.book("10:00")
	h.book("11:00")
	_, err := h.svc.Appointments.UpdateStatus(h.ctx, h.doctor, booked.AppointmentID, dto.StatusUpdateRequest{Status: "confirmed"})
	require.NoError(t, err)
	h.now = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	_, err = h.svc.Appointments.UpdateStatus(h.ctx, h.doctor, booked.AppointmentID, dto.StatusUpdateRequest{Status: "completed"})
	require.NoError(t, err)

	_, err = h.svc.Stats.Appointments(h.ctx, "decade")
	assert.Equal(t, util.INVALID_PERIOD, util.PublicMessage(err))

	stats, err := h.svc.Stats.Appointments(h.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "month", stats.Period)
	assert.Equal(t, "2026-02-04", stats.Since)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.ByStatus[string(models.StatusCompleted)])
	assert.EqualValues(t, 1, stats.ByStatus[string(models.StatusPending)])

	dash, err := h.svc.Stats.Dashboard(h.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, dash.TodayAppointments)
	assert.EqualValues(t, 1, dash.Users[string(role.Patient)])
	assert.EqualValues(t, 1, dash.Users[string(role.Doctor)])
	assert.EqualValues(t, 50, dash.TotalBeds)
	assert.EqualValues(t, 10, dash.OccupiedBeds)
	assert.InDelta(t, 20.0, dash.BedOccupancyRate, 0.001)

	require.Len(t, dash.Revenue, 6)
	assert.Equal(t, "2025-10", dash.Revenue[0].Month)
	last := dash.Revenue[5]
	assert.Equal(t, "2026-03", last.Month)
	assert.Equal(t, float64(500), last.Revenue)
	assert.EqualValues(t, 1, last.Appointments)
	assert.Zero(t, dash.Revenue[4].Revenue)
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2026, 3, 15, 13, 0, 0, 0, time.UTC)
	tests := map[string]time.Time{
		"week":  time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		"Month": time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		"year":  time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	for period, want := range tests {
		got, err := PeriodStart(period, now)
		require.NoError(t, err)
		assert.Equal(t, want, got, period)
	}
}

func TestNotifications(t *testing.T) {
	h := newHarness(t)
	h.book("10:00")
	h.book("11:00")

	page, err := h.svc.Notifications.List(h.ctx, h.doctor, false, repository.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
	assert.EqualValues(t, 2, page.Unread)

	n, err := h.svc.Notifications.MarkRead(h.ctx, h.doctor, page.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, n.Read)

	_, err = h.svc.Notifications.MarkRead(h.ctx, h.patient, page.Items[1].ID)
	assert.True(t, util.IsKind(err, util.KindNotFound))

	page, err = h.svc.Notifications.List(h.ctx, h.doctor, true, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.EqualValues(t, 1, page.Unread)
}
