package services

import (
	"testing"

	"HospitalHub/dto"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) requestLeave(start, end string) *models.Leave {
	h.t.Helper()
	l, err := h.svc.Leaves.Request(h.ctx, h.doctor, dto.LeaveRequest{StartDate: start, EndDate: end, Type: "vacation", Reason: "Family trip"})
	require.NoError(h.t, err)
	return l
}

func TestRequestLeave(t *testing.T) {
	h := newHarness(t)

	l := h.requestLeave("2026-03-10", "2026-03-12")
	assert.Equal(t, models.LeavePending, l.Status)
	assert.Equal(t, "Dr. Rao", l.DoctorName)

	_, err := h.svc.Leaves.Request(h.ctx, h.doctor, dto.LeaveRequest{StartDate: "2026-03-12", EndDate: "2026-03-10", Type: "sick", Reason: "Flu"})
	assert.Equal(t, util.LEAVE_DATES_INVALID, util.PublicMessage(err))

	_, err = h.svc.Leaves.Request(h.ctx, h.doctor, dto.LeaveRequest{StartDate: "2026-03-10", EndDate: "2026-03-10", Type: "holiday", Reason: "Flu"})
	assert.Equal(t, util.LEAVE_TYPE_INVALID, util.PublicMessage(err))

	_, err = h.svc.Leaves.Request(h.ctx, h.patient, dto.LeaveRequest{StartDate: "2026-03-10", EndDate: "2026-03-10", Type: "sick", Reason: "Flu"})
	assert.True(t, util.IsKind(err, util.KindForbidden))
}

func TestReviewLeave(t *testing.T) {
	h := newHarness(t)
	l := h.requestLeave("2026-03-10", "2026-03-12")

	_, err := h.svc.Leaves.Review(h.ctx, h.admin, l.ID, dto.LeaveApprovalRequest{Status: "rejected", RejectionReason: "short"})
	require.Error(t, err)
	assert.Equal(t, util.REJECTION_REASON_TOO_SHORT, util.PublicMessage(err))

	_, err = h.svc.Leaves.Review(h.ctx, h.admin, l.ID, dto.LeaveApprovalRequest{Status: "cancelled"})
	assert.Equal(t, util.LEAVE_STATUS_REQUIRED, util.PublicMessage(err))

	rejected, err := h.svc.Leaves.Review(h.ctx, h.admin, l.ID, dto.LeaveApprovalRequest{
		Status: "rejected", RejectionReason: "Insufficient coverage for requested dates",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveRejected, rejected.Status)
	assert.Equal(t, "Insufficient coverage for requested dates", rejected.RejectionReason)
	require.NotNil(t, rejected.ReviewedBy)
	assert.Equal(t, h.admin.ProfileID, *rejected.ReviewedBy)

	// reviewed exactly once
	_, err = h.svc.Leaves.Review(h.ctx, h.admin, l.ID, dto.LeaveApprovalRequest{Status: "approved"})
	assert.Equal(t, util.LEAVE_ALREADY_PROCESSED, util.PublicMessage(err))

	inbox := h.notificationsFor(h.doctor.ProfileID)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotifyLeaveReviewed, inbox[0].Type)
	assert.Contains(t, inbox[0].Message, "Insufficient coverage")

	assert.Equal(t, "leave_rejected", h.activityOf(h.admin)[0].Action)
}

func TestApprovedLeaveBlocksBooking(t *testing.T) {
	h := newHarness(t)
	l := h.requestLeave("2026-03-04", "2026-03-04")

	approved, err := h.svc.Leaves.Review(h.ctx, h.admin, l.ID, dto.LeaveApprovalRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Empty(t, approved.RejectionReason)

	_, err = h.svc.Appointments.Book(h.ctx, h.patient, dto.BookAppointmentRequest{
		DoctorID: h.doctor.ProfileID.Hex(), Date: "2026-03-04", Time: "10:00", Reason: "Checkup",
	})
	assert.Equal(t, util.DOCTOR_ON_LEAVE, util.PublicMessage(err))
}

func TestCancelLeave(t *testing.T) {
	h := newHarness(t)
	l := h.requestLeave("2026-03-10", "2026-03-12")

	other := h.addDoctor("Dr. Other", models.ApprovalApproved)
	_, err := h.svc.Leaves.Cancel(h.ctx, other, l.ID)
	assert.Equal(t, util.LEAVE_ACCESS_DENIED, util.PublicMessage(err))

	cancelled, err := h.svc.Leaves.Cancel(h.ctx, h.doctor, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveCancelled, cancelled.Status)

	_, err = h.svc.Leaves.Cancel(h.ctx, h.doctor, l.ID)
	assert.Equal(t, util.LEAVE_ALREADY_PROCESSED, util.PublicMessage(err))
}

func TestListLeavesScopesDoctors(t *testing.T) {
	h := newHarness(t)
	h.requestLeave("2026-03-10", "2026-03-12")
	other := h.addDoctor("Dr. Other", models.ApprovalApproved)
	_, err := h.svc.Leaves.Request(h.ctx, other, dto.LeaveRequest{StartDate: "2026-03-20", EndDate: "2026-03-20", Type: "sick", Reason: "Flu"})
	require.NoError(t, err)

	page, err := h.svc.Leaves.List(h.ctx, other, repository.LeaveQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = h.svc.Leaves.List(h.ctx, h.admin, repository.LeaveQuery{Status: models.LeavePending})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	_, err = h.svc.Leaves.List(h.ctx, h.patient, repository.LeaveQuery{})
	assert.True(t, util.IsKind(err, util.KindForbidden))
}
