package services

import (
	"testing"

	"HospitalHub/dto"
	"HospitalHub/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCreateDepartmentAllocatesCode(t *testing.T) {
	h := newHarness(t)

	d, err := h.svc.Departments.Create(h.ctx, h.admin, dto.DepartmentRequest{Name: "Cardiac Surgery", TotalBeds: 20, OccupiedBeds: 5})
	require.NoError(t, err)
	assert.Equal(t, "CAR2", d.Code)
	assert.Equal(t, 15, d.BedCapacity.Available)
	assert.True(t, d.IsActive)

	d, err = h.svc.Departments.Create(h.ctx, h.admin, dto.DepartmentRequest{Name: "Cardio Rehab"})
	require.NoError(t, err)
	assert.Equal(t, "CAR3", d.Code)

	d, err = h.svc.Departments.Create(h.ctx, h.admin, dto.DepartmentRequest{Name: "Neurology"})
	require.NoError(t, err)
	assert.Equal(t, "NEU", d.Code)

	_, err = h.svc.Departments.Create(h.ctx, h.admin, dto.DepartmentRequest{Name: "Neuro Two", Code: "neu"})
	assert.Equal(t, util.DEPARTMENT_CODE_TAKEN, util.PublicMessage(err))

	_, err = h.svc.Departments.Create(h.ctx, h.admin, dto.DepartmentRequest{Name: "Ortho", TotalBeds: 5, OccupiedBeds: 6})
	assert.Equal(t, util.OCCUPIED_EXCEEDS_TOTAL, util.PublicMessage(err))

	log := h.activityOf(h.admin)
	require.Len(t, log, 3)
	assert.Equal(t, "department_created", log[0].Action)
	assert.Contains(t, log[0].Description, "NEU")
}

func TestUpdateBeds(t *testing.T) {
	h := newHarness(t)
	id := h.dept.ID

	tests := []struct {
		name     string
		req      dto.BedUpdateRequest
		msg      string
		occupied int
	}{
		{"available above total", dto.BedUpdateRequest{Total: intPtr(50), Available: intPtr(60)}, util.AVAILABLE_EXCEEDS_TOTAL, 0},
		{"missing total", dto.BedUpdateRequest{Available: intPtr(10)}, util.BED_TOTAL_REQUIRED, 0},
		{"both counts", dto.BedUpdateRequest{Total: intPtr(50), Available: intPtr(10), Occupied: intPtr(40)}, util.AVAILABLE_OR_OCCUPIED_ONLY, 0},
		{"negative occupied", dto.BedUpdateRequest{Total: intPtr(50), Occupied: intPtr(-1)}, util.BEDS_CANNOT_BE_NEGATIVE, 0},
		{"total below occupancy", dto.BedUpdateRequest{Total: intPtr(5)}, util.OCCUPIED_EXCEEDS_TOTAL, 0},
		{"available derives occupied", dto.BedUpdateRequest{Total: intPtr(50), Available: intPtr(10)}, "", 40},
		{"occupied derives available", dto.BedUpdateRequest{Total: intPtr(60), Occupied: intPtr(12)}, "", 12},
		{"total only keeps occupancy", dto.BedUpdateRequest{Total: intPtr(80)}, "", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := h.repos.Departments.FindByID(h.ctx, id)
			require.NoError(t, err)

			d, err := h.svc.Departments.UpdateBeds(h.ctx, h.admin, id, tt.req)
			if tt.msg != "" {
				require.Error(t, err)
				assert.True(t, util.IsKind(err, util.KindValidation))
				assert.Equal(t, tt.msg, util.PublicMessage(err))
				after, err := h.repos.Departments.FindByID(h.ctx, id)
				require.NoError(t, err)
				assert.Equal(t, before.BedCapacity, after.BedCapacity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.occupied, d.BedCapacity.Occupied)
			assert.Equal(t, d.BedCapacity.Total-d.BedCapacity.Occupied, d.BedCapacity.Available)
		})
	}
}

func TestDeleteDepartmentWithDoctorsRefused(t *testing.T) {
	h := newHarness(t)

	err := h.svc.Departments.Delete(h.ctx, h.admin, h.dept.ID)
	require.Error(t, err)
	assert.True(t, util.IsKind(err, util.KindConflict))

	_, err = h.svc.Admin.RemoveDoctor(h.ctx, h.admin, h.doctor.ProfileID)
	require.NoError(t, err)
	require.NoError(t, h.svc.Departments.Delete(h.ctx, h.admin, h.dept.ID))

	err = h.svc.Departments.Delete(h.ctx, h.admin, h.dept.ID)
	assert.True(t, util.IsKind(err, util.KindNotFound))
}
