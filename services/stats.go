package services

import (
	"context"
	"strings"
	"time"

	"HospitalHub/dto"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"
	"HospitalHub/util"
)

const revenueMonths = 6

type StatsService struct {
	repos repository.Set
	now   func() time.Time
}

// PeriodStart maps week, month and year to the first day counted.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	today := util.StartOfDay(now)
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "week":
		return today.AddDate(0, 0, -7), nil
	case "", "month":
		return today.AddDate(0, -1, 0), nil
	case "year":
		return today.AddDate(-1, 0, 0), nil
	}
	return time.Time{}, util.ValidationError(util.INVALID_PERIOD)
}

type AppointmentStatsResult struct {
	Period string `json:"period"`
	Since  string `json:"since"`
	*repository.AppointmentStats
}

func (s *StatsService) Appointments(ctx context.Context, period string) (*AppointmentStatsResult, error) {
	since, err := PeriodStart(period, s.now())
	if err != nil {
		return nil, err
	}
	stats, err := s.repos.Appointments.Stats(ctx, since)
	if err != nil {
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	if period == "" {
		period = "month"
	}
	return &AppointmentStatsResult{Period: strings.ToLower(period), Since: since.Format(util.DateLayout), AppointmentStats: stats}, nil
}

/*
* One summary for the admin landing page
* Revenue always lists the last six months, empty months as zero
 */
func (s *StatsService) Dashboard(ctx context.Context) (*dto.Dashboard, error) {
	now := s.now()
	today := util.StartOfDay(now)

	byRole, err := s.repos.Users.CountByRole(ctx)
	if err != nil {
		return nil, storeError(err, util.USER_NOT_FOUND)
	}
	users := map[string]int64{}
	for _, r := range []role.Role{role.Patient, role.Doctor, role.Admin} {
		users[string(r)] = byRole[r]
	}

	todayCount, err := s.repos.Appointments.CountBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	pendingLeaves, err := s.repos.Leaves.CountByStatus(ctx, models.LeavePending)
	if err != nil {
		return nil, storeError(err, util.LEAVE_NOT_FOUND)
	}
	pendingDoctors, err := s.repos.Doctors.CountByApproval(ctx, models.ApprovalPending)
	if err != nil {
		return nil, storeError(err, util.DOCTOR_NOT_FOUND)
	}
	totalBeds, occupiedBeds, err := s.repos.Departments.BedTotals(ctx)
	if err != nil {
		return nil, storeError(err, util.DEPARTMENT_NOT_FOUND)
	}

	firstMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(revenueMonths - 1), 0)
	rows, err := s.repos.Appointments.RevenueByMonth(ctx, firstMonth)
	if err != nil {
		return nil, storeError(err, util.APPOINTMENT_NOT_FOUND)
	}
	byMonth := map[string]repository.MonthRevenue{}
	for _, r := range rows {
		byMonth[r.Month] = r
	}
	revenue := make([]dto.MonthRevenue, 0, revenueMonths)
	for i := 0; i < revenueMonths; i++ {
		key := firstMonth.AddDate(0, i, 0).Format("2006-01")
		r := byMonth[key]
		revenue = append(revenue, dto.MonthRevenue{Month: key, Revenue: r.Revenue, Appointments: r.Appointments})
	}

	occupancy := models.BedCapacity{Total: int(totalBeds), Occupied: int(occupiedBeds)}.OccupancyRate()
	return &dto.Dashboard{
		Users:                  users,
		TodayAppointments:      todayCount,
		PendingLeaves:          pendingLeaves,
		PendingDoctorApprovals: pendingDoctors,
		BedOccupancyRate:       occupancy,
		TotalBeds:              totalBeds,
		OccupiedBeds:           occupiedBeds,
		Revenue:                revenue,
	}, nil
}
