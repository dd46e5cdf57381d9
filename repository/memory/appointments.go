package memory

import (
	"context"
	"sort"
	"time"

	"HospitalHub/models"
	"HospitalHub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type appointmentRepo struct{ s *Store }

func copyAppointment(a *models.Appointment) *models.Appointment {
	c := *a
	c.Symptoms = append([]string(nil), a.Symptoms...)
	return &c
}

func (r *appointmentRepo) slotHeld(key string) bool {
	for _, a := range r.s.appointments {
		if a.SlotKey != nil && *a.SlotKey == key {
			return true
		}
	}
	return false
}

func (r *appointmentRepo) Insert(_ context.Context, a *models.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[a.AppointmentID]; ok {
		return repository.ErrDuplicate
	}
	if a.SlotKey != nil && r.slotHeld(*a.SlotKey) {
		return repository.ErrDuplicate
	}
	ensureID(&a.ID)
	r.s.appointments[a.AppointmentID] = copyAppointment(a)
	return nil
}

func (r *appointmentRepo) FindByAppointmentID(_ context.Context, appointmentID string) (*models.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.appointments[appointmentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyAppointment(a), nil
}

func (r *appointmentRepo) SlotTaken(_ context.Context, slotKey string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.slotHeld(slotKey), nil
}

func (r *appointmentRepo) UpdateStatus(_ context.Context, appointmentID string, from models.AppointmentStatus, change repository.StatusChange) (*models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[appointmentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if a.Status != from {
		return nil, repository.ErrStale
	}
	a.Status = change.To
	a.UpdatedAt = change.At
	a.UpdatedBy = change.By
	if change.Notes != "" {
		a.Notes = change.Notes
	}
	switch change.To {
	case models.StatusCancelled:
		at := change.At
		a.CancellationReason = change.Reason
		a.CancelledBy = string(change.ActorRole)
		a.CancelledAt = &at
		a.SlotKey = nil
	case models.StatusCompleted:
		at := change.At
		a.CompletedAt = &at
	}
	return copyAppointment(a), nil
}

func (r *appointmentRepo) ClaimPrescription(_ context.Context, appointmentID string, prescriptionID primitive.ObjectID, at time.Time) (*models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[appointmentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if a.Status != models.StatusCompleted || a.Prescription != nil {
		return nil, repository.ErrStale
	}
	id := prescriptionID
	a.Prescription = &id
	a.UpdatedAt = at
	return copyAppointment(a), nil
}

func (r *appointmentRepo) ReleasePrescription(_ context.Context, appointmentID string, prescriptionID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[appointmentID]
	if !ok {
		return repository.ErrNotFound
	}
	if a.Prescription != nil && *a.Prescription == prescriptionID {
		a.Prescription = nil
	}
	return nil
}

func sortAppointments(list []models.Appointment) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		if list[i].Time != list[j].Time {
			return list[i].Time > list[j].Time
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func (r *appointmentRepo) List(_ context.Context, q repository.AppointmentQuery) ([]models.Appointment, int64, error) {
	q.Normalize()
	r.s.mu.RLock()
	matched := []models.Appointment{}
	for _, a := range r.s.appointments {
		if q.Matches(a) {
			matched = append(matched, *copyAppointment(a))
		}
	}
	r.s.mu.RUnlock()

	sortAppointments(matched)
	start, end := q.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *appointmentRepo) ListActiveFor(_ context.Context, field string, id primitive.ObjectID) ([]models.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Appointment
	for _, a := range r.s.appointments {
		if a.Status != models.StatusPending && a.Status != models.StatusConfirmed {
			continue
		}
		if (field == repository.ByDoctor && a.Doctor == id) || (field == repository.ByPatient && a.Patient == id) {
			out = append(out, *copyAppointment(a))
		}
	}
	sortAppointments(out)
	return out, nil
}

func (r *appointmentRepo) ListPendingBefore(_ context.Context, day time.Time) ([]models.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Appointment
	for _, a := range r.s.appointments {
		if a.Status == models.StatusPending && a.Date.Before(day) {
			out = append(out, *copyAppointment(a))
		}
	}
	sortAppointments(out)
	return out, nil
}

func (r *appointmentRepo) Stats(_ context.Context, since time.Time) (*repository.AppointmentStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &repository.AppointmentStats{ByStatus: map[string]int64{}}
	days := map[string]int64{}
	departments := map[primitive.ObjectID]*repository.NamedCount{}
	doctors := map[primitive.ObjectID]*repository.NamedCount{}

	for _, a := range r.s.appointments {
		if a.Date.Before(since) {
			continue
		}
		stats.Total++
		stats.ByStatus[string(a.Status)]++
		days[a.Date.UTC().Format("2006-01-02")]++
		if _, ok := departments[a.Department]; !ok {
			departments[a.Department] = &repository.NamedCount{ID: a.Department, Name: a.DepartmentName}
		}
		departments[a.Department].Count++
		if _, ok := doctors[a.Doctor]; !ok {
			doctors[a.Doctor] = &repository.NamedCount{ID: a.Doctor, Name: a.DoctorName}
		}
		doctors[a.Doctor].Count++
	}

	for d, n := range days {
		stats.ByDay = append(stats.ByDay, repository.DayCount{Date: d, Count: n})
	}
	sort.Slice(stats.ByDay, func(i, j int) bool { return stats.ByDay[i].Date < stats.ByDay[j].Date })
	stats.ByDepartment = sortedCounts(departments)
	stats.ByDoctor = sortedCounts(doctors)
	return stats, nil
}

func sortedCounts(m map[primitive.ObjectID]*repository.NamedCount) []repository.NamedCount {
	out := make([]repository.NamedCount, 0, len(m))
	for _, c := range m {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r *appointmentRepo) CountBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, a := range r.s.appointments {
		if !a.Date.Before(from) && a.Date.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *appointmentRepo) RevenueByMonth(_ context.Context, since time.Time) ([]repository.MonthRevenue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	months := map[string]*repository.MonthRevenue{}
	for _, a := range r.s.appointments {
		if a.Status != models.StatusCompleted || a.Date.Before(since) {
			continue
		}
		key := a.Date.UTC().Format("2006-01")
		if _, ok := months[key]; !ok {
			months[key] = &repository.MonthRevenue{Month: key}
		}
		months[key].Revenue += a.ConsultationFee
		months[key].Appointments++
	}
	out := make([]repository.MonthRevenue, 0, len(months))
	for _, m := range months {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}
