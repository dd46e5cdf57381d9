package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepo struct{ s *Store }

func (r *userRepo) Insert(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	ensureID(&u.ID)
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) TouchLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *userRepo) SetActiveByProfile(_ context.Context, profile primitive.ObjectID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Profile == profile {
			u.IsActive = active
		}
	}
	return nil
}

func (r *userRepo) CountByRole(_ context.Context) (map[role.Role]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[role.Role]int64{}
	for _, u := range r.s.users {
		if u.IsActive {
			out[u.Role]++
		}
	}
	return out, nil
}

type adminRepo struct{ s *Store }

func (r *adminRepo) Insert(_ context.Context, a *models.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.admins {
		if existing.AdminID == a.AdminID {
			return repository.ErrDuplicate
		}
	}
	ensureID(&a.ID)
	c := *a
	r.s.admins[a.ID] = &c
	return nil
}

func (r *adminRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *a
	c.ActivityLog = append([]models.ActivityEntry(nil), a.ActivityLog...)
	return &c, nil
}

func (r *adminRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.admins)), nil
}

type doctorRepo struct{ s *Store }

func copyDoctor(d *models.Doctor) *models.Doctor {
	c := *d
	c.ActivityLog = append([]models.ActivityEntry(nil), d.ActivityLog...)
	c.Availability = copyAvailability(d.Availability)
	return &c
}

func copyAvailability(in map[string][]models.TimeWindow) map[string][]models.TimeWindow {
	if in == nil {
		return nil
	}
	out := make(map[string][]models.TimeWindow, len(in))
	for day, windows := range in {
		out[day] = append([]models.TimeWindow(nil), windows...)
	}
	return out
}

func (r *doctorRepo) Insert(_ context.Context, d *models.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&d.ID)
	r.s.doctors[d.ID] = copyDoctor(d)
	return nil
}

func (r *doctorRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyDoctor(d), nil
}

func (r *doctorRepo) FindBookable(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.doctors[id]
	if !ok || !d.Bookable() {
		return nil, repository.ErrNotFound
	}
	return copyDoctor(d), nil
}

func (r *doctorRepo) List(_ context.Context, q repository.DoctorQuery) ([]models.Doctor, int64, error) {
	q.Normalize()
	r.s.mu.RLock()
	matched := []models.Doctor{}
	for _, d := range r.s.doctors {
		if q.Matches(d) {
			c := copyDoctor(d)
			c.ActivityLog = nil
			matched = append(matched, *c)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	start, end := q.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *doctorRepo) SetApproval(_ context.Context, id primitive.ObjectID, status string, at time.Time) (*models.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if d.ApprovalStatus != models.ApprovalPending {
		return nil, repository.ErrStale
	}
	d.ApprovalStatus = status
	d.UpdatedAt = at
	return copyDoctor(d), nil
}

func (r *doctorRepo) SetAvailability(_ context.Context, id primitive.ObjectID, availability map[string][]models.TimeWindow, at time.Time) (*models.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d.Availability = copyAvailability(availability)
	d.UpdatedAt = at
	d.UpdatedBy = id.Hex()
	return copyDoctor(d), nil
}

func (r *doctorRepo) Deactivate(_ context.Context, id primitive.ObjectID, at time.Time) (*models.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !d.IsActive {
		return nil, repository.ErrStale
	}
	d.IsActive = false
	d.DeactivatedAt = &at
	d.UpdatedAt = at
	return copyDoctor(d), nil
}

func (r *doctorRepo) CountActiveInDepartment(_ context.Context, department primitive.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, d := range r.s.doctors {
		if d.IsActive && d.Department == department {
			n++
		}
	}
	return n, nil
}

func (r *doctorRepo) CountByApproval(_ context.Context, status string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, d := range r.s.doctors {
		if d.ApprovalStatus == status {
			n++
		}
	}
	return n, nil
}

type patientRepo struct{ s *Store }

func (r *patientRepo) Insert(_ context.Context, p *models.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&p.ID)
	c := *p
	r.s.patients[p.ID] = &c
	return nil
}

func (r *patientRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	c.ActivityLog = append([]models.ActivityEntry(nil), p.ActivityLog...)
	return &c, nil
}

func (r *patientRepo) Deactivate(_ context.Context, id primitive.ObjectID, at time.Time) (*models.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !p.IsActive {
		return nil, repository.ErrStale
	}
	p.IsActive = false
	p.DeactivatedAt = &at
	p.UpdatedAt = at
	c := *p
	return &c, nil
}

type activityRepo struct{ s *Store }

func (r *activityRepo) Push(_ context.Context, owner role.Role, profile primitive.ObjectID, entry models.ActivityEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	switch owner {
	case role.Admin:
		if a, ok := r.s.admins[profile]; ok {
			a.ActivityLog = models.PrependActivity(a.ActivityLog, entry)
			return nil
		}
	case role.Doctor:
		if d, ok := r.s.doctors[profile]; ok {
			d.ActivityLog = models.PrependActivity(d.ActivityLog, entry)
			return nil
		}
	case role.Patient:
		if p, ok := r.s.patients[profile]; ok {
			p.ActivityLog = models.PrependActivity(p.ActivityLog, entry)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *activityRepo) Recent(_ context.Context, owner role.Role, profile primitive.ObjectID, limit int) ([]models.ActivityEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var log []models.ActivityEntry
	switch owner {
	case role.Admin:
		a, ok := r.s.admins[profile]
		if !ok {
			return nil, repository.ErrNotFound
		}
		log = a.ActivityLog
	case role.Doctor:
		d, ok := r.s.doctors[profile]
		if !ok {
			return nil, repository.ErrNotFound
		}
		log = d.ActivityLog
	case role.Patient:
		p, ok := r.s.patients[profile]
		if !ok {
			return nil, repository.ErrNotFound
		}
		log = p.ActivityLog
	default:
		return nil, repository.ErrNotFound
	}
	if limit > 0 && limit < len(log) {
		log = log[:limit]
	}
	return append([]models.ActivityEntry{}, log...), nil
}

type counterRepo struct{ s *Store }

func (r *counterRepo) Next(_ context.Context, name string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.counters[name]++
	return r.s.counters[name], nil
}
