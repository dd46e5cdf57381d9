package memory

import (
	"context"
	"sort"
	"time"

	"HospitalHub/models"
	"HospitalHub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type departmentRepo struct{ s *Store }

func (r *departmentRepo) Insert(_ context.Context, d *models.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.departments {
		if existing.Code == d.Code {
			return repository.ErrDuplicate
		}
	}
	ensureID(&d.ID)
	c := *d
	r.s.departments[d.ID] = &c
	return nil
}

func (r *departmentRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (r *departmentRepo) CodeExists(_ context.Context, code string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.departments {
		if d.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *departmentRepo) List(_ context.Context, activeOnly bool) ([]models.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Department, 0, len(r.s.departments))
	for _, d := range r.s.departments {
		if activeOnly && !d.IsActive {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *departmentRepo) UpdateBeds(_ context.Context, id primitive.ObjectID, beds models.BedCapacity, by string, at time.Time) (*models.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d.BedCapacity = beds
	d.UpdatedAt = at
	d.UpdatedBy = by
	c := *d
	return &c, nil
}

func (r *departmentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.departments, id)
	return nil
}

func (r *departmentRepo) BedTotals(_ context.Context) (int64, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var total, occupied int64
	for _, d := range r.s.departments {
		if !d.IsActive {
			continue
		}
		total += int64(d.BedCapacity.Total)
		occupied += int64(d.BedCapacity.Occupied)
	}
	return total, occupied, nil
}

type leaveRepo struct{ s *Store }

func (r *leaveRepo) Insert(_ context.Context, l *models.Leave) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&l.ID)
	c := *l
	r.s.leaves[l.ID] = &c
	return nil
}

func (r *leaveRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Leave, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.leaves[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *l
	return &c, nil
}

func (r *leaveRepo) List(_ context.Context, q repository.LeaveQuery) ([]models.Leave, int64, error) {
	q.Normalize()
	r.s.mu.RLock()
	matched := []models.Leave{}
	for _, l := range r.s.leaves {
		if q.Matches(l) {
			matched = append(matched, *l)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	start, end := q.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *leaveRepo) Review(_ context.Context, id primitive.ObjectID, review repository.LeaveReview) (*models.Leave, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leaves[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if l.Status != models.LeavePending || (review.Doctor != nil && l.Doctor != *review.Doctor) {
		return nil, repository.ErrStale
	}
	l.Status = review.Status
	l.RejectionReason = review.RejectionReason
	l.UpdatedAt = review.At
	if review.Reviewer != nil {
		reviewer := *review.Reviewer
		at := review.At
		l.ReviewedBy = &reviewer
		l.ReviewedAt = &at
	}
	c := *l
	return &c, nil
}

func (r *leaveRepo) HasApprovedOn(_ context.Context, doctor primitive.ObjectID, day time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.leaves {
		if l.Doctor == doctor && l.Status == models.LeaveApproved && l.Covers(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, l := range r.s.leaves {
		if l.Status == status {
			n++
		}
	}
	return n, nil
}

type prescriptionRepo struct{ s *Store }

func (r *prescriptionRepo) Insert(_ context.Context, p *models.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.prescriptions {
		if existing.Appointment == p.Appointment {
			return repository.ErrDuplicate
		}
	}
	ensureID(&p.ID)
	c := *p
	r.s.prescriptions[p.ID] = &c
	return nil
}

func (r *prescriptionRepo) FindByAppointment(_ context.Context, appointment primitive.ObjectID) (*models.Prescription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.prescriptions {
		if p.Appointment == appointment {
			c := *p
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Insert(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&n.ID)
	c := *n
	r.s.notifications[n.ID] = &c
	return nil
}

func (r *notificationRepo) List(_ context.Context, q repository.NotificationQuery) ([]models.Notification, int64, error) {
	q.Normalize()
	r.s.mu.RLock()
	matched := []models.Notification{}
	for _, n := range r.s.notifications {
		if q.Matches(n) {
			matched = append(matched, *n)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	start, end := q.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id, recipient primitive.ObjectID, at time.Time) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.Recipient != recipient {
		return nil, repository.ErrNotFound
	}
	if !n.Read {
		n.Read = true
		n.ReadAt = &at
	}
	c := *n
	return &c, nil
}

func (r *notificationRepo) CountUnread(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, item := range r.s.notifications {
		if item.Recipient == recipient && !item.Read {
			n++
		}
	}
	return n, nil
}
