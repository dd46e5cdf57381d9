package repository

import (
	"regexp"
	"strings"
	"time"

	"HospitalHub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page to at least 1 and the limit to 1..MaxLimit.
func (p *Page) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

func (p Page) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Window cuts one page out of an already sorted slice of n items.
func (p Page) Window(n int) (int, int) {
	start := p.Skip()
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}

/*
* AppointmentQuery carries the listing filters
* Doctor and Patient are forced by the service for non-admin callers
 */
type AppointmentQuery struct {
	Page
	Status  models.AppointmentStatus
	Date    *time.Time
	From    *time.Time
	To      *time.Time
	Doctor  *primitive.ObjectID
	Patient *primitive.ObjectID
	Search  string
}

func searchPattern(search string) string {
	return regexp.QuoteMeta(strings.TrimSpace(search))
}

func (q AppointmentQuery) Filter() bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Doctor != nil {
		filter["doctor"] = *q.Doctor
	}
	if q.Patient != nil {
		filter["patient"] = *q.Patient
	}
	if q.Date != nil {
		filter["date"] = bson.M{"$gte": *q.Date, "$lt": q.Date.Add(24 * time.Hour)}
	} else if q.From != nil || q.To != nil {
		rng := bson.M{}
		if q.From != nil {
			rng["$gte"] = *q.From
		}
		if q.To != nil {
			rng["$lte"] = *q.To
		}
		filter["date"] = rng
	}
	if s := searchPattern(q.Search); s != "" {
		re := primitive.Regex{Pattern: s, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"patientName": re},
			bson.M{"doctorName": re},
			bson.M{"symptoms": re},
		}
	}
	return filter
}

// Sort is date desc then time desc.
func (q AppointmentQuery) Sort() bson.D {
	return bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}, {Key: "createdAt", Value: -1}}
}

// Matches is the in-process equivalent of Filter.
func (q AppointmentQuery) Matches(a *models.Appointment) bool {
	if q.Status != "" && a.Status != q.Status {
		return false
	}
	if q.Doctor != nil && a.Doctor != *q.Doctor {
		return false
	}
	if q.Patient != nil && a.Patient != *q.Patient {
		return false
	}
	if q.Date != nil {
		if a.Date.Before(*q.Date) || !a.Date.Before(q.Date.Add(24*time.Hour)) {
			return false
		}
	} else {
		if q.From != nil && a.Date.Before(*q.From) {
			return false
		}
		if q.To != nil && a.Date.After(*q.To) {
			return false
		}
	}
	if s := searchPattern(q.Search); s != "" {
		re := regexp.MustCompile("(?i)" + s)
		if re.MatchString(a.PatientName) || re.MatchString(a.DoctorName) {
			return true
		}
		for _, sym := range a.Symptoms {
			if re.MatchString(sym) {
				return true
			}
		}
		return false
	}
	return true
}

type DoctorQuery struct {
	Page
	Department     *primitive.ObjectID
	Specialization string
	ApprovalStatus string
	Search         string
	BookableOnly   bool
}

/*
* BookableFilter is the single visibility rule for patient facing doctor reads
* approved and active
 */
func BookableFilter() bson.M {
	return bson.M{"approvalStatus": models.ApprovalApproved, "isActive": true}
}

func (q DoctorQuery) Filter() bson.M {
	filter := bson.M{}
	if q.BookableOnly {
		for k, v := range BookableFilter() {
			filter[k] = v
		}
	} else if q.ApprovalStatus != "" {
		filter["approvalStatus"] = q.ApprovalStatus
	}
	if q.Department != nil {
		filter["department"] = *q.Department
	}
	if q.Specialization != "" {
		filter["specialization"] = primitive.Regex{Pattern: "^" + searchPattern(q.Specialization) + "$", Options: "i"}
	}
	if s := searchPattern(q.Search); s != "" {
		re := primitive.Regex{Pattern: s, Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"specialization": re}}
	}
	return filter
}

func (q DoctorQuery) Matches(d *models.Doctor) bool {
	if q.BookableOnly {
		if !d.Bookable() {
			return false
		}
	} else if q.ApprovalStatus != "" && d.ApprovalStatus != q.ApprovalStatus {
		return false
	}
	if q.Department != nil && d.Department != *q.Department {
		return false
	}
	if q.Specialization != "" && !strings.EqualFold(strings.TrimSpace(q.Specialization), d.Specialization) {
		return false
	}
	if s := searchPattern(q.Search); s != "" {
		re := regexp.MustCompile("(?i)" + s)
		return re.MatchString(d.Name) || re.MatchString(d.Specialization)
	}
	return true
}

type LeaveQuery struct {
	Page
	Status string
	Doctor *primitive.ObjectID
}

func (q LeaveQuery) Filter() bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Doctor != nil {
		filter["doctor"] = *q.Doctor
	}
	return filter
}

func (q LeaveQuery) Matches(l *models.Leave) bool {
	if q.Status != "" && l.Status != q.Status {
		return false
	}
	return q.Doctor == nil || l.Doctor == *q.Doctor
}

type NotificationQuery struct {
	Page
	Recipient  primitive.ObjectID
	UnreadOnly bool
}

func (q NotificationQuery) Filter() bson.M {
	filter := bson.M{"recipient": q.Recipient}
	if q.UnreadOnly {
		filter["read"] = false
	}
	return filter
}

func (q NotificationQuery) Matches(n *models.Notification) bool {
	if n.Recipient != q.Recipient {
		return false
	}
	return !q.UnreadOnly || !n.Read
}
