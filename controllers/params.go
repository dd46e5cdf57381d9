package controllers

import (
	"strconv"
	"strings"
	"time"

	"HospitalHub/middleware"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actor is set by middleware.Auth on every private route.
func actor(c *gin.Context) role.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}

func pageFrom(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	p := repository.Page{Page: page, Limit: limit}
	p.Normalize()
	return p
}

func idParam(c *gin.Context, name string) (primitive.ObjectID, error) {
	return util.ParseObjectID(c.Param(name))
}

func optionalID(c *gin.Context, name string) (*primitive.ObjectID, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	id, err := util.ParseObjectID(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalDate(c *gin.Context, name string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	d, err := util.NormalizeDate(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

/*
* Read status, date or from/to, doctorId, patientId and search
* Role scoping happens in the service
 */
func appointmentQuery(c *gin.Context) (repository.AppointmentQuery, error) {
	q := repository.AppointmentQuery{
		Page:   pageFrom(c),
		Status: models.AppointmentStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Search: strings.TrimSpace(c.Query("search")),
	}
	var err error
	if q.Date, err = optionalDate(c, "date"); err != nil {
		return q, err
	}
	if q.From, err = optionalDate(c, "from"); err != nil {
		return q, err
	}
	if q.To, err = optionalDate(c, "to"); err != nil {
		return q, err
	}
	if q.Doctor, err = optionalID(c, "doctorId"); err != nil {
		return q, err
	}
	if q.Patient, err = optionalID(c, "patientId"); err != nil {
		return q, err
	}
	return q, nil
}

func doctorQuery(c *gin.Context) (repository.DoctorQuery, error) {
	q := repository.DoctorQuery{
		Page:           pageFrom(c),
		Specialization: strings.TrimSpace(c.Query("specialization")),
		ApprovalStatus: strings.ToLower(strings.TrimSpace(c.Query("approvalStatus"))),
		Search:         strings.TrimSpace(c.Query("search")),
	}
	var err error
	q.Department, err = optionalID(c, "department")
	return q, err
}

func listResponse(data interface{}, count int, total int64, p repository.Page) util.ListResponse {
	return util.NewListResponse(data, count, total, p.Page, p.Limit)
}
