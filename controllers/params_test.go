package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"HospitalHub/models"
	"HospitalHub/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func contextFor(target string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestAppointmentQuery(t *testing.T) {
	doctor := primitive.NewObjectID()
	c := contextFor("/x?status=Confirmed&from=2026-03-01&to=04-03-2026&doctorId=" + doctor.Hex() + "&search=%20rao%20&page=2&limit=5")

	q, err := appointmentQuery(c)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, q.Status)
	assert.Equal(t, "rao", q.Search)
	assert.Equal(t, repository.Page{Page: 2, Limit: 5}, q.Page)
	require.NotNil(t, q.From)
	require.NotNil(t, q.To)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *q.From)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), *q.To)
	assert.Nil(t, q.Date)
	require.NotNil(t, q.Doctor)
	assert.Equal(t, doctor, *q.Doctor)
	assert.Nil(t, q.Patient)
}

func TestAppointmentQueryRejectsBadInput(t *testing.T) {
	for _, target := range []string{
		"/x?date=yesterday",
		"/x?doctorId=not-an-id",
		"/x?patientId=123",
	} {
		t.Run(target, func(t *testing.T) {
			_, err := appointmentQuery(contextFor(target))
			assert.Error(t, err)
		})
	}
}

func TestPageDefaults(t *testing.T) {
	p := pageFrom(contextFor("/x?page=-3&limit=100000"))
	assert.Equal(t, repository.DefaultPage, p.Page)
	assert.Equal(t, repository.MaxLimit, p.Limit)

	p = pageFrom(contextFor("/x"))
	assert.Equal(t, repository.DefaultLimit, p.Limit)
}

func TestDoctorQuery(t *testing.T) {
	q, err := doctorQuery(contextFor("/x?specialization=Cardiology&approvalStatus=PENDING"))
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", q.Specialization)
	assert.Equal(t, "pending", q.ApprovalStatus)
	assert.Nil(t, q.Department)

	_, err = doctorQuery(contextFor("/x?department=zzz"))
	assert.Error(t, err)
}
