package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/repository/memory"
	"HospitalHub/role"
	"HospitalHub/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Total   int64           `json:"total"`
	Unread  int64           `json:"unread"`
}

type server struct {
	t      *testing.T
	repos  repository.Set
	router *gin.Engine
	dept   *models.Department
}

func newServer(t *testing.T) *server {
	t.Helper()
	repos := memory.New().Repositories()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	s := services.New(services.Deps{
		Repos:     repos,
		Now:       func() time.Time { return now },
		JWTSecret: "routes-secret",
		TokenTTL:  time.Hour,
	})
	srv := &server{t: t, repos: repos, router: Engine([]string{"http://localhost:3000"}, s)}
	srv.dept = &models.Department{ID: primitive.NewObjectID(), Code: "CAR", Name: "Cardiology", IsActive: true,
		BedCapacity: models.BedCapacity{Total: 20, Occupied: 5, Available: 15}}
	require.NoError(t, repos.Departments.Insert(context.Background(), srv.dept))
	return srv
}

func (s *server) user(email string, r role.Role, profile primitive.ObjectID) primitive.ObjectID {
	hash, err := services.HashPassword("password123")
	require.NoError(s.t, err)
	u := &models.User{ID: primitive.NewObjectID(), Name: email, Email: email, Password: hash, Role: r, Profile: profile, IsActive: true}
	require.NoError(s.t, s.repos.Users.Insert(context.Background(), u))
	return u.ID
}

func (s *server) patient(email string) primitive.ObjectID {
	p := &models.Patient{ID: primitive.NewObjectID(), Name: "Pat Lee", IsActive: true}
	p.User = s.user(email, role.Patient, p.ID)
	require.NoError(s.t, s.repos.Patients.Insert(context.Background(), p))
	return p.ID
}

func (s *server) doctor(email string) primitive.ObjectID {
	d := &models.Doctor{ID: primitive.NewObjectID(), Name: "Dr. Rao", Specialization: "Cardiology", ConsultationFee: 400,
		ApprovalStatus: models.ApprovalApproved, Department: s.dept.ID, DepartmentName: s.dept.Name, IsActive: true}
	d.User = s.user(email, role.Doctor, d.ID)
	require.NoError(s.t, s.repos.Doctors.Insert(context.Background(), d))
	return d.ID
}

func (s *server) admin(email string, perms map[string]bool) primitive.ObjectID {
	a := &models.Admin{ID: primitive.NewObjectID(), AdminID: "ADM0001", Name: "Admin", Permissions: perms}
	a.User = s.user(email, role.Admin, a.ID)
	require.NoError(s.t, s.repos.Admins.Insert(context.Background(), a))
	return a.ID
}

func (s *server) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *server) login(email string) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &out))
	return out.Token
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	w, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, _ = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hospitalhub_http_request_duration_seconds")
}

func TestPrivateRoutesNeedToken(t *testing.T) {
	s := newServer(t)

	w, env := s.do(http.MethodGet, "/api/appointments/my-appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = s.do(http.MethodGet, "/api/appointments/my-appointments", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ghost@hospital.test", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", env.Message)
}

func TestAppointmentFlowOverHTTP(t *testing.T) {
	s := newServer(t)
	s.patient("pat@hospital.test")
	doctorID := s.doctor("rao@hospital.test")
	patientToken := s.login("pat@hospital.test")
	doctorToken := s.login("rao@hospital.test")

	w, env := s.do(http.MethodPost, "/api/appointments", patientToken, gin.H{
		"doctorId": doctorID.Hex(),
		"date":     "2026-03-04",
		"time":     "10:00",
		"reason":   "Follow-up on blood pressure",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var booked struct {
		AppointmentID string `json:"appointmentId"`
		Status        string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &booked))
	assert.Equal(t, "pending", booked.Status)

	w, env = s.do(http.MethodPost, "/api/appointments", patientToken, gin.H{
		"doctorId": doctorID.Hex(),
		"date":     "2026-03-04",
		"time":     "10:00 AM",
		"reason":   "Second booking, same slot",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Time slot already booked", env.Message)

	statusPath := "/api/doctor/appointments/" + booked.AppointmentID + "/status"
	w, _ = s.do(http.MethodPatch, statusPath, patientToken, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(http.MethodPatch, statusPath, doctorToken, gin.H{"status": "confirmed", "notes": "Bring previous ECG reports"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &confirmed))
	assert.Equal(t, "confirmed", confirmed.Status)

	w, env = s.do(http.MethodGet, "/api/appointments/"+booked.AppointmentID, patientToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &confirmed))
	assert.Equal(t, "Bring previous ECG reports", confirmed.Notes)

	w, env = s.do(http.MethodPatch, statusPath, doctorToken, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Invalid status transition from confirmed to pending", env.Message)

	w, env = s.do(http.MethodGet, "/api/notifications?unread=true", patientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Unread)
	assert.Equal(t, 1, env.Count)

	cancelPath := "/api/appointments/" + booked.AppointmentID + "/cancel"
	w, env = s.do(http.MethodPatch, cancelPath, patientToken, gin.H{"cancellationReason": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cancellation reason must be at least 10 characters", env.Message)

	w, _ = s.do(http.MethodPatch, cancelPath, patientToken, gin.H{"cancellationReason": "Travelling out of town that week"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/appointments/my-appointments?status=cancelled", patientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Total)
}

func TestAdminRoutesCheckPermissions(t *testing.T) {
	s := newServer(t)
	s.patient("pat@hospital.test")
	s.admin("reports@hospital.test", map[string]bool{role.ViewReports: true})
	adminToken := s.login("reports@hospital.test")
	patientToken := s.login("pat@hospital.test")

	w, _ := s.do(http.MethodGet, "/api/admin/dashboard", patientToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(http.MethodGet, "/api/admin/doctors", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin does not have the required permission", env.Message)

	w, env = s.do(http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	w, _ = s.do(http.MethodGet, "/api/admin/stats/appointments?period=decade", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/admin/activity", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Count)
}

func TestDepartmentBedsOverHTTP(t *testing.T) {
	s := newServer(t)
	s.admin("beds@hospital.test", map[string]bool{role.ManageDepartments: true})
	token := s.login("beds@hospital.test")
	path := "/api/admin/departments/" + s.dept.ID.Hex() + "/beds"

	w, env := s.do(http.MethodPatch, path, token, gin.H{"total": 30, "available": 12})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dept models.Department
	require.NoError(t, json.Unmarshal(env.Data, &dept))
	assert.Equal(t, models.BedCapacity{Total: 30, Occupied: 18, Available: 12}, dept.BedCapacity)

	w, env = s.do(http.MethodPatch, path, token, gin.H{"total": 10, "available": 12})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Available beds cannot exceed total beds", env.Message)

	w, env = s.do(http.MethodGet, "/api/departments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Count)
}

func TestDoctorAvailabilityOverHTTP(t *testing.T) {
	s := newServer(t)
	s.patient("pat@hospital.test")
	doctorID := s.doctor("rao@hospital.test")
	patientToken := s.login("pat@hospital.test")
	doctorToken := s.login("rao@hospital.test")

	w, _ := s.do(http.MethodPatch, "/api/doctor/availability", patientToken, gin.H{"availability": gin.H{}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPatch, "/api/doctor/availability", doctorToken, gin.H{
		"availability": gin.H{"wednesday": []gin.H{{"startTime": "25:00", "endTime": "12:00"}}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(http.MethodPatch, "/api/doctor/availability", doctorToken, gin.H{
		"availability": gin.H{"wednesday": []gin.H{{"startTime": "09:00", "endTime": "12:00"}}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile struct {
		Availability map[string][]models.TimeWindow `json:"availability"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Len(t, profile.Availability["wednesday"], 1)

	booking := gin.H{"doctorId": doctorID.Hex(), "date": "2026-03-04", "time": "23:30", "reason": "Late evening visit"}
	w, env = s.do(http.MethodPost, "/api/appointments", patientToken, booking)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Requested time is outside the doctor's working hours", env.Message)

	booking["time"] = "10:00"
	w, _ = s.do(http.MethodPost, "/api/appointments", patientToken, booking)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestEmptyListsRenderArrays(t *testing.T) {
	s := newServer(t)
	s.doctor("rao@hospital.test")
	token := s.login("rao@hospital.test")

	for _, path := range []string{"/api/doctor/leaves", "/api/notifications", "/api/doctor/appointments"} {
		w, env := s.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, "[]", string(env.Data), path)
	}
}
