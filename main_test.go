package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryEnv(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("ENV", "development")
	t.Setenv("PORT", "5055")
	t.Setenv("STORAGE", "memory")
	t.Setenv("JWT_SECRET", "main-secret")
	t.Setenv("JOBS_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("SEED_ADMIN_EMAIL", "admin@hospital.com")
	t.Setenv("SEED_ADMIN_PASSWORD", "admin12345")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestServeWiresTheRouter(t *testing.T) {
	memoryEnv(t)
	var srv *http.Server
	startServer = func(_ context.Context, s *http.Server) error {
		srv = s
		return nil
	}
	defer func() { startServer = listen }()

	_, err := execute(t, "serve")
	require.NoError(t, err)
	require.NotNil(t, srv)
	assert.Equal(t, ":5055", srv.Addr)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	body := strings.NewReader(`{"email":"admin@hospital.com","password":"admin12345"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token)

	req = httptest.NewRequest(http.MethodGet, "/api/departments", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Data.Token)
	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cardiology")
}

func TestTokenCommand(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, "token", "--email", "admin@hospital.com")
	require.NoError(t, err)

	token := strings.SplitN(out, "\n", 2)[0]
	claims, err := util.ValidateToken(token, "main-secret", time.Now())
	require.NoError(t, err)
	assert.Equal(t, role.Admin, claims.Role)

	_, err = execute(t, "token")
	assert.Error(t, err)

	_, err = execute(t, "token", "--email", "nobody@hospital.com")
	assert.Error(t, err)
}

func TestMigrateNeedsMongo(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "migrate")
	assert.Error(t, err)
}

func TestSeedCommand(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seed complete")
}
