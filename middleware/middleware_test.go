package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAuth map[string]role.Actor

func (f fakeAuth) Authenticate(_ context.Context, token string) (role.Actor, error) {
	a, ok := f[token]
	if !ok {
		return role.Actor{}, util.UnauthorizedError(util.INVALID_TOKEN)
	}
	return a, nil
}

type fakePerms map[string]bool

func (f fakePerms) HasPermission(_ context.Context, actor role.Actor, permission string) (bool, error) {
	return actor.Role == role.Admin && f[permission], nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	chain := append(handlers, func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"role": actor.Role})
	})
	r.GET("/x", chain...)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) util.Response {
	t.Helper()
	var resp util.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuth(t *testing.T) {
	auth := fakeAuth{"doc": {Role: role.Doctor, ProfileID: primitive.NewObjectID()}}
	r := newRouter(Auth(auth))

	w := do(r, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, util.AUTHORIZATION_HEADER_REQUIRED, envelope(t, w).Message)

	w = do(r, "/x", "Token doc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, util.INVALID_AUTHORIZATION_HEADER, envelope(t, w).Message)

	w = do(r, "/x", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, envelope(t, w).Success)

	w = do(r, "/x", "Bearer doc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"doctor"}`, w.Body.String())
}

func TestRequireRoleAndPermission(t *testing.T) {
	auth := fakeAuth{
		"doc":   {Role: role.Doctor},
		"admin": {Role: role.Admin},
	}

	r := newRouter(Auth(auth), RequireRole(role.Admin))
	assert.Equal(t, http.StatusForbidden, do(r, "/x", "Bearer doc").Code)
	assert.Equal(t, http.StatusOK, do(r, "/x", "Bearer admin").Code)

	r = newRouter(Auth(auth), RequireRole(role.Admin), RequirePermission(fakePerms{role.ViewReports: true}, role.ManageDoctors))
	w := do(r, "/x", "Bearer admin")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, util.PERMISSION_DENIED, envelope(t, w).Message)

	r = newRouter(Auth(auth), RequirePermission(fakePerms{role.ViewReports: true}, role.ViewReports))
	assert.Equal(t, http.StatusOK, do(r, "/x", "Bearer admin").Code)
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := newRouter()

	w := do(r, "/x", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = do(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, util.SOMETHING_WENT_WRONG, envelope(t, w).Message)
}
