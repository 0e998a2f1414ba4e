package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	ierr "insurepay/errors"
	"insurepay/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions map[string]*models.Principal

func (s stubSessions) ValidateSession(_ context.Context, token string) (*models.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	if token == "broken" {
		return nil, ierr.NewError("redis down").Mark(ierr.ErrSystem)
	}
	return nil, ierr.NewError("session not found").WithHint("Session expired").Mark(ierr.ErrUnauthenticated)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		id := ""
		if p != nil {
			id = p.ID
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	r.GET("/customers/:id", chain...)
	return r
}

func get(r *gin.Engine, path, token string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	sessions := stubSessions{"good": {Role: models.RoleCustomer, ID: "cust_1"}}
	r := newEngine(JWTAuthMiddleware(sessions))

	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{name: "valid session", token: "good", want: http.StatusOK},
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "expired session", token: "stale", want: http.StatusUnauthorized},
		{name: "store failure", token: "broken", want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/customers/cust_1", tt.token, func(req *http.Request) {
				if tt.header != "" {
					req.Header.Set("Authorization", tt.header)
				}
			})
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	sessions := stubSessions{
		"admin":    {Role: models.RoleAdmin, ID: "admin"},
		"customer": {Role: models.RoleCustomer, ID: "cust_1"},
	}
	r := newEngine(JWTAuthMiddleware(sessions), RequireRole(models.RoleAdmin))

	assert.Equal(t, http.StatusOK, get(r, "/customers/cust_1", "admin").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/customers/cust_1", "customer").Code)
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	r := newEngine(RequireRole(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/customers/cust_1", "").Code)
}

func TestRequireSelfOrRole(t *testing.T) {
	sessions := stubSessions{
		"asha":    {Role: models.RoleCustomer, ID: "cust_1"},
		"ravi":    {Role: models.RoleCustomer, ID: "cust_2"},
		"insurer": {Role: models.RoleInsurer, ID: "cust_1"},
		"admin":   {Role: models.RoleAdmin, ID: "root"},
	}
	r := newEngine(JWTAuthMiddleware(sessions), RequireSelfOrRole(models.RoleCustomer, "id", models.RoleAdmin))

	assert.Equal(t, http.StatusOK, get(r, "/customers/cust_1", "asha").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/customers/cust_1", "ravi").Code)
	// Matching id under a different role is not ownership.
	assert.Equal(t, http.StatusForbidden, get(r, "/customers/cust_1", "insurer").Code)
	assert.Equal(t, http.StatusOK, get(r, "/customers/cust_1", "admin").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimitMiddleware(2))
	fromIP := func(ip string) func(*http.Request) {
		return func(req *http.Request) { req.Header.Set("X-Forwarded-For", ip) }
	}

	require.Equal(t, http.StatusOK, get(r, "/customers/x", "", fromIP("10.0.0.1")).Code)
	require.Equal(t, http.StatusOK, get(r, "/customers/x", "", fromIP("10.0.0.1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/customers/x", "", fromIP("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, get(r, "/customers/x", "", fromIP("10.0.0.2")).Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.9:4000", want: "203.0.113.7"},
		{name: "garbage forwarded falls through", headers: map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "198.51.100.2"}, remote: "10.0.0.9:4000", want: "198.51.100.2"},
		{name: "remote addr", remote: "192.0.2.10:5555", want: "192.0.2.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(c))
		})
	}
}
