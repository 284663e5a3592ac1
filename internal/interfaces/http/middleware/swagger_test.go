package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/workforce/backend/internal/interfaces/http/dto"
)

func newSwaggerRouter(cfg SwaggerConfig, authenticate gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/swagger/*any", SwaggerProtection(cfg, authenticate), okHandler)
	return r
}

func swaggerFrom(r http.Handler, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestSwaggerProtection_Disabled(t *testing.T) {
	r := newSwaggerRouter(SwaggerConfig{Enabled: false}, nil)
	w := perform(r, http.MethodGet, "/swagger/index.html", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeError(t, w).Code)
}

func TestSwaggerProtection_AllowList(t *testing.T) {
	r := newSwaggerRouter(SwaggerConfig{
		Enabled:    true,
		AllowedIPs: []string{"10.0.0.0/8", "192.168.1.7", "not-an-ip", "2001:db8::/32"},
	}, nil)

	tests := []struct {
		remote string
		status int
	}{
		{"10.1.2.3:5000", http.StatusOK},
		{"192.168.1.7:5000", http.StatusOK},
		{"192.168.1.8:5000", http.StatusForbidden},
		{"[2001:db8::1]:5000", http.StatusOK},
		{"[2001:db9::1]:5000", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			assert.Equal(t, tt.status, swaggerFrom(r, tt.remote))
		})
	}
}

func TestSwaggerProtection_RequireAuth(t *testing.T) {
	deny := func(c *gin.Context) { abortWithError(c, dto.ErrCodeUnauthorized, "no") }
	allow := func(c *gin.Context) {}

	r := newSwaggerRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, deny)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/swagger/index.html", nil, nil).Code)

	r = newSwaggerRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, allow)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/swagger/index.html", nil, nil).Code)

	r = newSwaggerRouter(SwaggerConfig{Enabled: true}, deny)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/swagger/index.html", nil, nil).Code,
		"authenticate only runs when required")
}
