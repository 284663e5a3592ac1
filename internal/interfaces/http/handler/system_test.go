package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping() error { return s.err }

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		database string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"database down", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler(stubPinger{tt.err}, "forms-backend", "test")
			r := gin.New()
			r.GET("/health", h.Health)

			w := doJSON(r, http.MethodGet, "/health", nil, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"database":"`+tt.database+`"`)
		})
	}
}

func TestSystemHandler_Info(t *testing.T) {
	h := NewSystemHandler(stubPinger{}, "forms-backend", "1.2.3")
	r := gin.New()
	r.GET("/system/info", h.GetSystemInfo)

	resp := decodeResponse[SystemInfoResponse](t, doJSON(r, http.MethodGet, "/system/info", nil, nil))
	assert.Equal(t, "forms-backend", resp.Data.Name)
	assert.Equal(t, "1.2.3", resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
}
