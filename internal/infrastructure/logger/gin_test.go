package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newLoggedRouter(t *testing.T, middleware ...gin.HandlerFunc) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	r.Use(Recovery(base), GinMiddleware(base))
	r.Use(middleware...)
	return r, recorded
}

func requestEntry(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage("request").All()
	require.Len(t, entries, 1)
	return entries[0]
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   zapcore.Level
	}{
		{"success", http.StatusOK, zapcore.InfoLevel},
		{"client error", http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{"server error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, recorded := newLoggedRouter(t)
			r.GET("/api/v1/forms/submissions/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/forms/submissions/abc?expand=history", nil))

			entry := requestEntry(t, recorded)
			assert.Equal(t, tt.want, entry.Level)
			fields := entry.ContextMap()
			assert.Equal(t, "/api/v1/forms/submissions/:id", fields["route"])
			assert.Equal(t, "/api/v1/forms/submissions/abc", fields["path"])
			assert.Equal(t, "expand=history", fields["query"])
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, "req-42", fields["request_id"])
		})
	}
}

func TestGinMiddleware_IdentityFromLaterMiddleware(t *testing.T) {
	var handlerRequestID string
	r, recorded := newLoggedRouter(t, func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), "tenant-1", "user-1"))
		c.Next()
	})
	r.GET("/x", func(c *gin.Context) {
		handlerRequestID = RequestID(c.Request.Context())
		L(c.Request.Context()).Info("handled")
		c.Status(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, "req-42", handlerRequestID)
	fields := requestEntry(t, recorded).ContextMap()
	assert.Equal(t, "tenant-1", fields["tenant_id"])
	assert.Equal(t, "user-1", fields["user_id"])

	handled := recorded.FilterMessage("handled").All()
	require.Len(t, handled, 1)
	assert.Equal(t, "tenant-1", handled[0].ContextMap()["tenant_id"])
}

func TestGinMiddleware_UnmatchedRoute(t *testing.T) {
	r, recorded := newLoggedRouter(t)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, "unmatched", requestEntry(t, recorded).ContextMap()["route"])
}

func TestRecovery(t *testing.T) {
	r, recorded := newLoggedRouter(t)
	r.GET("/boom", func(c *gin.Context) {
		panic("nil template")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_INTERNAL","message":"An internal error occurred"}}`, w.Body.String())

	panics := recorded.FilterMessage("panic recovered").All()
	require.Len(t, panics, 1)
	assert.Equal(t, "nil template", panics[0].ContextMap()["panic"])
}
