package middleware

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce/backend/internal/infrastructure/auth"
	"github.com/workforce/backend/internal/infrastructure/config"
	"github.com/workforce/backend/internal/infrastructure/logger"
	"github.com/workforce/backend/internal/interfaces/http/dto"
)

func newJWT(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-with-enough-entropy-0123456789",
		Issuer:                "forms-test",
		AccessTokenExpiration: expiration,
	})
}

func newIdentityRouter(cfg IdentityConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Authenticate(cfg))
	r.GET("/me", func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		ctx := c.Request.Context()
		c.JSON(http.StatusOK, gin.H{
			"tenant":      id.TenantID.String(),
			"user":        id.UserID,
			"permissions": id.Permissions,
			"headers":     id.FromHeaders,
			"log_tenant":  logger.TenantID(ctx),
			"log_user":    logger.UserID(ctx),
		})
	})
	r.POST("/approve", RequirePermission(auth.PermissionApprove), okHandler)
	return r
}

type meResponse struct {
	Tenant      string   `json:"tenant"`
	User        string   `json:"user"`
	Permissions []string `json:"permissions"`
	Headers     bool     `json:"headers"`
	LogTenant   string   `json:"log_tenant"`
	LogUser     string   `json:"log_user"`
}

func TestAuthenticate_Bearer(t *testing.T) {
	jwtSvc := newJWT(time.Hour)
	r := newIdentityRouter(IdentityConfig{JWT: jwtSvc})
	tenant := uuid.New()

	token, _, err := jwtSvc.Issue(auth.IssueInput{
		TenantID:    tenant,
		UserID:      "worker-7",
		Permissions: []string{auth.PermissionApprove},
	})
	require.NoError(t, err)

	w := perform(r, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me meResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, tenant.String(), me.Tenant)
	assert.Equal(t, "worker-7", me.User)
	assert.Equal(t, []string{auth.PermissionApprove}, me.Permissions)
	assert.False(t, me.Headers)
	assert.Equal(t, tenant.String(), me.LogTenant)
	assert.Equal(t, "worker-7", me.LogUser)
}

func TestAuthenticate_Rejections(t *testing.T) {
	expired := newJWT(-time.Hour)
	expiredToken, _, err := expired.Issue(auth.IssueInput{TenantID: uuid.New(), UserID: "u"})
	require.NoError(t, err)

	r := newIdentityRouter(IdentityConfig{JWT: newJWT(time.Hour)})

	tests := []struct {
		name    string
		headers map[string]string
		code    string
	}{
		{"no credentials", nil, dto.ErrCodeUnauthorized},
		{"not bearer", map[string]string{"Authorization": "Basic dTpw"}, dto.ErrCodeTokenInvalid},
		{"empty bearer", map[string]string{"Authorization": "Bearer "}, dto.ErrCodeTokenInvalid},
		{"garbage", map[string]string{"Authorization": "Bearer abc.def.ghi"}, dto.ErrCodeTokenInvalid},
		{"expired", map[string]string{"Authorization": "Bearer " + expiredToken}, dto.ErrCodeTokenExpired},
		{"headers when disabled", map[string]string{TenantIDHeader: uuid.NewString(), UserIDHeader: "u"}, dto.ErrCodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, "/me", nil, tt.headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			errInfo := decodeError(t, w)
			assert.Equal(t, tt.code, errInfo.Code)
			assert.NotEmpty(t, errInfo.RequestID)
		})
	}
}

func TestAuthenticate_Headers(t *testing.T) {
	r := newIdentityRouter(IdentityConfig{AllowHeaders: true})
	tenant := uuid.New()

	t.Run("accepted", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/me", nil, map[string]string{
			TenantIDHeader:    tenant.String(),
			UserIDHeader:      " manager-1 ",
			PermissionsHeader: "forms:approve, ,forms:admin",
		})
		require.Equal(t, http.StatusOK, w.Code)
		var me meResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
		assert.Equal(t, "manager-1", me.User)
		assert.Equal(t, []string{"forms:approve", "forms:admin"}, me.Permissions)
		assert.True(t, me.Headers)
	})

	t.Run("malformed tenant", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/me", nil, map[string]string{TenantIDHeader: "acme", UserIDHeader: "u"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing user", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/me", nil, map[string]string{TenantIDHeader: tenant.String()})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer wins over headers", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/me", nil, map[string]string{
			"Authorization": "Bearer x",
			TenantIDHeader:  tenant.String(),
			UserIDHeader:    "u",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, decodeError(t, w).Code)
	})
}

func TestRequirePermission(t *testing.T) {
	r := newIdentityRouter(IdentityConfig{AllowHeaders: true})
	tenant := uuid.NewString()

	tests := []struct {
		name   string
		perms  string
		status int
	}{
		{"approver", "forms:approve", http.StatusOK},
		{"admin implies approve", "forms:admin", http.StatusOK},
		{"none", "", http.StatusForbidden},
		{"unrelated", "forms:read", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodPost, "/approve", nil, map[string]string{
				TenantIDHeader:    tenant,
				UserIDHeader:      "u",
				PermissionsHeader: tt.perms,
			})
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)
			}
		})
	}
}

func TestRequirePermission_WithoutIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/", RequirePermission(auth.PermissionAdmin), okHandler)
	w := perform(r, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
