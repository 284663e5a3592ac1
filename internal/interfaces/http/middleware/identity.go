package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/workforce/backend/internal/infrastructure/auth"
	"github.com/workforce/backend/internal/infrastructure/logger"
	"github.com/workforce/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Development identity headers, honored only when AllowHeaders is set
const (
	TenantIDHeader    = "X-Tenant-ID"
	UserIDHeader      = "X-User-ID"
	PermissionsHeader = "X-User-Permissions"

	identityKey  = "identity"
	bearerPrefix = "Bearer "
)

// Identity is the authenticated caller of a request
type Identity struct {
	TenantID    uuid.UUID
	UserID      string
	Permissions []string
	FromHeaders bool
}

// Can reports whether the caller holds permission; forms:admin implies all
func (i Identity) Can(permission string) bool {
	return slices.Contains(i.Permissions, permission) || slices.Contains(i.Permissions, auth.PermissionAdmin)
}

// IdentityConfig configures Authenticate
type IdentityConfig struct {
	JWT *auth.JWTService
	// AllowHeaders accepts X-Tenant-ID / X-User-ID when no bearer token is sent
	AllowHeaders bool
	Logger       *zap.Logger
}

// Authenticate resolves the caller from a bearer token, or from the
// development identity headers when allowed, and rejects the request otherwise.
func Authenticate(cfg IdentityConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		id, err := resolveIdentity(c, cfg)
		if err != nil {
			log.Debug("authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			code, msg := authFailure(err)
			abortWithError(c, code, msg)
			return
		}

		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(
			logger.WithIdentity(c.Request.Context(), id.TenantID.String(), id.UserID))
		c.Next()
	}
}

var (
	errNoCredentials  = errors.New("no credentials presented")
	errHeaderIdentity = errors.New("identity headers are incomplete or malformed")
)

func resolveIdentity(c *gin.Context, cfg IdentityConfig) (Identity, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || token == "" || cfg.JWT == nil {
			return Identity{}, auth.ErrInvalidToken
		}
		claims, err := cfg.JWT.Validate(token)
		if err != nil {
			return Identity{}, err
		}
		tenantID, _ := claims.TenantUUID()
		return Identity{
			TenantID:    tenantID,
			UserID:      claims.ActingUser(),
			Permissions: claims.Permissions,
		}, nil
	}

	if !cfg.AllowHeaders {
		return Identity{}, errNoCredentials
	}
	userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
	tenantID, err := uuid.Parse(strings.TrimSpace(c.GetHeader(TenantIDHeader)))
	if userID == "" || err != nil {
		return Identity{}, errHeaderIdentity
	}
	return Identity{
		TenantID:    tenantID,
		UserID:      userID,
		Permissions: splitPermissions(c.GetHeader(PermissionsHeader)),
		FromHeaders: true,
	}, nil
}

func splitPermissions(header string) []string {
	var perms []string
	for p := range strings.SplitSeq(header, ",") {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}
	return perms
}

func authFailure(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingTenantID), errors.Is(err, auth.ErrMissingUserID):
		return dto.ErrCodeTokenInvalid, "Invalid token"
	case errors.Is(err, errHeaderIdentity):
		return dto.ErrCodeUnauthorized, "X-Tenant-ID must be a UUID and X-User-ID must be set"
	default:
		return dto.ErrCodeUnauthorized, "Authentication required"
	}
}

// GetIdentity returns the caller set by Authenticate
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// RequirePermission rejects callers lacking permission with 403
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !id.Can(permission) {
			abortWithError(c, dto.ErrCodeForbidden, "Missing permission "+permission)
			return
		}
		c.Next()
	}
}
