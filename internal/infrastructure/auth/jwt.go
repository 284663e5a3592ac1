// Package auth validates the bearer tokens issued by the identity provider and
// exposes the tenant, acting user and form permissions they carry.
package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/workforce/backend/internal/infrastructure/config"
)

// Form permissions carried in the permissions claim
const (
	PermissionApprove = "forms:approve"
	PermissionAdmin   = "forms:admin"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingUserID    = errors.New("missing user id in claims")
)

// Claims are the JWT claims the service relies on. User ids are opaque
// strings; the subject is used when user_id is absent.
type Claims struct {
	jwt.RegisteredClaims
	TenantID    string   `json:"tenant_id"`
	UserID      string   `json:"user_id,omitempty"`
	Username    string   `json:"username,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// ActingUser returns user_id, falling back to sub
func (c *Claims) ActingUser() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// TenantUUID parses the tenant claim
func (c *Claims) TenantUUID() (uuid.UUID, error) {
	return uuid.Parse(c.TenantID)
}

// HasPermission reports whether the permission was granted. forms:admin
// implies every other form permission.
func (c *Claims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, permission) || slices.Contains(c.Permissions, PermissionAdmin)
}

// JWTService validates HS256 tokens. Issue exists for tooling and tests;
// production tokens come from the identity provider sharing the secret.
type JWTService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	leeway     time.Duration
	now        func() time.Time
}

// NewJWTService creates a JWT service from configuration
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		expiration: cfg.AccessTokenExpiration,
		leeway:     30 * time.Second,
		now:        time.Now,
	}
}

// IssueInput describes the identity to encode in a token
type IssueInput struct {
	TenantID    uuid.UUID
	UserID      string
	Username    string
	Permissions []string
}

// Issue signs an access token for the given identity
func (s *JWTService) Issue(in IssueInput) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   in.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID:    in.TenantID.String(),
		UserID:      in.UserID,
		Username:    in.Username,
		Permissions: in.Permissions,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a token, returning its claims
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	}

	if _, err := claims.TenantUUID(); err != nil {
		return nil, ErrMissingTenantID
	}
	if claims.ActingUser() == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}
