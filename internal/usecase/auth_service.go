package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenIssuer = "playoff-pool"

type AuthConfig struct {
	Username     string
	PasswordHash string
	TokenSecret  string
	TokenTTL     time.Duration
}

func (c AuthConfig) enabled() bool {
	return strings.TrimSpace(c.Username) != "" && c.PasswordHash != "" && c.TokenSecret != ""
}

// AuthService exchanges admin credentials for a signed token and turns tokens back
// into a Capability. It is the only place that handles credentials.
type AuthService struct {
	cfg AuthConfig
	now func() time.Time
}

func NewAuthService(cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	return &AuthService{cfg: cfg, now: time.Now}
}

type AdminToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *AuthService) Login(ctx context.Context, username, password string) (AdminToken, error) {
	_, span := startUsecaseSpan(ctx, "usecase.AuthService.Login")
	defer span.End()

	if !s.cfg.enabled() {
		return AdminToken{}, fmt.Errorf("%w: admin login is not configured", ErrDependencyUnavailable)
	}

	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(s.cfg.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		return AdminToken{}, fmt.Errorf("%w: invalid admin credentials", ErrUnauthorized)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    adminTokenIssuer,
		Subject:   s.cfg.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.TokenSecret))
	if err != nil {
		return AdminToken{}, fmt.Errorf("sign admin token: %w", err)
	}
	return AdminToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// Authorize verifies a bearer token. Any failure yields ErrUnauthorized.
func (s *AuthService) Authorize(ctx context.Context, token string) (Capability, error) {
	_, span := startUsecaseSpan(ctx, "usecase.AuthService.Authorize")
	defer span.End()

	if !s.cfg.enabled() {
		return Capability{}, fmt.Errorf("%w: admin login is not configured", ErrUnauthorized)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Capability{}, fmt.Errorf("%w: missing admin token", ErrUnauthorized)
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{
		ValidMethods: []string{jwt.SigningMethodHS256.Alg()},
	}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.TokenSecret), nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return Capability{}, fmt.Errorf("%w: admin token expired", ErrUnauthorized)
		}
		return Capability{}, fmt.Errorf("%w: invalid admin token", ErrUnauthorized)
	}
	if !parsed.Valid || claims.Issuer != adminTokenIssuer || claims.Subject != s.cfg.Username {
		return Capability{}, fmt.Errorf("%w: invalid admin token", ErrUnauthorized)
	}
	return Capability{IsAuthorized: true, Subject: claims.Subject}, nil
}
