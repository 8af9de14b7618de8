package services

import (
	"fmt"
	"time"

	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/security"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and validates admin dashboard tokens. The configured
// password is hashed once at startup so login compares against a bcrypt
// digest, never the raw value.
type AuthService struct {
	passwordHash []byte
	jwtSecret    string
	logger       *logging.ChanneledLogger
}

// NewAuthService creates the auth service from the configured admin
// password and JWT secret.
func NewAuthService(adminPassword, jwtSecret string, logger *logging.ChanneledLogger) (*AuthService, error) {
	if adminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	return &AuthService{
		passwordHash: hash,
		jwtSecret:    jwtSecret,
		logger:       logger,
	}, nil
}

// Login exchanges the admin password for a signed token.
func (s *AuthService) Login(password string) (string, error) {
	start := time.Now()
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.logger.Auth().Warn("Admin login rejected", "duration", time.Since(start))
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := security.GenerateAdminToken(s.jwtSecret)
	if err != nil {
		s.logger.Auth().Error("Token generation failed", "error", err.Error())
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Auth().Info("Admin login accepted", "duration", time.Since(start))
	return token, nil
}

// Validate checks a bearer token and returns its claims.
func (s *AuthService) Validate(tokenString string) (jwt.MapClaims, error) {
	claims, err := security.ValidateJWT(tokenString, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if !security.IsAdminClaims(claims) {
		return nil, fmt.Errorf("token lacks admin role")
	}
	return claims, nil
}

// Refresh exchanges a still-valid token for a fresh one.
func (s *AuthService) Refresh(tokenString string) (string, error) {
	if _, err := s.Validate(tokenString); err != nil {
		return "", err
	}
	return security.GenerateAdminToken(s.jwtSecret)
}
