package services

import (
	"fmt"

	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/security"
	"github.com/upskillhq/upskill-go/pkg/config"
)

// AuthService issues admin JWTs against the configured bcrypt password hash.
type AuthService struct {
	logger *logging.ChanneledLogger
}

func NewAuthService(logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{logger: logger}
}

// Login validates the admin password and returns a signed token.
func (s *AuthService) Login(password string) (string, error) {
	if config.AdminPasswordHash == "" {
		return "", fmt.Errorf("admin login is not configured")
	}
	if !security.CheckPassword(password, config.AdminPasswordHash) {
		s.logger.Auth().Warn("Admin login rejected")
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := security.GenerateAdminToken("admin", "admin", config.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	s.logger.Auth().Info("Admin login succeeded")
	return token, nil
}
