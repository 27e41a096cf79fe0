package auth

import (
	"context"
	"database/sql"

	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/security"
	"github.com/vipin760/hand-pass-BE/internal/modules/users"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
)

// UserReader looks up accounts for credential checks. Satisfied by
// users.Store.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

type Service struct {
	store           UserReader
	jwtService      *security.JWTService
	passwordService *security.PasswordService
	validator       *validator.Validator
	auditLogger     *observability.AuditLogger
	metrics         *observability.Metrics
	logger          *observability.Logger
}

func NewService(
	store UserReader,
	jwtService *security.JWTService,
	passwordService *security.PasswordService,
	validator *validator.Validator,
	auditLogger *observability.AuditLogger,
	metrics *observability.Metrics,
	logger *observability.Logger,
) *Service {
	return &Service{
		store:           store,
		jwtService:      jwtService,
		passwordService: passwordService,
		validator:       validator,
		auditLogger:     auditLogger,
		metrics:         metrics,
		logger:          logger,
	}
}

// Login checks credentials and issues an access token. Unknown email
// and wrong password return the same error so the endpoint does not
// leak which accounts exist.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	s.metrics.AuthenticationAttempts.WithLabelValues("password").Inc()

	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			s.failedLogin(ctx, req.Email, "unknown_email")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch user")
	}
	if !user.Active {
		s.failedLogin(ctx, req.Email, "inactive_account")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.passwordService.Compare(ctx, user.PasswordHash, req.Password); err != nil {
		s.failedLogin(ctx, user.ID, "wrong_password")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAccessToken(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to issue token")
	}

	s.auditLogger.LogSecurityEvent(ctx, observability.SecurityEvent{
		Type:    "authentication",
		Action:  "login",
		UserID:  user.ID,
		Success: true,
	})

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtService.GetAccessExpiry().Seconds()),
		User: Actor{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}

func (s *Service) failedLogin(ctx context.Context, subject, reason string) {
	s.metrics.AuthenticationFailures.WithLabelValues("password", reason).Inc()
	s.auditLogger.LogSecurityEvent(ctx, observability.SecurityEvent{
		Type:    "authentication",
		Action:  "login",
		UserID:  subject,
		Success: false,
	})
}
