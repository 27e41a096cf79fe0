package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	dberrors "github.com/vipin760/hand-pass-BE/internal/infrastructure/database/errors"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/security"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"github.com/vipin760/hand-pass-BE/internal/shared/validator"
)

type Service struct {
	store           *Store
	passwordService *security.PasswordService
	validator       *validator.Validator
	auditLogger     *observability.AuditLogger
	logger          *observability.Logger
}

func NewService(
	store *Store,
	passwordService *security.PasswordService,
	validator *validator.Validator,
	auditLogger *observability.AuditLogger,
	logger *observability.Logger,
) *Service {
	return &Service{
		store:           store,
		passwordService: passwordService,
		validator:       validator,
		auditLogger:     auditLogger,
		logger:          logger,
	}
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	hash, err := s.passwordService.Hash(ctx, req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid password")
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate user ID")
	}

	user := &User{
		ID:           id.String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Department:   req.Department,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Create(ctx, user); err != nil {
		if dberrors.IsDuplicateKey(err) {
			return nil, apperrors.New(apperrors.ErrCodeConflict, "A user with this email already exists")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to create user")
	}

	s.auditLogger.LogSecurityEvent(ctx, observability.SecurityEvent{
		Type:     "user",
		Action:   "created",
		UserID:   user.ID,
		Resource: "user",
		Success:  true,
	})

	return toResponse(user), nil
}

func (s *Service) Get(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch user")
	}
	return toResponse(user), nil
}

func (s *Service) List(ctx context.Context, q ListUsersQuery) ([]*UserResponse, error) {
	list, err := s.store.List(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to list users")
	}

	result := make([]*UserResponse, 0, len(list))
	for _, u := range list {
		result = append(result, toResponse(u))
	}
	return result, nil
}

// ListActiveAttendees returns the users whose attendance is reconciled,
// skipping the configured excluded roles.
func (s *Service) ListActiveAttendees(ctx context.Context, excludedRoles []string) ([]*User, error) {
	list, err := s.store.ListActive(ctx, excludedRoles)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to list active users")
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to fetch user")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Department != "" {
		user.Department = req.Department
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.store.Update(ctx, user); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to update user")
	}

	return toResponse(user), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to delete user")
	}

	s.auditLogger.LogSecurityEvent(ctx, observability.SecurityEvent{
		Type:     "user",
		Action:   "deleted",
		UserID:   id,
		Resource: "user",
		Success:  true,
	})
	return nil
}
