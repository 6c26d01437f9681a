package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"minibank/internal/dto"
	"minibank/internal/models"
	"minibank/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidRole = errors.New("invalid role")
)

// DirectoryService implements user directory operations: listing, search,
// profile maintenance and the admin role assignment whose propagation the
// role reconciliation middleware exists for.
type DirectoryService struct {
	auditRecorder
	userRepo    repositories.UserRepositoryInterface
	accountRepo repositories.AccountRepositoryInterface
	metrics     MetricsRecorderInterface
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(
	userRepo repositories.UserRepositoryInterface,
	accountRepo repositories.AccountRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) DirectoryServiceInterface {
	return &DirectoryService{
		auditRecorder: auditRecorder{auditRepo: auditRepo, logger: logger},
		userRepo:      userRepo,
		accountRepo:   accountRepo,
		metrics:       metrics,
	}
}

// ListUsers returns all users with pagination
func (s *DirectoryService) ListUsers(offset, limit int) ([]*models.User, int64, error) {
	offset, limit = normalizePagination(offset, limit)
	return s.userRepo.ListUsers(offset, limit)
}

// SearchUsers finds users whose name or email contains the term
func (s *DirectoryService) SearchUsers(term string, offset, limit int) ([]*models.User, int64, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, 0, errors.New("search term is required")
	}

	offset, limit = normalizePagination(offset, limit)

	start := time.Now()
	users, total, err := s.userRepo.Search(term, offset, limit)
	if s.metrics != nil {
		s.metrics.RecordProcessingTime("user_search", time.Since(start))
	}

	return users, total, err
}

// GetUserDetails returns a user with accounts and their ledgers
func (s *DirectoryService) GetUserDetails(userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByIDWithAccounts(userID)
}

// UpdateProfile applies the requested profile changes
func (s *DirectoryService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest, performedBy uuid.UUID, ipAddress, userAgent string) (*models.User, error) {
	if req == nil {
		return nil, errors.New("update request cannot be nil")
	}

	fields := map[string]interface{}{}
	changed := []string{}

	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
		changed = append(changed, "name")
	}

	if req.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
		changed = append(changed, "email")
	}

	if len(fields) == 0 {
		return s.userRepo.GetByID(userID)
	}

	fields["updated_at"] = time.Now()

	if err := s.userRepo.UpdateFields(userID, fields); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.record(&userID, models.AuditActionProfileUpdated, "user", userID.String(), ipAddress, userAgent, map[string]interface{}{
		"fields":       changed,
		"performed_by": performedBy.String(),
	})

	return s.userRepo.GetByID(userID)
}

// DeleteUser soft deletes a user and all of their accounts
func (s *DirectoryService) DeleteUser(userID, performedBy uuid.UUID, ipAddress, userAgent string) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return err
	}

	if err := s.accountRepo.SoftDeleteByUserID(userID); err != nil {
		return fmt.Errorf("failed to delete accounts: %w", err)
	}

	if err := s.userRepo.Delete(userID); err != nil {
		return err
	}

	s.record(&performedBy, models.AuditActionUserDeleted, "user", userID.String(), ipAddress, userAgent, nil)

	return nil
}

// AssignRole sets the authoritative role on the directory record. Tokens
// already issued keep carrying the old role until reconciliation catches
// them.
func (s *DirectoryService) AssignRole(userID uuid.UUID, role string, performedBy uuid.UUID, ipAddress, userAgent string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if !models.IsValidRole(role) {
		return ErrInvalidRole
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if user.Role == role {
		return nil
	}

	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		return err
	}

	s.record(&performedBy, models.AuditActionRoleChanged, "user", userID.String(), ipAddress, userAgent, map[string]interface{}{
		"old_role": user.Role,
		"new_role": role,
	})

	return nil
}

// UnlockUser clears a login lockout
func (s *DirectoryService) UnlockUser(userID, performedBy uuid.UUID, ipAddress, userAgent string) error {
	if err := s.userRepo.UnlockAccount(userID); err != nil {
		return err
	}

	s.record(&performedBy, models.AuditActionAccountUnlock, "user", userID.String(), ipAddress, userAgent, nil)

	return nil
}

func normalizePagination(offset, limit int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
