package dto

import (
	"time"

	"minibank/internal/models"

	"github.com/google/uuid"
)

// SearchUsersRequest represents the request to search the user directory
type SearchUsersRequest struct {
	Term   string `query:"term" validate:"required,min=1,max=100"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

// UserSummary represents a single user in listing and search results
type UserSummary struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	AccountNumber string     `json:"accountNumber,omitempty"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ListUsersResponse represents a paginated list of users
type ListUsersResponse struct {
	Users  []UserSummary `json:"users"`
	Total  int64         `json:"total"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

// UserDetailsResponse represents a user with accounts and their ledgers
type UserDetailsResponse struct {
	User *models.User `json:"user"`
}

// UpdateProfileRequest represents the request to update a user's profile
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UpdatePasswordRequest represents the request to change a password
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// UpdateRoleRequest represents the admin request to change a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
