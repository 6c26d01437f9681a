package handlers

import (
	goerrors "errors"
	"net/http"

	"minibank/internal/dto"
	"minibank/internal/errors"
	"minibank/internal/models"
	"minibank/internal/repositories"
	"minibank/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandler handles the user directory endpoints
type UserHandler struct {
	directoryService services.DirectoryServiceInterface
	passwordService  services.PasswordServiceInterface
}

// NewUserHandler creates a new user handler
func NewUserHandler(directoryService services.DirectoryServiceInterface, passwordService services.PasswordServiceInterface) *UserHandler {
	return &UserHandler{
		directoryService: directoryService,
		passwordService:  passwordService,
	}
}

// ListUsers returns all users, admin only
func (h *UserHandler) ListUsers(c echo.Context) error {
	offset := getIntParam(c, "offset", 0)
	limit := getIntParam(c, "limit", 50)

	users, total, err := h.directoryService.ListUsers(offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ListUsersResponse{
		Users:  toUserSummaries(users),
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// SearchUsers finds users by a term matched against name and email
func (h *UserHandler) SearchUsers(c echo.Context) error {
	var req dto.SearchUsersRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid query parameters"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	users, total, err := h.directoryService.SearchUsers(req.Term, req.Offset, req.Limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ListUsersResponse{
		Users:  toUserSummaries(users),
		Total:  total,
		Offset: req.Offset,
		Limit:  req.Limit,
	})
}

// GetUserDetails returns a user with accounts and their ledgers
func (h *UserHandler) GetUserDetails(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	user, err := h.directoryService.GetUserDetails(userID)
	if err != nil {
		if goerrors.Is(err, repositories.ErrUserNotFound) {
			return SendError(c, errors.UserNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.UserDetailsResponse{User: user})
}

// UpdateProfile applies profile changes to a user
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	performedBy, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	user, err := h.directoryService.UpdateProfile(userID, &req, performedBy, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		switch {
		case goerrors.Is(err, repositories.ErrUserNotFound):
			return SendError(c, errors.UserNotFound)
		case goerrors.Is(err, services.ErrUserAlreadyExists):
			return SendError(c, errors.UserAlreadyExists)
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    user,
		Message: "Profile updated successfully",
	})
}

// UpdatePassword lets a user change their own password
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	callerID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	// Password changes require knowing the current password, so even admins
	// cannot perform them for someone else
	if callerID != userID {
		return SendError(c, errors.AuthInsufficientPermission)
	}

	var req dto.UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	if err := h.passwordService.UpdatePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case goerrors.Is(err, repositories.ErrUserNotFound):
			return SendError(c, errors.UserNotFound)
		case goerrors.Is(err, services.ErrCurrentPasswordWrong):
			return SendError(c, errors.AuthInvalidCredentials, errors.WithDetails("Current password is incorrect"))
		case goerrors.Is(err, services.ErrSamePassword),
			goerrors.Is(err, services.ErrPasswordTooShort),
			goerrors.Is(err, services.ErrPasswordTooLong),
			goerrors.Is(err, services.ErrPasswordNoLetter),
			goerrors.Is(err, services.ErrPasswordNoNumber),
			goerrors.Is(err, services.ErrPasswordEmpty):
			return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated successfully"})
}

// DeleteUser soft deletes a user and their accounts, admin only
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	performedBy, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	if err := h.directoryService.DeleteUser(userID, performedBy, getClientIP(c), c.Request().UserAgent()); err != nil {
		if goerrors.Is(err, repositories.ErrUserNotFound) {
			return SendError(c, errors.UserNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}

func toUserSummaries(users []*models.User) []dto.UserSummary {
	summaries := make([]dto.UserSummary, 0, len(users))
	for _, user := range users {
		summary := dto.UserSummary{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			Role:        user.Role,
			LastLoginAt: user.LastLoginAt,
			CreatedAt:   user.CreatedAt,
		}
		if savings := user.SavingsAccount(); savings != nil {
			summary.AccountNumber = savings.AccountNumber
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
