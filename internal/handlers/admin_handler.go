package handlers

import (
	goerrors "errors"
	"net/http"

	"minibank/internal/dto"
	"minibank/internal/errors"
	"minibank/internal/repositories"
	"minibank/internal/services"

	"github.com/labstack/echo/v4"
)

// AdminHandler handles admin-only user management endpoints
type AdminHandler struct {
	directoryService services.DirectoryServiceInterface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(directoryService services.DirectoryServiceInterface) *AdminHandler {
	return &AdminHandler{
		directoryService: directoryService,
	}
}

// AssignRole changes a user's stored role. Tokens issued before the change
// keep the old role until the reconciliation middleware replaces them.
func (h *AdminHandler) AssignRole(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	var req dto.UpdateRoleRequest
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

	if err := h.directoryService.AssignRole(userID, req.Role, performedBy, getClientIP(c), c.Request().UserAgent()); err != nil {
		switch {
		case goerrors.Is(err, repositories.ErrUserNotFound):
			return SendError(c, errors.UserNotFound)
		case goerrors.Is(err, services.ErrInvalidRole):
			return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid role"))
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Role updated successfully"})
}

// UnlockUser clears a login lockout
func (h *AdminHandler) UnlockUser(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	performedBy, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	if err := h.directoryService.UnlockUser(userID, performedBy, getClientIP(c), c.Request().UserAgent()); err != nil {
		if goerrors.Is(err, repositories.ErrUserNotFound) {
			return SendError(c, errors.UserNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Account unlocked successfully"})
}
