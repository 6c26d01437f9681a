package services

import (
	"log/slog"

	"minibank/internal/models"
	"minibank/internal/repositories"

	"github.com/google/uuid"
)

// auditRecorder is embedded by services that write audit trail entries.
// Audit failures are logged and swallowed; they never block the operation.
type auditRecorder struct {
	auditRepo repositories.AuditLogRepositoryInterface
	logger    *slog.Logger
}

func (a *auditRecorder) record(userID *uuid.UUID, action, resource, resourceID, ipAddress, userAgent string, metadata map[string]interface{}) {
	if a.auditRepo == nil {
		return
	}

	log := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Metadata:   models.JSONBMap(metadata),
	}

	if err := a.auditRepo.Create(log); err != nil {
		a.logger.Error("failed to create audit log",
			"error", err,
			"action", action,
			"resource", resource,
			"resource_id", resourceID)
	}
}
