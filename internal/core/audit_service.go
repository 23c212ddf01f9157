package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/collex/internal/db"
	"github.com/example/collex/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// CreateAuditLog stores an audit log entry.
func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

// recordAudit writes an audit entry. Failures are logged and never fail the action.
func recordAudit(ctx context.Context, audit AuditService, logger *zap.Logger, entry models.AuditLog) {
	if audit == nil {
		return
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("Failed to create audit log",
			zap.String("action", entry.Action),
			zap.String("targetID", entry.TargetID),
			zap.Error(err))
	}
}
