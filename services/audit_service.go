package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medcms/apperrors"
	"medcms/models"
	"medcms/repositories"
)

// AuditRecord describes one change to be appended to the audit log.
type AuditRecord struct {
	EntityType string
	EntityID   uuid.UUID
	Operation  models.AuditOperation
	Changes    map[string]interface{}
	Reason     *string
	UserID     uuid.UUID
}

// AuditService is the append-only change log. Record joins the unit of work
// carried by ctx, so an entry is only kept if the change it describes is.
type AuditService interface {
	Record(ctx context.Context, rec AuditRecord) (*models.AuditEntry, error)
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditEntry, error)
	FindAll(ctx context.Context, filter models.AuditFilter, page models.Pagination) ([]models.AuditEntry, error)
	// Reset wipes the log. Only used to prepare test environments.
	Reset(ctx context.Context) (int64, error)
}

type auditService struct {
	auditRepo repositories.AuditRepository
	userRepo  repositories.UserRepository
	logger    *zap.Logger
}

func NewAuditService(auditRepo repositories.AuditRepository, userRepo repositories.UserRepository, logger *zap.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		userRepo:  userRepo,
		logger:    logger.Named("audit-service"),
	}
}

func (s *auditService) Record(ctx context.Context, rec AuditRecord) (*models.AuditEntry, error) {
	switch rec.Operation {
	case models.OperationCreate, models.OperationUpdate, models.OperationDelete:
	default:
		return nil, fmt.Errorf("%w: unknown audit operation %q", apperrors.ErrInvalidInput, rec.Operation)
	}

	exists, err := s.userRepo.Exists(ctx, rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("check audit user: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("user", rec.UserID)
	}

	entry := &models.AuditEntry{
		EntityType: rec.EntityType,
		EntityID:   rec.EntityID,
		Operation:  rec.Operation,
		Changes:    rec.Changes,
		Reason:     rec.Reason,
		UserID:     rec.UserID,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry",
			zap.String("entity_type", rec.EntityType),
			zap.String("entity_id", rec.EntityID.String()),
			zap.String("operation", string(rec.Operation)),
			zap.Error(err))
		return nil, fmt.Errorf("record audit entry: %w", err)
	}

	s.logger.Debug("audit entry recorded",
		zap.String("entity_type", rec.EntityType),
		zap.String("entity_id", rec.EntityID.String()),
		zap.String("operation", string(rec.Operation)),
		zap.String("user_id", rec.UserID.String()))

	return entry, nil
}

func (s *auditService) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditEntry, error) {
	return s.auditRepo.GetByEntity(ctx, entityType, entityID)
}

func (s *auditService) FindAll(ctx context.Context, filter models.AuditFilter, page models.Pagination) ([]models.AuditEntry, error) {
	return s.auditRepo.List(ctx, filter, page)
}

func (s *auditService) Reset(ctx context.Context) (int64, error) {
	n, err := s.auditRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Warn("audit log reset", zap.Int64("deleted", n))
	return n, nil
}
