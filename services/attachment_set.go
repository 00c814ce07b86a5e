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

// AttachmentSet manages the files bound to an article version.
type AttachmentSet interface {
	Add(ctx context.Context, versionID uuid.UUID, req models.AddAttachmentRequest, uploaderID uuid.UUID) (*models.Attachment, error)
	Remove(ctx context.Context, attachmentID, userID uuid.UUID) error
	// CopyForward duplicates every attachment of one version onto another.
	// Copies get fresh ids and upload times; uploader is preserved.
	CopyForward(ctx context.Context, fromVersionID, toVersionID uuid.UUID) ([]models.Attachment, error)
	List(ctx context.Context, versionID uuid.UUID) ([]models.Attachment, error)
	// PurgeArticle deletes the attachments of every version of an article.
	PurgeArticle(ctx context.Context, articleID uuid.UUID) (int64, error)
}

type attachmentSet struct {
	tx             Transactor
	attachmentRepo repositories.AttachmentRepository
	versionRepo    repositories.ArticleVersionRepository
	userRepo       repositories.UserRepository
	audit          AuditService
	logger         *zap.Logger
}

func NewAttachmentSet(
	tx Transactor,
	attachmentRepo repositories.AttachmentRepository,
	versionRepo repositories.ArticleVersionRepository,
	userRepo repositories.UserRepository,
	audit AuditService,
	logger *zap.Logger,
) AttachmentSet {
	return &attachmentSet{
		tx:             tx,
		attachmentRepo: attachmentRepo,
		versionRepo:    versionRepo,
		userRepo:       userRepo,
		audit:          audit,
		logger:         logger.Named("attachments"),
	}
}

func (s *attachmentSet) Add(ctx context.Context, versionID uuid.UUID, req models.AddAttachmentRequest, uploaderID uuid.UUID) (*models.Attachment, error) {
	var attachment *models.Attachment

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.versionRepo.GetByID(ctx, versionID); err != nil {
			return err
		}
		if err := requireUser(ctx, s.userRepo, uploaderID); err != nil {
			return err
		}

		attachment = &models.Attachment{
			ArticleVersionID: versionID,
			FileName:         req.FileName,
			FileType:         req.FileType,
			FileSize:         req.FileSize,
			URL:              req.URL,
			UploadedByID:     uploaderID,
		}
		if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
			return fmt.Errorf("create attachment: %w", err)
		}

		_, err := s.audit.Record(ctx, AuditRecord{
			EntityType: models.EntityAttachment,
			EntityID:   attachment.ID,
			Operation:  models.OperationCreate,
			Changes: map[string]interface{}{
				"articleVersionId": versionID,
				"fileName":         req.FileName,
				"fileType":         req.FileType,
				"fileSize":         req.FileSize,
				"url":              req.URL,
			},
			Reason: strPtr("attachment added"),
			UserID: uploaderID,
		})
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to add attachment", err, zap.String("version_id", versionID.String()))
		return nil, err
	}

	s.logger.Info("attachment added",
		zap.String("attachment_id", attachment.ID.String()),
		zap.String("version_id", versionID.String()))
	return attachment, nil
}

func (s *attachmentSet) Remove(ctx context.Context, attachmentID, userID uuid.UUID) error {
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		attachment, err := s.attachmentRepo.GetByID(ctx, attachmentID)
		if err != nil {
			return err
		}

		// The entry is written first so it still names the file being removed.
		if _, err := s.audit.Record(ctx, AuditRecord{
			EntityType: models.EntityAttachment,
			EntityID:   attachment.ID,
			Operation:  models.OperationDelete,
			Changes: map[string]interface{}{
				"articleVersionId": attachment.ArticleVersionID,
				"fileName":         attachment.FileName,
			},
			Reason: strPtr("attachment removed"),
			UserID: userID,
		}); err != nil {
			return err
		}

		return s.attachmentRepo.Delete(ctx, attachment.ID)
	})
	if err != nil {
		logFailure(s.logger, "failed to remove attachment", err, zap.String("attachment_id", attachmentID.String()))
		return err
	}

	s.logger.Info("attachment removed", zap.String("attachment_id", attachmentID.String()))
	return nil
}

func (s *attachmentSet) CopyForward(ctx context.Context, fromVersionID, toVersionID uuid.UUID) ([]models.Attachment, error) {
	existing, err := s.attachmentRepo.ListByVersion(ctx, fromVersionID)
	if err != nil {
		return nil, fmt.Errorf("list attachments of version %s: %w", fromVersionID, err)
	}
	if len(existing) == 0 {
		return nil, nil
	}

	copies := make([]models.Attachment, 0, len(existing))
	for _, a := range existing {
		copies = append(copies, models.Attachment{
			ArticleVersionID: toVersionID,
			FileName:         a.FileName,
			FileType:         a.FileType,
			FileSize:         a.FileSize,
			URL:              a.URL,
			UploadedByID:     a.UploadedByID,
		})
	}
	if err := s.attachmentRepo.CreateBatch(ctx, copies); err != nil {
		return nil, fmt.Errorf("copy attachments to version %s: %w", toVersionID, err)
	}

	s.logger.Debug("attachments carried forward",
		zap.String("from_version_id", fromVersionID.String()),
		zap.String("to_version_id", toVersionID.String()),
		zap.Int("count", len(copies)))
	return copies, nil
}

func (s *attachmentSet) List(ctx context.Context, versionID uuid.UUID) ([]models.Attachment, error) {
	if _, err := s.versionRepo.GetByID(ctx, versionID); err != nil {
		return nil, err
	}
	return s.attachmentRepo.ListByVersion(ctx, versionID)
}

func (s *attachmentSet) PurgeArticle(ctx context.Context, articleID uuid.UUID) (int64, error) {
	return s.attachmentRepo.DeleteByArticleID(ctx, articleID)
}

func requireUser(ctx context.Context, userRepo repositories.UserRepository, id uuid.UUID) error {
	exists, err := userRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return apperrors.NotFound("user", id)
	}
	return nil
}
