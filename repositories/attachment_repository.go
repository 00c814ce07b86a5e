package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medcms/apperrors"
	"medcms/database"
	"medcms/models"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	CreateBatch(ctx context.Context, attachments []models.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]models.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByArticleID(ctx context.Context, articleID uuid.UUID) (int64, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(attachment).Error
}

func (r *attachmentRepository) CreateBatch(ctx context.Context, attachments []models.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(&attachments).Error
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	var attachment models.Attachment
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&attachment).Error
	if database.IsRecordNotFound(err) {
		return nil, apperrors.NotFound("attachment", id)
	}
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := database.Conn(ctx, r.db).
		Preload("UploadedBy").
		Where("article_version_id = ?", versionID).
		Order("uploaded_at asc").
		Order("id asc").
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&models.Attachment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("attachment", id)
	}
	return nil
}

// DeleteByArticleID removes the attachments of every version of the article.
func (r *attachmentRepository) DeleteByArticleID(ctx context.Context, articleID uuid.UUID) (int64, error) {
	db := database.Conn(ctx, r.db)
	versionIDs := db.Model(&models.ArticleVersion{}).Select("id").Where("article_id = ?", articleID)
	res := db.Where("article_version_id IN (?)", versionIDs).Delete(&models.Attachment{})
	return res.RowsAffected, res.Error
}
