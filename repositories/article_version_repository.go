package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medcms/apperrors"
	"medcms/database"
	"medcms/models"
)

type ArticleVersionRepository interface {
	Create(ctx context.Context, version *models.ArticleVersion) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ArticleVersion, error)
	GetForArticle(ctx context.Context, articleID, versionID uuid.UUID) (*models.ArticleVersion, error)
	GetLast(ctx context.Context, articleID uuid.UUID) (*models.ArticleVersion, error)
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]models.ArticleVersion, error)
	DeleteVersionsByArticleID(ctx context.Context, articleID uuid.UUID) (int64, error)
}

type articleVersionRepository struct {
	db *gorm.DB
}

func NewArticleVersionRepository(db *gorm.DB) ArticleVersionRepository {
	return &articleVersionRepository{db: db}
}

func (r *articleVersionRepository) Create(ctx context.Context, version *models.ArticleVersion) error {
	err := database.Conn(ctx, r.db).Omit(clause.Associations).Create(version).Error
	if database.IsUniqueViolation(err) {
		return apperrors.TransientConflict("article version",
			fmt.Sprintf("version %d of article %s already exists", version.VersionNumber, version.ArticleID))
	}
	return err
}

func (r *articleVersionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ArticleVersion, error) {
	var version models.ArticleVersion
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&version).Error
	if database.IsRecordNotFound(err) {
		return nil, apperrors.NotFound("article version", id)
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *articleVersionRepository) GetForArticle(ctx context.Context, articleID, versionID uuid.UUID) (*models.ArticleVersion, error) {
	var version models.ArticleVersion
	err := database.Conn(ctx, r.db).
		Where("article_id = ? AND id = ?", articleID, versionID).
		First(&version).Error
	if database.IsRecordNotFound(err) {
		return nil, apperrors.NotFound("article version", versionID)
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// GetLast returns the highest-numbered version, which is not necessarily
// the article's current version.
func (r *articleVersionRepository) GetLast(ctx context.Context, articleID uuid.UUID) (*models.ArticleVersion, error) {
	var version models.ArticleVersion
	err := database.Conn(ctx, r.db).
		Where("article_id = ?", articleID).
		Order("version_number desc").
		First(&version).Error
	if database.IsRecordNotFound(err) {
		return nil, apperrors.NotFound("article version", nil)
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *articleVersionRepository) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]models.ArticleVersion, error) {
	var versions []models.ArticleVersion
	err := database.Conn(ctx, r.db).
		Where("article_id = ?", articleID).
		Preload("CreatedBy").
		Preload("Attachments.UploadedBy").
		Order("version_number desc").
		Find(&versions).Error
	return versions, err
}

func (r *articleVersionRepository) DeleteVersionsByArticleID(ctx context.Context, articleID uuid.UUID) (int64, error) {
	res := database.Conn(ctx, r.db).Where("article_id = ?", articleID).Delete(&models.ArticleVersion{})
	return res.RowsAffected, res.Error
}
