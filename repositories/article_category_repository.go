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

type ArticleCategoryRepository interface {
	Create(ctx context.Context, link *models.ArticleCategory) error
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]models.ArticleCategory, error)
	ListArticleIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error)
	DeleteByArticle(ctx context.Context, articleID uuid.UUID) (int64, error)
	DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type articleCategoryRepository struct {
	db *gorm.DB
}

func NewArticleCategoryRepository(db *gorm.DB) ArticleCategoryRepository {
	return &articleCategoryRepository{db: db}
}

func (r *articleCategoryRepository) Create(ctx context.Context, link *models.ArticleCategory) error {
	err := database.Conn(ctx, r.db).Omit(clause.Associations).Create(link).Error
	if database.IsUniqueViolation(err) {
		return apperrors.Conflict("article category", "category "+link.CategoryID.String()+" already linked")
	}
	return err
}

func (r *articleCategoryRepository) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]models.ArticleCategory, error) {
	var links []models.ArticleCategory
	err := database.Conn(ctx, r.db).
		Preload("Category").
		Where("article_id = ?", articleID).
		Order("created_at asc").
		Find(&links).Error
	return links, err
}

func (r *articleCategoryRepository) ListArticleIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := database.Conn(ctx, r.db).
		Model(&models.ArticleCategory{}).
		Where("category_id = ?", categoryID).
		Pluck("article_id", &ids).Error
	return ids, err
}

func (r *articleCategoryRepository) DeleteByArticle(ctx context.Context, articleID uuid.UUID) (int64, error) {
	res := database.Conn(ctx, r.db).Where("article_id = ?", articleID).Delete(&models.ArticleCategory{})
	return res.RowsAffected, res.Error
}

func (r *articleCategoryRepository) DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	res := database.Conn(ctx, r.db).Where("category_id = ?", categoryID).Delete(&models.ArticleCategory{})
	return res.RowsAffected, res.Error
}
