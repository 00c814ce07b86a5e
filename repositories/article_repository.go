package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medcms/apperrors"
	"medcms/database"
	"medcms/models"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Article, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Article, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	GetList(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// withArticleIncludes loads everything an Article response carries.
func withArticleIncludes(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("CurrentVersion.CreatedBy").
		Preload("CurrentVersion.Attachments.UploadedBy").
		Preload("Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("version_number desc")
		}).
		Preload("Versions.CreatedBy").
		Preload("Versions.Attachments.UploadedBy").
		Preload("Categories.Category")
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(article).Error
}

func (r *articleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := withArticleIncludes(database.Conn(ctx, r.db)).Where("articles.id = ?", id).First(&article).Error
	if database.IsRecordNotFound(err) {
		return nil, apperrors.NotFound("article", id)
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// GetByIDForUpdate reads the bare article row and, on postgres, holds its
// row lock until the surrounding transaction ends.
func (r *articleRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	db := database.Conn(ctx, r.db)
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var article models.Article
	err := db.Where("id = ?", id).First(&article).Error
	if database.IsRecordNotFound(err) {
		return nil, apperrors.NotFound("article", id)
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Article, error) {
	var articles []models.Article
	if len(ids) == 0 {
		return articles, nil
	}
	err := database.Conn(ctx, r.db).
		Preload("Author").
		Preload("CurrentVersion.CreatedBy").
		Preload("Categories.Category").
		Where("id IN ?", ids).
		Order("created_at desc").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&models.Article{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *articleRepository) GetList(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error) {
	var articles []models.Article
	var total int64

	query := database.Conn(ctx, r.db).Model(&models.Article{})

	if params.SearchTerm != "" {
		like := "%" + strings.ToLower(params.SearchTerm) + "%"
		query = query.Joins("LEFT JOIN article_versions cv ON cv.id = articles.current_version_id").
			Where("LOWER(articles.title) LIKE ? OR LOWER(cv.content) LIKE ?", like, like)
	}

	if params.Status != "" {
		query = query.Where("articles.status = ?", params.Status)
	}

	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	take := params.Take
	if take <= 0 {
		take = 20
	}

	err := withArticleIncludes(query.Select("articles.*")).
		Order("articles.created_at desc").
		Order("articles.id desc").
		Offset(params.Skip).
		Limit(take).
		Find(&articles).Error

	return articles, total, err
}

func (r *articleRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := database.Conn(ctx, r.db).Model(&models.Article{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("article", id)
	}
	return nil
}

// Delete removes only the article row; owned rows are removed by the caller
// in the same transaction.
func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&models.Article{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("article", id)
	}
	return nil
}
