package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"medcms/apperrors"
	"medcms/database"
	"medcms/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	err := database.Conn(ctx, r.db).Create(category).Error
	if database.IsUniqueViolation(err) {
		return apperrors.Conflict("category", fmt.Sprintf("name %q already exists", category.Name))
	}
	return err
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&category).Error
	if database.IsRecordNotFound(err) {
		return nil, apperrors.NotFound("category", id)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := database.Conn(ctx, r.db).Where("name = ?", name).First(&category).Error
	if database.IsRecordNotFound(err) {
		return nil, &apperrors.NotFoundError{Entity: "category", ID: name}
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := database.Conn(ctx, r.db).Order("name asc").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := database.Conn(ctx, r.db).Model(&models.Category{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

func (r *categoryRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := database.Conn(ctx, r.db).Model(&models.Category{}).Where("id = ?", id).Updates(fields)
	if database.IsUniqueViolation(res.Error) {
		return apperrors.Conflict("category", "name already exists")
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("category", id)
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("category", id)
	}
	return nil
}
