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

type CategoryService interface {
	CreateCategory(ctx context.Context, req models.CreateCategoryRequest, userID uuid.UUID) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req models.UpdateCategoryRequest, userID uuid.UUID) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Category, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetArticlesByCategory(ctx context.Context, id uuid.UUID) ([]models.Article, error)
}

type categoryService struct {
	tx           Transactor
	categoryRepo repositories.CategoryRepository
	articleRepo  repositories.ArticleRepository
	links        CategoryLinkSet
	audit        AuditService
	logger       *zap.Logger
}

func NewCategoryService(
	tx Transactor,
	categoryRepo repositories.CategoryRepository,
	articleRepo repositories.ArticleRepository,
	links CategoryLinkSet,
	audit AuditService,
	logger *zap.Logger,
) CategoryService {
	return &categoryService{
		tx:           tx,
		categoryRepo: categoryRepo,
		articleRepo:  articleRepo,
		links:        links,
		audit:        audit,
		logger:       logger.Named("category-service"),
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, req models.CreateCategoryRequest, userID uuid.UUID) (*models.Category, error) {
	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.categoryRepo.GetByName(ctx, req.Name); err == nil {
			return apperrors.Conflict("category", fmt.Sprintf("name %q already exists", req.Name))
		} else if !apperrors.IsNotFoundEntity(err, "category") {
			return err
		}

		if err := s.categoryRepo.Create(ctx, category); err != nil {
			return err
		}

		_, err := s.audit.Record(ctx, AuditRecord{
			EntityType: models.EntityCategory,
			EntityID:   category.ID,
			Operation:  models.OperationCreate,
			Changes: map[string]interface{}{
				"name":        category.Name,
				"description": category.Description,
			},
			UserID: userID,
		})
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to create category", err, zap.String("name", req.Name))
		return nil, err
	}

	s.logger.Info("category created", zap.String("category_id", category.ID.String()))
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req models.UpdateCategoryRequest, userID uuid.UUID) (*models.Category, error) {
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
			return err
		}

		fields := map[string]interface{}{}
		changes := map[string]interface{}{}

		if req.Name != nil {
			other, err := s.categoryRepo.GetByName(ctx, *req.Name)
			if err == nil && other.ID != id {
				return apperrors.Conflict("category", fmt.Sprintf("name %q already exists", *req.Name))
			}
			if err != nil && !apperrors.IsNotFoundEntity(err, "category") {
				return err
			}
			fields["name"] = *req.Name
			changes["name"] = *req.Name
		}
		if req.Description != nil {
			fields["description"] = *req.Description
			changes["description"] = *req.Description
		}

		if len(fields) > 0 {
			if err := s.categoryRepo.UpdateFields(ctx, id, fields); err != nil {
				return err
			}
		}

		_, err := s.audit.Record(ctx, AuditRecord{
			EntityType: models.EntityCategory,
			EntityID:   id,
			Operation:  models.OperationUpdate,
			Changes:    changes,
			UserID:     userID,
		})
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to update category", err, zap.String("category_id", id.String()))
		return nil, err
	}

	return s.categoryRepo.GetByID(ctx, id)
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Category, error) {
	var snapshot *models.Category

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		category, err := s.categoryRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		snapshot = category

		if _, err := s.audit.Record(ctx, AuditRecord{
			EntityType: models.EntityCategory,
			EntityID:   id,
			Operation:  models.OperationDelete,
			Changes: map[string]interface{}{
				"name":        category.Name,
				"description": category.Description,
			},
			UserID: userID,
		}); err != nil {
			return err
		}

		if _, err := s.links.ClearCategory(ctx, id); err != nil {
			return fmt.Errorf("delete article links: %w", err)
		}
		return s.categoryRepo.Delete(ctx, id)
	})
	if err != nil {
		logFailure(s.logger, "failed to delete category", err, zap.String("category_id", id.String()))
		return nil, err
	}

	s.logger.Info("category deleted", zap.String("category_id", id.String()))
	return snapshot, nil
}

func (s *categoryService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *categoryService) GetArticlesByCategory(ctx context.Context, id uuid.UUID) ([]models.Article, error) {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	articleIDs, err := s.links.ArticleIDsForCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.articleRepo.GetByIDs(ctx, articleIDs)
}
