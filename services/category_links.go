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

// CategoryLinkSet maintains the article to category association.
type CategoryLinkSet interface {
	Link(ctx context.Context, articleID uuid.UUID, categoryIDs []uuid.UUID) error
	// ReplaceForArticle makes categoryIDs the article's exact category set.
	// An empty slice clears it.
	ReplaceForArticle(ctx context.Context, articleID uuid.UUID, categoryIDs []uuid.UUID) error
	ListForArticle(ctx context.Context, articleID uuid.UUID) ([]models.Category, error)
	ArticleIDsForCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error)
	ClearArticle(ctx context.Context, articleID uuid.UUID) (int64, error)
	ClearCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type categoryLinkSet struct {
	tx           Transactor
	linkRepo     repositories.ArticleCategoryRepository
	categoryRepo repositories.CategoryRepository
	logger       *zap.Logger
}

func NewCategoryLinkSet(tx Transactor, linkRepo repositories.ArticleCategoryRepository, categoryRepo repositories.CategoryRepository, logger *zap.Logger) CategoryLinkSet {
	return &categoryLinkSet{
		tx:           tx,
		linkRepo:     linkRepo,
		categoryRepo: categoryRepo,
		logger:       logger.Named("category-links"),
	}
}

func (l *categoryLinkSet) Link(ctx context.Context, articleID uuid.UUID, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	return l.tx.Do(ctx, func(ctx context.Context) error {
		if err := l.checkCategories(ctx, categoryIDs); err != nil {
			return err
		}
		for _, categoryID := range categoryIDs {
			link := &models.ArticleCategory{ArticleID: articleID, CategoryID: categoryID}
			if err := l.linkRepo.Create(ctx, link); err != nil {
				return err
			}
		}
		return nil
	})
}

func (l *categoryLinkSet) ReplaceForArticle(ctx context.Context, articleID uuid.UUID, categoryIDs []uuid.UUID) error {
	return l.tx.Do(ctx, func(ctx context.Context) error {
		removed, err := l.linkRepo.DeleteByArticle(ctx, articleID)
		if err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		if err := l.Link(ctx, articleID, categoryIDs); err != nil {
			return err
		}

		l.logger.Debug("categories replaced",
			zap.String("article_id", articleID.String()),
			zap.Int64("removed", removed),
			zap.Int("added", len(categoryIDs)))
		return nil
	})
}

// checkCategories rejects repeated ids and ids with no category row.
func (l *categoryLinkSet) checkCategories(ctx context.Context, categoryIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		if _, dup := seen[id]; dup {
			return apperrors.Conflict("article category", "category "+id.String()+" listed more than once")
		}
		seen[id] = struct{}{}
	}

	count, err := l.categoryRepo.CountByIDs(ctx, categoryIDs)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count == int64(len(categoryIDs)) {
		return nil
	}

	for _, id := range categoryIDs {
		if _, err := l.categoryRepo.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return apperrors.NotFound("category", nil)
}

func (l *categoryLinkSet) ListForArticle(ctx context.Context, articleID uuid.UUID) ([]models.Category, error) {
	links, err := l.linkRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(links))
	for _, link := range links {
		if link.Category != nil {
			categories = append(categories, *link.Category)
		}
	}
	return categories, nil
}

func (l *categoryLinkSet) ArticleIDsForCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	return l.linkRepo.ListArticleIDsByCategory(ctx, categoryID)
}

func (l *categoryLinkSet) ClearArticle(ctx context.Context, articleID uuid.UUID) (int64, error) {
	return l.linkRepo.DeleteByArticle(ctx, articleID)
}

func (l *categoryLinkSet) ClearCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	return l.linkRepo.DeleteByCategory(ctx, categoryID)
}
