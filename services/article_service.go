package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medcms/apperrors"
	"medcms/models"
	"medcms/repositories"
)

// ArticleService is the article engine. Every mutating call is one unit of
// work: the data change and its audit entry are committed together or not
// at all.
type ArticleService interface {
	CreateArticle(ctx context.Context, req models.CreateArticleRequest, authorID uuid.UUID) (*models.Article, error)
	UpdateArticle(ctx context.Context, id uuid.UUID, req models.UpdateArticleRequest, userID uuid.UUID) (*models.Article, error)
	// DeleteArticle returns the article as it was just before deletion.
	DeleteArticle(ctx context.Context, id uuid.UUID, userID uuid.UUID, reason *string) (*models.Article, error)
	RestoreVersion(ctx context.Context, articleID, versionID uuid.UUID, userID uuid.UUID, reason *string) (*models.Article, error)
	AddAttachment(ctx context.Context, versionID uuid.UUID, req models.AddAttachmentRequest, uploaderID uuid.UUID) (*models.Attachment, error)
	RemoveAttachment(ctx context.Context, attachmentID uuid.UUID, userID uuid.UUID) (bool, error)
	GetArticleVersions(ctx context.Context, articleID uuid.UUID) ([]models.ArticleVersion, error)
	GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error)
	GetArticles(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error)
	GetAttachments(ctx context.Context, versionID uuid.UUID) ([]models.Attachment, error)
	// GetArticleCategories never fails; lookup errors yield an empty list.
	GetArticleCategories(ctx context.Context, articleID uuid.UUID) []models.Category
}

type articleService struct {
	tx          Transactor
	articleRepo repositories.ArticleRepository
	userRepo    repositories.UserRepository
	versions    VersionChain
	categories  CategoryLinkSet
	attachments AttachmentSet
	audit       AuditService
	logger      *zap.Logger
	now         func() time.Time
}

func NewArticleService(
	tx Transactor,
	articleRepo repositories.ArticleRepository,
	userRepo repositories.UserRepository,
	versions VersionChain,
	categories CategoryLinkSet,
	attachments AttachmentSet,
	audit AuditService,
	logger *zap.Logger,
) ArticleService {
	return &articleService{
		tx:          tx,
		articleRepo: articleRepo,
		userRepo:    userRepo,
		versions:    versions,
		categories:  categories,
		attachments: attachments,
		audit:       audit,
		logger:      logger.Named("article-service"),
		now:         time.Now,
	}
}

func (s *articleService) CreateArticle(ctx context.Context, req models.CreateArticleRequest, authorID uuid.UUID) (*models.Article, error) {
	status := models.StatusDraft
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, invalidStatus(*req.Status)
		}
		status = *req.Status
	}

	article := &models.Article{
		Title:    req.Title,
		Status:   status,
		AuthorID: authorID,
	}
	if status == models.StatusPublished {
		publishedAt := s.now()
		article.PublishedAt = &publishedAt
	}

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if err := requireUser(ctx, s.userRepo, authorID); err != nil {
			return err
		}
		if err := s.articleRepo.Create(ctx, article); err != nil {
			return fmt.Errorf("create article: %w", err)
		}

		version, err := s.versions.Start(ctx, article.ID, req.Content, req.Metadata, authorID)
		if err != nil {
			return err
		}
		if err := s.articleRepo.UpdateFields(ctx, article.ID, map[string]interface{}{
			"current_version_id": version.ID,
		}); err != nil {
			return fmt.Errorf("set current version: %w", err)
		}

		if err := s.categories.Link(ctx, article.ID, req.CategoryIDs); err != nil {
			return err
		}

		categoryIDs := req.CategoryIDs
		if categoryIDs == nil {
			categoryIDs = []uuid.UUID{}
		}
		_, err = s.audit.Record(ctx, AuditRecord{
			EntityType: models.EntityArticle,
			EntityID:   article.ID,
			Operation:  models.OperationCreate,
			Changes: map[string]interface{}{
				"title":       req.Title,
				"content":     req.Content,
				"metadata":    req.Metadata,
				"categoryIds": categoryIDs,
				"status":      status,
			},
			Reason: reasonOr(req.Reason, "initial creation"),
			UserID: authorID,
		})
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to create article", err, zap.String("author_id", authorID.String()))
		return nil, err
	}

	s.logger.Info("article created",
		zap.String("article_id", article.ID.String()),
		zap.String("author_id", authorID.String()))
	return s.articleRepo.GetByID(ctx, article.ID)
}

func (s *articleService) UpdateArticle(ctx context.Context, id uuid.UUID, req models.UpdateArticleRequest, userID uuid.UUID) (*models.Article, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, invalidStatus(*req.Status)
	}

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		article, err := s.articleRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := requireUser(ctx, s.userRepo, userID); err != nil {
			return err
		}

		now := s.now()
		fields := map[string]interface{}{"updated_at": now}
		changes := map[string]interface{}{}

		if req.Content != nil || req.Metadata != nil {
			version, err := s.versions.Append(ctx, article.ID, req.Content, req.Metadata, userID)
			if err != nil {
				return err
			}
			fields["current_version_id"] = version.ID
			changes["versionNumber"] = version.VersionNumber
			if req.Content != nil {
				changes["content"] = *req.Content
			}
			if req.Metadata != nil {
				changes["metadata"] = req.Metadata
			}
		}

		if req.Title != nil {
			fields["title"] = *req.Title
			changes["title"] = *req.Title
		}

		if req.Status != nil {
			fields["status"] = *req.Status
			changes["status"] = *req.Status
			if *req.Status == models.StatusPublished && article.PublishedAt == nil {
				fields["published_at"] = now
				changes["publishedAt"] = now
			}
		}

		if err := s.articleRepo.UpdateFields(ctx, article.ID, fields); err != nil {
			return fmt.Errorf("update article: %w", err)
		}

		if req.CategoryIDs != nil {
			if err := s.categories.ReplaceForArticle(ctx, article.ID, *req.CategoryIDs); err != nil {
				return err
			}
			changes["categoryIds"] = *req.CategoryIDs
		}

		_, err = s.audit.Record(ctx, AuditRecord{
			EntityType: models.EntityArticle,
			EntityID:   article.ID,
			Operation:  models.OperationUpdate,
			Changes:    changes,
			Reason:     reasonOr(req.Reason, "Updated"),
			UserID:     userID,
		})
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to update article", err, zap.String("article_id", id.String()))
		return nil, err
	}

	s.logger.Info("article updated", zap.String("article_id", id.String()))
	return s.articleRepo.GetByID(ctx, id)
}

func (s *articleService) DeleteArticle(ctx context.Context, id uuid.UUID, userID uuid.UUID, reason *string) (*models.Article, error) {
	var snapshot *models.Article

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.articleRepo.GetByIDForUpdate(ctx, id); err != nil {
			return err
		}

		article, err := s.articleRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		snapshot = article

		if _, err := s.audit.Record(ctx, AuditRecord{
			EntityType: models.EntityArticle,
			EntityID:   article.ID,
			Operation:  models.OperationDelete,
			Changes: map[string]interface{}{
				"title":  article.Title,
				"status": article.Status,
			},
			Reason: reasonOr(reason, "deletion"),
			UserID: userID,
		}); err != nil {
			return err
		}

		if _, err := s.categories.ClearArticle(ctx, article.ID); err != nil {
			return fmt.Errorf("delete category links: %w", err)
		}
		if _, err := s.versions.Purge(ctx, article.ID); err != nil {
			return err
		}
		return s.articleRepo.Delete(ctx, article.ID)
	})
	if err != nil {
		logFailure(s.logger, "failed to delete article", err, zap.String("article_id", id.String()))
		return nil, err
	}

	s.logger.Info("article deleted",
		zap.String("article_id", id.String()),
		zap.Int("versions", len(snapshot.Versions)))
	return snapshot, nil
}

func (s *articleService) RestoreVersion(ctx context.Context, articleID, versionID uuid.UUID, userID uuid.UUID, reason *string) (*models.Article, error) {
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.articleRepo.GetByIDForUpdate(ctx, articleID); err != nil {
			return err
		}
		version, err := s.versions.Get(ctx, articleID, versionID)
		if err != nil {
			return err
		}

		if err := s.articleRepo.UpdateFields(ctx, articleID, map[string]interface{}{
			"current_version_id": version.ID,
			"updated_at":         s.now(),
		}); err != nil {
			return fmt.Errorf("move current version: %w", err)
		}

		_, err = s.audit.Record(ctx, AuditRecord{
			EntityType: models.EntityArticle,
			EntityID:   articleID,
			Operation:  models.OperationUpdate,
			Changes: map[string]interface{}{
				"restoredVersionId":     version.ID,
				"restoredVersionNumber": version.VersionNumber,
			},
			Reason: reasonOr(reason, fmt.Sprintf("restored to version %d", version.VersionNumber)),
			UserID: userID,
		})
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to restore version", err,
			zap.String("article_id", articleID.String()),
			zap.String("version_id", versionID.String()))
		return nil, err
	}

	s.logger.Info("article version restored",
		zap.String("article_id", articleID.String()),
		zap.String("version_id", versionID.String()))
	return s.articleRepo.GetByID(ctx, articleID)
}

func (s *articleService) AddAttachment(ctx context.Context, versionID uuid.UUID, req models.AddAttachmentRequest, uploaderID uuid.UUID) (*models.Attachment, error) {
	return s.attachments.Add(ctx, versionID, req, uploaderID)
}

func (s *articleService) RemoveAttachment(ctx context.Context, attachmentID uuid.UUID, userID uuid.UUID) (bool, error) {
	if err := s.attachments.Remove(ctx, attachmentID, userID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *articleService) GetArticleVersions(ctx context.Context, articleID uuid.UUID) ([]models.ArticleVersion, error) {
	exists, err := s.articleRepo.Exists(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("article", articleID)
	}
	return s.versions.List(ctx, articleID)
}

func (s *articleService) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	return s.articleRepo.GetByID(ctx, id)
}

func (s *articleService) GetArticles(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, 0, invalidStatus(params.Status)
	}
	return s.articleRepo.GetList(ctx, params)
}

func (s *articleService) GetAttachments(ctx context.Context, versionID uuid.UUID) ([]models.Attachment, error) {
	return s.attachments.List(ctx, versionID)
}

func (s *articleService) GetArticleCategories(ctx context.Context, articleID uuid.UUID) []models.Category {
	categories, err := s.categories.ListForArticle(ctx, articleID)
	if err != nil {
		s.logger.Warn("failed to load article categories",
			zap.String("article_id", articleID.String()),
			zap.Error(err))
		return []models.Category{}
	}
	return categories
}

func invalidStatus(status models.ArticleStatus) error {
	return fmt.Errorf("%w: unknown article status %q", apperrors.ErrInvalidInput, status)
}
