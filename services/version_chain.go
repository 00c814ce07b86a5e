package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"medcms/models"
	"medcms/repositories"
)

// VersionChain owns the numbered history of an article. Numbers start at 1,
// grow by one with every appended version and are never reused, even after
// the current pointer is moved back to an older version.
type VersionChain interface {
	Start(ctx context.Context, articleID uuid.UUID, content string, metadata datatypes.JSONMap, creatorID uuid.UUID) (*models.ArticleVersion, error)
	// Append creates version last+1. A nil content or metadata falls back to
	// the highest-numbered version, whose attachments are copied onto the new one.
	Append(ctx context.Context, articleID uuid.UUID, content *string, metadata datatypes.JSONMap, creatorID uuid.UUID) (*models.ArticleVersion, error)
	Get(ctx context.Context, articleID, versionID uuid.UUID) (*models.ArticleVersion, error)
	List(ctx context.Context, articleID uuid.UUID) ([]models.ArticleVersion, error)
	// Purge deletes all versions of an article together with their attachments.
	Purge(ctx context.Context, articleID uuid.UUID) (int64, error)
}

type versionChain struct {
	tx          Transactor
	versionRepo repositories.ArticleVersionRepository
	attachments AttachmentSet
	logger      *zap.Logger
}

func NewVersionChain(tx Transactor, versionRepo repositories.ArticleVersionRepository, attachments AttachmentSet, logger *zap.Logger) VersionChain {
	return &versionChain{
		tx:          tx,
		versionRepo: versionRepo,
		attachments: attachments,
		logger:      logger.Named("versions"),
	}
}

func (c *versionChain) Start(ctx context.Context, articleID uuid.UUID, content string, metadata datatypes.JSONMap, creatorID uuid.UUID) (*models.ArticleVersion, error) {
	version := &models.ArticleVersion{
		ArticleID:     articleID,
		VersionNumber: 1,
		Content:       content,
		Metadata:      metadata,
		CreatedByID:   creatorID,
	}
	if err := c.versionRepo.Create(ctx, version); err != nil {
		return nil, fmt.Errorf("create first version: %w", err)
	}
	return version, nil
}

func (c *versionChain) Append(ctx context.Context, articleID uuid.UUID, content *string, metadata datatypes.JSONMap, creatorID uuid.UUID) (*models.ArticleVersion, error) {
	var version *models.ArticleVersion

	err := c.tx.Do(ctx, func(ctx context.Context) error {
		last, err := c.versionRepo.GetLast(ctx, articleID)
		if err != nil {
			return err
		}

		version = &models.ArticleVersion{
			ArticleID:     articleID,
			VersionNumber: last.VersionNumber + 1,
			Content:       last.Content,
			Metadata:      last.Metadata,
			CreatedByID:   creatorID,
		}
		if content != nil {
			version.Content = *content
		}
		if metadata != nil {
			version.Metadata = metadata
		}

		if err := c.versionRepo.Create(ctx, version); err != nil {
			return err
		}

		copied, err := c.attachments.CopyForward(ctx, last.ID, version.ID)
		if err != nil {
			return err
		}
		version.Attachments = copied
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("version appended",
		zap.String("article_id", articleID.String()),
		zap.Int("version_number", version.VersionNumber))
	return version, nil
}

func (c *versionChain) Get(ctx context.Context, articleID, versionID uuid.UUID) (*models.ArticleVersion, error) {
	return c.versionRepo.GetForArticle(ctx, articleID, versionID)
}

func (c *versionChain) List(ctx context.Context, articleID uuid.UUID) ([]models.ArticleVersion, error) {
	return c.versionRepo.ListByArticle(ctx, articleID)
}

func (c *versionChain) Purge(ctx context.Context, articleID uuid.UUID) (int64, error) {
	var deleted int64

	err := c.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := c.attachments.PurgeArticle(ctx, articleID); err != nil {
			return fmt.Errorf("delete attachments: %w", err)
		}
		n, err := c.versionRepo.DeleteVersionsByArticleID(ctx, articleID)
		if err != nil {
			return fmt.Errorf("delete versions: %w", err)
		}
		deleted = n
		return nil
	})
	return deleted, err
}
