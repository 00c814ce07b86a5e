package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcms/apperrors"
	"medcms/models"
	"medcms/testhelpers"
)

func TestPostgres_ConcurrentUpdatesAreSerialized(t *testing.T) {
	testDB := testhelpers.GetPostgresDB(t)
	testDB.Truncate(t)
	s := newStack(t, testDB.DB)
	ctx := context.Background()

	author := s.user(t, models.RoleEditor)
	article, err := s.articles.CreateArticle(ctx, models.CreateArticleRequest{Title: "Sepsis", Content: "v1"}, author.ID)
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.articles.UpdateArticle(ctx, article.ID, models.UpdateArticleRequest{
				Content: ptr(fmt.Sprintf("writer %d", i)),
			}, author.ID)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assertGapless(t, s, article.ID, writers+1)

	entries, err := s.audit.FindByEntity(ctx, models.EntityArticle, article.ID)
	require.NoError(t, err)
	assert.Len(t, entries, writers+1)
}

func TestPostgres_DeleteCascadeAndRollback(t *testing.T) {
	testDB := testhelpers.GetPostgresDB(t)
	testDB.Truncate(t)
	s := newStack(t, testDB.DB)
	ctx := context.Background()

	author := s.user(t, models.RoleEditor)
	category := s.category(t, "Infectious disease", author.ID)
	article, err := s.articles.CreateArticle(ctx, models.CreateArticleRequest{
		Title: "Sepsis", Content: "v1", CategoryIDs: []uuid.UUID{category.ID},
	}, author.ID)
	require.NoError(t, err)

	_, err = s.articles.AddAttachment(ctx, *article.CurrentVersionID, models.AddAttachmentRequest{
		FileName: "protocol.pdf", FileType: "application/pdf", FileSize: 42, URL: "https://files.example.com/protocol.pdf",
	}, author.ID)
	require.NoError(t, err)

	s.auditRepo.fail.Store(true)
	_, err = s.articles.DeleteArticle(ctx, article.ID, author.ID, nil)
	require.ErrorIs(t, err, errAuditDown)
	s.auditRepo.fail.Store(false)

	assert.EqualValues(t, 1, s.count(t, &models.Attachment{}, ""))

	_, err = s.articles.DeleteArticle(ctx, article.ID, author.ID, ptr("retracted"))
	require.NoError(t, err)

	assert.Zero(t, s.count(t, &models.ArticleVersion{}, ""))
	assert.Zero(t, s.count(t, &models.Attachment{}, ""))
	assert.Zero(t, s.count(t, &models.ArticleCategory{}, ""))

	_, err = s.articles.GetArticle(ctx, article.ID)
	assert.True(t, apperrors.IsNotFoundEntity(err, "article"))
}
