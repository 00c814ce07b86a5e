package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcms/apperrors"
	"medcms/handlers"
	"medcms/helper"
	"medcms/models"
	"medcms/retry"
	"medcms/services"
)

// countingArticleService answers UpdateArticle from a queue of errors and
// counts calls.
type countingArticleService struct {
	services.ArticleService
	errs  []error
	calls int
}

func (s *countingArticleService) UpdateArticle(ctx context.Context, id uuid.UUID, req models.UpdateArticleRequest, userID uuid.UUID) (*models.Article, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &models.Article{ID: id, AuthorID: userID}, nil
}

func updateRouter(svc services.ArticleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := retry.DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond

	h := handlers.NewArticleHandler(svc, cfg, helper.NewHTTPHelper())
	r := gin.New()
	r.PUT("/articles/:id", func(c *gin.Context) {
		c.Set("user_id", uuid.New())
		c.Next()
	}, h.UpdateArticle)
	return r
}

func putArticle(t *testing.T, r *gin.Engine, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/articles/"+uuid.NewString(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateArticle_PermanentConflictIsNotRetried(t *testing.T) {
	category := uuid.New()
	svc := &countingArticleService{errs: []error{
		apperrors.Conflict("article category", "category "+category.String()+" listed more than once"),
	}}

	w := putArticle(t, updateRouter(svc), map[string]interface{}{
		"category_ids": []uuid.UUID{category, category},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, svc.calls)
}

func TestUpdateArticle_VersionConflictIsRetried(t *testing.T) {
	svc := &countingArticleService{errs: []error{
		apperrors.TransientConflict("article version", "version 3 already exists"),
		apperrors.TransientConflict("article version", "version 4 already exists"),
	}}

	w := putArticle(t, updateRouter(svc), map[string]interface{}{"content": "v5"})

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3, svc.calls)
}

func TestUpdateArticle_NotFoundIsNotRetried(t *testing.T) {
	svc := &countingArticleService{errs: []error{apperrors.NotFound("article", uuid.New())}}

	w := putArticle(t, updateRouter(svc), map[string]interface{}{"title": "x"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, svc.calls)
}
