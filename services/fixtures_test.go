package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"medcms/database"
	"medcms/models"
	"medcms/repositories"
	"medcms/services"
	"medcms/testhelpers"
)

var (
	errAuditDown  = errors.New("audit store unavailable")
	errDeleteDown = errors.New("article delete failed")
)

// flakyAuditRepo fails every Create while fail is set.
type flakyAuditRepo struct {
	repositories.AuditRepository
	fail atomic.Bool
}

func (r *flakyAuditRepo) Create(ctx context.Context, entry *models.AuditEntry) error {
	if r.fail.Load() {
		return errAuditDown
	}
	return r.AuditRepository.Create(ctx, entry)
}

// flakyArticleRepo fails every Delete while failDelete is set.
type flakyArticleRepo struct {
	repositories.ArticleRepository
	failDelete atomic.Bool
}

func (r *flakyArticleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.failDelete.Load() {
		return errDeleteDown
	}
	return r.ArticleRepository.Delete(ctx, id)
}

type stack struct {
	db          *gorm.DB
	tx          *database.TxManager
	users       repositories.UserRepository
	auditRepo   *flakyAuditRepo
	articleRepo *flakyArticleRepo
	audit       services.AuditService
	attach      services.AttachmentSet
	versions    services.VersionChain
	links       services.CategoryLinkSet
	articles    services.ArticleService
	categories  services.CategoryService
	auth        services.AuthService
}

func newStack(t *testing.T, db *gorm.DB) *stack {
	t.Helper()
	logger := zaptest.NewLogger(t)

	s := &stack{db: db, tx: database.NewTxManager(db)}
	s.users = repositories.NewUserRepository(db)
	s.articleRepo = &flakyArticleRepo{ArticleRepository: repositories.NewArticleRepository(db)}
	versionRepo := repositories.NewArticleVersionRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	s.auditRepo = &flakyAuditRepo{AuditRepository: repositories.NewAuditRepository(db)}

	s.audit = services.NewAuditService(s.auditRepo, s.users, logger)
	s.attach = services.NewAttachmentSet(s.tx, repositories.NewAttachmentRepository(db), versionRepo, s.users, s.audit, logger)
	s.versions = services.NewVersionChain(s.tx, versionRepo, s.attach, logger)
	s.links = services.NewCategoryLinkSet(s.tx, repositories.NewArticleCategoryRepository(db), categoryRepo, logger)
	s.articles = services.NewArticleService(s.tx, s.articleRepo, s.users, s.versions, s.links, s.attach, s.audit, logger)
	s.categories = services.NewCategoryService(s.tx, categoryRepo, s.articleRepo, s.links, s.audit, logger)
	s.auth = services.NewAuthService(s.users, "test-secret", time.Hour, logger)
	return s
}

func newSQLiteStack(t *testing.T) *stack {
	return newStack(t, testhelpers.NewSQLiteDB(t))
}

func (s *stack) user(t *testing.T, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{
		Email:    uuid.NewString() + "@example.com",
		Name:     "Dr. " + string(role),
		Password: "x",
		Role:     role,
	}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func (s *stack) category(t *testing.T, name string, by uuid.UUID) *models.Category {
	t.Helper()
	c, err := s.categories.CreateCategory(context.Background(), models.CreateCategoryRequest{Name: name}, by)
	require.NoError(t, err)
	return c
}

func (s *stack) count(t *testing.T, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := s.db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func ptr[T any](v T) *T {
	return &v
}
