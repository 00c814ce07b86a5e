package repositories_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"medcms/apperrors"
	"medcms/models"
	"medcms/repositories"
	"medcms/testhelpers"
)

type RepositoryTestSuite struct {
	suite.Suite
	ctx         context.Context
	db          *gorm.DB
	users       repositories.UserRepository
	articles    repositories.ArticleRepository
	versions    repositories.ArticleVersionRepository
	attachments repositories.AttachmentRepository
	audit       repositories.AuditRepository
	author      *models.User
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testhelpers.NewSQLiteDB(suite.T())
	suite.users = repositories.NewUserRepository(suite.db)
	suite.articles = repositories.NewArticleRepository(suite.db)
	suite.versions = repositories.NewArticleVersionRepository(suite.db)
	suite.attachments = repositories.NewAttachmentRepository(suite.db)
	suite.audit = repositories.NewAuditRepository(suite.db)

	suite.author = &models.User{Email: "author@example.com", Name: "Dr. Author", Password: "x", Role: models.RoleEditor}
	suite.Require().NoError(suite.users.Create(suite.ctx, suite.author))
}

func (suite *RepositoryTestSuite) article(title, content string) (*models.Article, *models.ArticleVersion) {
	article := &models.Article{Title: title, Status: models.StatusDraft, AuthorID: suite.author.ID}
	suite.Require().NoError(suite.articles.Create(suite.ctx, article))

	version := &models.ArticleVersion{ArticleID: article.ID, VersionNumber: 1, Content: content, CreatedByID: suite.author.ID}
	suite.Require().NoError(suite.versions.Create(suite.ctx, version))
	suite.Require().NoError(suite.articles.UpdateFields(suite.ctx, article.ID, map[string]interface{}{
		"current_version_id": version.ID,
	}))
	return article, version
}

func (suite *RepositoryTestSuite) TestVersionNumberIsUniquePerArticle() {
	article, _ := suite.article("Asthma", "v1")

	err := suite.versions.Create(suite.ctx, &models.ArticleVersion{
		ArticleID: article.ID, VersionNumber: 1, Content: "dup", CreatedByID: suite.author.ID,
	})
	suite.Require().ErrorIs(err, apperrors.ErrConflict)

	other, _ := suite.article("COPD", "v1")
	suite.Require().NotEqual(article.ID, other.ID)
}

func (suite *RepositoryTestSuite) TestGetLastIgnoresCurrentPointer() {
	article, first := suite.article("Asthma", "v1")
	second := &models.ArticleVersion{
		ArticleID: article.ID, VersionNumber: 2, Content: "v2",
		Metadata: datatypes.JSONMap{"icd10": "J45"}, CreatedByID: suite.author.ID,
	}
	suite.Require().NoError(suite.versions.Create(suite.ctx, second))

	last, err := suite.versions.GetLast(suite.ctx, article.ID)
	suite.Require().NoError(err)
	suite.Equal(second.ID, last.ID)
	suite.EqualValues("J45", last.Metadata["icd10"])

	loaded, err := suite.articles.GetByID(suite.ctx, article.ID)
	suite.Require().NoError(err)
	suite.Equal(first.ID, *loaded.CurrentVersionID)
	suite.Require().Len(loaded.Versions, 2)
	suite.Equal(2, loaded.Versions[0].VersionNumber)

	_, err = suite.versions.GetLast(suite.ctx, uuid.New())
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RepositoryTestSuite) TestGetForArticleScopesByArticle() {
	article, version := suite.article("Asthma", "v1")
	other, _ := suite.article("COPD", "v1")

	got, err := suite.versions.GetForArticle(suite.ctx, article.ID, version.ID)
	suite.Require().NoError(err)
	suite.Equal(version.ID, got.ID)

	_, err = suite.versions.GetForArticle(suite.ctx, other.ID, version.ID)
	suite.True(apperrors.IsNotFoundEntity(err, "article version"))
}

func (suite *RepositoryTestSuite) TestGetListSearchesTitleAndCurrentContent() {
	suite.article("Asthma in children", "inhaled corticosteroids")
	suite.article("Hypertension", "ACE inhibitors first line")
	suite.article("Diabetes", "metformin")

	articles, total, err := suite.articles.GetList(suite.ctx, models.ArticleListParams{SearchTerm: "ASTHMA", Take: 10})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Require().Len(articles, 1)
	suite.Equal("Asthma in children", articles[0].Title)

	articles, total, err = suite.articles.GetList(suite.ctx, models.ArticleListParams{SearchTerm: "inhibitors", Take: 10})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Require().Len(articles, 1)
	suite.Equal("Hypertension", articles[0].Title)
	suite.Require().NotNil(articles[0].CurrentVersion)

	articles, total, err = suite.articles.GetList(suite.ctx, models.ArticleListParams{Skip: 1, Take: 1})
	suite.Require().NoError(err)
	suite.EqualValues(3, total)
	suite.Require().Len(articles, 1)
	suite.Equal("Hypertension", articles[0].Title)
}

func (suite *RepositoryTestSuite) TestDeleteByArticleRemovesOwnedRows() {
	article, version := suite.article("Asthma", "v1")
	keep, keepVersion := suite.article("COPD", "v1")

	for _, v := range []*models.ArticleVersion{version, keepVersion} {
		suite.Require().NoError(suite.attachments.Create(suite.ctx, &models.Attachment{
			ArticleVersionID: v.ID, FileName: "a.pdf", FileType: "application/pdf", FileSize: 1,
			URL: "https://files.example.com/a.pdf", UploadedByID: suite.author.ID,
		}))
	}

	n, err := suite.attachments.DeleteByArticleID(suite.ctx, article.ID)
	suite.Require().NoError(err)
	suite.EqualValues(1, n)

	n, err = suite.versions.DeleteVersionsByArticleID(suite.ctx, article.ID)
	suite.Require().NoError(err)
	suite.EqualValues(1, n)

	suite.Require().NoError(suite.articles.Delete(suite.ctx, article.ID))
	suite.ErrorIs(suite.articles.Delete(suite.ctx, article.ID), apperrors.ErrNotFound)

	remaining, err := suite.attachments.ListByVersion(suite.ctx, keepVersion.ID)
	suite.Require().NoError(err)
	suite.Len(remaining, 1)

	exists, err := suite.articles.Exists(suite.ctx, keep.ID)
	suite.Require().NoError(err)
	suite.True(exists)
}

func (suite *RepositoryTestSuite) TestAuditListFiltersAndOrders() {
	other := &models.User{Email: "reviewer@example.com", Name: "Dr. Reviewer", Password: "x", Role: models.RoleReviewer}
	suite.Require().NoError(suite.users.Create(suite.ctx, other))

	entityID := uuid.New()
	for _, e := range []models.AuditEntry{
		{EntityType: models.EntityArticle, EntityID: entityID, Operation: models.OperationCreate, UserID: suite.author.ID},
		{EntityType: models.EntityArticle, EntityID: entityID, Operation: models.OperationUpdate, UserID: other.ID},
		{EntityType: models.EntityCategory, EntityID: uuid.New(), Operation: models.OperationCreate, UserID: suite.author.ID},
	} {
		entry := e
		suite.Require().NoError(suite.audit.Create(suite.ctx, &entry))
	}

	entries, err := suite.audit.GetByEntity(suite.ctx, models.EntityArticle, entityID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.Equal(models.OperationUpdate, entries[0].Operation)
	suite.Require().NotNil(entries[0].User)
	suite.Equal(other.ID, entries[0].User.ID)

	entries, err = suite.audit.List(suite.ctx, models.AuditFilter{UserID: &suite.author.ID}, models.Pagination{})
	suite.Require().NoError(err)
	suite.Len(entries, 2)

	entries, err = suite.audit.List(suite.ctx, models.AuditFilter{EntityType: models.EntityArticle}, models.Pagination{Skip: 1, Take: 1})
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal(models.OperationCreate, entries[0].Operation)

	n, err := suite.audit.DeleteAll(suite.ctx)
	suite.Require().NoError(err)
	suite.EqualValues(3, n)
}
