package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcms/apperrors"
	"medcms/models"
	"medcms/services"
)

func TestAuditService_Record(t *testing.T) {
	s := newSQLiteStack(t)
	ctx := context.Background()
	user := s.user(t, models.RoleEditor)
	entityID := uuid.New()

	entry, err := s.audit.Record(ctx, services.AuditRecord{
		EntityType: models.EntityArticle,
		EntityID:   entityID,
		Operation:  models.OperationUpdate,
		Changes:    map[string]interface{}{"title": "new"},
		Reason:     ptr("typo"),
		UserID:     user.ID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	_, err = s.audit.Record(ctx, services.AuditRecord{
		EntityType: models.EntityArticle,
		EntityID:   entityID,
		Operation:  models.OperationUpdate,
		UserID:     uuid.New(),
	})
	assert.True(t, apperrors.IsNotFoundEntity(err, "user"))

	_, err = s.audit.Record(ctx, services.AuditRecord{
		EntityType: models.EntityArticle,
		EntityID:   entityID,
		Operation:  models.AuditOperation("PATCH"),
		UserID:     user.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	entries, err := s.audit.FindByEntity(ctx, models.EntityArticle, entityID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Changes["title"])
	assert.Equal(t, "typo", *entries[0].Reason)
	require.NotNil(t, entries[0].User)
	assert.Equal(t, user.Email, entries[0].User.Email)
}

func TestAuditService_FindAll(t *testing.T) {
	s := newSQLiteStack(t)
	ctx := context.Background()
	alice := s.user(t, models.RoleEditor)
	bob := s.user(t, models.RoleAdmin)

	record := func(entityType string, user uuid.UUID) {
		_, err := s.audit.Record(ctx, services.AuditRecord{
			EntityType: entityType,
			EntityID:   uuid.New(),
			Operation:  models.OperationCreate,
			UserID:     user,
		})
		require.NoError(t, err)
	}
	record(models.EntityArticle, alice.ID)
	record(models.EntityCategory, alice.ID)
	record(models.EntityArticle, bob.ID)
	record(models.EntityArticle, alice.ID)

	all, err := s.audit.FindAll(ctx, models.AuditFilter{}, models.Pagination{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "entries must be newest first")
	}

	articles, err := s.audit.FindAll(ctx, models.AuditFilter{EntityType: models.EntityArticle}, models.Pagination{})
	require.NoError(t, err)
	assert.Len(t, articles, 3)

	aliceArticles, err := s.audit.FindAll(ctx, models.AuditFilter{EntityType: models.EntityArticle, UserID: &alice.ID}, models.Pagination{})
	require.NoError(t, err)
	assert.Len(t, aliceArticles, 2)

	page, err := s.audit.FindAll(ctx, models.AuditFilter{}, models.Pagination{Skip: 1, Take: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[1].ID, page[0].ID)
	assert.Equal(t, all[2].ID, page[1].ID)

	deleted, err := s.audit.Reset(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, deleted)

	all, err = s.audit.FindAll(ctx, models.AuditFilter{}, models.Pagination{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAuditService_RecordJoinsCallerTransaction(t *testing.T) {
	s := newSQLiteStack(t)
	ctx := context.Background()
	user := s.user(t, models.RoleEditor)
	entityID := uuid.New()

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.audit.Record(ctx, services.AuditRecord{
			EntityType: models.EntityArticle,
			EntityID:   entityID,
			Operation:  models.OperationDelete,
			UserID:     user.ID,
		}); err != nil {
			return err
		}
		return errAuditDown
	})
	require.ErrorIs(t, err, errAuditDown)

	entries, err := s.audit.FindByEntity(ctx, models.EntityArticle, entityID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
