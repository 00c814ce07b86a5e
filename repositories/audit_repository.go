package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medcms/database"
	"medcms/models"
)

// AuditRepository is append-only: there is no update, and DeleteAll exists
// only to reset test environments.
type AuditRepository interface {
	// Create inserts a new audit entry.
	Create(ctx context.Context, entry *models.AuditEntry) error

	// GetByEntity returns all entries for one entity, newest first.
	GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditEntry, error)

	// List returns entries matching filter, newest first. Filter fields are ANDed.
	List(ctx context.Context, filter models.AuditFilter, page models.Pagination) ([]models.AuditEntry, error)

	DeleteAll(ctx context.Context) (int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

var _ AuditRepository = (*auditRepository)(nil)

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(entry).Error
}

func (r *auditRepository) GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := database.Conn(ctx, r.db).
		Preload("User").
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at desc").
		Order("id desc").
		Find(&entries).Error
	return entries, err
}

func (r *auditRepository) List(ctx context.Context, filter models.AuditFilter, page models.Pagination) ([]models.AuditEntry, error) {
	query := database.Conn(ctx, r.db).Preload("User")

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if page.Skip > 0 {
		query = query.Offset(page.Skip)
	}
	if page.Take > 0 {
		query = query.Limit(page.Take)
	}

	var entries []models.AuditEntry
	err := query.Order("created_at desc").Order("id desc").Find(&entries).Error
	return entries, err
}

func (r *auditRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := database.Conn(ctx, r.db).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.AuditEntry{})
	return res.RowsAffected, res.Error
}
