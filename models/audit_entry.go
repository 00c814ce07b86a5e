package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditOperation string

const (
	OperationCreate AuditOperation = "CREATE"
	OperationUpdate AuditOperation = "UPDATE"
	OperationDelete AuditOperation = "DELETE"
)

const (
	EntityArticle    = "Article"
	EntityAttachment = "Attachment"
	EntityCategory   = "Category"
)

// AuditEntry is append-only. The shape of Changes depends on the operation
// that produced it and is not validated.
type AuditEntry struct {
	ID         uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	EntityType string            `json:"entity_type" gorm:"size:50;not null;index:idx_audit_entries_entity"`
	EntityID   uuid.UUID         `json:"entity_id" gorm:"type:uuid;not null;index:idx_audit_entries_entity"`
	Operation  AuditOperation    `json:"operation" gorm:"type:varchar(10);not null"`
	Changes    datatypes.JSONMap `json:"changes"`
	Reason     *string           `json:"reason"`
	UserID     uuid.UUID         `json:"user_id" gorm:"type:uuid;not null;index"`
	User       *User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt  time.Time         `json:"created_at" gorm:"index"`
}

func (e *AuditEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = NewID()
	}
	return nil
}
