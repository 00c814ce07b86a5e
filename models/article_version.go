package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ArticleVersion is an immutable content snapshot. Version numbers are
// unique per article and never reused.
type ArticleVersion struct {
	ID            uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	ArticleID     uuid.UUID         `json:"article_id" gorm:"type:uuid;not null;uniqueIndex:idx_article_versions_number"`
	VersionNumber int               `json:"version_number" gorm:"not null;uniqueIndex:idx_article_versions_number"`
	Content       string            `json:"content" gorm:"type:text;not null"`
	Metadata      datatypes.JSONMap `json:"metadata"`
	CreatedByID   uuid.UUID         `json:"created_by_id" gorm:"type:uuid;not null"`
	CreatedBy     *User             `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	Attachments   []Attachment      `json:"attachments" gorm:"foreignKey:ArticleVersionID"`
	CreatedAt     time.Time         `json:"created_at"`
}

func (v *ArticleVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = NewID()
	}
	return nil
}
