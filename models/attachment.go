package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment holds file metadata only; the bytes live in external storage at URL.
type Attachment struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ArticleVersionID uuid.UUID `json:"article_version_id" gorm:"type:uuid;not null;index"`
	FileName         string    `json:"file_name" gorm:"not null"`
	FileType         string    `json:"file_type" gorm:"not null"`
	FileSize         int64     `json:"file_size" gorm:"not null"`
	URL              string    `json:"url" gorm:"not null"`
	UploadedByID     uuid.UUID `json:"uploaded_by_id" gorm:"type:uuid;not null"`
	UploadedBy       *User     `json:"uploaded_by,omitempty" gorm:"foreignKey:UploadedByID"`
	UploadedAt       time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = NewID()
	}
	return nil
}
