package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArticleStatus string

const (
	StatusDraft       ArticleStatus = "DRAFT"
	StatusUnderReview ArticleStatus = "UNDER_REVIEW"
	StatusPublished   ArticleStatus = "PUBLISHED"
	StatusArchived    ArticleStatus = "ARCHIVED"
)

func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusUnderReview, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Article owns its versions and category links. CurrentVersionID is nil
// only between the article insert and the first version insert of a create.
type Article struct {
	ID               uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	Title            string            `json:"title" gorm:"not null"`
	Status           ArticleStatus     `json:"status" gorm:"type:varchar(20);not null;default:'DRAFT'"`
	AuthorID         uuid.UUID         `json:"author_id" gorm:"type:uuid;not null;index"`
	Author           *User             `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	CurrentVersionID *uuid.UUID        `json:"current_version_id" gorm:"type:uuid"`
	CurrentVersion   *ArticleVersion   `json:"current_version,omitempty" gorm:"foreignKey:CurrentVersionID"`
	Versions         []ArticleVersion  `json:"versions,omitempty" gorm:"foreignKey:ArticleID"`
	Categories       []ArticleCategory `json:"categories,omitempty" gorm:"foreignKey:ArticleID"`
	PublishedAt      *time.Time        `json:"published_at"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = NewID()
	}
	return nil
}
