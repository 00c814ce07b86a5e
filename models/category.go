package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = NewID()
	}
	return nil
}

// ArticleCategory links one article to one category.
type ArticleCategory struct {
	ArticleID  uuid.UUID `json:"article_id" gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `json:"category_id" gorm:"type:uuid;primaryKey;index"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ArticleCategory) TableName() string { return "article_categories" }
