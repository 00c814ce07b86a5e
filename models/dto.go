package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RegisterRequest is public self-signup; the account is always a READER.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=6"`
}

// CreateUserRequest is an admin creating an account with an explicit role.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateArticleRequest struct {
	Title       string            `json:"title" validate:"required,min=1,max=255"`
	Content     string            `json:"content" validate:"required"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	CategoryIDs []uuid.UUID       `json:"category_ids"`
	Status      *ArticleStatus    `json:"status"`
	Reason      *string           `json:"reason"`
}

// UpdateArticleRequest is a patch: nil fields are not supplied. A non-nil
// Metadata (even empty) or Content creates a new version. A non-nil
// CategoryIDs (even empty) replaces the category set.
type UpdateArticleRequest struct {
	Title       *string           `json:"title" validate:"omitempty,min=1,max=255"`
	Content     *string           `json:"content"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	Status      *ArticleStatus    `json:"status"`
	CategoryIDs *[]uuid.UUID      `json:"category_ids"`
	Reason      *string           `json:"reason"`
}

type RestoreVersionRequest struct {
	Reason *string `json:"reason"`
}

type AddAttachmentRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
	FileType string `json:"file_type" validate:"required,max=100"`
	FileSize int64  `json:"file_size" validate:"gte=0"`
	URL      string `json:"url" validate:"required,url"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

type ArticleListParams struct {
	Skip       int           `form:"skip"`
	Take       int           `form:"take,default=20"`
	SearchTerm string        `form:"search"`
	Status     ArticleStatus `form:"status"`
}

type AuditFilter struct {
	EntityType string
	UserID     *uuid.UUID
}

type Pagination struct {
	Skip int
	Take int
}

type AuditListParams struct {
	EntityType string `form:"entity_type"`
	UserID     string `form:"user_id"`
	Skip       int    `form:"skip"`
	Take       int    `form:"take,default=50"`
}
