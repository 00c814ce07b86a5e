package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"medcms/apperrors"
	"medcms/database"
	"medcms/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := database.Conn(ctx, r.db).Create(user).Error
	if database.IsUniqueViolation(err) {
		return apperrors.Conflict("user", fmt.Sprintf("email %q already registered", user.Email))
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&user).Error
	if database.IsRecordNotFound(err) {
		return nil, apperrors.NotFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := database.Conn(ctx, r.db).Where("email = ?", email).First(&user).Error
	if database.IsRecordNotFound(err) {
		return nil, &apperrors.NotFoundError{Entity: "user", ID: email}
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
