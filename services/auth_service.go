package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"medcms/apperrors"
	"medcms/models"
	"medcms/repositories"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	// EnsureAdmin creates the ADMIN account for email unless a user with that
	// email already exists.
	EnsureAdmin(ctx context.Context, email, name, password string) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type authService struct {
	userRepo      repositories.UserRepository
	jwtSecret     []byte
	jwtExpiration time.Duration
	logger        *zap.Logger
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, jwtExpiration time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: jwtExpiration,
		logger:        logger.Named("auth-service"),
	}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	user, err := s.createUser(ctx, req.Email, req.Name, req.Password, models.RoleReader)
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *authService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidInput, req.Role)
	}
	return s.createUser(ctx, req.Email, req.Name, req.Password, req.Role)
}

func (s *authService) EnsureAdmin(ctx context.Context, email, name, password string) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !apperrors.IsNotFoundEntity(err, "user") {
		return nil, err
	}
	return s.createUser(ctx, email, name, password, models.RoleAdmin)
}

func (s *authService) createUser(ctx context.Context, email, name, password string, role models.UserRole) (*models.User, error) {
	// Check if user already exists
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("user", "email already registered")
	} else if !apperrors.IsNotFoundEntity(err, "user") {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Name:     name,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", string(role)))
	return user, nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(s.jwtExpiration).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
