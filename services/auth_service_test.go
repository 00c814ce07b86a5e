package services_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcms/apperrors"
	"medcms/models"
	"medcms/services"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	s := newSQLiteStack(t)
	ctx := context.Background()

	registered, err := s.auth.Register(ctx, models.RegisterRequest{
		Email:    "house@example.com",
		Name:     "Gregory House",
		Password: "vicodin",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, models.RoleReader, registered.User.Role)
	assert.NotEqual(t, "vicodin", registered.User.Password)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(registered.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID.String(), claims["user_id"])
	assert.Equal(t, "READER", claims["role"])

	loggedIn, err := s.auth.Login(ctx, models.LoginRequest{Email: "house@example.com", Password: "vicodin"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = s.auth.Login(ctx, models.LoginRequest{Email: "house@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = s.auth.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	user, err := s.auth.GetUserByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gregory House", user.Name)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	s := newSQLiteStack(t)
	ctx := context.Background()

	first, err := s.auth.Register(ctx, models.RegisterRequest{Email: "a@example.com", Name: "A", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleReader, first.User.Role)

	_, err = s.auth.Register(ctx, models.RegisterRequest{Email: "a@example.com", Name: "A", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

}

func TestAuthService_CreateUserAssignsRole(t *testing.T) {
	s := newSQLiteStack(t)
	ctx := context.Background()

	editor, err := s.auth.CreateUser(ctx, models.CreateUserRequest{
		Email: "cuddy@example.com", Name: "Lisa Cuddy", Password: "secret1", Role: models.RoleEditor,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, editor.Role)

	_, err = s.auth.CreateUser(ctx, models.CreateUserRequest{
		Email: "b@example.com", Name: "B", Password: "secret1", Role: "SURGEON",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = s.auth.CreateUser(ctx, models.CreateUserRequest{
		Email: "cuddy@example.com", Name: "Again", Password: "secret1", Role: models.RoleReader,
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_EnsureAdminIsIdempotent(t *testing.T) {
	s := newSQLiteStack(t)
	ctx := context.Background()

	admin, err := s.auth.EnsureAdmin(ctx, "root@example.com", "Root", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	again, err := s.auth.EnsureAdmin(ctx, "root@example.com", "Root", "other-password")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	_, err = s.auth.Login(ctx, models.LoginRequest{Email: "root@example.com", Password: "secret1"})
	assert.NoError(t, err)
}
