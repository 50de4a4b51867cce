package services_test

import (
	"testing"
	"time"

	"intent-chat/auth"
	"intent-chat/errors"
	"intent-chat/mocks"
	"intent-chat/repositories"
	"intent-chat/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := services.NewAuthService(mockRepo, 4000, 24*time.Hour)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		username := "alice42"
		password := "ComplexPass123!"
		expectedUserID := "user-uuid"

		// Expect CreateUser to be called with a hashed password and the
		// initial credit, never the plain password.
		mockRepo.EXPECT().
			CreateUser(username, gomock.Any(), int64(4000)).
			DoAndReturn(func(_, hashed string, _ int64) (string, error) {
				req.NotEqual(password, hashed)
				return expectedUserID, nil
			}).
			Times(1)

		token, err := svc.Register(username, password)

		req.NoError(err)
		req.NotEmpty(token)

		claims, err := auth.ValidateToken(string(token))
		req.NoError(err)
		req.Equal(expectedUserID, claims.UserID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		token, err := svc.Register("alice42", "simple")

		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(token)
	})

	t.Run("should fail on an invalid username", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Register("not a valid name!", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrInvalidUsername)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser("duplicate1", gomock.Any(), int64(4000)).
			Return("", errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register("duplicate1", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := services.NewAuthService(mockRepo, 4000, 24*time.Hour)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		username := "alice42"
		password := "Secret123456!"

		hashedPassword, _ := auth.HashPassword(password)
		storedUser := repositories.User{
			ID:           "uuid-123",
			Username:     username,
			PasswordHash: hashedPassword,
			Roles:        []string{"user"},
			Tokens:       4000,
		}

		mockRepo.EXPECT().
			GetUserByUsername(username).
			Return(storedUser, nil).
			Times(1)

		token, err := svc.Login(username, password)

		req.NoError(err)
		req.NotEmpty(token)

		claims, err := auth.ValidateToken(string(token))
		req.NoError(err)
		req.Equal(storedUser.ID, claims.UserID)
	})

	t.Run("should return invalid credentials on a wrong password", func(t *testing.T) {
		req := require.New(t)
		username := "alice42"

		hashedPassword, _ := auth.HashPassword("CorrectPassword123!")
		storedUser := repositories.User{
			Username:     username,
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetUserByUsername(username).
			Return(storedUser, nil).
			Times(1)

		_, err := svc.Login(username, "WrongPassword123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByUsername("unknown").
			Return(repositories.User{}, errors.ErrUserNotFound).
			Times(1)

		_, err := svc.Login("unknown", "anyPassword")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
