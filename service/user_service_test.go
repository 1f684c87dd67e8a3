// service/user_service_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"go-shop-api/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserService_UpdateUserRole(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("UpdateRole", 1, "admin").Return(nil).Once()

		userService := NewUserService(mockRepo)
		err := userService.UpdateUserRole(ctx, 1, model.RoleAdmin)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("UpdateRole", 2, "user").Return(errors.New("database error")).Once()

		userService := NewUserService(mockRepo)
		err := userService.UpdateUserRole(ctx, 2, model.RoleUser)

		assert.ErrorIs(t, err, ErrStoreUnavailable)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("UpdateRole", 9, "user").Return(sql.ErrNoRows).Once()

		err := NewUserService(mockRepo).UpdateUserRole(ctx, 9, model.RoleUser)

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("invalid role", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		userService := NewUserService(mockRepo)

		err := userService.UpdateUserRole(ctx, 3, "invalid_role")

		assert.ErrorIs(t, err, ErrInvalidRole)
		mockRepo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything)
	})
}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetByID", 4).Return(&model.User{ID: 4, Name: "Ann"}, nil).Once()

		user, err := NewUserService(mockRepo).GetProfile(ctx, 4)
		assert.NoError(t, err)
		assert.Equal(t, "Ann", user.Name)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetByID", 5).Return(nil, sql.ErrNoRows).Once()

		_, err := NewUserService(mockRepo).GetProfile(ctx, 5)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
