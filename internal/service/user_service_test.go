package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"zuvomo/internal/cache"
	apperrors "zuvomo/internal/errors"
	"zuvomo/internal/model"
)

func TestUserService_GetUserIsCached(t *testing.T) {
	id := uuid.New()
	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Email: "a@b.c"}, nil).Once()

	svc := NewUserService(repo, cache.NewMemory(), new(MockNotifier))

	first, err := svc.GetUser(context.Background(), id)
	require.NoError(t, err)
	second, err := svc.GetUser(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, first.Email, second.Email)
	repo.AssertExpectations(t)
}

func TestUserService_GetUserNotFound(t *testing.T) {
	id := uuid.New()
	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	svc := NewUserService(repo, cache.NewMemory(), new(MockNotifier))
	_, err := svc.GetUser(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_ApprovalTransitions(t *testing.T) {
	tests := []struct {
		name           string
		start          model.ApprovalStatus
		role           model.Role
		act            func(UserService, uuid.UUID) (*model.User, error)
		expectedStatus model.ApprovalStatus
		expectedError  error
	}{
		{
			name: "approve pending", start: model.ApprovalPending, role: model.RoleInvestor,
			act:            func(s UserService, id uuid.UUID) (*model.User, error) { return s.Approve(context.Background(), id) },
			expectedStatus: model.ApprovalApproved,
		},
		{
			name: "reject pending", start: model.ApprovalPending, role: model.RoleProjectOwner,
			act:            func(s UserService, id uuid.UUID) (*model.User, error) { return s.Reject(context.Background(), id, "incomplete") },
			expectedStatus: model.ApprovalRejected,
		},
		{
			name: "resubmit rejected", start: model.ApprovalRejected, role: model.RoleProjectOwner,
			act:            func(s UserService, id uuid.UUID) (*model.User, error) { return s.Resubmit(context.Background(), id) },
			expectedStatus: model.ApprovalPending,
		},
		{
			name: "approve already approved", start: model.ApprovalApproved, role: model.RoleInvestor,
			act:           func(s UserService, id uuid.UUID) (*model.User, error) { return s.Approve(context.Background(), id) },
			expectedError: apperrors.ErrInvalidTransition,
		},
		{
			name: "resubmit pending", start: model.ApprovalPending, role: model.RoleInvestor,
			act:           func(s UserService, id uuid.UUID) (*model.User, error) { return s.Resubmit(context.Background(), id) },
			expectedError: apperrors.ErrInvalidTransition,
		},
		{
			name: "admins are never reviewed", start: model.ApprovalPending, role: model.RoleAdmin,
			act:           func(s UserService, id uuid.UUID) (*model.User, error) { return s.Reject(context.Background(), id, "") },
			expectedError: apperrors.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			user := &model.User{ID: id, Role: tt.role, ApprovalStatus: tt.start}

			repo := new(MockUserRepository)
			repo.On("FindByID", mock.Anything, id).Return(user, nil)
			notifier := new(MockNotifier)
			if tt.expectedError == nil {
				repo.On("Update", mock.Anything, user).Return(nil)
				notifier.On("AccountReviewed", mock.Anything, user).Return(nil)
			}

			store := cache.NewMemory()
			_ = store.Set(context.Background(), "user:"+id.String(), []byte(`{"email":"stale"}`), 0)

			svc := NewUserService(repo, store, notifier)
			got, err := tt.act(svc, id)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, got.ApprovalStatus)

			cached, _ := store.Get(context.Background(), "user:"+id.String())
			assert.Nil(t, cached, "transition must invalidate the cached user")
			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}
