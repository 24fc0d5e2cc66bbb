package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"zuvomo/internal/cache"
	apperrors "zuvomo/internal/errors"
	"zuvomo/internal/model"
	"zuvomo/internal/notify"
	"zuvomo/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes account lookup and the approval workflow.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, error)
	Approve(ctx context.Context, id uuid.UUID) (*model.User, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*model.User, error)
	Resubmit(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userService struct {
	repo     repository.UserRepository
	cache    cache.Store
	notifier notify.Notifier
	now      func() time.Time
}

// NewUserService builds a UserService with repository, cache and notifier.
func NewUserService(repo repository.UserRepository, cache cache.Store, notifier notify.Notifier) UserService {
	return &userService{repo: repo, cache: cache, notifier: notifier, now: time.Now}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, error) {
	return s.repo.List(ctx, filter)
}

// Approve moves a pending account to approved.
func (s *userService) Approve(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.transition(ctx, id, model.ApprovalPending, func(u *model.User) {
		now := s.now()
		u.ApprovalStatus = model.ApprovalApproved
		u.ApprovedAt = &now
		u.RejectionReason = ""
	})
}

// Reject moves a pending account to rejected.
func (s *userService) Reject(ctx context.Context, id uuid.UUID, reason string) (*model.User, error) {
	return s.transition(ctx, id, model.ApprovalPending, func(u *model.User) {
		u.ApprovalStatus = model.ApprovalRejected
		u.RejectionReason = reason
	})
}

// Resubmit returns a rejected account to the review queue.
func (s *userService) Resubmit(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.transition(ctx, id, model.ApprovalRejected, func(u *model.User) {
		u.ApprovalStatus = model.ApprovalPending
	})
}

func (s *userService) transition(ctx context.Context, id uuid.UUID, from model.ApprovalStatus, apply func(*model.User)) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.IsAdmin() || user.ApprovalStatus != from {
		return nil, fmt.Errorf("%w: account is %s", apperrors.ErrInvalidTransition, user.ApprovalStatus)
	}

	apply(user)
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	if err := s.notifier.AccountReviewed(ctx, user); err != nil {
		log.Printf("account review notice for %s: %v", user.ID, err)
	}
	return user, nil
}
