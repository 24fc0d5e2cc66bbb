package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "zuvomo/internal/errors"
	"zuvomo/internal/model"
	"zuvomo/internal/notify"
	"zuvomo/internal/repository"
)

// CreateProjectInput carries a new draft.
type CreateProjectInput struct {
	Title       string
	Description string
	Industry    string
	FundingGoal decimal.Decimal
}

// ProjectService drives the project review lifecycle.
type ProjectService interface {
	Create(ctx context.Context, owner *model.User, in CreateProjectInput) (*model.Project, error)
	Update(ctx context.Context, owner *model.User, id uuid.UUID, changes model.ProjectChanges) (*model.Project, error)
	Submit(ctx context.Context, owner *model.User, id uuid.UUID) (*model.Project, error)
	Approve(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Reject(ctx context.Context, id uuid.UUID, note string) (*model.Project, error)
	MarkFunded(ctx context.Context, id uuid.UUID) (*model.Project, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error)
	ListLive(ctx context.Context) ([]model.Project, error)
	ListByStatus(ctx context.Context, statuses ...model.ProjectStatus) ([]model.Project, error)
}

type projectService struct {
	repo     repository.ProjectRepository
	userRepo repository.UserRepository
	notifier notify.Notifier
	now      func() time.Time
}

// NewProjectService creates a new project service.
func NewProjectService(repo repository.ProjectRepository, userRepo repository.UserRepository, notifier notify.Notifier) ProjectService {
	return &projectService{repo: repo, userRepo: userRepo, notifier: notifier, now: time.Now}
}

// Create stores a new draft for an approved project owner.
func (s *projectService) Create(ctx context.Context, owner *model.User, in CreateProjectInput) (*model.Project, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if in.FundingGoal.IsNegative() {
		return nil, FieldErrors{"funding_goal": "must not be negative"}
	}

	project := &model.Project{
		OwnerID:     owner.ID,
		Title:       in.Title,
		Description: in.Description,
		Industry:    in.Industry,
		FundingGoal: in.FundingGoal,
		Status:      model.ProjectStatusDraft,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// Update edits a project. Drafts and rejected projects change in place;
// anything already submitted keeps its live fields and parks the edit in
// PendingChanges with status pending_update.
func (s *projectService) Update(ctx context.Context, owner *model.User, id uuid.UUID, changes model.ProjectChanges) (*model.Project, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if changes.Empty() {
		return nil, apperrors.ErrNothingToUpdate
	}
	if changes.FundingGoal != nil && changes.FundingGoal.IsNegative() {
		return nil, FieldErrors{"funding_goal": "must not be negative"}
	}

	var updated *model.Project
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.ProjectRepository) error {
		project, err := lockOwned(ctx, repo, owner, id)
		if err != nil {
			return err
		}

		switch {
		case project.Status.EditableInPlace():
			changes.Apply(project)
		case project.Status == model.ProjectStatusSubmitted,
			project.Status == model.ProjectStatusApproved,
			project.Status == model.ProjectStatusPendingUpdate:
			pending, err := decodePending(project.PendingChanges)
			if err != nil {
				return err
			}
			payload, err := json.Marshal(pending.Merge(changes))
			if err != nil {
				return fmt.Errorf("encode pending changes: %w", err)
			}
			project.PendingChanges = datatypes.JSON(payload)
			project.Status = model.ProjectStatusPendingUpdate
		default:
			return apperrors.ErrProjectLocked
		}

		if err := repo.Update(ctx, project); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Submit sends a draft or rejected project to review.
func (s *projectService) Submit(ctx context.Context, owner *model.User, id uuid.UUID) (*model.Project, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}

	var submitted *model.Project
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.ProjectRepository) error {
		project, err := lockOwned(ctx, repo, owner, id)
		if err != nil {
			return err
		}
		if err := moveTo(project, model.ProjectStatusSubmitted); err != nil {
			return err
		}
		now := s.now()
		project.SubmittedAt = &now
		project.ReviewNote = ""
		if err := repo.Update(ctx, project); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		submitted = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submitted, nil
}

// Approve publishes a submitted project or accepts a pending update.
func (s *projectService) Approve(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return s.review(ctx, id, model.ProjectStatusApproved, func(p *model.Project) error {
		pending, err := decodePending(p.PendingChanges)
		if err != nil {
			return err
		}
		pending.Apply(p)
		p.PendingChanges = nil
		p.ReviewNote = ""
		return nil
	})
}

// Reject turns down a submission or pending update. Pending edits are discarded.
func (s *projectService) Reject(ctx context.Context, id uuid.UUID, note string) (*model.Project, error) {
	return s.review(ctx, id, model.ProjectStatusRejected, func(p *model.Project) error {
		p.PendingChanges = nil
		p.ReviewNote = note
		return nil
	})
}

// MarkFunded closes funding on an approved project.
func (s *projectService) MarkFunded(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return s.review(ctx, id, model.ProjectStatusFunded, nil)
}

// MarkCompleted finishes a funded project.
func (s *projectService) MarkCompleted(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return s.review(ctx, id, model.ProjectStatusCompleted, nil)
}

func (s *projectService) review(ctx context.Context, id uuid.UUID, to model.ProjectStatus, apply func(*model.Project) error) (*model.Project, error) {
	var reviewed *model.Project
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.ProjectRepository) error {
		project, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if err := moveTo(project, to); err != nil {
			return err
		}
		if apply != nil {
			if err := apply(project); err != nil {
				return err
			}
		}
		now := s.now()
		project.ReviewedAt = &now
		if err := repo.Update(ctx, project); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		reviewed = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	if owner, err := s.userRepo.FindByID(ctx, reviewed.OwnerID); err == nil {
		if err := s.notifier.ProjectReviewed(ctx, owner, reviewed); err != nil {
			log.Printf("project review notice for %s: %v", reviewed.ID, err)
		}
	}
	return reviewed, nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return project, nil
}

func (s *projectService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListLive lists projects visible to investors.
func (s *projectService) ListLive(ctx context.Context) ([]model.Project, error) {
	return s.repo.ListByStatus(ctx, model.ProjectStatusApproved, model.ProjectStatusFunded, model.ProjectStatusCompleted)
}

func (s *projectService) ListByStatus(ctx context.Context, statuses ...model.ProjectStatus) ([]model.Project, error) {
	if len(statuses) == 0 {
		statuses = []model.ProjectStatus{model.ProjectStatusSubmitted, model.ProjectStatusPendingUpdate}
	}
	return s.repo.ListByStatus(ctx, statuses...)
}

func checkOwner(user *model.User) error {
	if user == nil || user.Role != model.RoleProjectOwner {
		return apperrors.ErrForbidden
	}
	if !user.IsApproved() {
		return apperrors.ErrAccountNotApproved
	}
	return nil
}

func lockOwned(ctx context.Context, repo repository.ProjectRepository, owner *model.User, id uuid.UUID) (*model.Project, error) {
	project, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if project.OwnerID != owner.ID {
		return nil, apperrors.ErrNotProjectOwner
	}
	return project, nil
}

func moveTo(p *model.Project, to model.ProjectStatus) error {
	if !model.CanTransition(p.Status, to) {
		return fmt.Errorf("%w: %s to %s", apperrors.ErrInvalidTransition, p.Status, to)
	}
	p.Status = to
	return nil
}

func decodePending(raw datatypes.JSON) (model.ProjectChanges, error) {
	var changes model.ProjectChanges
	if len(raw) == 0 {
		return changes, nil
	}
	if err := json.Unmarshal(raw, &changes); err != nil {
		return changes, fmt.Errorf("decode pending changes: %w", err)
	}
	return changes, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrProjectNotFound
	}
	return fmt.Errorf("find project: %w", err)
}
