package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"zuvomo/internal/model"
)

// ProjectRepository defines project persistence operations.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error)
	ListByStatus(ctx context.Context, statuses ...model.ProjectStatus) ([]model.Project, error)
	// WithTransaction runs fn with a repository bound to a transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo ProjectRepository) error) error
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create creates a new project.
func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update saves all fields of an existing project.
func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit("Owner").Save(project).Error
}

// FindByID finds a project by ID.
func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByIDForUpdate finds a project by ID with a row-level lock.
func (r *projectRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByOwner lists every project of an owner, newest first.
func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListByStatus lists projects in any of the given statuses with their owners.
func (r *projectRepository) ListByStatus(ctx context.Context, statuses ...model.ProjectStatus) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Preload("Owner").Where("status IN ?", statuses).
		Order("updated_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// WithTransaction executes a function within a database transaction.
func (r *projectRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo ProjectRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &projectRepository{db: tx})
	})
}
