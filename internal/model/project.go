package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProjectStatus represents the review lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusDraft         ProjectStatus = "draft"
	ProjectStatusSubmitted     ProjectStatus = "submitted"
	ProjectStatusApproved      ProjectStatus = "approved"
	ProjectStatusRejected      ProjectStatus = "rejected"
	ProjectStatusPendingUpdate ProjectStatus = "pending_update"
	ProjectStatusFunded        ProjectStatus = "funded"
	ProjectStatusCompleted     ProjectStatus = "completed"
)

// ParseProjectStatus normalizes s into a ProjectStatus. "under_review" is
// accepted as an alias of submitted.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	if s == "under_review" {
		return ProjectStatusSubmitted, true
	}
	st := ProjectStatus(s)
	switch st {
	case ProjectStatusDraft, ProjectStatusSubmitted, ProjectStatusApproved, ProjectStatusRejected,
		ProjectStatusPendingUpdate, ProjectStatusFunded, ProjectStatusCompleted:
		return st, true
	}
	return "", false
}

var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusDraft:         {ProjectStatusSubmitted},
	ProjectStatusRejected:      {ProjectStatusSubmitted},
	ProjectStatusSubmitted:     {ProjectStatusApproved, ProjectStatusRejected, ProjectStatusPendingUpdate},
	ProjectStatusApproved:      {ProjectStatusPendingUpdate, ProjectStatusFunded},
	ProjectStatusPendingUpdate: {ProjectStatusApproved, ProjectStatusRejected, ProjectStatusPendingUpdate},
	ProjectStatusFunded:        {ProjectStatusCompleted},
}

// CanTransition reports whether a project may move from one status to another.
func CanTransition(from, to ProjectStatus) bool {
	for _, s := range projectTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// EditableInPlace reports whether owner edits overwrite the record directly.
func (s ProjectStatus) EditableInPlace() bool {
	return s == ProjectStatusDraft || s == ProjectStatusRejected
}

// Live reports whether the project is visible to investors.
func (s ProjectStatus) Live() bool {
	return s == ProjectStatusApproved || s == ProjectStatusFunded || s == ProjectStatusCompleted
}

// Project is a funding project owned by a project owner.
type Project struct {
	ID             uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID        uuid.UUID       `json:"owner_id" gorm:"type:char(36);not null;index"`
	Title          string          `json:"title" gorm:"size:255;not null"`
	Description    string          `json:"description" gorm:"type:text"`
	Industry       string          `json:"industry,omitempty" gorm:"size:100;index"`
	FundingGoal    decimal.Decimal `json:"funding_goal" gorm:"type:decimal(20,2);not null"`
	Status         ProjectStatus   `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	PendingChanges datatypes.JSON  `json:"pending_changes,omitempty" gorm:"type:json"`
	ReviewNote     string          `json:"review_note,omitempty" gorm:"type:text"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty"`
	ReviewedAt     *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `json:"-" gorm:"index"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProjectChanges is an owner edit. Nil fields are left untouched.
type ProjectChanges struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Industry    *string          `json:"industry,omitempty"`
	FundingGoal *decimal.Decimal `json:"funding_goal,omitempty"`
}

// Empty reports whether the edit changes nothing.
func (c ProjectChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Industry == nil && c.FundingGoal == nil
}

// Apply writes the non-nil fields of c onto p.
func (c ProjectChanges) Apply(p *Project) {
	if c.Title != nil {
		p.Title = *c.Title
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.Industry != nil {
		p.Industry = *c.Industry
	}
	if c.FundingGoal != nil {
		p.FundingGoal = *c.FundingGoal
	}
}

// Merge overlays the non-nil fields of next onto c.
func (c ProjectChanges) Merge(next ProjectChanges) ProjectChanges {
	if next.Title != nil {
		c.Title = next.Title
	}
	if next.Description != nil {
		c.Description = next.Description
	}
	if next.Industry != nil {
		c.Industry = next.Industry
	}
	if next.FundingGoal != nil {
		c.FundingGoal = next.FundingGoal
	}
	return c
}
