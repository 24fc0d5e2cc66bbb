package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Role determines which dashboard and navigation set a user sees.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProjectOwner Role = "project_owner"
	RoleInvestor     Role = "investor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectOwner, RoleInvestor:
		return true
	}
	return false
}

// Dashboard returns the canonical landing route for the role.
func (r Role) Dashboard() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleProjectOwner:
		return "/project-owner"
	case RoleInvestor:
		return "/investor"
	default:
		return "/"
	}
}

// ApprovalStatus is the admin-controlled gate on dashboard access.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// User represents a platform member.
type User struct {
	ID                 uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	Email              string           `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash       string           `json:"-" gorm:"size:255"` // empty for OAuth-only accounts
	FirstName          string           `json:"first_name" gorm:"size:100;not null"`
	LastName           string           `json:"last_name" gorm:"size:100"`
	Role               Role             `json:"role" gorm:"type:varchar(20);not null;index"`
	ApprovalStatus     ApprovalStatus   `json:"approval_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Company            string           `json:"company,omitempty" gorm:"size:255"`
	InvestmentFocus    string           `json:"investment_focus,omitempty" gorm:"size:255"`
	InvestmentRangeMin *decimal.Decimal `json:"investment_range_min,omitempty" gorm:"type:decimal(20,2)"`
	InvestmentRangeMax *decimal.Decimal `json:"investment_range_max,omitempty" gorm:"type:decimal(20,2)"`
	PortfolioSize      *int             `json:"portfolio_size,omitempty"`
	OAuthProvider      string           `json:"oauth_provider,omitempty" gorm:"size:20"`
	RejectionReason    string           `json:"rejection_reason,omitempty" gorm:"type:text"`
	ApprovedAt         *time.Time       `json:"approved_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsApproved reports whether the approval gate is open for the user.
// Admins bypass approval regardless of their stored status.
func (u *User) IsApproved() bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || u.ApprovalStatus == ApprovalApproved
}

// HasRole reports whether the user's role is one of roles.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
