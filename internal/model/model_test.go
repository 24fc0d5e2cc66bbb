package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRole_Dashboard(t *testing.T) {
	assert.Equal(t, "/admin", RoleAdmin.Dashboard())
	assert.Equal(t, "/project-owner", RoleProjectOwner.Dashboard())
	assert.Equal(t, "/investor", RoleInvestor.Dashboard())
	assert.Equal(t, "/", Role("guest").Dashboard())
	assert.Equal(t, "/", Role("").Dashboard())
}

func TestUser_IsApproved(t *testing.T) {
	tests := []struct {
		name     string
		user     *User
		expected bool
	}{
		{"nil user", nil, false},
		{"approved investor", &User{Role: RoleInvestor, ApprovalStatus: ApprovalApproved}, true},
		{"pending investor", &User{Role: RoleInvestor, ApprovalStatus: ApprovalPending}, false},
		{"rejected owner", &User{Role: RoleProjectOwner, ApprovalStatus: ApprovalRejected}, false},
		{"pending admin", &User{Role: RoleAdmin, ApprovalStatus: ApprovalPending}, true},
		{"rejected admin", &User{Role: RoleAdmin, ApprovalStatus: ApprovalRejected}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.IsApproved())
		})
	}
}

func TestParseProjectStatus(t *testing.T) {
	st, ok := ParseProjectStatus("under_review")
	assert.True(t, ok)
	assert.Equal(t, ProjectStatusSubmitted, st)

	st, ok = ParseProjectStatus("pending_update")
	assert.True(t, ok)
	assert.Equal(t, ProjectStatusPendingUpdate, st)

	_, ok = ParseProjectStatus("archived")
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ProjectStatus
		allowed  bool
	}{
		{ProjectStatusDraft, ProjectStatusSubmitted, true},
		{ProjectStatusRejected, ProjectStatusSubmitted, true},
		{ProjectStatusSubmitted, ProjectStatusApproved, true},
		{ProjectStatusSubmitted, ProjectStatusRejected, true},
		{ProjectStatusApproved, ProjectStatusPendingUpdate, true},
		{ProjectStatusPendingUpdate, ProjectStatusApproved, true},
		{ProjectStatusPendingUpdate, ProjectStatusRejected, true},
		{ProjectStatusApproved, ProjectStatusFunded, true},
		{ProjectStatusFunded, ProjectStatusCompleted, true},
		{ProjectStatusDraft, ProjectStatusApproved, false},
		{ProjectStatusApproved, ProjectStatusDraft, false},
		{ProjectStatusCompleted, ProjectStatusDraft, false},
		{ProjectStatusFunded, ProjectStatusPendingUpdate, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestProjectChanges_MergeAndApply(t *testing.T) {
	title := "New title"
	goal := decimal.NewFromInt(250000)
	industry := "fintech"

	first := ProjectChanges{Title: &title}
	merged := first.Merge(ProjectChanges{FundingGoal: &goal, Industry: &industry})

	p := &Project{Title: "Old", Description: "keep", FundingGoal: decimal.NewFromInt(1)}
	merged.Apply(p)

	assert.Equal(t, "New title", p.Title)
	assert.Equal(t, "keep", p.Description)
	assert.Equal(t, "fintech", p.Industry)
	assert.True(t, goal.Equal(p.FundingGoal))
	assert.True(t, ProjectChanges{}.Empty())
	assert.False(t, merged.Empty())
}
