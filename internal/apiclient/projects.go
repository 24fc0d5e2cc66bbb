package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"zuvomo/internal/model"
)

// ProjectInput creates a draft.
type ProjectInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Industry    string          `json:"industry,omitempty"`
	FundingGoal decimal.Decimal `json:"funding_goal"`
}

// ProjectService drives the owner's side of the project lifecycle. Every
// call takes the bearer token to use; 401 responses match ErrUnauthorized.
type ProjectService interface {
	Create(ctx context.Context, token string, in ProjectInput) (*model.Project, error)
	Update(ctx context.Context, token, id string, changes model.ProjectChanges) (*model.Project, error)
	Submit(ctx context.Context, token, id string) (*model.Project, error)
	ListMine(ctx context.Context, token string) ([]model.Project, error)
}

type projectEnvelope struct {
	Project *model.Project `json:"project"`
}

type projectService struct {
	client *Client
}

// NewProjectService creates a ProjectService over client.
func NewProjectService(client *Client) ProjectService {
	return &projectService{client: client}
}

func (s *projectService) Create(ctx context.Context, token string, in ProjectInput) (*model.Project, error) {
	var resp projectEnvelope
	if err := s.client.do(ctx, http.MethodPost, "/projects", token, in, &resp); err != nil {
		return nil, asValidation(err)
	}
	return resp.Project, nil
}

func (s *projectService) Update(ctx context.Context, token, id string, changes model.ProjectChanges) (*model.Project, error) {
	var resp projectEnvelope
	if err := s.client.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), token, changes, &resp); err != nil {
		return nil, asValidation(err)
	}
	return resp.Project, nil
}

func (s *projectService) Submit(ctx context.Context, token, id string) (*model.Project, error) {
	var resp projectEnvelope
	if err := s.client.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(id)+"/submit", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Project, nil
}

func (s *projectService) ListMine(ctx context.Context, token string) ([]model.Project, error) {
	var projects []model.Project
	if err := s.client.do(ctx, http.MethodGet, "/projects/mine", token, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
