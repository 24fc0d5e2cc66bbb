package web

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"zuvomo/internal/apiclient"
	"zuvomo/internal/model"
)

// ProjectHandler proxies the founder's project pages to the API with the
// session's bearer token.
type ProjectHandler struct {
	projects apiclient.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects apiclient.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List returns the signed-in founder's projects.
func (h *ProjectHandler) List(c echo.Context) error {
	var out []model.Project
	err := provider(c).Authorized(c.Request().Context(), func(ctx context.Context, token string) error {
		var err error
		out, err = h.projects.ListMine(ctx, token)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"projects": out})
}

// Create starts a draft.
func (h *ProjectHandler) Create(c echo.Context) error {
	var in apiclient.ProjectInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
	}

	return h.one(c, http.StatusCreated, func(ctx context.Context, token string) (*model.Project, error) {
		return h.projects.Create(ctx, token, in)
	})
}

// Update edits a project. The API decides whether the edit is applied
// directly or parked for review.
func (h *ProjectHandler) Update(c echo.Context) error {
	var changes model.ProjectChanges
	if err := c.Bind(&changes); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
	}

	id := c.Param("id")
	return h.one(c, http.StatusOK, func(ctx context.Context, token string) (*model.Project, error) {
		return h.projects.Update(ctx, token, id, changes)
	})
}

// Submit sends a draft for review.
func (h *ProjectHandler) Submit(c echo.Context) error {
	id := c.Param("id")
	return h.one(c, http.StatusOK, func(ctx context.Context, token string) (*model.Project, error) {
		return h.projects.Submit(ctx, token, id)
	})
}

func (h *ProjectHandler) one(c echo.Context, status int, call func(ctx context.Context, token string) (*model.Project, error)) error {
	var out *model.Project
	err := provider(c).Authorized(c.Request().Context(), func(ctx context.Context, token string) error {
		var err error
		out, err = call(ctx, token)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status, map[string]any{"project": out})
}
