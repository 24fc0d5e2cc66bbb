package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"zuvomo/internal/errors"
	"zuvomo/internal/model"
	"zuvomo/internal/service"
)

// ProjectHandler serves the project lifecycle.
type ProjectHandler struct {
	svc service.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(svc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// CreateProjectRequest represents a new draft.
type CreateProjectRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description"`
	Industry    string          `json:"industry" validate:"max=100"`
	FundingGoal decimal.Decimal `json:"funding_goal"`
}

// UpdateProjectRequest carries a partial edit. Omitted fields are left alone.
type UpdateProjectRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Industry    *string          `json:"industry" validate:"omitempty,max=100"`
	FundingGoal *decimal.Decimal `json:"funding_goal"`
}

// ReviewRequest carries an admin's note.
type ReviewRequest struct {
	Note string `json:"note"`
}

// ProjectResponse wraps a single project.
type ProjectResponse struct {
	Project *model.Project `json:"project"`
}

// Create godoc
// @Summary Create a draft project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProjectRequest true "Project"
// @Success 201 {object} ProjectResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req CreateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.svc.Create(c.Request().Context(), currentUser(c), service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Industry:    req.Industry,
		FundingGoal: req.FundingGoal,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, ProjectResponse{Project: project})
}

// Update godoc
// @Summary Edit a project
// @Description Drafts and rejected projects change in place. Submitted or live projects move to pending_update.
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body UpdateProjectRequest true "Changes"
// @Success 200 {object} ProjectResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}
	var req UpdateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.svc.Update(c.Request().Context(), currentUser(c), id, model.ProjectChanges{
		Title:       req.Title,
		Description: req.Description,
		Industry:    req.Industry,
		FundingGoal: req.FundingGoal,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ProjectResponse{Project: project})
}

// Submit godoc
// @Summary Submit a project for review
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /projects/{id}/submit [put]
func (h *ProjectHandler) Submit(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}
	project, err := h.svc.Submit(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ProjectResponse{Project: project})
}

// Get godoc
// @Summary Get a project
// @Description Owners and admins see any state. Everyone else only sees live projects.
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}
	project, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}
	user := currentUser(c)
	if !project.Status.Live() && !user.IsAdmin() && project.OwnerID != user.ID {
		return domainError(errors.ErrProjectNotFound)
	}
	return c.JSON(http.StatusOK, ProjectResponse{Project: project})
}

// ListMine godoc
// @Summary List the caller's projects
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Project
// @Router /projects/mine [get]
func (h *ProjectHandler) ListMine(c echo.Context) error {
	projects, err := h.svc.ListMine(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, projects)
}

// ListLive godoc
// @Summary List projects open to investors
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Project
// @Router /projects [get]
func (h *ProjectHandler) ListLive(c echo.Context) error {
	projects, err := h.svc.ListLive(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, projects)
}

// ListForReview godoc
// @Summary List projects by status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Comma separated statuses, defaults to submitted,pending_update"
// @Success 200 {array} model.Project
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/projects [get]
func (h *ProjectHandler) ListForReview(c echo.Context) error {
	var statuses []model.ProjectStatus
	if raw := c.QueryParam("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, ok := model.ParseProjectStatus(strings.TrimSpace(part))
			if !ok {
				return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
					Error: "invalid status: " + part,
					Code:  "INVALID_FILTER",
				})
			}
			statuses = append(statuses, status)
		}
	}

	projects, err := h.svc.ListByStatus(c.Request().Context(), statuses...)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, projects)
}

// Approve godoc
// @Summary Approve a submission or pending update
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/projects/{id}/approve [put]
func (h *ProjectHandler) Approve(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}
	project, err := h.svc.Approve(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ProjectResponse{Project: project})
}

// Reject godoc
// @Summary Reject a submission or pending update
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body ReviewRequest false "Review note"
// @Success 200 {object} ProjectResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/projects/{id}/reject [put]
func (h *ProjectHandler) Reject(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}
	var req ReviewRequest
	_ = c.Bind(&req)

	project, err := h.svc.Reject(c.Request().Context(), id, req.Note)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ProjectResponse{Project: project})
}

// MarkFunded godoc
// @Summary Close funding on an approved project
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/projects/{id}/fund [put]
func (h *ProjectHandler) MarkFunded(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}
	project, err := h.svc.MarkFunded(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ProjectResponse{Project: project})
}

// MarkCompleted godoc
// @Summary Complete a funded project
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/projects/{id}/complete [put]
func (h *ProjectHandler) MarkCompleted(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}
	project, err := h.svc.MarkCompleted(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ProjectResponse{Project: project})
}
