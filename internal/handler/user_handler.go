package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"zuvomo/internal/errors"
	"zuvomo/internal/model"
	"zuvomo/internal/repository"
	"zuvomo/internal/service"
)

// UserHandler serves the account approval workflow.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// RejectUserRequest carries an optional reason shown to the applicant.
type RejectUserRequest struct {
	Reason string `json:"reason"`
}

// ListUsers godoc
// @Summary List users for review
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param approval_status query string false "pending, approved or rejected"
// @Param role query string false "project_owner or investor"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	filter := repository.UserFilter{
		Role:           model.Role(c.QueryParam("role")),
		ApprovalStatus: model.ApprovalStatus(c.QueryParam("approval_status")),
	}
	switch filter.ApprovalStatus {
	case "", model.ApprovalPending, model.ApprovalApproved, model.ApprovalRejected:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid approval_status",
			Code:  "INVALID_FILTER",
		})
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid role",
			Code:  "INVALID_FILTER",
		})
	}
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filter.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	users, err := h.svc.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get user by id
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// ApproveUser godoc
// @Summary Approve a pending account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/users/{id}/approve [put]
func (h *UserHandler) ApproveUser(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Approve(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// RejectUser godoc
// @Summary Reject a pending account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body RejectUserRequest false "Reason"
// @Success 200 {object} UserResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/users/{id}/reject [put]
func (h *UserHandler) RejectUser(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}
	var req RejectUserRequest
	_ = c.Bind(&req)

	user, err := h.svc.Reject(c.Request().Context(), id, req.Reason)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// Resubmit godoc
// @Summary Return a rejected account to review
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/me/resubmit [put]
func (h *UserHandler) Resubmit(c echo.Context) error {
	user, err := h.svc.Resubmit(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

func pathUUID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid id",
			Code:  "INVALID_UUID",
		})
	}
	return id, nil
}
