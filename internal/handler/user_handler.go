package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"usermgmt/internal/errors"
	"usermgmt/internal/middleware"
	"usermgmt/internal/model"
	"usermgmt/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateUserRequest lists every field a user update may carry.
type UpdateUserRequest struct {
	Name     *string     `json:"name,omitempty" validate:"omitempty,notblank,min=2,max=255"`
	Email    *string     `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password *string     `json:"password,omitempty" validate:"omitempty,min=6,max=128"`
	Role     *model.Role `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

func (r *UpdateUserRequest) normalize() {
	trimPtr(r.Name)
	trimPtr(r.Email)
}

func (r *UpdateUserRequest) empty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil && r.Role == nil
}

// UserListResponse wraps a list of users.
type UserListResponse struct {
	Users []model.UserResponse `json:"users"`
	Count int                  `json:"count"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} UserListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserListResponse{Users: users, Count: len(users)})
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: user})
}

// UpdateUser godoc
// @Summary Update user
// @Description Users may update themselves; admins may update anyone and change roles.
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.empty() {
		return errors.Validation([]errors.FieldError{{Field: "body", Message: "at least one field must be provided"}})
	}

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	user, err := h.svc.UpdateUser(c.Request().Context(), actor, id, service.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{Message: "user updated successfully", User: user})
}

// DeleteUser godoc
// @Summary Delete user
// @Description Users may delete themselves; admins may delete anyone but themselves.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	user, err := h.svc.DeleteUser(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{Message: "user deleted successfully", User: user})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Validation([]errors.FieldError{{Field: "id", Message: "must be a positive integer"}})
	}
	return uint(id), nil
}

func actorFrom(c echo.Context) (service.Actor, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return service.Actor{}, errors.ErrInvalidToken
	}
	return service.Actor{ID: claims.UserID, Role: claims.Role}, nil
}
