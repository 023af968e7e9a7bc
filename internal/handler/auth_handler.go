package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"usermgmt/internal/auth"
	"usermgmt/internal/errors"
	"usermgmt/internal/middleware"
	"usermgmt/internal/model"
	"usermgmt/internal/service"
)

// TokenIssuer issues signed tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID uint, email string, role model.Role) (string, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
	tokens      TokenIssuer
	cookies     *auth.CookieManager
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, userService service.UserService, tokens TokenIssuer, cookies *auth.CookieManager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		tokens:      tokens,
		cookies:     cookies,
	}
}

// SignUpRequest represents a user registration request.
type SignUpRequest struct {
	Name     string      `json:"name" validate:"required,notblank,min=2,max=255"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=6,max=128"`
	Role     *model.Role `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

func (r *SignUpRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

// SignInRequest represents a user login request.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *SignInRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// UserEnvelope wraps a single user in responses.
type UserEnvelope struct {
	Message string              `json:"message,omitempty"`
	User    *model.UserResponse `json:"user"`
}

// MessageResponse is a body carrying only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// SignUp godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Registration data"
// @Success 201 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := service.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password}
	if req.Role != nil {
		in.Role = *req.Role
	}

	user, err := h.authService.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	if err := h.startSession(c, user); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, UserEnvelope{
		Message: "user registered successfully",
		User:    user,
	})
}

// SignIn godoc
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Credentials"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if err := h.startSession(c, user); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, UserEnvelope{
		Message: "user signed in successfully",
		User:    user,
	})
}

// SignOut godoc
// @Summary Sign out
// @Description Clears the session cookie and revokes its token.
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if token, ok := h.cookies.Read(c); ok {
		if err := h.authService.Logout(c.Request().Context(), token); err != nil {
			c.Logger().Warnf("sign-out: %v", err)
		}
	}
	h.cookies.Clear(c)

	return c.JSON(http.StatusOK, MessageResponse{Message: "user signed out successfully"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} UserEnvelope
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return errors.ErrInvalidToken
	}
	user, err := h.userService.GetUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: user})
}

func (h *AuthHandler) startSession(c echo.Context, user *model.UserResponse) error {
	token, err := h.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return err
	}
	h.cookies.Set(c, token)
	return nil
}
