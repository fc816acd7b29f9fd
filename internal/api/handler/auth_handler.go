package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/payrollhq/payroll-system/internal/core/domain"
	"github.com/payrollhq/payroll-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type userCollection struct {
	Embedded struct {
		Users []*domain.User `json:"users"`
	} `json:"_embedded"`
	Links links `json:"_links"`
}

// Register handles POST /auth/register. Self-registration never grants the
// admin role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login handles POST /auth/login and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Users handles GET /admin/users.
func (h *AuthHandler) Users(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	var out userCollection
	out.Embedded.Users = users
	if out.Embedded.Users == nil {
		out.Embedded.Users = []*domain.User{}
	}
	out.Links = collectionLinks(c, "/admin/users")
	return c.JSON(http.StatusOK, out)
}
