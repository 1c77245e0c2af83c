package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/smart-hospital-client/internal/api/dto"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/service"
)

// AuthHandler exposes the login and registration endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Missing required fields.")
	}

	if _, err := h.auth.RegisterUser(c.UserContext(), req.FullName, req.Email, req.Password, domain.Role(req.Role)); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.RegisterResponse{
		Success: true,
		Message: "User registered successfully.",
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Missing email or password.")
	}

	user, token, exp, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Login successful.",
		"token":      token,
		"role":       user.Role,
		"expires_at": exp,
	})
}
