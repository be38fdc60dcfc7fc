package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/yclin/homelist-backend/internal/middleware"
	"github.com/yclin/homelist-backend/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	itemService *service.ItemService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(itemService *service.ItemService) *AuthHandler {
	return &AuthHandler{
		itemService: itemService,
	}
}

// MeResponse represents the current authenticated user
type MeResponse struct {
	Subject    string  `json:"subject"`
	Email      *string `json:"email"`
	Name       *string `json:"name"`
	PictureURL *string `json:"pictureUrl"`
	IsAdmin    bool    `json:"isAdmin"`
}

// Me returns the current authenticated user's information
// GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	response := MeResponse{
		Subject: subject,
		IsAdmin: h.itemService.IsAdmin(subject),
	}

	if claims := middleware.GetCustomClaims(c); claims != nil {
		if claims.Email != "" {
			response.Email = &claims.Email
		}
		if claims.Name != "" {
			response.Name = &claims.Name
		}
		if claims.Picture != "" {
			response.PictureURL = &claims.Picture
		}
	}

	return c.JSON(http.StatusOK, response)
}

// LogoutResponse represents the response from logout
type LogoutResponse struct {
	Message string `json:"message"`
}

// Logout handles user logout
// POST /auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	// Log the logout event (useful for audit)
	log.Info().Str("subject", subject).Msg("User logged out")

	// Return success - Auth0 handles actual session termination
	return c.JSON(http.StatusOK, LogoutResponse{
		Message: "Logged out successfully",
	})
}
