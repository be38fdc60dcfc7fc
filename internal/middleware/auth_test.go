package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
)

func TestGetSubject(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		setup    func(c echo.Context)
		expected string
	}{
		{
			name: "returns subject when present",
			setup: func(c echo.Context) {
				ctx := context.WithValue(c.Request().Context(), SubjectKey, "auth0|12345")
				c.SetRequest(c.Request().WithContext(ctx))
			},
			expected: "auth0|12345",
		},
		{
			name:     "returns empty string when not present",
			setup:    func(c echo.Context) {},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			tt.setup(c)

			result := GetSubject(c)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestGetClaims(t *testing.T) {
	e := echo.New()

	t.Run("returns claims when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{
				Subject: "auth0|test",
			},
		}
		ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
		c.SetRequest(c.Request().WithContext(ctx))

		result := GetClaims(c)
		if result == nil {
			t.Fatal("Expected claims, got nil")
		}
		if result.RegisteredClaims.Subject != "auth0|test" {
			t.Errorf("Expected subject 'auth0|test', got %q", result.RegisteredClaims.Subject)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		result := GetClaims(c)
		if result != nil {
			t.Error("Expected nil, got claims")
		}
	})
}

func TestGetCustomClaims(t *testing.T) {
	e := echo.New()

	t.Run("returns custom claims when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		customClaims := &CustomClaims{
			Email:   "test@example.com",
			Name:    "Test User",
			Picture: "https://example.com/pic.jpg",
		}
		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{
				Subject: "auth0|test",
			},
			CustomClaims: customClaims,
		}
		ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
		c.SetRequest(c.Request().WithContext(ctx))

		result := GetCustomClaims(c)
		if result == nil {
			t.Fatal("Expected custom claims, got nil")
		}
		if result.Email != "test@example.com" {
			t.Errorf("Expected email 'test@example.com', got %q", result.Email)
		}
		if result.Name != "Test User" {
			t.Errorf("Expected name 'Test User', got %q", result.Name)
		}
	})

	t.Run("returns nil when claims not present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		result := GetCustomClaims(c)
		if result != nil {
			t.Error("Expected nil, got custom claims")
		}
	})
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{
		Email: "test@example.com",
		Name:  "Test",
	}

	err := claims.Validate(context.Background())
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestAuthMiddleware_MissingAuthorizationHeader(t *testing.T) {
	e := echo.New()

	// Create a mock middleware that doesn't actually validate tokens
	// but tests the header parsing logic
	middleware := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			return next(c)
		}
	}

	handler := middleware(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler(c)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("Expected HTTPError, got %T", err)
	}

	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", httpErr.Code)
	}
}

func TestAuthMiddleware_InvalidAuthorizationHeaderFormat(t *testing.T) {
	e := echo.New()

	middleware := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			// Check Bearer prefix manually for test
			if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
			}

			return next(c)
		}
	}

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "invalid-token"},
		{"wrong prefix", "Basic token123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler(c)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("Expected HTTPError, got %T", err)
			}

			if httpErr.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", httpErr.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()
	m := &AuthMiddleware{adminSubject: "auth0|admin"}

	handler := m.RequireAdmin()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	tests := []struct {
		name       string
		subject    string
		wantStatus int
	}{
		{"admin subject passes", "auth0|admin", http.StatusOK},
		{"other subject rejected", "auth0|guest", http.StatusForbidden},
		{"missing subject rejected", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/items", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if tt.subject != "" {
				ctx := context.WithValue(req.Context(), SubjectKey, tt.subject)
				c.SetRequest(req.WithContext(ctx))
			}

			err := handler(c)

			if tt.wantStatus == http.StatusOK {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				if rec.Code != http.StatusOK {
					t.Errorf("Expected status 200, got %d", rec.Code)
				}
				return
			}

			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("Expected HTTPError, got %T", err)
			}
			if httpErr.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, httpErr.Code)
			}
		})
	}
}
