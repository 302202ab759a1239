// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/deliverycalc/quote-gateway/app/dto"
)

// AdminAuthMiddleware guards admin endpoints with a bcrypt-hashed API key.
// The plaintext key never lives in config; only its hash does.
type AdminAuthMiddleware struct {
	apiKeyHash string
}

// NewAdminAuthMiddleware creates a new admin authentication middleware
func NewAdminAuthMiddleware(apiKeyHash string) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{apiKeyHash: apiKeyHash}
}

// Authenticate validates the X-Admin-Key header against the configured hash
func (m *AdminAuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m.apiKeyHash == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.APIResponse{
				Success: false,
				Message: "Admin endpoints are disabled",
				Error: dto.ErrorDetail{
					Code: "ADMIN_DISABLED",
				},
			})
		}

		key := strings.TrimSpace(c.Get("X-Admin-Key"))
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "X-Admin-Key header is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_ADMIN_KEY",
				},
			})
		}

		if err := bcrypt.CompareHashAndPassword([]byte(m.apiKeyHash), []byte(key)); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid admin key",
				Error: dto.ErrorDetail{
					Code: "INVALID_ADMIN_KEY",
				},
			})
		}

		return c.Next()
	}
}
