package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/deliverycalc/quote-gateway/app/dto"
	"github.com/deliverycalc/quote-gateway/app/services"
	businessflow "github.com/deliverycalc/quote-gateway/business_flow"
)

// AdminHandlerInterface defines the contract for admin handlers
type AdminHandlerInterface interface {
	Reload(c fiber.Ctx) error
}

// AdminHandler handles admin HTTP requests
type AdminHandler struct {
	catalogFlow businessflow.CatalogFlow
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalogFlow businessflow.CatalogFlow) *AdminHandler {
	return &AdminHandler{catalogFlow: catalogFlow}
}

func (h *AdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Reload triggers an upstream data reload, then refreshes the local catalog
func (h *AdminHandler) Reload(c fiber.Ctx) error {
	result, err := h.catalogFlow.Reload(h.createRequestContext(c, "/api/v1/admin/reload"))
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			return h.ErrorResponse(c, fiber.StatusBadGateway, "Upstream data reload failed", "UPSTREAM_ERROR", fiber.Map{
				"status": upstream.StatusCode,
				"body":   upstream.Body,
			})
		}
		log.Println("Catalog reload failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Catalog reload failed", "RELOAD_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Catalog reloaded successfully", result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *AdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 120*time.Second)
}
