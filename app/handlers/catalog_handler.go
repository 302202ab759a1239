package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/deliverycalc/quote-gateway/app/dto"
	businessflow "github.com/deliverycalc/quote-gateway/business_flow"
	"github.com/deliverycalc/quote-gateway/utils"
)

// CatalogHandlerInterface defines the contract for catalog handlers
type CatalogHandlerInterface interface {
	Status(c fiber.Ctx) error
	Categories(c fiber.Ctx) error
	Factories(c fiber.Ctx) error
	Tariffs(c fiber.Ctx) error
	SpecialVehicles(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// CatalogHandler handles catalog-related HTTP requests
type CatalogHandler struct {
	catalogFlow businessflow.CatalogFlow
	exportFlow  businessflow.ExportFlow
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogFlow businessflow.CatalogFlow, exportFlow businessflow.ExportFlow) *CatalogHandler {
	return &CatalogHandler{
		catalogFlow: catalogFlow,
		exportFlow:  exportFlow,
	}
}

func (h *CatalogHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CatalogHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Status reports whether the catalog snapshot is loaded and how degraded it is
func (h *CatalogHandler) Status(c fiber.Ctx) error {
	status := h.catalogFlow.Status(h.createRequestContext(c, "/api/v1/catalog/status"))
	return h.SuccessResponse(c, fiber.StatusOK, "Catalog status", status)
}

// Categories returns the category/subtype map
func (h *CatalogHandler) Categories(c fiber.Ctx) error {
	result, err := h.catalogFlow.Categories(h.createRequestContext(c, "/api/v1/catalog/categories"))
	if err != nil {
		return h.catalogError(c, err, "Failed to fetch categories")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Categories retrieved successfully", result)
}

// Factories returns the grouped factory list
func (h *CatalogHandler) Factories(c fiber.Ctx) error {
	result, err := h.catalogFlow.Factories(h.createRequestContext(c, "/api/v1/catalog/factories"))
	if err != nil {
		return h.catalogError(c, err, "Failed to fetch factories")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Factories retrieved successfully", fiber.Map{
		"factories": result,
	})
}

// Tariffs returns the per-vehicle tariff groups
func (h *CatalogHandler) Tariffs(c fiber.Ctx) error {
	result, err := h.catalogFlow.Tariffs(h.createRequestContext(c, "/api/v1/catalog/tariffs"))
	if err != nil {
		return h.catalogError(c, err, "Failed to fetch tariffs")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Tariffs retrieved successfully", fiber.Map{
		"tariffs": result,
	})
}

// SpecialVehicles returns the selectable special equipment list
func (h *CatalogHandler) SpecialVehicles(c fiber.Ctx) error {
	result, err := h.catalogFlow.SpecialVehicles(h.createRequestContext(c, "/api/v1/catalog/special-vehicles"))
	if err != nil {
		return h.catalogError(c, err, "Failed to fetch special vehicles")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Special vehicles retrieved successfully", result)
}

// Export streams the catalog as an Excel workbook
func (h *CatalogHandler) Export(c fiber.Ctx) error {
	filename, data, err := h.exportFlow.ExportCatalog(h.createRequestContext(c, "/api/v1/catalog/export"))
	if err != nil {
		return h.catalogError(c, err, "Failed to export catalog")
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.Send(data)
}

func (h *CatalogHandler) catalogError(c fiber.Ctx, err error, message string) error {
	if businessflow.IsCatalogNotLoaded(err) {
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Catalog has not been loaded yet", "CATALOG_NOT_LOADED", nil)
	}
	log.Println(message, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, "CATALOG_ERROR", nil)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *CatalogHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
