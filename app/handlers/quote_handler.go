package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/deliverycalc/quote-gateway/app/dto"
	"github.com/deliverycalc/quote-gateway/app/middleware"
	"github.com/deliverycalc/quote-gateway/app/services"
	businessflow "github.com/deliverycalc/quote-gateway/business_flow"
)

// QuoteHandlerInterface defines the contract for quote handlers
type QuoteHandlerInterface interface {
	SubmitQuote(c fiber.Ctx) error
	GetSession(c fiber.Ctx) error
	SelectVariant(c fiber.Ctx) error
	History(c fiber.Ctx) error
}

// QuoteHandler handles quote-related HTTP requests
type QuoteHandler struct {
	quoteFlow businessflow.QuoteFlow
	validator *validator.Validate
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoteFlow businessflow.QuoteFlow) *QuoteHandler {
	return &QuoteHandler{
		quoteFlow: quoteFlow,
		validator: validator.New(),
	}
}

func (h *QuoteHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *QuoteHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SubmitQuote submits a quote request upstream and opens a variant session
func (h *QuoteHandler) SubmitQuote(c fiber.Ctx) error {
	var req dto.SubmitQuoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.quoteFlow.Submit(h.createRequestContext(c, "/api/v1/quotes"), &req, metadata)
	if err != nil {
		return h.quoteError(c, err, "Quote submission failed")
	}
	middleware.RecordQuoteSubmission("ok", len(result.Variants))

	return h.SuccessResponse(c, fiber.StatusCreated, "Quote computed successfully", result)
}

// GetSession returns an existing quote session with its variants
func (h *QuoteHandler) GetSession(c fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if sessionID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Session ID is required", "MISSING_SESSION_ID", nil)
	}

	result, err := h.quoteFlow.Session(h.createRequestContext(c, "/api/v1/quotes/"+sessionID), sessionID)
	if err != nil {
		return h.quoteError(c, err, "Failed to load quote session")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Quote session retrieved successfully", result)
}

// SelectVariant moves the selection of an existing quote session
func (h *QuoteHandler) SelectVariant(c fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if sessionID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Session ID is required", "MISSING_SESSION_ID", nil)
	}

	var req dto.SelectVariantRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.quoteFlow.SelectVariant(h.createRequestContext(c, "/api/v1/quotes/"+sessionID+"/select"), sessionID, *req.Index)
	if err != nil {
		return h.quoteError(c, err, "Failed to select variant")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Variant selection updated", result)
}

// History lists past quote submissions
func (h *QuoteHandler) History(c fiber.Ctx) error {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	result, err := h.quoteFlow.History(h.createRequestContext(c, "/api/v1/quotes/history"), limit)
	if err != nil {
		if errors.Is(err, businessflow.ErrHistoryNotAvailable) {
			return h.ErrorResponse(c, fiber.StatusNotImplemented, "Quote history storage is disabled", "HISTORY_NOT_AVAILABLE", nil)
		}
		log.Println("Failed to fetch quote history", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch quote history", "HISTORY_FETCH_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Quote history retrieved successfully", result)
}

func (h *QuoteHandler) quoteError(c fiber.Ctx, err error, message string) error {
	switch {
	case businessflow.IsInvalidCoordinates(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Coordinates must be two finite numbers", "INVALID_COORDINATES", nil)
	case businessflow.IsEmptyItemList(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one item with a positive quantity is required", "EMPTY_ITEM_LIST", nil)
	case businessflow.IsInvalidQuantity(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Item quantities must be positive integers", "INVALID_QUANTITY", nil)
	case businessflow.IsUnknownSpecialVehicle(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Selected special vehicle is not in the catalog", "UNKNOWN_SPECIAL_VEHICLE", nil)
	case businessflow.IsSubmissionInFlight(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "A quote submission is already in progress", "SUBMISSION_IN_FLIGHT", nil)
	case businessflow.IsQuoteSessionNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Quote session not found or expired", "SESSION_NOT_FOUND", nil)
	}

	var upstream *services.UpstreamError
	if errors.As(err, &upstream) {
		middleware.RecordQuoteSubmission("upstream_error", 0)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Quote service returned an error", "UPSTREAM_ERROR", fiber.Map{
			"status": upstream.StatusCode,
			"body":   upstream.Body,
		})
	}
	if errors.Is(err, services.ErrMalformedResponse) {
		middleware.RecordQuoteSubmission("malformed_response", 0)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Quote service returned an unrecognized response", "MALFORMED_RESPONSE", nil)
	}

	log.Println(message, err)
	middleware.RecordQuoteSubmission("error", 0)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, "QUOTE_ERROR", nil)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *QuoteHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 60*time.Second)
}
