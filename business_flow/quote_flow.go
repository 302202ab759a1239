package businessflow

import (
	"context"
	"log"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/deliverycalc/quote-gateway/app/dto"
	"github.com/deliverycalc/quote-gateway/app/services"
	"github.com/deliverycalc/quote-gateway/models"
	"github.com/deliverycalc/quote-gateway/repository"
	"github.com/deliverycalc/quote-gateway/utils"
)

// QuoteFlow owns quote submission, variant selection and history.
type QuoteFlow interface {
	Submit(ctx context.Context, req *dto.SubmitQuoteRequest, metadata *ClientMetadata) (*dto.QuoteSessionResponse, error)
	Session(ctx context.Context, id string) (*dto.QuoteSessionResponse, error)
	SelectVariant(ctx context.Context, id string, index int) (*dto.QuoteSessionResponse, error)
	History(ctx context.Context, limit int) (*dto.QuoteHistoryResponse, error)
}

// QuoteFlowImpl implements the quote business flow
type QuoteFlowImpl struct {
	quoteClient services.QuoteClient
	sessionRepo repository.QuoteSessionRepository
	historyRepo repository.QuoteHistoryRepository
	catalogRepo repository.CatalogRepository

	// busy guards against overlapping upstream submissions; cleared on every
	// exit path, including upstream failure.
	busy atomic.Bool
}

// NewQuoteFlow creates a new quote flow. historyRepo may be nil when the
// database is disabled.
func NewQuoteFlow(
	quoteClient services.QuoteClient,
	sessionRepo repository.QuoteSessionRepository,
	historyRepo repository.QuoteHistoryRepository,
	catalogRepo repository.CatalogRepository,
) QuoteFlow {
	return &QuoteFlowImpl{
		quoteClient: quoteClient,
		sessionRepo: sessionRepo,
		historyRepo: historyRepo,
		catalogRepo: catalogRepo,
	}
}

// BuildQuoteRequest validates user input and assembles the upstream payload.
// The request never leaves the gateway when validation fails.
func BuildQuoteRequest(coordText, transportType string, addManipulator bool, selectedSpecial string, items []dto.QuoteItemInput) (*models.QuoteRequest, error) {
	lat, lon, err := parseCoordinates(coordText)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrEmptyItemList
	}
	lines := make([]models.QuoteLineItem, 0, len(items))
	positive := 0
	for _, item := range items {
		qty := coerceQuantity(item.Quantity)
		if qty >= 1 {
			positive++
		}
		lines = append(lines, models.QuoteLineItem{
			Category: strings.TrimSpace(item.Category),
			Subtype:  strings.TrimSpace(item.Subtype),
			Quantity: qty,
		})
	}
	if positive == 0 {
		return nil, ErrEmptyItemList
	}
	if positive != len(lines) {
		return nil, ErrInvalidQuantity
	}

	transport := models.TransportType(transportType)
	if transport == "" {
		transport = models.TransportAuto
	}

	return &models.QuoteRequest{
		UploadLat:       lat,
		UploadLon:       lon,
		TransportType:   transport,
		AddManipulator:  addManipulator,
		SelectedSpecial: strings.TrimSpace(selectedSpecial),
		Items:           lines,
	}, nil
}

// Submit builds the upstream request, submits it and persists the resulting
// variant session. Only one submission runs at a time per instance.
func (f *QuoteFlowImpl) Submit(ctx context.Context, req *dto.SubmitQuoteRequest, metadata *ClientMetadata) (*dto.QuoteSessionResponse, error) {
	quoteReq, err := BuildQuoteRequest(req.Coordinates, req.TransportType, req.AddManipulator, req.SelectedSpecial, req.Items)
	if err != nil {
		return nil, NewBusinessError("INVALID_QUOTE_REQUEST", "Quote request rejected", err)
	}
	if err := f.checkSpecialVehicle(ctx, quoteReq.SelectedSpecial); err != nil {
		return nil, NewBusinessError("INVALID_QUOTE_REQUEST", "Quote request rejected", err)
	}

	if !f.busy.CompareAndSwap(false, true) {
		return nil, NewBusinessError("SUBMISSION_IN_FLIGHT", "A quote submission is already in progress", ErrSubmissionInFlight)
	}
	defer f.busy.Store(false)

	variants, err := f.quoteClient.SubmitQuote(ctx, quoteReq)
	if err != nil {
		return nil, NewBusinessError("QUOTE_SUBMISSION_FAILED", "Quote service call failed", err)
	}

	now := utils.UTCNow()
	session := &models.QuoteSession{
		ID:        uuid.New().String(),
		Request:   *quoteReq,
		CreatedAt: now,
		UpdatedAt: now,
	}
	session.State.Receive(variants)

	if err := f.sessionRepo.Save(ctx, session); err != nil {
		return nil, NewBusinessError("SESSION_STORE_FAILED", "Failed to persist quote session", err)
	}
	f.recordHistory(ctx, session, metadata)

	return sessionResponse(session), nil
}

// Session returns an existing quote session by ID.
func (f *QuoteFlowImpl) Session(ctx context.Context, id string) (*dto.QuoteSessionResponse, error) {
	session, err := f.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return sessionResponse(session), nil
}

// SelectVariant moves the selection of an existing session. An out-of-range
// index leaves the selection untouched and returns the unchanged session.
func (f *QuoteFlowImpl) SelectVariant(ctx context.Context, id string, index int) (*dto.QuoteSessionResponse, error) {
	session, err := f.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State.Select(index) {
		session.UpdatedAt = utils.UTCNow()
		if err := f.sessionRepo.Save(ctx, session); err != nil {
			return nil, NewBusinessError("SESSION_STORE_FAILED", "Failed to persist quote session", err)
		}
	}
	return sessionResponse(session), nil
}

// History lists past submissions, newest first.
func (f *QuoteFlowImpl) History(ctx context.Context, limit int) (*dto.QuoteHistoryResponse, error) {
	if f.historyRepo == nil {
		return nil, NewBusinessError("HISTORY_NOT_AVAILABLE", "Quote history storage is disabled", ErrHistoryNotAvailable)
	}
	rows, err := f.historyRepo.Recent(ctx, limit)
	if err != nil {
		return nil, NewBusinessError("HISTORY_FETCH_FAILED", "Failed to fetch quote history", err)
	}
	out := &dto.QuoteHistoryResponse{Items: make([]dto.QuoteHistoryItem, 0, len(rows))}
	for _, row := range rows {
		out.Items = append(out.Items, dto.QuoteHistoryItem{
			UUID:          row.UUID.String(),
			UploadLat:     row.UploadLat,
			UploadLon:     row.UploadLon,
			TransportType: row.TransportType,
			ItemCount:     row.ItemCount,
			VariantCount:  row.VariantCount,
			TransportName: row.TransportName,
			TotalCost:     row.TotalCost,
			TotalWeight:   row.TotalWeight,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}

func (f *QuoteFlowImpl) loadSession(ctx context.Context, id string) (*models.QuoteSession, error) {
	session, err := f.sessionRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("SESSION_FETCH_FAILED", "Failed to load quote session", err)
	}
	if session == nil {
		return nil, NewBusinessError("SESSION_NOT_FOUND", "Quote session not found or expired", ErrQuoteSessionNotFound)
	}
	return session, nil
}

// checkSpecialVehicle rejects a special equipment name the catalog does not
// know. With no snapshot loaded the name passes through; the upstream
// service resolves names on its side anyway.
func (f *QuoteFlowImpl) checkSpecialVehicle(ctx context.Context, name string) error {
	if name == "" || f.catalogRepo == nil {
		return nil
	}
	snap := f.catalogRepo.Snapshot(ctx)
	if snap == nil || len(snap.Tariffs) == 0 {
		return nil
	}
	for _, sv := range models.SpecialVehicles(snap.Tariffs) {
		if sv.Name == name {
			return nil
		}
	}
	return ErrUnknownSpecialVehicle
}

// recordHistory is best effort; a storage failure must not fail the quote.
func (f *QuoteFlowImpl) recordHistory(ctx context.Context, session *models.QuoteSession, metadata *ClientMetadata) {
	if f.historyRepo == nil {
		return
	}
	row := &models.QuoteHistory{
		UUID:          uuid.New(),
		UploadLat:     session.Request.UploadLat,
		UploadLon:     session.Request.UploadLon,
		TransportType: string(session.Request.TransportType),
		ItemCount:     len(session.Request.Items),
		VariantCount:  len(session.State.Variants),
	}
	if metadata != nil {
		row.ClientIP = metadata.IPAddress
	}
	if selected, ok := session.State.Selected(); ok {
		row.TransportName = selected.TransportName
		row.TotalCost = selected.TotalCost
		row.TotalWeight = selected.TotalWeight
	}
	if err := f.historyRepo.Save(ctx, row); err != nil {
		log.Printf("quote history save failed: %v", err)
	}
}

func sessionResponse(session *models.QuoteSession) *dto.QuoteSessionResponse {
	resp := &dto.QuoteSessionResponse{
		SessionID:     session.ID,
		Variants:      session.State.Variants,
		SelectedIndex: session.State.SelectedIndex,
		CreatedAt:     session.CreatedAt,
	}
	if selected, ok := session.State.Selected(); ok {
		resp.Selected = utils.ToPtr(selected)
	}
	return resp
}

func parseCoordinates(coordText string) (float64, float64, error) {
	parts := strings.Split(coordText, ",")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, 0, ErrInvalidCoordinates
	}
	return lat, lon, nil
}

// coerceQuantity accepts the numeric spellings legacy clients send:
// numbers, numeric strings, and nothing at all.
func coerceQuantity(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if fl, err := strconv.ParseFloat(s, 64); err == nil {
			return int(fl)
		}
		return 0
	default:
		return 0
	}
}
