package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/yclin/homelist-backend/internal/domain"
	"github.com/yclin/homelist-backend/internal/middleware"
	"github.com/yclin/homelist-backend/internal/repository/storage"
	"github.com/yclin/homelist-backend/internal/service"
)

// ItemHandler handles item-related HTTP requests
type ItemHandler struct {
	itemService  *service.ItemService
	assetService *service.AssetService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService *service.ItemService, assetService *service.AssetService) *ItemHandler {
	return &ItemHandler{
		itemService:  itemService,
		assetService: assetService,
	}
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Room         string  `json:"room"`
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	Price        *string `json:"price"`
	Currency     string  `json:"currency"`
	URL          *string `json:"url"`
	Note         *string `json:"note"`
	Status       string  `json:"status"`
	ImagePath    *string `json:"imagePath"`
	ImageURL     *string `json:"imageUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	PurchasedAt  *string `json:"purchasedAt"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// RoomGroupResponse represents one room's slice of the grouped view
type RoomGroupResponse struct {
	Room  string         `json:"room"`
	Items []ItemResponse `json:"items"`
}

// OverviewResponse represents the derived grouped/aggregated view
type OverviewResponse struct {
	Groups        []RoomGroupResponse `json:"groups"`
	Categories    []string            `json:"categories"`
	Totals        map[string]string   `json:"totals"`
	FilteredCount int                 `json:"filteredCount"`
	TotalCount    int                 `json:"totalCount"`
}

// MetaResponse exposes the configured vocabulary to clients
type MetaResponse struct {
	Rooms           []string `json:"rooms"`
	Statuses        []string `json:"statuses"`
	InitialStatus   string   `json:"initialStatus"`
	PurchasedStatus string   `json:"purchasedStatus"`
	DefaultCurrency string   `json:"defaultCurrency"`
}

func (h *ItemHandler) toItemResponse(c echo.Context, item *domain.Item) ItemResponse {
	resp := ItemResponse{
		ID:        item.ID.String(),
		Name:      item.Name,
		Category:  item.Category,
		Room:      item.Room,
		Brand:     item.Brand,
		Model:     item.Model,
		Currency:  item.Currency,
		URL:       item.URL,
		Note:      item.Note,
		Status:    string(item.Status),
		ImagePath: item.ImagePath,
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.Format(time.RFC3339),
	}
	if item.Price != nil {
		price := item.Price.String()
		resp.Price = &price
	}
	if item.PurchasedAt != nil {
		purchasedAt := item.PurchasedAt.Format(time.RFC3339)
		resp.PurchasedAt = &purchasedAt
	}
	if item.ImagePath != nil && h.assetService.IsEnabled() {
		ctx := c.Request().Context()
		if url, err := h.assetService.ResolveURL(ctx, *item.ImagePath); err == nil {
			resp.ImageURL = &url
		} else {
			log.Warn().Err(err).Str("key", *item.ImagePath).Msg("Failed to resolve image URL")
		}
		thumbKey := service.ThumbnailKey(*item.ImagePath)
		if url, err := h.assetService.ResolveURL(ctx, thumbKey); err == nil {
			resp.ThumbnailURL = &url
		}
	}
	return resp
}

func (h *ItemHandler) toItemResponses(c echo.Context, items []*domain.Item) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i, item := range items {
		responses[i] = h.toItemResponse(c, item)
	}
	return responses
}

func parseListOptions(c echo.Context) (domain.ListOptions, error) {
	opts := domain.ListOptions{Key: domain.SortKeyUpdatedAt}
	switch sort := c.QueryParam("sort"); sort {
	case "", "updated_at":
		opts.Key = domain.SortKeyUpdatedAt
	case "price":
		opts.Key = domain.SortKeyPrice
	default:
		return opts, domain.ErrInvalidSortKey
	}
	opts.Ascending = c.QueryParam("dir") == "asc"
	return opts, nil
}

// GetItems handles GET /api/v1/items
func (h *ItemHandler) GetItems(c echo.Context) error {
	opts, err := parseListOptions(c)
	if err != nil {
		return NewValidationError(c, "Invalid sort key", []ValidationError{
			{Field: "sort", Message: "Must be one of: updated_at, price"},
		})
	}

	items, err := h.itemService.List(c.Request().Context(), opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list items")
		return NewInternalError(c, "Failed to list items")
	}

	return c.JSON(http.StatusOK, h.toItemResponses(c, items))
}

// GetOverview handles GET /api/v1/items/overview
func (h *ItemHandler) GetOverview(c echo.Context) error {
	opts, err := parseListOptions(c)
	if err != nil {
		return NewValidationError(c, "Invalid sort key", []ValidationError{
			{Field: "sort", Message: "Must be one of: updated_at, price"},
		})
	}

	filter := service.FilterState{
		Query:    c.QueryParam("q"),
		Room:     c.QueryParam("room"),
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
	}

	overview, err := h.itemService.Overview(c.Request().Context(), filter, opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build overview")
		return NewInternalError(c, "Failed to build overview")
	}

	groups := make([]RoomGroupResponse, len(overview.Groups))
	for i, group := range overview.Groups {
		groups[i] = RoomGroupResponse{
			Room:  group.Room,
			Items: h.toItemResponses(c, group.Items),
		}
	}

	totals := make(map[string]string, len(overview.Totals))
	for currency, total := range overview.Totals {
		totals[currency] = total.String()
	}

	return c.JSON(http.StatusOK, OverviewResponse{
		Groups:        groups,
		Categories:    overview.Categories,
		Totals:        totals,
		FilteredCount: overview.FilteredCount,
		TotalCount:    overview.TotalCount,
	})
}

// GetItem handles GET /api/v1/items/:id
func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid item ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}

	item, err := h.itemService.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return NewNotFoundError(c, "Item not found")
		}
		log.Error().Err(err).Str("item_id", id.String()).Msg("Failed to get item")
		return NewInternalError(c, "Failed to get item")
	}

	return c.JSON(http.StatusOK, h.toItemResponse(c, item))
}

// GetMeta handles GET /api/v1/meta
func (h *ItemHandler) GetMeta(c echo.Context) error {
	vocab := h.itemService.Vocabulary()

	statuses := make([]string, len(vocab.Statuses))
	for i, status := range vocab.Statuses {
		statuses[i] = string(status)
	}

	return c.JSON(http.StatusOK, MetaResponse{
		Rooms:           vocab.Rooms,
		Statuses:        statuses,
		InitialStatus:   string(vocab.InitialStatus),
		PurchasedStatus: string(vocab.PurchasedStatus),
		DefaultCurrency: vocab.DefaultCurrency,
	})
}

var errInvalidPrice = errors.New("price must be a decimal number")

// parseUpsertInput reads the multipart form fields and the optional image file
func (h *ItemHandler) parseUpsertInput(c echo.Context) (service.UpsertItemInput, error) {
	input := service.UpsertItemInput{
		Name:     c.FormValue("name"),
		Category: c.FormValue("category"),
		Room:     c.FormValue("room"),
		Status:   c.FormValue("status"),
		Brand:    c.FormValue("brand"),
		Model:    c.FormValue("model"),
		Currency: c.FormValue("currency"),
		URL:      c.FormValue("url"),
		Note:     c.FormValue("note"),
	}

	if raw := c.FormValue("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return input, errInvalidPrice
		}
		input.Price = &price
	}

	file, err := c.FormFile("image")
	if err != nil {
		// No image attached; the item keeps its current one
		return input, nil
	}

	if !h.assetService.IsEnabled() {
		return input, service.ErrAssetStorageNotConfigured
	}

	src, err := file.Open()
	if err != nil {
		return input, fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return input, fmt.Errorf("read uploaded file: %w", err)
	}

	input.Image = &service.ImageUpload{
		Filename:    file.Filename,
		Data:        data,
		ContentType: file.Header.Get("Content-Type"),
	}
	return input, nil
}

// writeParseError maps parseUpsertInput errors to problem responses
func (h *ItemHandler) writeParseError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errInvalidPrice):
		return NewValidationError(c, "Invalid price", []ValidationError{
			{Field: "price", Message: "Must be a decimal number"},
		})
	case errors.Is(err, service.ErrAssetStorageNotConfigured):
		return NewServiceUnavailableError(c, "Image uploads are disabled (storage not configured)")
	default:
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
}

// CreateItem handles POST /api/v1/items
func (h *ItemHandler) CreateItem(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	input, err := h.parseUpsertInput(c)
	if err != nil {
		return h.writeParseError(c, err)
	}

	item, err := h.itemService.Upsert(c.Request().Context(), subject, input)
	if err != nil {
		return h.writeUpsertError(c, err)
	}

	return c.JSON(http.StatusCreated, h.toItemResponse(c, item))
}

// UpdateItem handles PUT /api/v1/items/:id
func (h *ItemHandler) UpdateItem(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid item ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}

	input, err := h.parseUpsertInput(c)
	if err != nil {
		return h.writeParseError(c, err)
	}
	input.ID = &id

	item, err := h.itemService.Upsert(c.Request().Context(), subject, input)
	if err != nil {
		return h.writeUpsertError(c, err)
	}

	return c.JSON(http.StatusOK, h.toItemResponse(c, item))
}

// DeleteItem handles DELETE /api/v1/items/:id
func (h *ItemHandler) DeleteItem(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid item ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}

	if err := h.itemService.Delete(c.Request().Context(), subject, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrAdminOnly):
			return NewForbiddenError(c, "Admin access required")
		case errors.Is(err, domain.ErrItemNotFound):
			return NewNotFoundError(c, "Item not found")
		default:
			log.Error().Err(err).Str("item_id", id.String()).Msg("Failed to delete item")
			return NewInternalError(c, "Failed to delete item")
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// writeUpsertError maps service and domain errors to problem responses
func (h *ItemHandler) writeUpsertError(c echo.Context, err error) error {
	var field string
	switch {
	case errors.Is(err, domain.ErrAdminOnly):
		return NewForbiddenError(c, "Admin access required")
	case errors.Is(err, domain.ErrItemNotFound):
		return NewNotFoundError(c, "Item not found")
	case errors.Is(err, storage.ErrKeyExists):
		return NewConflictError(c, "Image key collision, please retry")
	case errors.Is(err, service.ErrAssetStorageNotConfigured):
		return NewServiceUnavailableError(c, "Image uploads are disabled (storage not configured)")
	case errors.Is(err, service.ErrAssetEmpty), errors.Is(err, service.ErrAssetTooLarge):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "image", Message: err.Error()},
		})
	case errors.Is(err, domain.ErrItemNameRequired):
		field = "name"
	case errors.Is(err, domain.ErrItemCategoryRequired):
		field = "category"
	case errors.Is(err, domain.ErrItemRoomRequired), errors.Is(err, domain.ErrItemRoomUnknown):
		field = "room"
	case errors.Is(err, domain.ErrItemStatusRequired), errors.Is(err, domain.ErrItemStatusUnknown):
		field = "status"
	case errors.Is(err, domain.ErrItemPriceNegative):
		field = "price"
	case errors.Is(err, domain.ErrItemInvalidURL):
		field = "url"
	default:
		log.Error().Err(err).Msg("Failed to save item")
		return NewInternalError(c, "Failed to save item")
	}

	return NewValidationError(c, "Validation failed", []ValidationError{
		{Field: field, Message: err.Error()},
	})
}
