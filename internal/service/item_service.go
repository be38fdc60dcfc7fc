package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/yclin/homelist-backend/internal/domain"
	"github.com/yclin/homelist-backend/internal/websocket"
)

// ItemService gates all writes behind the admin check, shapes payloads,
// orchestrates the optional image upload before the item write, and publishes
// a change event after every successful mutation so connected clients reload.
// Reads are public and unchecked.
type ItemService struct {
	items        domain.ItemRepository
	assets       *AssetService
	views        *ViewService
	vocab        domain.Vocabulary
	adminSubject string
	publisher    websocket.EventPublisher
	now          func() time.Time
}

// NewItemService creates a new ItemService
func NewItemService(items domain.ItemRepository, assets *AssetService, views *ViewService, vocab domain.Vocabulary, adminSubject string, publisher websocket.EventPublisher) *ItemService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &ItemService{
		items:        items,
		assets:       assets,
		views:        views,
		vocab:        vocab,
		adminSubject: adminSubject,
		publisher:    publisher,
		now:          time.Now,
	}
}

// Vocabulary exposes the configured room/status sets for read surfaces.
func (s *ItemService) Vocabulary() domain.Vocabulary {
	return s.vocab
}

// IsAdmin reports whether subject is the configured administrator.
func (s *ItemService) IsAdmin(subject string) bool {
	return subject != "" && subject == s.adminSubject
}

func (s *ItemService) authorize(subject string) error {
	if !s.IsAdmin(subject) {
		return domain.ErrAdminOnly
	}
	return nil
}

// List returns the full ordered collection from the store.
func (s *ItemService) List(ctx context.Context, opts domain.ListOptions) ([]*domain.Item, error) {
	if opts.Key == "" {
		opts.Key = domain.SortKeyUpdatedAt
	}
	if opts.Key != domain.SortKeyUpdatedAt && opts.Key != domain.SortKeyPrice {
		return nil, domain.ErrInvalidSortKey
	}
	return s.items.List(ctx, opts)
}

// Overview loads the raw collection and derives the grouped/aggregated view.
func (s *ItemService) Overview(ctx context.Context, f FilterState, opts domain.ListOptions) (*domain.Overview, error) {
	items, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s.views.Overview(items, f), nil
}

// GetByID returns one item.
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.items.GetByID(ctx, id)
}

// ImageUpload carries a pending image file attached to an upsert.
type ImageUpload struct {
	Filename    string
	Data        []byte
	ContentType string
}

// UpsertItemInput contains input for creating or updating an item. Optional
// string fields use empty to mean absent; they are normalized to null before
// the write.
type UpsertItemInput struct {
	ID       *uuid.UUID
	Name     string
	Category string
	Room     string
	Status   string
	Brand    string
	Model    string
	Price    *decimal.Decimal
	Currency string
	URL      string
	Note     string
	Image    *ImageUpload
}

// Upsert validates and writes an item. Ordering is strict: authorization,
// then validation, then the image upload (if any), then the row write. An
// upload failure aborts the whole operation so the row never references a
// key that was not stored.
func (s *ItemService) Upsert(ctx context.Context, subject string, input UpsertItemInput) (*domain.Item, error) {
	if err := s.authorize(subject); err != nil {
		return nil, err
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = string(s.vocab.InitialStatus)
	}

	item := &domain.Item{
		Name:     strings.TrimSpace(input.Name),
		Category: strings.TrimSpace(input.Category),
		Room:     strings.TrimSpace(input.Room),
		Status:   domain.Status(status),
		Brand:    normalizeOptional(input.Brand),
		Model:    normalizeOptional(input.Model),
		Price:    input.Price,
		Currency: strings.TrimSpace(input.Currency),
		URL:      normalizeOptional(input.URL),
		Note:     normalizeOptional(input.Note),
	}
	if item.Currency == "" {
		item.Currency = s.vocab.DefaultCurrency
	}
	if err := item.Validate(s.vocab); err != nil {
		return nil, err
	}

	// Load the existing row first so a vanished id fails before any upload.
	var existing *domain.Item
	if input.ID != nil {
		var err error
		existing, err = s.items.GetByID(ctx, *input.ID)
		if err != nil {
			return nil, err
		}
		item.ID = existing.ID
		item.ImagePath = existing.ImagePath
	}

	// Upload strictly before the row write.
	if input.Image != nil {
		key, err := s.assets.Upload(ctx, input.Image.Filename, input.Image.Data, input.Image.ContentType)
		if err != nil {
			return nil, err
		}
		item.ImagePath = &key
	}

	item.PurchasedAt = s.derivePurchasedAt(item.Status, existing)

	var (
		saved *domain.Item
		err   error
	)
	if existing == nil {
		saved, err = s.items.Insert(ctx, item)
	} else {
		saved, err = s.items.Update(ctx, item)
	}
	if err != nil {
		return nil, err
	}

	if existing == nil {
		log.Info().Str("item_id", saved.ID.String()).Str("name", saved.Name).Msg("Item created")
		s.publisher.Publish(websocket.ItemCreated(saved))
	} else {
		log.Info().Str("item_id", saved.ID.String()).Msg("Item updated")
		s.publisher.Publish(websocket.ItemUpdated(saved))
	}

	return saved, nil
}

// derivePurchasedAt computes the purchased timestamp. It is never taken from
// the caller: set on the transition into the purchased status, preserved on
// repeated saves while purchased, null for every other status.
func (s *ItemService) derivePurchasedAt(status domain.Status, existing *domain.Item) *time.Time {
	if status != s.vocab.PurchasedStatus {
		return nil
	}
	if existing != nil && existing.PurchasedAt != nil {
		return existing.PurchasedAt
	}
	now := s.now().UTC()
	return &now
}

// Delete removes exactly one item by id, then best-effort deletes its uploaded
// asset. The asset cleanup tolerates absence and never fails the delete.
func (s *ItemService) Delete(ctx context.Context, subject string, id uuid.UUID) error {
	if err := s.authorize(subject); err != nil {
		return err
	}

	existing, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}

	if existing.ImagePath != nil && s.assets.IsEnabled() {
		if err := s.assets.Delete(ctx, *existing.ImagePath); err != nil {
			log.Warn().Err(err).Str("item_id", id.String()).Str("key", *existing.ImagePath).Msg("Failed to delete item asset")
		}
	}

	log.Info().Str("item_id", id.String()).Msg("Item deleted")
	s.publisher.Publish(websocket.ItemDeleted(existing))

	return nil
}

func normalizeOptional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
