package domain

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is a closed workflow state for an item. The set of valid statuses is
// carried by the Vocabulary, not hard-coded, because the domain vocabulary is a
// deployment choice shared with the database schema.
type Status string

// SortKey selects the column the item list is ordered by.
type SortKey string

const (
	SortKeyUpdatedAt SortKey = "updated_at"
	SortKeyPrice     SortKey = "price"
)

// ListOptions controls the ordering of the full item list.
type ListOptions struct {
	Key       SortKey
	Ascending bool
}

// Item is one purchase-tracking record (a furniture/appliance entry).
type Item struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Room        string           `json:"room"`
	Brand       *string          `json:"brand,omitempty"`
	Model       *string          `json:"model,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Currency    string           `json:"currency"`
	URL         *string          `json:"url,omitempty"`
	Note        *string          `json:"note,omitempty"`
	Status      Status           `json:"status"`
	ImagePath   *string          `json:"imagePath,omitempty"`
	PurchasedAt *time.Time       `json:"purchasedAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Validate checks the item against the given vocabulary.
func (i *Item) Validate(vocab Vocabulary) error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrItemNameRequired
	}
	if strings.TrimSpace(i.Category) == "" {
		return ErrItemCategoryRequired
	}
	if i.Room == "" {
		return ErrItemRoomRequired
	}
	if !vocab.ValidRoom(i.Room) {
		return ErrItemRoomUnknown
	}
	if i.Status == "" {
		return ErrItemStatusRequired
	}
	if !vocab.ValidStatus(i.Status) {
		return ErrItemStatusUnknown
	}
	if i.Price != nil && i.Price.IsNegative() {
		return ErrItemPriceNegative
	}
	if i.URL != nil && *i.URL != "" {
		if _, err := url.ParseRequestURI(*i.URL); err != nil {
			return ErrItemInvalidURL
		}
	}
	return nil
}

// ItemRepository is the contract to the item store. The store assigns IDs and
// both timestamps; callers never patch the cached list in place, they re-List.
type ItemRepository interface {
	List(ctx context.Context, opts ListOptions) ([]*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	Insert(ctx context.Context, item *Item) (*Item, error)
	Update(ctx context.Context, item *Item) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
