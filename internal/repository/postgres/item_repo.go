package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/yclin/homelist-backend/internal/domain"
)

// itemColumns is the shared SELECT list. price is cast to text so it scans
// into decimal without float rounding.
const itemColumns = `
	id, name, category, room, brand, model,
	price::text, currency, url, note, status,
	image_path, purchased_at, created_at, updated_at`

// ItemRepository implements domain.ItemRepository using PostgreSQL
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// List retrieves all items ordered by the requested sort key. The key is
// mapped through a whitelist, never interpolated from caller input.
func (r *ItemRepository) List(ctx context.Context, opts domain.ListOptions) ([]*domain.Item, error) {
	var orderBy string
	switch opts.Key {
	case domain.SortKeyPrice:
		// Unpriced items sink to the end in either direction.
		if opts.Ascending {
			orderBy = "price ASC NULLS LAST, updated_at DESC"
		} else {
			orderBy = "price DESC NULLS LAST, updated_at DESC"
		}
	case domain.SortKeyUpdatedAt, "":
		if opts.Ascending {
			orderBy = "updated_at ASC"
		} else {
			orderBy = "updated_at DESC"
		}
	default:
		return nil, domain.ErrInvalidSortKey
	}

	query := "SELECT" + itemColumns + " FROM items ORDER BY " + orderBy

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByID retrieves an item by its ID
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := "SELECT" + itemColumns + " FROM items WHERE id = $1"

	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// Insert creates a new item. The database assigns id, created_at and
// updated_at; the stored row is returned.
func (r *ItemRepository) Insert(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	query := `
		INSERT INTO items (name, category, room, brand, model, price, currency, url, note, status, image_path, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING` + itemColumns

	created, err := scanItem(r.pool.QueryRow(ctx, query,
		item.Name, item.Category, item.Room, item.Brand, item.Model,
		priceParam(item.Price), item.Currency, item.URL, item.Note,
		string(item.Status), item.ImagePath, item.PurchasedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}
	return created, nil
}

// Update replaces all mutable columns of an item and bumps updated_at.
func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	query := `
		UPDATE items
		SET name = $2, category = $3, room = $4, brand = $5, model = $6,
			price = $7, currency = $8, url = $9, note = $10, status = $11,
			image_path = $12, purchased_at = $13, updated_at = now()
		WHERE id = $1
		RETURNING` + itemColumns

	updated, err := scanItem(r.pool.QueryRow(ctx, query,
		item.ID, item.Name, item.Category, item.Room, item.Brand, item.Model,
		priceParam(item.Price), item.Currency, item.URL, item.Note,
		string(item.Status), item.ImagePath, item.PurchasedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return updated, nil
}

// Delete removes an item by its ID
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// scanItem scans one item row in itemColumns order.
func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		item   domain.Item
		price  *string
		status string
	)
	err := row.Scan(
		&item.ID, &item.Name, &item.Category, &item.Room, &item.Brand, &item.Model,
		&price, &item.Currency, &item.URL, &item.Note, &status,
		&item.ImagePath, &item.PurchasedAt, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Status = domain.Status(status)
	if price != nil {
		d, err := decimal.NewFromString(*price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price %q: %w", *price, err)
		}
		item.Price = &d
	}
	return &item, nil
}

// priceParam converts an optional decimal to a query parameter, keeping NULL
// distinct from zero.
func priceParam(price *decimal.Decimal) *string {
	if price == nil {
		return nil
	}
	s := price.String()
	return &s
}
