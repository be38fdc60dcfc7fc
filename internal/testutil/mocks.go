package testutil

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yclin/homelist-backend/internal/domain"
	"github.com/yclin/homelist-backend/internal/websocket"
)

// MockItemRepository is a mock implementation of domain.ItemRepository
type MockItemRepository struct {
	Items map[uuid.UUID]*domain.Item

	ListErr   error
	GetErr    error
	InsertErr error
	UpdateErr error
	DeleteErr error

	InsertCalls int
	UpdateCalls int
	DeleteCalls int
}

// NewMockItemRepository creates a new MockItemRepository
func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		Items: make(map[uuid.UUID]*domain.Item),
	}
}

// AddItem adds an item to the mock repository (helper for tests)
func (m *MockItemRepository) AddItem(item *domain.Item) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	m.Items[item.ID] = item
}

// List returns all items sorted by the requested key
func (m *MockItemRepository) List(ctx context.Context, opts domain.ListOptions) ([]*domain.Item, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	items := make([]*domain.Item, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		var less bool
		switch opts.Key {
		case domain.SortKeyPrice:
			// Unpriced items sort last
			switch {
			case items[i].Price == nil:
				return false
			case items[j].Price == nil:
				return true
			default:
				less = items[i].Price.LessThan(*items[j].Price)
			}
		default:
			less = items[i].UpdatedAt.Before(items[j].UpdatedAt)
		}
		if opts.Ascending {
			return less
		}
		return !less
	})
	return items, nil
}

// GetByID retrieves an item by ID
func (m *MockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if item, ok := m.Items[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, domain.ErrItemNotFound
}

// Insert creates a new item with a fresh ID and timestamps
func (m *MockItemRepository) Insert(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	m.InsertCalls++
	if m.InsertErr != nil {
		return nil, m.InsertErr
	}
	copied := *item
	copied.ID = uuid.New()
	now := time.Now().UTC()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	m.Items[copied.ID] = &copied
	return &copied, nil
}

// Update replaces an existing item and bumps its updated timestamp
func (m *MockItemRepository) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	existing, ok := m.Items[item.ID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	copied := *item
	copied.CreatedAt = existing.CreatedAt
	copied.UpdatedAt = time.Now().UTC()
	m.Items[copied.ID] = &copied
	return &copied, nil
}

// Delete removes an item by ID
func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(m.Items, id)
	return nil
}

// MockAssetRepository is a mock implementation of storage.AssetRepository
type MockAssetRepository struct {
	Objects map[string][]byte

	UploadErr  error
	DeleteErr  error
	ResolveErr error

	UploadCalls int
	DeleteCalls int
}

// NewMockAssetRepository creates a new MockAssetRepository
func NewMockAssetRepository() *MockAssetRepository {
	return &MockAssetRepository{
		Objects: make(map[string][]byte),
	}
}

// Upload stores the object bytes under the key
func (m *MockAssetRepository) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	m.UploadCalls++
	if m.UploadErr != nil {
		return m.UploadErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.Objects[key] = buf
	return nil
}

// Delete removes the object under the key
func (m *MockAssetRepository) Delete(ctx context.Context, key string) error {
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Objects, key)
	return nil
}

// ResolveURL returns a fake public URL for the key
func (m *MockAssetRepository) ResolveURL(ctx context.Context, key string) (string, error) {
	if m.ResolveErr != nil {
		return "", m.ResolveErr
	}
	return "https://assets.test/" + key, nil
}

// MockPublisher records published events for assertions
type MockPublisher struct {
	mu     sync.Mutex
	Events []websocket.Event
}

// Publish records the event
func (m *MockPublisher) Publish(event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Published returns a copy of the recorded events
func (m *MockPublisher) Published() []websocket.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]websocket.Event, len(m.Events))
	copy(copied, m.Events)
	return copied
}
