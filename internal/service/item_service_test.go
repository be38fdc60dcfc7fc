package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yclin/homelist-backend/internal/domain"
	"github.com/yclin/homelist-backend/internal/testutil"
	"github.com/yclin/homelist-backend/internal/websocket"
	"golang.org/x/text/language"
)

const adminSubject = "auth0|admin"

func newTestItemService(items *testutil.MockItemRepository, assets *testutil.MockAssetRepository, publisher *testutil.MockPublisher) *ItemService {
	vocab := domain.DefaultVocabulary()
	views := NewViewService(vocab, language.TraditionalChinese)
	var assetSvc *AssetService
	if assets != nil {
		assetSvc = NewAssetService(assets)
	} else {
		assetSvc = NewAssetService(nil)
	}
	// Pass a true nil interface when no mock is supplied so NewItemService's
	// nil check substitutes the no-op publisher instead of receiving a
	// typed-nil *testutil.MockPublisher.
	var pub websocket.EventPublisher
	if publisher != nil {
		pub = publisher
	}
	return NewItemService(items, assetSvc, views, vocab, adminSubject, pub)
}

func validInput() UpsertItemInput {
	return UpsertItemInput{
		Name:     "冰箱",
		Category: "家電",
		Room:     "廚房",
		Status:   "want",
	}
}

func TestUpsert_Create(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	publisher := &testutil.MockPublisher{}
	svc := newTestItemService(repo, nil, publisher)

	item, err := svc.Upsert(context.Background(), adminSubject, validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.ID == uuid.Nil {
		t.Error("expected assigned ID")
	}
	if item.Name != "冰箱" {
		t.Errorf("expected name 冰箱, got %q", item.Name)
	}
	if repo.InsertCalls != 1 {
		t.Errorf("expected 1 insert, got %d", repo.InsertCalls)
	}

	events := publisher.Published()
	if len(events) != 1 || events[0].Type != "item.created" {
		t.Errorf("expected one item.created event, got %v", events)
	}
}

func TestUpsert_NonAdminRejectedBeforeAnyGatewayCall(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	assets := testutil.NewMockAssetRepository()
	publisher := &testutil.MockPublisher{}
	svc := newTestItemService(repo, assets, publisher)

	input := validInput()
	input.Image = &ImageUpload{Filename: "photo.jpg", Data: []byte("fake"), ContentType: "image/jpeg"}

	_, err := svc.Upsert(context.Background(), "auth0|guest", input)
	if !errors.Is(err, domain.ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
	if repo.InsertCalls != 0 || repo.UpdateCalls != 0 {
		t.Error("expected no repository writes")
	}
	if assets.UploadCalls != 0 {
		t.Error("expected no uploads")
	}
	if len(publisher.Published()) != 0 {
		t.Error("expected no events")
	}
}

func TestUpsert_EmptySubjectRejected(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	_, err := svc.Upsert(context.Background(), "", validInput())
	if !errors.Is(err, domain.ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
}

func TestUpsert_ValidationFailures(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	tests := []struct {
		name    string
		mutate  func(*UpsertItemInput)
		wantErr error
	}{
		{"missing name", func(i *UpsertItemInput) { i.Name = "  " }, domain.ErrItemNameRequired},
		{"missing category", func(i *UpsertItemInput) { i.Category = "" }, domain.ErrItemCategoryRequired},
		{"missing room", func(i *UpsertItemInput) { i.Room = "" }, domain.ErrItemRoomRequired},
		{"unknown room", func(i *UpsertItemInput) { i.Room = "車庫" }, domain.ErrItemRoomUnknown},
		{"unknown status", func(i *UpsertItemInput) { i.Status = "maybe" }, domain.ErrItemStatusUnknown},
		{"invalid url", func(i *UpsertItemInput) { i.URL = "not a url" }, domain.ErrItemInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := svc.Upsert(context.Background(), adminSubject, input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
	if repo.InsertCalls != 0 {
		t.Errorf("expected no inserts after validation failures, got %d", repo.InsertCalls)
	}
}

func TestUpsert_EmptyStatusDefaultsToInitial(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	input := validInput()
	input.Status = ""

	item, err := svc.Upsert(context.Background(), adminSubject, input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.Status != "want" {
		t.Errorf("expected initial status want, got %q", item.Status)
	}
}

func TestUpsert_NormalizesOptionalFields(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	input := validInput()
	input.Brand = "   "
	input.Model = "  U2723QE  "
	input.Note = ""

	item, err := svc.Upsert(context.Background(), adminSubject, input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.Brand != nil {
		t.Errorf("expected nil brand, got %q", *item.Brand)
	}
	if item.Model == nil || *item.Model != "U2723QE" {
		t.Errorf("expected trimmed model, got %v", item.Model)
	}
	if item.Note != nil {
		t.Errorf("expected nil note, got %q", *item.Note)
	}
}

func TestUpsert_CurrencyDefaults(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	item, err := svc.Upsert(context.Background(), adminSubject, validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.Currency != "TWD" {
		t.Errorf("expected default currency TWD, got %q", item.Currency)
	}
}

func TestUpsert_PurchasedAtSetOnTransition(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	input := validInput()
	input.Status = "purchased"

	before := time.Now().UTC()
	item, err := svc.Upsert(context.Background(), adminSubject, input)
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.PurchasedAt == nil {
		t.Fatal("expected purchasedAt to be set")
	}
	if item.PurchasedAt.Before(before) || item.PurchasedAt.After(after) {
		t.Errorf("purchasedAt %v outside [%v, %v]", item.PurchasedAt, before, after)
	}
}

func TestUpsert_PurchasedAtPreservedOnResave(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	original := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := &domain.Item{
		ID:          uuid.New(),
		Name:        "冰箱",
		Category:    "家電",
		Room:        "廚房",
		Status:      "purchased",
		Currency:    "TWD",
		PurchasedAt: &original,
	}
	repo.AddItem(existing)

	input := validInput()
	input.ID = &existing.ID
	input.Status = "purchased"
	input.Note = "updated note"

	item, err := svc.Upsert(context.Background(), adminSubject, input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.PurchasedAt == nil || !item.PurchasedAt.Equal(original) {
		t.Errorf("expected preserved purchasedAt %v, got %v", original, item.PurchasedAt)
	}
}

func TestUpsert_PurchasedAtClearedOnOtherStatus(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	original := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := &domain.Item{
		ID:          uuid.New(),
		Name:        "冰箱",
		Category:    "家電",
		Room:        "廚房",
		Status:      "purchased",
		Currency:    "TWD",
		PurchasedAt: &original,
	}
	repo.AddItem(existing)

	input := validInput()
	input.ID = &existing.ID
	input.Status = "eliminated"

	item, err := svc.Upsert(context.Background(), adminSubject, input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.PurchasedAt != nil {
		t.Errorf("expected cleared purchasedAt, got %v", item.PurchasedAt)
	}
}

func TestUpsert_UpdateUnknownIDFailsBeforeUpload(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	assets := testutil.NewMockAssetRepository()
	svc := newTestItemService(repo, assets, nil)

	missing := uuid.New()
	input := validInput()
	input.ID = &missing
	input.Image = &ImageUpload{Filename: "photo.jpg", Data: []byte("fake"), ContentType: "image/jpeg"}

	_, err := svc.Upsert(context.Background(), adminSubject, input)
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if assets.UploadCalls != 0 {
		t.Error("expected no upload for a vanished item")
	}
}

func TestUpsert_UploadFailureAbortsWrite(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	assets := testutil.NewMockAssetRepository()
	assets.UploadErr = errors.New("bucket unreachable")
	publisher := &testutil.MockPublisher{}
	svc := newTestItemService(repo, assets, publisher)

	input := validInput()
	input.Image = &ImageUpload{Filename: "photo.jpg", Data: []byte("fake"), ContentType: "image/jpeg"}

	_, err := svc.Upsert(context.Background(), adminSubject, input)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if repo.InsertCalls != 0 || repo.UpdateCalls != 0 {
		t.Error("expected no row write after upload failure")
	}
	if len(publisher.Published()) != 0 {
		t.Error("expected no events after upload failure")
	}
}

func TestUpsert_ImageUploadedBeforeWrite(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	assets := testutil.NewMockAssetRepository()
	svc := newTestItemService(repo, assets, nil)

	input := validInput()
	input.Image = &ImageUpload{Filename: "photo.HEIC", Data: []byte("fake image bytes"), ContentType: "image/heic"}

	item, err := svc.Upsert(context.Background(), adminSubject, input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.ImagePath == nil {
		t.Fatal("expected image path on saved item")
	}
	if _, ok := assets.Objects[*item.ImagePath]; !ok {
		t.Errorf("expected object stored under %q", *item.ImagePath)
	}
}

func TestUpsert_UpdateKeepsExistingImage(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	key := "existing-key.jpg"
	existing := &domain.Item{
		ID:        uuid.New(),
		Name:      "冰箱",
		Category:  "家電",
		Room:      "廚房",
		Status:    "want",
		Currency:  "TWD",
		ImagePath: &key,
	}
	repo.AddItem(existing)

	input := validInput()
	input.ID = &existing.ID

	item, err := svc.Upsert(context.Background(), adminSubject, input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.ImagePath == nil || *item.ImagePath != key {
		t.Errorf("expected preserved image path %q, got %v", key, item.ImagePath)
	}
}

func TestUpsert_UpdatePublishesUpdatedEvent(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	publisher := &testutil.MockPublisher{}
	svc := newTestItemService(repo, nil, publisher)

	existing := &domain.Item{
		ID:       uuid.New(),
		Name:     "冰箱",
		Category: "家電",
		Room:     "廚房",
		Status:   "want",
		Currency: "TWD",
	}
	repo.AddItem(existing)

	input := validInput()
	input.ID = &existing.ID

	if _, err := svc.Upsert(context.Background(), adminSubject, input); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	events := publisher.Published()
	if len(events) != 1 || events[0].Type != "item.updated" {
		t.Errorf("expected one item.updated event, got %v", events)
	}
}

func TestDelete_Success(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	assets := testutil.NewMockAssetRepository()
	publisher := &testutil.MockPublisher{}
	svc := newTestItemService(repo, assets, publisher)

	key := "photo-key.jpg"
	assets.Objects[key] = []byte("bytes")
	existing := &domain.Item{
		ID:        uuid.New(),
		Name:      "冰箱",
		Category:  "家電",
		Room:      "廚房",
		Status:    "want",
		Currency:  "TWD",
		ImagePath: &key,
	}
	repo.AddItem(existing)

	if err := svc.Delete(context.Background(), adminSubject, existing.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.Items[existing.ID]; ok {
		t.Error("expected item removed")
	}
	if assets.DeleteCalls == 0 {
		t.Error("expected asset cleanup")
	}
	events := publisher.Published()
	if len(events) != 1 || events[0].Type != "item.deleted" {
		t.Errorf("expected one item.deleted event, got %v", events)
	}
}

func TestDelete_NonAdminRejected(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	existing := &domain.Item{ID: uuid.New(), Name: "冰箱", Category: "家電", Room: "廚房", Status: "want", Currency: "TWD"}
	repo.AddItem(existing)

	err := svc.Delete(context.Background(), "auth0|guest", existing.ID)
	if !errors.Is(err, domain.ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
	if repo.DeleteCalls != 0 {
		t.Error("expected no delete call")
	}
}

func TestDelete_UnknownID(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	err := svc.Delete(context.Background(), adminSubject, uuid.New())
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestDelete_AssetCleanupFailureDoesNotFailDelete(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	assets := testutil.NewMockAssetRepository()
	assets.DeleteErr = errors.New("bucket unreachable")
	svc := newTestItemService(repo, assets, nil)

	key := "photo-key.jpg"
	existing := &domain.Item{
		ID:        uuid.New(),
		Name:      "冰箱",
		Category:  "家電",
		Room:      "廚房",
		Status:    "want",
		Currency:  "TWD",
		ImagePath: &key,
	}
	repo.AddItem(existing)

	if err := svc.Delete(context.Background(), adminSubject, existing.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.Items[existing.ID]; ok {
		t.Error("expected item removed despite cleanup failure")
	}
}

func TestList_InvalidSortKey(t *testing.T) {
	repo := testutil.NewMockItemRepository()
	svc := newTestItemService(repo, nil, nil)

	_, err := svc.List(context.Background(), domain.ListOptions{Key: "name"})
	if !errors.Is(err, domain.ErrInvalidSortKey) {
		t.Fatalf("expected ErrInvalidSortKey, got %v", err)
	}
}

func TestIsAdmin(t *testing.T) {
	svc := newTestItemService(testutil.NewMockItemRepository(), nil, nil)

	if !svc.IsAdmin(adminSubject) {
		t.Error("expected admin subject to be admin")
	}
	if svc.IsAdmin("auth0|guest") {
		t.Error("expected guest not to be admin")
	}
	if svc.IsAdmin("") {
		t.Error("expected empty subject not to be admin")
	}
}
