package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"strings"

	// Register decoders for thumbnail generation. Formats outside this set
	// (HEIC among them) are stored as-is without a thumbnail.
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yclin/homelist-backend/internal/repository/storage"
)

const (
	// MaxAssetSize caps uploaded images at 5MB.
	MaxAssetSize = 5 * 1024 * 1024

	thumbnailWidth = 200
	jpegQuality    = 85
)

var (
	ErrAssetEmpty                = errors.New("uploaded file is empty")
	ErrAssetTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrAssetStorageNotConfigured = errors.New("image storage not configured")
)

// AssetService handles image uploads to the object store. Every upload goes
// under a freshly generated key; the item row referencing the key is written
// only after the upload succeeds.
type AssetService struct {
	storage storage.AssetRepository
}

// NewAssetService creates a new AssetService
func NewAssetService(storage storage.AssetRepository) *AssetService {
	return &AssetService{storage: storage}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *AssetService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// GenerateKey returns a fresh object key for the given original filename. The
// extension is taken verbatim from the filename (case preserved), falling back
// to "jpg" when the filename carries none.
func GenerateKey(filename string) string {
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		ext = filename[i+1:]
	}
	if ext == "" {
		ext = "jpg"
	}
	return uuid.New().String() + "." + ext
}

// ThumbnailKey returns the side-car thumbnail key for an original key.
func ThumbnailKey(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[:i]
	}
	return key + "_thumb.jpg"
}

// Upload validates and stores the image bytes under a generated key and
// returns that key. A thumbnail side-car is written best-effort for formats
// the standard decoders understand; its failure never fails the upload.
func (s *AssetService) Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrAssetStorageNotConfigured
	}
	if len(data) == 0 {
		return "", ErrAssetEmpty
	}
	if len(data) > MaxAssetSize {
		return "", ErrAssetTooLarge
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := GenerateKey(filename)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data))); err != nil {
		return "", err
	}

	s.uploadThumbnail(ctx, key, data)

	return key, nil
}

// uploadThumbnail writes a downscaled JPEG next to the original when the
// bytes decode with the registered image formats.
func (s *AssetService) uploadThumbnail(ctx context.Context, key string, data []byte) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Not a decodable format; the original is still stored.
		return
	}

	if img.Bounds().Dx() > thumbnailWidth {
		img = imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode thumbnail")
		return
	}

	thumbKey := ThumbnailKey(key)
	if err := s.storage.Upload(ctx, thumbKey, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
		log.Warn().Err(err).Str("key", thumbKey).Msg("Failed to upload thumbnail")
	}
}

// Delete removes the asset and its thumbnail side-car. Used as best-effort
// cleanup after an item delete; callers log failures rather than abort.
func (s *AssetService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrAssetStorageNotConfigured
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, ThumbnailKey(key)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to delete thumbnail")
	}
	return nil
}

// ResolveURL resolves an asset key to a retrievable URL.
func (s *AssetService) ResolveURL(ctx context.Context, key string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrAssetStorageNotConfigured
	}
	return s.storage.ResolveURL(ctx, key)
}
