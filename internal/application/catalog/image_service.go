package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/event"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
)

// ObjectStorageService defines the object storage operations the image
// upload flow needs. It is implemented by the infrastructure layer.
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// PublicURL is where a stored object is served from
	PublicURL(storageKey string) string

	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ImageServiceConfig holds upload limits
type ImageServiceConfig struct {
	UploadURLExpiry time.Duration
	MaxFileSize     int64
	MaxThumbnails   int
}

// DefaultImageServiceConfig returns the default upload limits
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{
		UploadURLExpiry: 15 * time.Minute,
		MaxFileSize:     10 << 20,
		MaxThumbnails:   12,
	}
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageService uploads product images through presigned URLs: the admin UI
// asks for an upload URL, PUTs the file straight to storage, then confirms.
type ImageService struct {
	productRepo catalog.ProductRepository
	storage     ObjectStorageService
	events      *event.Dispatcher
	config      ImageServiceConfig
}

// NewImageService creates a new ImageService
func NewImageService(productRepo catalog.ProductRepository, storage ObjectStorageService, events *event.Dispatcher, config ImageServiceConfig) *ImageService {
	def := DefaultImageServiceConfig()
	if config.UploadURLExpiry <= 0 {
		config.UploadURLExpiry = def.UploadURLExpiry
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = def.MaxFileSize
	}
	if config.MaxThumbnails <= 0 {
		config.MaxThumbnails = def.MaxThumbnails
	}
	return &ImageService{
		productRepo: productRepo,
		storage:     storage,
		events:      events,
		config:      config,
	}
}

// InitiateUpload returns a presigned URL for a new image of the product
func (s *ImageService) InitiateUpload(ctx context.Context, productID uuid.UUID, req InitiateImageUploadRequest) (*InitiateImageUploadResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed. Allowed types: JPEG, PNG, WebP and GIF.", req.ContentType))
	}
	if req.FileSize > s.config.MaxFileSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE",
			fmt.Sprintf("File exceeds the %d byte limit", s.config.MaxFileSize))
	}

	key := s.storageKey(productID, req.FileName, ext)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateImageUploadResponse{
		StorageKey: key,
		UploadURL:  uploadURL,
		PublicURL:  s.storage.PublicURL(key),
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmUpload checks the object landed in storage and attaches it to the
// product as its primary image, a thumbnail, or a color's image
func (s *ImageService) ConfirmUpload(ctx context.Context, productID uuid.UUID, req ConfirmImageUploadRequest) (*ProductResponse, error) {
	if !strings.HasPrefix(req.StorageKey, s.keyPrefix(productID)) {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key does not belong to this product")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, req.StorageKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "The file has not been uploaded yet")
	}
	url := s.storage.PublicURL(req.StorageKey)

	switch {
	case req.Color != "":
		colors := make([]catalog.ColorOption, len(product.Colors))
		copy(colors, product.Colors)
		found := false
		for i := range colors {
			if strings.EqualFold(colors[i].Name, req.Color) {
				colors[i].Image = url
				found = true
			}
		}
		if !found {
			return nil, shared.NewDomainError("INVALID_COLOR", "Unknown color: "+req.Color)
		}
		if err := product.SetVariants(colors, product.Sizes); err != nil {
			return nil, err
		}
	case req.AsPrimary:
		product.SetMedia(url, product.Thumbnails)
	default:
		if len(product.Thumbnails) >= s.config.MaxThumbnails {
			return nil, shared.NewDomainError("IMAGE_LIMIT_EXCEEDED",
				fmt.Sprintf("Maximum %d images per product allowed", s.config.MaxThumbnails))
		}
		product.SetMedia(product.Image, append(append([]string{}, product.Thumbnails...), url))
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, product)
	response := ToProductResponse(product)
	return &response, nil
}

// DeleteImage detaches an image URL from the product and removes the object
func (s *ImageService) DeleteImage(ctx context.Context, productID uuid.UUID, storageKey string) (*ProductResponse, error) {
	if !strings.HasPrefix(storageKey, s.keyPrefix(productID)) {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key does not belong to this product")
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	url := s.storage.PublicURL(storageKey)
	image := product.Image
	if image == url {
		image = ""
	}
	thumbnails := make([]string, 0, len(product.Thumbnails))
	for _, t := range product.Thumbnails {
		if t != url {
			thumbnails = append(thumbnails, t)
		}
	}
	product.SetMedia(image, thumbnails)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if err := s.storage.DeleteObject(ctx, storageKey); err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

func (s *ImageService) keyPrefix(productID uuid.UUID) string {
	return "products/" + productID.String() + "/"
}

// storageKey builds products/{id}/{uuid}-{base}{ext}; the random part keeps
// re-uploads of the same file name from colliding
func (s *ImageService) storageKey(productID uuid.UUID, fileName, ext string) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(fileName, "\\", "/")), path.Ext(fileName))
	base = shared.Slugify(base)
	if base == "" {
		base = "image"
	}
	if len(base) > 60 {
		base = base[:60]
	}
	return s.keyPrefix(productID) + uuid.NewString() + "-" + base + ext
}
