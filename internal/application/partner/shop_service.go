package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
)

// ShopService handles shop administration
type ShopService struct {
	shopRepo   partner.ShopRepository
	sellerRepo partner.SellerRepository
}

// NewShopService creates a new ShopService
func NewShopService(shopRepo partner.ShopRepository, sellerRepo partner.SellerRepository) *ShopService {
	return &ShopService{shopRepo: shopRepo, sellerRepo: sellerRepo}
}

// List returns a page of shops
func (s *ShopService) List(ctx context.Context, f ShopListFilter) ([]ShopResponse, int64, error) {
	if f.Status != "" && !partner.ShopStatus(f.Status).IsValid() {
		return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown shop status: "+f.Status)
	}
	filter := f.toFilter()
	if f.SellerID != "" {
		sellerID, err := uuid.Parse(f.SellerID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Invalid seller ID")
		}
		filter.Filters[filterSellerID] = sellerID
	}
	shops, err := s.shopRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.shopRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ShopResponse, len(shops))
	for i := range shops {
		responses[i] = ToShopResponse(&shops[i])
	}
	return responses, total, nil
}

// GetByID retrieves a shop by ID
func (s *ShopService) GetByID(ctx context.Context, id uuid.UUID) (*ShopResponse, error) {
	shop, err := s.shopRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToShopResponse(shop)
	return &response, nil
}

// Create opens a pending shop for an existing seller
func (s *ShopService) Create(ctx context.Context, req CreateShopRequest) (*ShopResponse, error) {
	if _, err := s.sellerRepo.FindByID(ctx, req.SellerID); err != nil {
		return nil, err
	}
	shop, err := partner.NewShop(req.SellerID, req.Name, req.Slug)
	if err != nil {
		return nil, err
	}
	if err := shop.Update(req.Name, req.Slug, req.Description, req.Logo); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, shop.Slug); err != nil {
		return nil, err
	}
	if err := s.shopRepo.Save(ctx, shop); err != nil {
		return nil, err
	}
	response := ToShopResponse(shop)
	return &response, nil
}

// Update replaces a shop's descriptive fields
func (s *ShopService) Update(ctx context.Context, id uuid.UUID, req UpdateShopRequest) (*ShopResponse, error) {
	shop, err := s.shopRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := shop.Slug
	if err := shop.Update(req.Name, req.Slug, req.Description, req.Logo); err != nil {
		return nil, err
	}
	if shop.Slug != oldSlug {
		if err := s.ensureSlugFree(ctx, shop.Slug); err != nil {
			return nil, err
		}
	}
	if err := s.shopRepo.Save(ctx, shop); err != nil {
		return nil, err
	}
	response := ToShopResponse(shop)
	return &response, nil
}

// SetStatus writes any known shop status
func (s *ShopService) SetStatus(ctx context.Context, id uuid.UUID, req SetStatusRequest) (*ShopResponse, error) {
	shop, err := s.shopRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := shop.SetStatus(partner.ShopStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.shopRepo.Save(ctx, shop); err != nil {
		return nil, err
	}
	response := ToShopResponse(shop)
	return &response, nil
}

// Delete removes a shop
func (s *ShopService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.shopRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.shopRepo.Delete(ctx, id)
}

func (s *ShopService) ensureSlugFree(ctx context.Context, slug string) error {
	exists, err := s.shopRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Shop with this slug already exists")
	}
	return nil
}
