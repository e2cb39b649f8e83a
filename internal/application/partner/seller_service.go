// Package partner serves the sellers, shops and customers admin panels.
package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
)

const (
	filterStatus   = "status"
	filterSellerID = "seller_id"
)

// SellerService handles seller administration
type SellerService struct {
	sellerRepo partner.SellerRepository
	shopRepo   partner.ShopRepository
}

// NewSellerService creates a new SellerService
func NewSellerService(sellerRepo partner.SellerRepository, shopRepo partner.ShopRepository) *SellerService {
	return &SellerService{sellerRepo: sellerRepo, shopRepo: shopRepo}
}

// List returns a page of sellers
func (s *SellerService) List(ctx context.Context, f ListFilter) ([]SellerResponse, int64, error) {
	if f.Status != "" && !partner.SellerStatus(f.Status).IsValid() {
		return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown seller status: "+f.Status)
	}
	filter := f.toFilter()
	sellers, err := s.sellerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.sellerRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]SellerResponse, len(sellers))
	for i := range sellers {
		responses[i] = ToSellerResponse(&sellers[i])
	}
	return responses, total, nil
}

// GetByID retrieves a seller by ID
func (s *SellerService) GetByID(ctx context.Context, id uuid.UUID) (*SellerResponse, error) {
	seller, err := s.sellerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSellerResponse(seller)
	return &response, nil
}

// Create registers a pending seller
func (s *SellerService) Create(ctx context.Context, req CreateSellerRequest) (*SellerResponse, error) {
	seller, err := partner.NewSeller(req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	if err := seller.Update(req.Name, req.Email, req.Phone, req.CompanyName, req.Description); err != nil {
		return nil, err
	}
	exists, err := s.sellerRepo.ExistsByEmail(ctx, seller.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Seller with this email already exists")
	}
	if err := s.sellerRepo.Save(ctx, seller); err != nil {
		return nil, err
	}
	response := ToSellerResponse(seller)
	return &response, nil
}

// Update replaces a seller's contact details
func (s *SellerService) Update(ctx context.Context, id uuid.UUID, req UpdateSellerRequest) (*SellerResponse, error) {
	seller, err := s.sellerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldEmail := seller.Email
	if err := seller.Update(req.Name, req.Email, req.Phone, req.CompanyName, req.Description); err != nil {
		return nil, err
	}
	if seller.Email != oldEmail {
		exists, err := s.sellerRepo.ExistsByEmail(ctx, seller.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Seller with this email already exists")
		}
	}
	if err := s.sellerRepo.Save(ctx, seller); err != nil {
		return nil, err
	}
	response := ToSellerResponse(seller)
	return &response, nil
}

// SetStatus writes any known seller status
func (s *SellerService) SetStatus(ctx context.Context, id uuid.UUID, req SetStatusRequest) (*SellerResponse, error) {
	seller, err := s.sellerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := seller.SetStatus(partner.SellerStatus(req.Status), req.Note); err != nil {
		return nil, err
	}
	if err := s.sellerRepo.Save(ctx, seller); err != nil {
		return nil, err
	}
	response := ToSellerResponse(seller)
	return &response, nil
}

// Delete removes a seller that has no shops
func (s *SellerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.sellerRepo.FindByID(ctx, id); err != nil {
		return err
	}
	filter := shared.Filter{}.Normalized()
	filter.Filters[filterSellerID] = id
	shops, err := s.shopRepo.Count(ctx, filter)
	if err != nil {
		return err
	}
	if shops > 0 {
		return shared.NewDomainError("SELLER_HAS_SHOPS", "Seller still owns shops")
	}
	return s.sellerRepo.Delete(ctx, id)
}
