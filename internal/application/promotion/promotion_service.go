// Package promotion serves the promotions admin panel and the code preview
// shown in the cart.
package promotion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/cart"
	"github.com/shopfront/backend/internal/domain/promotion"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
)

const (
	filterStatus = "status"
	filterType   = "type"
)

// Service handles promotion operations
type Service struct {
	promoRepo promotion.Repository
	carts     cart.Repository
	now       func() time.Time
}

// NewService creates a new promotion Service
func NewService(promoRepo promotion.Repository, carts cart.Repository) *Service {
	return &Service{promoRepo: promoRepo, carts: carts, now: time.Now}
}

// List returns a page of promotions; the status filter uses the derived status
func (s *Service) List(ctx context.Context, f PromotionListFilter) ([]PromotionResponse, int64, error) {
	filter := f.toFilter()
	promos, err := s.promoRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.promoRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	responses := make([]PromotionResponse, len(promos))
	for i := range promos {
		responses[i] = ToPromotionResponse(&promos[i], now)
	}
	return responses, total, nil
}

// GetByID retrieves a promotion by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*PromotionResponse, error) {
	promo, err := s.promoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPromotionResponse(promo, s.now())
	return &response, nil
}

// Create creates a promotion with a unique code
func (s *Service) Create(ctx context.Context, req CreatePromotionRequest) (*PromotionResponse, error) {
	promo, err := promotion.New(req.Code, req.toDomain())
	if err != nil {
		return nil, err
	}
	exists, err := s.promoRepo.ExistsByCode(ctx, promo.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Promotion code already exists")
	}
	if err := s.promoRepo.Save(ctx, promo); err != nil {
		return nil, err
	}
	response := ToPromotionResponse(promo, s.now())
	return &response, nil
}

// Update replaces the rule of a promotion
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdatePromotionRequest) (*PromotionResponse, error) {
	promo, err := s.promoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := promo.Update(req.toDomain()); err != nil {
		return nil, err
	}
	if err := s.promoRepo.Save(ctx, promo); err != nil {
		return nil, err
	}
	response := ToPromotionResponse(promo, s.now())
	return &response, nil
}

// SetActive switches a promotion on or off
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*PromotionResponse, error) {
	promo, err := s.promoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	promo.SetActive(active)
	if err := s.promoRepo.Save(ctx, promo); err != nil {
		return nil, err
	}
	response := ToPromotionResponse(promo, s.now())
	return &response, nil
}

// Delete removes a promotion that was never redeemed. Redeemed promotions
// are referenced by orders and can only be deactivated.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	promo, err := s.promoRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if promo.UsedCount > 0 {
		return shared.NewDomainError("PROMOTION_IN_USE", "Promotion has been redeemed; deactivate it instead")
	}
	return s.promoRepo.Delete(ctx, id)
}

// Preview prices code against the caller's cart without redeeming it
func (s *Service) Preview(ctx context.Context, userID uuid.UUID, req PreviewRequest) (_ *PreviewResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "promotion", "preview", "promotion.code", req.Code)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("CART_EMPTY", "Cart is empty")
	}
	promo, err := s.promoRepo.FindByCode(ctx, promotion.NormalizeCode(req.Code))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PROMOTION_NOT_FOUND", "Promotion code is not valid")
		}
		return nil, err
	}
	uses, err := s.promoRepo.CountRedemptions(ctx, promo.ID, userID)
	if err != nil {
		return nil, err
	}
	result, err := promo.Apply(cartLines(c), s.now(), uses)
	if err != nil {
		return nil, err
	}
	return &PreviewResponse{
		Code:           promo.Code,
		Name:           promo.Name,
		Subtotal:       c.Subtotal(),
		EligibleTotal:  result.EligibleTotal,
		Discount:       result.Discount,
		ShippingWaived: result.ShippingWaived,
	}, nil
}

func cartLines(c *cart.Cart) []promotion.Line {
	lines := make([]promotion.Line, len(c.Items))
	for i, l := range c.Items {
		lines[i] = promotion.Line{
			ProductID:  l.ProductID,
			CategoryID: l.CategoryID,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
		}
	}
	return lines
}
