// Package cart manages the authenticated shopper's cart.
package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/cart"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Cart operations reported to the mutation recorder
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
	OpClear  = "clear"
)

// MutationRecorder counts successful cart changes
type MutationRecorder interface {
	RecordCartMutation(ctx context.Context, operation string)
}

// Service handles cart operations. Quantities are checked against the
// product's current stock on every mutation.
type Service struct {
	carts       cart.Repository
	productRepo catalog.ProductRepository
	metrics     MutationRecorder
}

// NewService creates a new cart Service. metrics may be nil.
func NewService(carts cart.Repository, productRepo catalog.ProductRepository, metrics MutationRecorder) *Service {
	return &Service{carts: carts, productRepo: productRepo, metrics: metrics}
}

// Get returns the owner's cart
func (s *Service) Get(ctx context.Context, ownerID uuid.UUID) (*CartResponse, error) {
	c, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	response := ToCartResponse(c)
	return &response, nil
}

// AddItem adds a product, merging with an identical line
func (s *Service) AddItem(ctx context.Context, ownerID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if _, err := c.AddItem(product, req.Quantity, req.Color, req.Size); err != nil {
		return nil, err
	}
	return s.save(ctx, c, OpAdd)
}

// UpdateItem sets the quantity of a line
func (s *Service) UpdateItem(ctx context.Context, ownerID, lineID uuid.UUID, req UpdateItemRequest) (*CartResponse, error) {
	c, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	line, ok := c.Line(lineID)
	if !ok {
		return nil, shared.NewDomainError("LINE_NOT_FOUND", "Cart line not found")
	}
	product, err := s.productRepo.FindByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if err := c.SetQuantity(lineID, req.Quantity, product.Stock); err != nil {
		return nil, err
	}
	return s.save(ctx, c, OpUpdate)
}

// RemoveItem drops a line
func (s *Service) RemoveItem(ctx context.Context, ownerID, lineID uuid.UUID) (*CartResponse, error) {
	c, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(lineID); err != nil {
		return nil, err
	}
	return s.save(ctx, c, OpRemove)
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.carts.Delete(ctx, ownerID); err != nil {
		return err
	}
	s.record(ctx, OpClear)
	return nil
}

func (s *Service) save(ctx context.Context, c *cart.Cart, op string) (*CartResponse, error) {
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	s.record(ctx, op)
	response := ToCartResponse(c)
	return &response, nil
}

func (s *Service) record(ctx context.Context, op string) {
	if s.metrics != nil {
		s.metrics.RecordCartMutation(ctx, op)
	}
}
