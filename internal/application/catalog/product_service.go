package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/event"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductService handles product administration
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	events       *event.Dispatcher
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	events *event.Dispatcher,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		events:       events,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.Name, req.Price, req.Stock)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		product.SetCategory(req.CategoryID)
	}
	if req.ShopID != nil {
		product.SetShop(req.ShopID)
	}
	if req.SalePrice != nil {
		if err := product.SetPricing(req.Price, req.SalePrice); err != nil {
			return nil, err
		}
	}
	product.SetMedia(req.Image, req.Thumbnails)
	if err := product.SetVariants(toColorOptions(req.Colors), req.Sizes); err != nil {
		return nil, err
	}
	product.SetSpecifications(toSpecifications(req.Specifications))
	product.SetRelated(req.RelatedProductIDs)
	if req.Inactive {
		if err := product.Deactivate(); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a paginated list of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter, err := filter.ToFilter()
	if err != nil {
		return nil, 0, err
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update updates descriptive fields of a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name := product.Name
		if req.Name != nil {
			name = *req.Name
		}
		description := product.Description
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(name, description); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearCategory:
		product.SetCategory(nil)
	case req.CategoryID != nil:
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}

	if req.Image != nil || req.Thumbnails != nil {
		image := product.Image
		if req.Image != nil {
			image = *req.Image
		}
		thumbnails := product.Thumbnails
		if req.Thumbnails != nil {
			thumbnails = req.Thumbnails
		}
		product.SetMedia(image, thumbnails)
	}

	if req.Colors != nil || req.Sizes != nil {
		colors := product.Colors
		if req.Colors != nil {
			colors = toColorOptions(req.Colors)
		}
		sizes := product.Sizes
		if req.Sizes != nil {
			sizes = req.Sizes
		}
		if err := product.SetVariants(colors, sizes); err != nil {
			return nil, err
		}
	}

	if req.Specifications != nil {
		product.SetSpecifications(toSpecifications(req.Specifications))
	}
	if req.RelatedProductIDs != nil {
		product.SetRelated(req.RelatedProductIDs)
	}

	return s.save(ctx, product)
}

// UpdatePricing replaces the price and sale price
func (s *ProductService) UpdatePricing(ctx context.Context, id uuid.UUID, req UpdatePricingRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.SetPricing(req.Price, req.SalePrice); err != nil {
		return nil, err
	}
	return s.save(ctx, product)
}

// UpdateStock sets the stock level, or applies a delta atomically in the
// database so concurrent checkouts are not overwritten
func (s *ProductService) UpdateStock(ctx context.Context, id uuid.UUID, req UpdateStockRequest) (*ProductResponse, error) {
	switch {
	case req.Delta != nil:
		if _, err := s.productRepo.AdjustStock(ctx, id, *req.Delta); err != nil {
			return nil, err
		}
		return s.GetByID(ctx, id)
	case req.Stock != nil:
		product, err := s.productRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := product.SetStock(*req.Stock); err != nil {
			return nil, err
		}
		return s.save(ctx, product)
	}
	return nil, shared.NewDomainError("INVALID_INPUT", "Either stock or delta is required")
}

// Activate makes a product visible in the storefront
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Activate(); err != nil {
		return nil, err
	}
	return s.save(ctx, product)
}

// Deactivate hides a product from the storefront
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Deactivate(); err != nil {
		return nil, err
	}
	return s.save(ctx, product)
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

func (s *ProductService) save(ctx context.Context, product *catalog.Product) (*ProductResponse, error) {
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, product)
	response := ToProductResponse(product)
	return &response, nil
}

func (s *ProductService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

// ToFilter converts the query parameters to a repository filter
func (f ProductListFilter) ToFilter() (shared.Filter, error) {
	out := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   strings.TrimSpace(f.Search),
		Filters:  make(map[string]interface{}),
	}
	if out.OrderBy == "" {
		out.OrderBy = "created_at"
	}
	out = out.Normalized()

	if f.Status != "" {
		out.Filters[catalog.FilterStatus] = f.Status
	}
	if f.CategoryID != "" {
		id, err := uuid.Parse(f.CategoryID)
		if err != nil {
			return out, shared.NewDomainError("INVALID_INPUT", "Invalid category_id")
		}
		out.Filters[catalog.FilterCategoryID] = id
	}
	if f.ShopID != "" {
		id, err := uuid.Parse(f.ShopID)
		if err != nil {
			return out, shared.NewDomainError("INVALID_INPUT", "Invalid shop_id")
		}
		out.Filters[catalog.FilterShopID] = id
	}
	if f.OnSale {
		out.Filters[catalog.FilterOnSale] = true
	}
	if f.InStock {
		out.Filters[catalog.FilterInStock] = true
	}
	for key, raw := range map[string]string{catalog.FilterMinPrice: f.MinPrice, catalog.FilterMaxPrice: f.MaxPrice} {
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return out, shared.NewDomainError("INVALID_INPUT", "Invalid "+key)
		}
		out.Filters[key] = v
	}
	if f.Exclude != "" {
		ids, err := ParseIDList(f.Exclude)
		if err != nil {
			return out, err
		}
		out.Filters[catalog.FilterExclude] = ids
	}
	return out, nil
}

// ParseIDList parses a comma separated list of UUIDs, skipping blanks
func ParseIDList(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid product id: "+part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
