package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
)

// CustomerService handles customer administration. Profiles are created at
// checkout; admins edit, block and remove them.
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// List returns a page of customers
func (s *CustomerService) List(ctx context.Context, f ListFilter) ([]CustomerResponse, int64, error) {
	if f.Status != "" && !partner.CustomerStatus(f.Status).IsValid() {
		return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown customer status: "+f.Status)
	}
	filter := f.toFilter()
	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses, total, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// Update replaces a customer's contact details and, when given, the
// default address
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldEmail := customer.Email
	if err := customer.Update(req.Name, req.Email, req.Phone, req.Notes); err != nil {
		return nil, err
	}
	if customer.Email != oldEmail {
		other, err := s.customerRepo.FindByEmail(ctx, customer.Email)
		switch {
		case err == nil && other.ID != customer.ID:
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this email already exists")
		case err != nil && !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
	}
	if req.DefaultAddress != nil {
		if err := customer.SetDefaultAddress(*req.DefaultAddress); err != nil {
			return nil, err
		}
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// SetStatus blocks or reactivates a customer
func (s *CustomerService) SetStatus(ctx context.Context, id uuid.UUID, req SetStatusRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.SetStatus(partner.CustomerStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer without orders; others can only be blocked
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if customer.OrderCount > 0 {
		return shared.NewDomainError("CUSTOMER_HAS_ORDERS", "Customer has orders; block the customer instead")
	}
	return s.customerRepo.Delete(ctx, id)
}
