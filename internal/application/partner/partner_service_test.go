package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func errCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestSellerService_Create(t *testing.T) {
	sellers := new(testutil.MockSellerRepository)
	svc := NewSellerService(sellers, new(testutil.MockShopRepository))
	sellers.On("ExistsByEmail", mock.Anything, "rui@atelier.pt").Return(false, nil)
	sellers.On("Save", mock.Anything, mock.AnythingOfType("*partner.Seller")).Return(nil)

	resp, err := svc.Create(context.Background(), CreateSellerRequest{
		Name:        "Rui",
		Email:       " Rui@Atelier.pt ",
		CompanyName: "Atelier",
	})
	require.NoError(t, err)
	assert.Equal(t, "rui@atelier.pt", resp.Email)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "Atelier", resp.CompanyName)
}

func TestSellerService_Create_DuplicateEmail(t *testing.T) {
	sellers := new(testutil.MockSellerRepository)
	svc := NewSellerService(sellers, new(testutil.MockShopRepository))
	sellers.On("ExistsByEmail", mock.Anything, "rui@atelier.pt").Return(true, nil)

	_, err := svc.Create(context.Background(), CreateSellerRequest{Name: "Rui", Email: "rui@atelier.pt"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	sellers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSellerService_SetStatus(t *testing.T) {
	sellers := new(testutil.MockSellerRepository)
	svc := NewSellerService(sellers, new(testutil.MockShopRepository))
	seller, err := partner.NewSeller("Rui", "rui@atelier.pt")
	require.NoError(t, err)
	sellers.On("FindByID", mock.Anything, seller.ID).Return(seller, nil)
	sellers.On("Save", mock.Anything, seller).Return(nil)

	// any known status may be written, including going back to pending
	for _, status := range []string{"approved", "suspended", "pending"} {
		resp, err := svc.SetStatus(context.Background(), seller.ID, SetStatusRequest{Status: status, Note: "checked"})
		require.NoError(t, err)
		assert.Equal(t, status, resp.Status)
	}

	_, err = svc.SetStatus(context.Background(), seller.ID, SetStatusRequest{Status: "banned"})
	assert.Equal(t, "INVALID_STATUS", errCode(t, err))
}

func TestSellerService_List(t *testing.T) {
	sellers := new(testutil.MockSellerRepository)
	svc := NewSellerService(sellers, new(testutil.MockShopRepository))
	approved := mock.MatchedBy(func(f shared.Filter) bool { return f.Filters[filterStatus] == "approved" })
	sellers.On("FindAll", mock.Anything, approved).Return([]partner.Seller{}, nil)
	sellers.On("Count", mock.Anything, approved).Return(int64(0), nil)

	list, total, err := svc.List(context.Background(), ListFilter{Status: "approved"})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)

	_, _, err = svc.List(context.Background(), ListFilter{Status: "whatever"})
	assert.Equal(t, "INVALID_STATUS", errCode(t, err))
}

func TestSellerService_Delete_WithShops(t *testing.T) {
	sellers := new(testutil.MockSellerRepository)
	shops := new(testutil.MockShopRepository)
	svc := NewSellerService(sellers, shops)
	seller, err := partner.NewSeller("Rui", "rui@atelier.pt")
	require.NoError(t, err)
	sellers.On("FindByID", mock.Anything, seller.ID).Return(seller, nil)
	shops.On("Count", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters[filterSellerID] == seller.ID
	})).Return(int64(2), nil)

	err = svc.Delete(context.Background(), seller.ID)
	assert.Equal(t, "SELLER_HAS_SHOPS", errCode(t, err))
	sellers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestShopService_Create(t *testing.T) {
	shops := new(testutil.MockShopRepository)
	sellers := new(testutil.MockSellerRepository)
	svc := NewShopService(shops, sellers)
	sellerID := uuid.New()
	sellers.On("FindByID", mock.Anything, sellerID).Return(&partner.Seller{}, nil)
	shops.On("ExistsBySlug", mock.Anything, "harbour-goods").Return(false, nil)
	shops.On("Save", mock.Anything, mock.AnythingOfType("*partner.Shop")).Return(nil)

	resp, err := svc.Create(context.Background(), CreateShopRequest{SellerID: sellerID, Name: "Harbour Goods"})
	require.NoError(t, err)
	assert.Equal(t, "harbour-goods", resp.Slug)
	assert.Equal(t, "pending", resp.Status)
}

func TestShopService_Create_Rejected(t *testing.T) {
	shops := new(testutil.MockShopRepository)
	sellers := new(testutil.MockSellerRepository)
	svc := NewShopService(shops, sellers)
	known, unknown := uuid.New(), uuid.New()
	sellers.On("FindByID", mock.Anything, known).Return(&partner.Seller{}, nil)
	sellers.On("FindByID", mock.Anything, unknown).Return(nil, shared.ErrNotFound)
	shops.On("ExistsBySlug", mock.Anything, "taken").Return(true, nil)

	_, err := svc.Create(context.Background(), CreateShopRequest{SellerID: unknown, Name: "Harbour"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Create(context.Background(), CreateShopRequest{SellerID: known, Name: "Harbour", Slug: "Taken"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	shops.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestShopService_List_BySeller(t *testing.T) {
	shops := new(testutil.MockShopRepository)
	svc := NewShopService(shops, new(testutil.MockSellerRepository))
	sellerID := uuid.New()
	bySeller := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters[filterSellerID] == sellerID && f.Filters[filterStatus] == "active"
	})
	shops.On("FindAll", mock.Anything, bySeller).Return([]partner.Shop{}, nil)
	shops.On("Count", mock.Anything, bySeller).Return(int64(0), nil)

	_, _, err := svc.List(context.Background(), ShopListFilter{
		ListFilter: ListFilter{Status: "active"},
		SellerID:   sellerID.String(),
	})
	require.NoError(t, err)
	shops.AssertExpectations(t)
}

func TestCustomerService_SetStatusAndDelete(t *testing.T) {
	customers := new(testutil.MockCustomerRepository)
	svc := NewCustomerService(customers)
	buyer, err := partner.NewCustomer("Ana", "ana@example.com")
	require.NoError(t, err)
	buyer.RecordOrder(decimal.NewFromInt(30))
	customers.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)
	customers.On("Save", mock.Anything, buyer).Return(nil)

	resp, err := svc.SetStatus(context.Background(), buyer.ID, SetStatusRequest{Status: "blocked"})
	require.NoError(t, err)
	assert.Equal(t, "blocked", resp.Status)
	assert.Equal(t, 1, resp.OrderCount)

	err = svc.Delete(context.Background(), buyer.ID)
	assert.Equal(t, "CUSTOMER_HAS_ORDERS", errCode(t, err))
}

func TestCustomerService_Update(t *testing.T) {
	customers := new(testutil.MockCustomerRepository)
	svc := NewCustomerService(customers)
	ana, err := partner.NewCustomer("Ana", "ana@example.com")
	require.NoError(t, err)
	other, err := partner.NewCustomer("Bea", "bea@example.com")
	require.NoError(t, err)
	customers.On("FindByID", mock.Anything, ana.ID).Return(ana, nil)
	customers.On("FindByEmail", mock.Anything, "bea@example.com").Return(other, nil)
	customers.On("FindByEmail", mock.Anything, "ana.lima@example.com").Return(nil, shared.ErrNotFound)
	customers.On("Save", mock.Anything, ana).Return(nil)

	_, err = svc.Update(context.Background(), ana.ID, UpdateCustomerRequest{Name: "Ana", Email: "bea@example.com"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	resp, err := svc.Update(context.Background(), ana.ID, UpdateCustomerRequest{
		Name:  "Ana Lima",
		Email: "ana.lima@example.com",
		DefaultAddress: &shared.Address{
			FullName: "Ana Lima", Line1: "1 Harbour St", City: "Lisbon", PostalCode: "1100-001", Country: "PT",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", resp.Name)
	assert.Equal(t, "Lisbon", resp.DefaultAddress.City)
}
