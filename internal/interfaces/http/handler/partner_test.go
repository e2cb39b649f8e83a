package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partnerapp "github.com/shopfront/backend/internal/application/partner"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSellerRouter(sellers *testutil.MockSellerRepository, shops *testutil.MockShopRepository) *gin.Engine {
	h := NewSellerHandler(partnerapp.NewSellerService(sellers, shops))
	return newTestRouter(nil, func(r gin.IRouter) {
		r.GET("/admin/sellers", h.List)
		r.POST("/admin/sellers", h.Create)
		r.PUT("/admin/sellers/:id/status", h.SetStatus)
		r.DELETE("/admin/sellers/:id", h.Delete)
	})
}

func newShopRouter(shops *testutil.MockShopRepository, sellers *testutil.MockSellerRepository) *gin.Engine {
	h := NewShopHandler(partnerapp.NewShopService(shops, sellers))
	return newTestRouter(nil, func(r gin.IRouter) {
		r.GET("/admin/shops", h.List)
		r.PUT("/admin/shops/:id/status", h.SetStatus)
	})
}

func testSeller(t *testing.T) *partner.Seller {
	t.Helper()
	s, err := partner.NewSeller("Ada Goods", "ada@example.com")
	require.NoError(t, err)
	return s
}

func TestSellerHandler_List(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		code   string
		want   string
	}{
		{name: "all", query: "", status: http.StatusOK},
		{name: "approved only", query: "?status=approved", status: http.StatusOK, want: "approved"},
		{name: "unknown status", query: "?status=banned", status: http.StatusBadRequest, code: "INVALID_STATUS"},
		{name: "page size too large", query: "?page_size=500", status: http.StatusBadRequest, code: dto.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sellers := new(testutil.MockSellerRepository)
			seller := testSeller(t)
			matches := mock.MatchedBy(func(f shared.Filter) bool {
				status, ok := f.Filters["status"]
				if tt.want == "" {
					return !ok
				}
				return status == tt.want
			})
			sellers.On("FindAll", mock.Anything, matches).Return([]partner.Seller{*seller}, nil)
			sellers.On("Count", mock.Anything, matches).Return(int64(1), nil)

			w := testutil.Do(t, newSellerRouter(sellers, nil), testutil.Request{Path: "/admin/sellers" + tt.query})
			if tt.code != "" {
				testutil.AssertErrorResponse(t, w, tt.status, tt.code)
				sellers.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
				return
			}
			got := testutil.DecodeData[[]partnerapp.SellerResponse](t, w)
			require.Len(t, got, 1)
			assert.Equal(t, "Ada Goods", got[0].Name)
			env := testutil.DecodeEnvelope(t, w)
			assert.EqualValues(t, 1, env.Meta["total"])
			sellers.AssertExpectations(t)
		})
	}
}

func TestSellerHandler_Create(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		exists bool
		status int
		code   string
	}{
		{name: "created", body: map[string]string{"name": "Ada Goods", "email": "ada@example.com"}, status: http.StatusCreated},
		{name: "missing name", body: map[string]string{"email": "ada@example.com"}, status: http.StatusBadRequest, code: dto.ErrCodeValidation},
		{name: "bad email", body: map[string]string{"name": "Ada Goods", "email": "ada"}, status: http.StatusBadRequest, code: dto.ErrCodeValidation},
		{name: "malformed body", body: []byte("{"), status: http.StatusBadRequest, code: dto.ErrCodeInvalidJSON},
		{name: "duplicate email", body: map[string]string{"name": "Ada Goods", "email": "ada@example.com"}, exists: true, status: http.StatusConflict, code: dto.ErrCodeAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sellers := new(testutil.MockSellerRepository)
			sellers.On("ExistsByEmail", mock.Anything, "ada@example.com").Return(tt.exists, nil)
			sellers.On("Save", mock.Anything, mock.AnythingOfType("*partner.Seller")).Return(nil)

			w := testutil.Do(t, newSellerRouter(sellers, nil), testutil.Request{
				Method: http.MethodPost,
				Path:   "/admin/sellers",
				Body:   tt.body,
			})
			if tt.code != "" {
				testutil.AssertErrorResponse(t, w, tt.status, tt.code)
				sellers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				return
			}
			assert.Equal(t, http.StatusCreated, w.Code)
			got := testutil.DecodeData[partnerapp.SellerResponse](t, w)
			assert.Equal(t, "pending", got.Status)
			sellers.AssertCalled(t, "Save", mock.Anything, mock.AnythingOfType("*partner.Seller"))
		})
	}
}

func TestSellerHandler_SetStatus(t *testing.T) {
	sellers := new(testutil.MockSellerRepository)
	seller := testSeller(t)
	sellers.On("FindByID", mock.Anything, seller.ID).Return(seller, nil)
	sellers.On("Save", mock.Anything, seller).Return(nil)
	r := newSellerRouter(sellers, nil)
	path := "/admin/sellers/" + seller.ID.String() + "/status"

	w := testutil.Do(t, r, testutil.Request{Method: http.MethodPut, Path: path, Body: map[string]string{"status": "approved", "note": " documents checked "}})
	got := testutil.DecodeData[partnerapp.SellerResponse](t, w)
	assert.Equal(t, "approved", got.Status)
	assert.Equal(t, "documents checked", got.StatusNote)

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodPut, Path: path, Body: map[string]string{"status": "banned"}})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "INVALID_STATUS")

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodPut, Path: path, Body: map[string]string{}})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodPut, Path: "/admin/sellers/ada/status", Body: map[string]string{"status": "approved"}})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)

	sellers.AssertNumberOfCalls(t, "Save", 1)
}

func TestSellerHandler_DeleteWithShops(t *testing.T) {
	sellers := new(testutil.MockSellerRepository)
	shops := new(testutil.MockShopRepository)
	seller := testSeller(t)
	sellers.On("FindByID", mock.Anything, seller.ID).Return(seller, nil)
	shops.On("Count", mock.Anything, mock.Anything).Return(int64(2), nil)

	w := testutil.Do(t, newSellerRouter(sellers, shops), testutil.Request{Method: http.MethodDelete, Path: "/admin/sellers/" + seller.ID.String()})
	testutil.AssertErrorResponse(t, w, http.StatusConflict, "SELLER_HAS_SHOPS")
	sellers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestShopHandler_ListAndStatus(t *testing.T) {
	shops := new(testutil.MockShopRepository)
	sellerID := uuid.New()
	shop, err := partner.NewShop(sellerID, "Ada's Corner", "")
	require.NoError(t, err)
	bySellerAndStatus := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["seller_id"] == sellerID && f.Filters["status"] == "active"
	})
	shops.On("FindAll", mock.Anything, bySellerAndStatus).Return([]partner.Shop{*shop}, nil)
	shops.On("Count", mock.Anything, bySellerAndStatus).Return(int64(1), nil)
	shops.On("FindByID", mock.Anything, shop.ID).Return(shop, nil)
	shops.On("Save", mock.Anything, shop).Return(nil)
	r := newShopRouter(shops, nil)

	w := testutil.Do(t, r, testutil.Request{Path: "/admin/shops?status=active&seller_id=" + sellerID.String()})
	got := testutil.DecodeData[[]partnerapp.ShopResponse](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, sellerID, got[0].SellerID)

	w = testutil.Do(t, r, testutil.Request{Path: "/admin/shops?seller_id=nope"})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodPut, Path: "/admin/shops/" + shop.ID.String() + "/status", Body: map[string]string{"status": "suspended"}})
	status := testutil.DecodeData[partnerapp.ShopResponse](t, w)
	assert.Equal(t, "suspended", status.Status)
	shops.AssertExpectations(t)
}
