package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	promotionapp "github.com/shopfront/backend/internal/application/promotion"
	"github.com/shopfront/backend/internal/domain/promotion"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPromotionRouter(promos *testutil.MockPromotionRepository) *gin.Engine {
	h := NewPromotionHandler(promotionapp.NewService(promos, new(testutil.MockCartRepository)))
	return newTestRouter(nil, func(r gin.IRouter) {
		r.GET("/admin/promotions", h.List)
		r.POST("/admin/promotions", h.Create)
		r.PUT("/admin/promotions/:id/active", h.SetActive)
		r.DELETE("/admin/promotions/:id", h.Delete)
	})
}

func testPromotion(t *testing.T, code string) *promotion.Promotion {
	t.Helper()
	p, err := promotion.New(code, promotion.Rule{
		Name:   "Autumn",
		Type:   promotion.TypePercentage,
		Value:  decimal.NewFromInt(10),
		Active: true,
	})
	require.NoError(t, err)
	return p
}

func TestPromotionHandler_List(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   promotion.Status
		status int
		code   string
	}{
		{name: "all", status: http.StatusOK},
		{name: "expired only", query: "?status=expired", want: promotion.Status("expired"), status: http.StatusOK},
		{name: "unknown status", query: "?status=paused", status: http.StatusBadRequest, code: dto.ErrCodeValidation},
		{name: "unknown type", query: "?type=bogof", status: http.StatusBadRequest, code: dto.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promos := new(testutil.MockPromotionRepository)
			matches := mock.MatchedBy(func(f shared.Filter) bool {
				status, ok := f.Filters["status"]
				if tt.want == "" {
					return !ok
				}
				return status == tt.want
			})
			promos.On("FindAll", mock.Anything, matches).Return([]promotion.Promotion{*testPromotion(t, "AUTUMN10")}, nil)
			promos.On("Count", mock.Anything, matches).Return(int64(1), nil)

			w := testutil.Do(t, newPromotionRouter(promos), testutil.Request{Path: "/admin/promotions" + tt.query})
			if tt.code != "" {
				testutil.AssertErrorResponse(t, w, tt.status, tt.code)
				promos.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
				return
			}
			got := testutil.DecodeData[[]promotionapp.PromotionResponse](t, w)
			require.Len(t, got, 1)
			assert.Equal(t, "AUTUMN10", got[0].Code)
			promos.AssertExpectations(t)
		})
	}
}

func TestPromotionHandler_Create(t *testing.T) {
	rule := map[string]any{"name": "Autumn", "type": "percentage", "value": "10", "active": true}
	with := func(extra map[string]any) map[string]any {
		out := map[string]any{}
		for k, v := range rule {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}
	tests := []struct {
		name   string
		body   map[string]any
		exists bool
		status int
		code   string
	}{
		{name: "created", body: with(map[string]any{"code": "autumn10"}), status: http.StatusCreated},
		{name: "missing code", body: with(nil), status: http.StatusBadRequest, code: dto.ErrCodeValidation},
		{name: "unknown type", body: with(map[string]any{"code": "AUTUMN10", "type": "bogof"}), status: http.StatusBadRequest, code: dto.ErrCodeValidation},
		{name: "percentage over 100", body: with(map[string]any{"code": "AUTUMN10", "value": "150"}), status: http.StatusBadRequest, code: "INVALID_VALUE"},
		{name: "code taken", body: with(map[string]any{"code": "AUTUMN10"}), exists: true, status: http.StatusConflict, code: dto.ErrCodeAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promos := new(testutil.MockPromotionRepository)
			promos.On("ExistsByCode", mock.Anything, "AUTUMN10").Return(tt.exists, nil)
			promos.On("Save", mock.Anything, mock.AnythingOfType("*promotion.Promotion")).Return(nil)

			w := testutil.Do(t, newPromotionRouter(promos), testutil.Request{
				Method: http.MethodPost,
				Path:   "/admin/promotions",
				Body:   tt.body,
			})
			if tt.code != "" {
				testutil.AssertErrorResponse(t, w, tt.status, tt.code)
				promos.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				return
			}
			assert.Equal(t, http.StatusCreated, w.Code)
			got := testutil.DecodeData[promotionapp.PromotionResponse](t, w)
			assert.Equal(t, "AUTUMN10", got.Code)
			assert.Equal(t, "active", got.Status)
		})
	}
}

func TestPromotionHandler_SetActive(t *testing.T) {
	promos := new(testutil.MockPromotionRepository)
	p := testPromotion(t, "AUTUMN10")
	promos.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	promos.On("Save", mock.Anything, p).Return(nil)
	r := newPromotionRouter(promos)
	path := "/admin/promotions/" + p.ID.String() + "/active"

	w := testutil.Do(t, r, testutil.Request{Method: http.MethodPut, Path: path, Body: map[string]bool{"active": false}})
	got := testutil.DecodeData[promotionapp.PromotionResponse](t, w)
	assert.False(t, got.Active)
	assert.Equal(t, "inactive", got.Status)

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodPut, Path: path, Body: map[string]bool{"active": true}})
	got = testutil.DecodeData[promotionapp.PromotionResponse](t, w)
	assert.True(t, got.Active)
	assert.Equal(t, "active", got.Status)

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodPut, Path: "/admin/promotions/x/active", Body: map[string]bool{"active": true}})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	promos.AssertNumberOfCalls(t, "Save", 2)
}

func TestPromotionHandler_DeleteRedeemed(t *testing.T) {
	promos := new(testutil.MockPromotionRepository)
	p := testPromotion(t, "AUTUMN10")
	p.UsedCount = 3
	promos.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	w := testutil.Do(t, newPromotionRouter(promos), testutil.Request{Method: http.MethodDelete, Path: "/admin/promotions/" + p.ID.String()})
	testutil.AssertErrorResponse(t, w, http.StatusConflict, "PROMOTION_IN_USE")
	promos.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
