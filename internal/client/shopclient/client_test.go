package shopclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, session Session) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(Config{
		BaseURL:            server.URL + "/api/v1",
		Timeout:            5 * time.Second,
		BreakerMaxFailures: 3,
		BreakerOpenTimeout: time.Minute,
	}, session, nil)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, nil, nil)
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "ftp://example.com"}, nil, nil)
	assert.Error(t, err)
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantStatus int
		wantCode   string
	}{
		{name: "success", status: 200, body: `{"success":true,"data":{"id":1}}`},
		{name: "empty body with 204", status: 204, body: ""},
		{name: "failure envelope", status: 404, body: `{"success":false,"error":{"code":"NOT_FOUND","message":"product not found"}}`, wantStatus: 404, wantCode: "NOT_FOUND"},
		{name: "not json on 200", status: 200, body: `<html>oops</html>`, wantErr: ErrMalformedEnvelope},
		{name: "missing success", status: 200, body: `{"data":[]}`, wantErr: ErrMalformedEnvelope},
		{name: "failure without error object", status: 200, body: `{"success":false}`, wantErr: ErrMalformedEnvelope},
		{name: "html on 502", status: 502, body: `<html>bad gateway</html>`, wantStatus: 502},
		{name: "empty body on 500", status: 500, body: "", wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := decodeEnvelope(tt.status, []byte(tt.body))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantStatus != 0:
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantStatus, apiErr.Status)
				assert.Equal(t, tt.wantCode, apiErr.Code)
			default:
				require.NoError(t, err)
				assert.True(t, env.Success)
			}
		})
	}
}

func TestClient_GetProduct(t *testing.T) {
	id := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products/"+id.String(), r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"product":         map[string]any{"id": id, "name": "Linen Shirt", "price": "59.00", "sale_price": "44.25", "stock": 3},
				"bought_together": []any{map[string]any{"id": uuid.New(), "name": "Tote", "price": "24.00"}},
			},
		})
	}, StaticSession("tok"))

	detail, err := c.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt", detail.Product.Name)
	assert.Equal(t, "59", detail.Product.Price.String())
	assert.Equal(t, 25, detail.Product.Discount())
	assert.Len(t, detail.BoughtTogether, 1)
}

func TestClient_ListProductsQuery(t *testing.T) {
	category := uuid.New()
	exclude := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, category.String(), r.URL.Query().Get("category_id"))
		assert.Equal(t, exclude.String(), r.URL.Query().Get("exclude"))
		assert.Equal(t, "8", r.URL.Query().Get("page_size"))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []any{map[string]any{"id": uuid.New(), "name": "A", "price": "1.00"}},
			"meta":    map[string]any{"total": 1, "page": 1, "page_size": 8, "total_pages": 1},
		})
	}, StaticSession("tok"))

	products, meta, err := c.ListProducts(context.Background(), ProductQuery{
		CategoryID: &category,
		Exclude:    []uuid.UUID{exclude},
		PageSize:   8,
	})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	require.NotNil(t, meta)
	assert.Equal(t, int64(1), meta.Total)
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   map[string]any{"code": "ERR_INTERNAL", "message": "boom"},
		})
	}, nil)

	for range 3 {
		_, err := c.GetProduct(context.Background(), uuid.New())
		require.Error(t, err)
		assert.True(t, Unavailable(err))
	}
	assert.Equal(t, gobreaker.StateOpen, c.BreakerState())

	_, err := c.GetProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_NotFoundKeepsBreakerClosed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   map[string]any{"code": "NOT_FOUND", "message": "product not found"},
		})
	}, nil)

	for range 5 {
		_, err := c.GetProduct(context.Background(), uuid.New())
		assert.Equal(t, http.StatusNotFound, StatusOf(err))
		assert.False(t, Unavailable(err))
	}
	assert.Equal(t, gobreaker.StateClosed, c.BreakerState())
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])
		assert.Equal(t, true, body["remember_me"])
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"user":   map[string]any{"id": uuid.New(), "email": "ada@example.com", "role": "customer"},
				"tokens": map[string]any{"access_token": "a", "refresh_token": "r", "token_type": "Bearer"},
			},
		})
	}, nil)

	user, tokens, err := c.Login(context.Background(), "ada@example.com", "secret", true)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "a", tokens.AccessToken)
	assert.Equal(t, "r", tokens.RefreshToken)
}

func TestClient_PostReviewUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"error":   map[string]any{"code": "UNAUTHORIZED", "message": "authentication required"},
		})
	}, nil)

	_, err := c.PostReview(context.Background(), uuid.New(), 5, "Great shirt, fits well")
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

type sessionFunc func(ctx context.Context) (string, error)

func (f sessionFunc) AccessToken(ctx context.Context) (string, error) { return f(ctx) }

func TestClient_UnreadableSessionSendsCatalogReadsAnonymously(t *testing.T) {
	var calls atomic.Int32
	id := uuid.New()
	broken := sessionFunc(func(context.Context) (string, error) {
		return "", errors.New("corrupt local store")
	})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method == http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"product": map[string]any{"id": id, "name": "Linen Shirt", "price": "59.00"}},
		})
	}, broken)

	for range 5 {
		detail, err := c.GetProduct(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Linen Shirt", detail.Product.Name)
	}
	assert.Equal(t, gobreaker.StateClosed, c.BreakerState())

	// writes still need a readable session
	_, err := c.PostReview(context.Background(), id, 5, "Great shirt, fits well")
	assert.EqualError(t, err, "corrupt local store")
	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, gobreaker.StateClosed, c.BreakerState())
}
