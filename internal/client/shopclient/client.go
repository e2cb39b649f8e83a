// Package shopclient is the storefront client: a typed API client guarded
// by a circuit breaker, the product page controller with its static
// fallback, the review submission flow, the carousel loaders and the local
// JSON store that replaces browser storage.
package shopclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const maxResponseSize = 4 << 20

// Config configures a Client
type Config struct {
	// BaseURL includes the API version prefix, e.g. http://localhost:8080/api/v1
	BaseURL            string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	UserAgent          string
	// HTTPClient overrides the transport; Timeout is ignored when set
	HTTPClient *http.Client
}

// Client calls the shopfront REST API. Catalog reads pass through a
// circuit breaker that opens after consecutive network or 5xx failures.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	session   Session
	breaker   *gobreaker.CircuitBreaker[*envelope]
	userAgent string
	logger    *zap.Logger
}

// NewClient validates cfg and builds a client. session may be nil for
// anonymous use.
func NewClient(cfg Config, session Session, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 3
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "shopctl/1.0"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if session == nil {
		session = StaticSession("")
	}

	maxFailures := cfg.BreakerMaxFailures
	breaker := gobreaker.NewCircuitBreaker[*envelope](gobreaker.Settings{
		Name:    "catalog",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// 4xx answers prove the API is up
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			status := StatusOf(err)
			return status > 0 && status < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL:   base,
		http:      httpClient,
		session:   session,
		breaker:   breaker,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}, nil
}

// BreakerState reports the catalog breaker state
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

type authMode int

const (
	authNone authMode = iota
	// authOptional sends the token when the session yields one and goes
	// anonymous on any session failure
	authOptional
	// authRequired fails the call when the session cannot be read
	authRequired
)

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   authMode
	token  string
}

// Unavailable reports whether err means the API could not serve the call:
// a transport failure, a 5xx answer or an open breaker
func Unavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	if errors.Is(err, ErrMalformedEnvelope) {
		return true
	}
	status := StatusOf(err)
	return status == 0 || status >= http.StatusInternalServerError
}

// catalog resolves the session before entering the breaker so that local
// session trouble never counts against the API
func (c *Client) catalog(ctx context.Context, req request) (*envelope, error) {
	req, err := c.authorize(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.breaker.Execute(func() (*envelope, error) {
		return c.send(ctx, req)
	})
}

func (c *Client) do(ctx context.Context, req request) (*envelope, error) {
	req, err := c.authorize(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, req)
}

func (c *Client) authorize(ctx context.Context, req request) (request, error) {
	if req.auth == authNone {
		return req, nil
	}
	token, err := c.session.AccessToken(ctx)
	switch {
	case err == nil:
		req.token = token
	case errors.Is(err, ErrNoSession):
	case req.auth == authOptional:
		c.logger.Warn("Session unreadable, sending request anonymously",
			zap.String("path", req.path),
			zap.Error(err),
		)
	default:
		return req, err
	}
	return req, nil
}

func (c *Client) send(ctx context.Context, req request) (*envelope, error) {
	u := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("Request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	c.logger.Debug("Request completed",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return decodeEnvelope(resp.StatusCode, raw)
}

// ProductQuery filters the product list
type ProductQuery struct {
	CategoryID *uuid.UUID
	Search     string
	Exclude    []uuid.UUID
	PageSize   int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.CategoryID != nil {
		v.Set("category_id", q.CategoryID.String())
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if len(q.Exclude) > 0 {
		v.Set("exclude", joinIDs(q.Exclude))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

// GetProduct loads the product page payload
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	env, err := c.catalog(ctx, request{method: http.MethodGet, path: "/products/" + id.String(), auth: authOptional})
	if err != nil {
		return nil, err
	}
	var detail ProductDetail
	if err := env.into(&detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListProducts queries active products
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Product, *Meta, error) {
	env, err := c.catalog(ctx, request{method: http.MethodGet, path: "/products", query: q.values()})
	if err != nil {
		return nil, nil, err
	}
	var products []Product
	if err := env.into(&products); err != nil {
		return nil, nil, err
	}
	return products, env.Meta, nil
}

// RandomProducts returns up to limit random active products
func (c *Client) RandomProducts(ctx context.Context, limit int, exclude ...uuid.UUID) ([]Product, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(exclude) > 0 {
		q.Set("exclude", joinIDs(exclude))
	}
	env, err := c.catalog(ctx, request{method: http.MethodGet, path: "/products/random", query: q})
	if err != nil {
		return nil, err
	}
	var products []Product
	if err := env.into(&products); err != nil {
		return nil, err
	}
	return products, nil
}

// Recommended asks the API for recommendations around relatedTo
func (c *Client) Recommended(ctx context.Context, relatedTo uuid.UUID, limit int) (*Recommendation, error) {
	q := url.Values{}
	if relatedTo != uuid.Nil {
		q.Set("related_to", relatedTo.String())
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	env, err := c.catalog(ctx, request{method: http.MethodGet, path: "/products/recommended", query: q})
	if err != nil {
		return nil, err
	}
	var rec Recommendation
	if err := env.into(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// PostReview submits a review as the session user
func (c *Client) PostReview(ctx context.Context, productID uuid.UUID, rating int, comment string) (*Review, error) {
	env, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/products/" + productID.String() + "/reviews",
		body:   map[string]any{"rating": rating, "comment": comment},
		auth:   authRequired,
	})
	if err != nil {
		return nil, err
	}
	var r Review
	if err := env.into(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, email, password string, rememberMe bool) (*User, *TokenPair, error) {
	env, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]any{"email": email, "password": password, "remember_me": rememberMe},
	})
	if err != nil {
		return nil, nil, err
	}
	var out struct {
		User   User       `json:"user"`
		Tokens *TokenPair `json:"tokens"`
	}
	if err := env.into(&out); err != nil {
		return nil, nil, err
	}
	if out.Tokens == nil || out.Tokens.AccessToken == "" {
		return nil, nil, fmt.Errorf("%w: login returned no tokens", ErrMalformedEnvelope)
	}
	return &out.User, out.Tokens, nil
}

// Refresh rotates a refresh token. It never sends the access token, so a
// Session may call it from AccessToken.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	env, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   map[string]string{"refresh_token": refreshToken},
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Tokens *TokenPair `json:"tokens"`
	}
	if err := env.into(&out); err != nil {
		return nil, err
	}
	if out.Tokens == nil {
		return nil, fmt.Errorf("%w: refresh returned no tokens", ErrMalformedEnvelope)
	}
	return out.Tokens, nil
}

// Logout revokes the session tokens server side
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	var body any
	if refreshToken != "" {
		body = map[string]string{"refresh_token": refreshToken}
	}
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout", body: body, auth: authRequired})
	return err
}

// Me returns the signed-in user
func (c *Client) Me(ctx context.Context) (*User, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me", auth: authRequired})
	if err != nil {
		return nil, err
	}
	var u User
	if err := env.into(&u); err != nil {
		return nil, err
	}
	return &u, nil
}
