package shopclient

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Panel sources
const (
	PanelCategory = "category"
	PanelRelated  = "related"
	PanelRandom   = "random"
	PanelRecent   = "recent"
	PanelNone     = "none"
)

// NoRecommendationsMessage is the empty state of the recommended panel
const NoRecommendationsMessage = "No recommendations available right now"

const (
	defaultPanelSize       = 8
	recentFetchTimeout     = 3 * time.Second
	recentFetchParallelism = 4
)

// CatalogReader is the read side of the API the loaders use
type CatalogReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	ListProducts(ctx context.Context, q ProductQuery) ([]Product, *Meta, error)
	RandomProducts(ctx context.Context, limit int, exclude ...uuid.UUID) ([]Product, error)
	Recommended(ctx context.Context, relatedTo uuid.UUID, limit int) (*Recommendation, error)
}

// RecentlyViewedLister lists recently opened product ids
type RecentlyViewedLister interface {
	RecentlyViewed() ([]uuid.UUID, error)
}

// Panel is the content of one product carousel
type Panel struct {
	Products []Product
	Source   string
	Message  string
}

// Loaders fill the similar, recently viewed and recommended carousels.
// Failures never surface: a panel degrades to empty.
type Loaders struct {
	api    CatalogReader
	recent RecentlyViewedLister
	logger *zap.Logger
	size   int
	// fetchTimeout bounds each recently viewed product fetch
	fetchTimeout time.Duration
}

// NewLoaders builds the carousel loaders. recent may be nil.
func NewLoaders(api CatalogReader, recent RecentlyViewedLister, logger *zap.Logger) *Loaders {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loaders{
		api:          api,
		recent:       recent,
		logger:       logger,
		size:         defaultPanelSize,
		fetchTimeout: recentFetchTimeout,
	}
}

// Similar tries the current product's category, then random products
func (l *Loaders) Similar(ctx context.Context, current *Product) Panel {
	if current.CategoryID != nil {
		products, _, err := l.api.ListProducts(ctx, ProductQuery{
			CategoryID: current.CategoryID,
			Exclude:    []uuid.UUID{current.ID},
			PageSize:   l.size,
		})
		if err != nil {
			l.logger.Debug("Category query failed", zap.Error(err))
		}
		if products = without(products, current.ID); len(products) > 0 {
			return Panel{Products: products, Source: PanelCategory}
		}
	}

	products, err := l.api.RandomProducts(ctx, l.size, current.ID)
	if err != nil {
		l.logger.Debug("Random query failed", zap.Error(err))
		return Panel{Source: PanelNone}
	}
	return Panel{Products: without(products, current.ID), Source: PanelRandom}
}

// RecentlyViewed fetches the stored ids other than current, each within
// its own timeout. Products that fail to load are skipped.
func (l *Loaders) RecentlyViewed(ctx context.Context, current uuid.UUID) Panel {
	if l.recent == nil {
		return Panel{Source: PanelNone}
	}
	ids, err := l.recent.RecentlyViewed()
	if err != nil {
		l.logger.Debug("Recently viewed list unreadable", zap.Error(err))
		return Panel{Source: PanelNone}
	}
	ids = slices.DeleteFunc(ids, func(id uuid.UUID) bool { return id == current })

	found := make([]*Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recentFetchParallelism)
	for i, id := range ids {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, l.fetchTimeout)
			defer cancel()
			detail, err := l.api.GetProduct(fetchCtx, id)
			if err != nil {
				l.logger.Debug("Skipping recently viewed product", zap.Stringer("product_id", id), zap.Error(err))
				return nil
			}
			found[i] = &detail.Product
			return nil
		})
	}
	_ = g.Wait()

	products := make([]Product, 0, len(found))
	for _, p := range found {
		if p != nil {
			products = append(products, *p)
		}
	}
	if len(products) == 0 {
		return Panel{Source: PanelNone}
	}
	return Panel{Products: products, Source: PanelRecent}
}

// Recommended tries products related to current, then random products,
// then shows the empty-state message
func (l *Loaders) Recommended(ctx context.Context, current uuid.UUID) Panel {
	rec, err := l.api.Recommended(ctx, current, l.size)
	if err != nil {
		l.logger.Debug("Recommendation query failed", zap.Error(err))
	} else if products := without(rec.Products, current); len(products) > 0 {
		source := rec.Source
		if source == "" {
			source = PanelRelated
		}
		return Panel{Products: products, Source: source}
	}

	products, err := l.api.RandomProducts(ctx, l.size, current)
	if err == nil {
		if products = without(products, current); len(products) > 0 {
			return Panel{Products: products, Source: PanelRandom}
		}
	}
	return Panel{Source: PanelNone, Message: NoRecommendationsMessage}
}

func without(products []Product, id uuid.UUID) []Product {
	return slices.DeleteFunc(products, func(p Product) bool { return p.ID == id })
}
