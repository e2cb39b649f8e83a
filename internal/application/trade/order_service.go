package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/event"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/promotion"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderService serves order tracking for shoppers and the shipping panel
// for admins
type OrderService struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	promoRepo   promotion.Repository
	tx          shared.TxManager
	gateway     trade.PaymentGateway
	events      *event.Dispatcher
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService. gateway may be nil.
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	promoRepo promotion.Repository,
	tx shared.TxManager,
	gateway trade.PaymentGateway,
	events *event.Dispatcher,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		promoRepo:   promoRepo,
		tx:          tx,
		gateway:     gateway,
		events:      events,
		logger:      logger,
	}
}

// ListMine lists the caller's orders
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, f OrderListFilter) ([]OrderResponse, int64, error) {
	filter := f.toFilter()
	filter.Filters[filterCustomerID] = userID
	return s.list(ctx, filter)
}

// GetMine returns one of the caller's orders. Orders of other customers
// are reported as not found.
func (s *OrderService) GetMine(ctx context.Context, userID, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// CancelMine cancels one of the caller's orders while it is still pending
func (s *OrderService) CancelMine(ctx context.Context, userID, id uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	order, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if order.Status != trade.OrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Only pending orders can be cancelled")
	}
	return s.cancel(ctx, order, req.Reason)
}

// List is the admin listing
func (s *OrderService) List(ctx context.Context, f OrderListFilter) ([]OrderResponse, int64, error) {
	return s.list(ctx, f.toFilter())
}

// GetByID retrieves any order
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// UpdateStatus moves an order one step forward, or cancels it. Moves that
// skip or reverse a step fail with INVALID_STATE.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch trade.OrderStatus(req.Status) {
	case trade.OrderStatusProcessing:
		err = order.StartProcessing()
	case trade.OrderStatusShipped:
		err = order.Ship(req.Carrier, req.TrackingNumber)
	case trade.OrderStatusDelivered:
		err = order.Deliver()
	case trade.OrderStatusCancelled:
		return s.cancel(ctx, order, req.Reason)
	default:
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+req.Status)
	}
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, order)
	response := ToOrderResponse(order)
	return &response, nil
}

// cancel cancels the order, puts the stock back and releases the
// promotion use in one transaction. An open card payment is cancelled
// at the gateway afterwards.
func (s *OrderService) cancel(ctx context.Context, order *trade.Order, reason string) (*OrderResponse, error) {
	if err := order.Cancel(reason); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, it := range order.Items {
			if _, err := s.productRepo.AdjustStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		if order.PromotionID != nil {
			if err := s.promoRepo.DecrementUsage(ctx, *order.PromotionID); err != nil {
				return err
			}
			if err := s.promoRepo.DeleteRedemptionByOrder(ctx, order.ID); err != nil {
				return err
			}
		}
		return s.orderRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if order.PaymentMethod == trade.PaymentMethodCard && order.PaymentStatus != trade.PaymentStatusRefunded &&
		order.PaymentReference != "" && s.gateway != nil {
		if err := s.gateway.CancelPayment(ctx, order.PaymentReference); err != nil {
			s.logger.Warn("Failed to cancel payment of cancelled order",
				zap.String("order_number", order.OrderNumber),
				zap.String("reference", order.PaymentReference),
				zap.Error(err))
		}
	}

	s.events.Dispatch(ctx, order)
	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) list(ctx context.Context, filter shared.Filter) ([]OrderResponse, int64, error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

func (s *OrderService) findOwned(ctx context.Context, userID, id uuid.UUID) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		return nil, shared.ErrNotFound
	}
	return order, nil
}
