// Package trade turns carts into orders and runs the order lifecycle,
// payments included.
package trade

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/event"
	"github.com/shopfront/backend/internal/domain/cart"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/promotion"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Filter keys understood by trade.OrderRepository
const (
	filterStatus        = "status"
	filterCustomerID    = "customer_id"
	filterPaymentStatus = "payment_status"
)

// Payment attempt outcomes
const (
	PaymentCreated  = "created"
	PaymentRejected = "rejected"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
)

var errPaymentUnavailable = shared.NewDomainError("PAYMENT_UNAVAILABLE", "Card payments are not available")

// PaymentRecorder counts payment attempts
type PaymentRecorder interface {
	RecordPaymentAttempt(ctx context.Context, method trade.PaymentMethod, outcome string)
}

// ShippingPolicy prices delivery: a flat fee waived above a subtotal
// threshold. An empty AllowedCountries list ships everywhere.
type ShippingPolicy struct {
	FlatFee          decimal.Decimal
	FreeShippingOver decimal.Decimal
	AllowedCountries []string
}

// FeeFor returns the shipping fee for a subtotal
func (p ShippingPolicy) FeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if p.FreeShippingOver.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeShippingOver) {
		return decimal.Zero
	}
	return p.FlatFee
}

// ShipsTo reports whether orders may be delivered to country
func (p ShippingPolicy) ShipsTo(country string) bool {
	if len(p.AllowedCountries) == 0 {
		return true
	}
	return slices.ContainsFunc(p.AllowedCountries, func(c string) bool {
		return strings.EqualFold(c, country)
	})
}

// CheckoutDeps groups the collaborators of CheckoutService
type CheckoutDeps struct {
	Carts      cart.Repository
	Products   catalog.ProductRepository
	Orders     trade.OrderRepository
	Promotions promotion.Repository
	Customers  partner.CustomerRepository
	Users      identity.UserRepository
	Tx         shared.TxManager
	// Gateway may be nil, in which case card payments are refused
	Gateway  trade.PaymentGateway
	Events   *event.Dispatcher
	Payments PaymentRecorder
	Shipping ShippingPolicy
	Currency string
	Logger   *zap.Logger
}

// CheckoutService places orders from carts
type CheckoutService struct {
	deps CheckoutDeps
	now  func() time.Time
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &CheckoutService{deps: deps, now: time.Now}
}

// Checkout re-validates the cart against current stock and prices, applies
// the promotion, decrements stock and places the order in one transaction.
// The cart is cleared afterwards. Card orders get a payment intent.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place_order", "user.id", userID.String())
	defer span.End()

	method := trade.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unsupported payment method: "+req.PaymentMethod)
	}
	if method == trade.PaymentMethodCard && s.deps.Gateway == nil {
		return nil, errPaymentUnavailable
	}
	address := req.ShippingAddress.toDomain()
	if !s.deps.Shipping.ShipsTo(address.Country) {
		return nil, shared.NewDomainError("SHIPPING_UNAVAILABLE", "We do not ship to "+address.Country)
	}

	user, err := s.deps.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	c, err := s.deps.Carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("CART_EMPTY", "Your cart is empty")
	}

	var order *trade.Order
	err = s.deps.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureCustomer(ctx, user, address); err != nil {
			return err
		}
		var err error
		order, err = s.buildOrder(ctx, user, c, address, method)
		if err != nil {
			return err
		}
		order.Note = strings.TrimSpace(req.Note)
		if req.PromotionCode != "" {
			if err := s.applyPromotion(ctx, order, c, req.PromotionCode); err != nil {
				return err
			}
		}
		for _, it := range order.Items {
			if _, err := s.deps.Products.AdjustStock(ctx, it.ProductID, -it.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock for "+it.ProductName)
				}
				return err
			}
		}
		if err := order.Place(); err != nil {
			return err
		}
		if err := s.deps.Orders.Save(ctx, order); err != nil {
			return err
		}
		if order.PromotionID != nil {
			return s.deps.Promotions.SaveRedemption(ctx, promotion.NewRedemption(*order.PromotionID, userID, order.ID))
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "order.number", order.OrderNumber, "order.total", order.Total.String())

	if err := s.deps.Carts.Delete(ctx, userID); err != nil {
		s.deps.Logger.Warn("Failed to clear cart after checkout",
			zap.String("user_id", userID.String()),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}
	s.deps.Events.Dispatch(ctx, order)

	resp := &CheckoutResponse{}
	if method == trade.PaymentMethodCard {
		intent, err := s.startPayment(ctx, order)
		if err != nil {
			resp.PaymentError = "Payment could not be started, please retry"
		} else {
			resp.ClientSecret = intent.ClientSecret
		}
	}
	resp.Order = ToOrderResponse(order)
	return resp, nil
}

// Pay (re)starts the card payment of the caller's unpaid order
func (s *CheckoutService) Pay(ctx context.Context, userID, orderID uuid.UUID) (*CheckoutResponse, error) {
	if s.deps.Gateway == nil {
		return nil, errPaymentUnavailable
	}
	order, err := s.deps.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		return nil, shared.ErrNotFound
	}
	if order.PaymentMethod != trade.PaymentMethodCard {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Order is not paid by card")
	}
	if order.PaymentStatus == trade.PaymentStatusPaid || order.Status == trade.OrderStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", "Order does not need payment")
	}
	intent, err := s.startPayment(ctx, order)
	if err != nil {
		return nil, shared.NewDomainError("PAYMENT_FAILED", "Payment could not be started")
	}
	return &CheckoutResponse{Order: ToOrderResponse(order), ClientSecret: intent.ClientSecret}, nil
}

func (s *CheckoutService) startPayment(ctx context.Context, order *trade.Order) (*trade.PaymentIntent, error) {
	intent, err := s.deps.Gateway.CreatePayment(ctx, trade.PaymentRequest{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Amount:        order.Total,
		Currency:      s.deps.Currency,
		CustomerEmail: order.CustomerEmail,
	})
	if err != nil {
		s.recordPayment(ctx, order.PaymentMethod, PaymentRejected)
		s.deps.Logger.Error("Failed to create payment",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return nil, err
	}
	s.recordPayment(ctx, order.PaymentMethod, PaymentCreated)

	if intent.Reference != order.PaymentReference {
		order.SetPaymentReference(intent.Reference)
		if err := s.deps.Orders.Save(ctx, order); err != nil {
			s.deps.Logger.Error("Failed to store payment reference",
				zap.String("order_number", order.OrderNumber),
				zap.String("reference", intent.Reference),
				zap.Error(err))
		}
	}
	return intent, nil
}

func (s *CheckoutService) recordPayment(ctx context.Context, method trade.PaymentMethod, outcome string) {
	if s.deps.Payments != nil {
		s.deps.Payments.RecordPaymentAttempt(ctx, method, outcome)
	}
}

// ensureCustomer creates the admin-facing customer profile on first order
// and refuses blocked customers
func (s *CheckoutService) ensureCustomer(ctx context.Context, user *identity.User, address shared.Address) error {
	customer, err := s.deps.Customers.FindByUserID(ctx, user.ID)
	switch {
	case err == nil:
		if customer.IsBlocked() {
			return shared.NewDomainError("CUSTOMER_BLOCKED", "Your account cannot place orders")
		}
		return nil
	case !errors.Is(err, shared.ErrNotFound):
		return err
	}

	name := user.DisplayName
	if name == "" {
		name = address.FullName
	}
	customer, err = partner.NewCustomer(name, user.Email)
	if err != nil {
		return err
	}
	customer.LinkUser(user.ID)
	if err := customer.SetDefaultAddress(address); err != nil {
		return err
	}
	return s.deps.Customers.Save(ctx, customer)
}

// buildOrder snapshots each cart line at the product's current price
func (s *CheckoutService) buildOrder(ctx context.Context, user *identity.User, c *cart.Cart, address shared.Address, method trade.PaymentMethod) (*trade.Order, error) {
	number, err := s.deps.Orders.NextOrderNumber(ctx, s.now())
	if err != nil {
		return nil, err
	}
	order, err := trade.NewOrder(number, user.ID, user.DisplayName, user.Email, address, method)
	if err != nil {
		return nil, err
	}
	for _, line := range c.Items {
		product, err := s.deps.Products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", line.Name+" is no longer available")
			}
			return nil, err
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", product.Name+" is no longer available")
		}
		if line.Quantity > product.Stock {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock for "+product.Name)
		}
		if err := order.AddItem(product.ID, product.Name, line.Image, line.Color, line.Size, product.EffectivePrice(), line.Quantity); err != nil {
			return nil, err
		}
	}
	if err := order.SetShippingFee(s.deps.Shipping.FeeFor(order.Subtotal)); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *CheckoutService) applyPromotion(ctx context.Context, order *trade.Order, c *cart.Cart, code string) error {
	promo, err := s.deps.Promotions.FindByCode(ctx, promotion.NormalizeCode(code))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("PROMOTION_NOT_FOUND", "Promotion code is not valid")
		}
		return err
	}
	uses, err := s.deps.Promotions.CountRedemptions(ctx, promo.ID, order.CustomerID)
	if err != nil {
		return err
	}
	result, err := promo.Apply(orderLines(order, c), s.now(), uses)
	if err != nil {
		return err
	}
	if err := s.deps.Promotions.IncrementUsage(ctx, promo.ID); err != nil {
		return err
	}
	return order.ApplyPromotion(promo.ID, promo.Code, result.Discount, result.ShippingWaived)
}

// orderLines prices the promotion against the order's snapshot prices,
// taking categories from the cart
func orderLines(order *trade.Order, c *cart.Cart) []promotion.Line {
	categories := make(map[uuid.UUID]*uuid.UUID, len(c.Items))
	for _, l := range c.Items {
		categories[l.ProductID] = l.CategoryID
	}
	lines := make([]promotion.Line, len(order.Items))
	for i, it := range order.Items {
		lines[i] = promotion.Line{
			ProductID:  it.ProductID,
			CategoryID: categories[it.ProductID],
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
		}
	}
	return lines
}
