package promotion

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrNotActive         = shared.NewDomainError("PROMOTION_NOT_ACTIVE", "Promotion is not active")
	ErrNotStarted        = shared.NewDomainError("PROMOTION_NOT_STARTED", "Promotion has not started yet")
	ErrExpired           = shared.NewDomainError("PROMOTION_EXPIRED", "Promotion has expired")
	ErrUsageLimitReached = shared.NewDomainError("PROMOTION_USAGE_LIMIT", "Promotion usage limit reached")
	ErrCustomerLimit     = shared.NewDomainError("PROMOTION_CUSTOMER_LIMIT", "You have already used this promotion")
	ErrMinOrderNotMet    = shared.NewDomainError("PROMOTION_MIN_ORDER", "Order does not meet the minimum amount")
	ErrNotApplicable     = shared.NewDomainError("PROMOTION_NOT_APPLICABLE", "Promotion does not apply to any item in the cart")
)

// Line is the slice of a cart line a promotion needs to price
type Line struct {
	ProductID  uuid.UUID
	CategoryID *uuid.UUID
	UnitPrice  decimal.Decimal
	Quantity   int
}

func (l Line) total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Result is the outcome of applying a promotion to a cart
type Result struct {
	Discount        decimal.Decimal `json:"discount"`
	ShippingWaived  bool            `json:"shipping_waived"`
	EligibleTotal   decimal.Decimal `json:"eligible_total"`
	AppliedProducts []uuid.UUID     `json:"applied_products"`
}

// CheckEligibility runs the checks that do not depend on cart contents.
// customerUses is how many times the shopper already redeemed the code.
func (p *Promotion) CheckEligibility(now time.Time, customerUses int) error {
	if !p.Active {
		return ErrNotActive
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return ErrNotStarted
	}
	if p.EndsAt != nil && !now.Before(*p.EndsAt) {
		return ErrExpired
	}
	if p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit {
		return ErrUsageLimitReached
	}
	if p.PerCustomerLimit > 0 && customerUses >= p.PerCustomerLimit {
		return ErrCustomerLimit
	}
	return nil
}

// Covers reports whether a line falls in the promotion's scope
func (p *Promotion) Covers(l Line) bool {
	if slices.Contains(p.ExcludedProductIDs, l.ProductID) {
		return false
	}
	switch p.Applicability {
	case ApplyToProducts:
		return slices.Contains(p.ProductIDs, l.ProductID)
	case ApplyToCategories:
		return l.CategoryID != nil && slices.Contains(p.CategoryIDs, *l.CategoryID)
	}
	return true
}

// Apply prices the promotion against the cart lines. The discount never
// exceeds the eligible subtotal or MaxDiscount when set.
func (p *Promotion) Apply(lines []Line, now time.Time, customerUses int) (Result, error) {
	if err := p.CheckEligibility(now, customerUses); err != nil {
		return Result{}, err
	}

	subtotal := decimal.Zero
	eligible := make([]Line, 0, len(lines))
	eligibleTotal := decimal.Zero
	applied := make([]uuid.UUID, 0)
	for _, l := range lines {
		subtotal = subtotal.Add(l.total())
		if l.Quantity < 1 || !p.Covers(l) {
			continue
		}
		eligible = append(eligible, l)
		eligibleTotal = eligibleTotal.Add(l.total())
		if !slices.Contains(applied, l.ProductID) {
			applied = append(applied, l.ProductID)
		}
	}
	if subtotal.LessThan(p.MinOrderAmount) {
		return Result{}, ErrMinOrderNotMet
	}
	if len(eligible) == 0 {
		return Result{}, ErrNotApplicable
	}

	res := Result{EligibleTotal: eligibleTotal, AppliedProducts: applied, Discount: decimal.Zero}
	switch p.Type {
	case TypePercentage:
		res.Discount = eligibleTotal.Mul(p.Value).Div(decimal.NewFromInt(100)).Round(2)
	case TypeFixedAmount:
		res.Discount = decimal.Min(p.Value, eligibleTotal)
	case TypeFreeShipping:
		res.ShippingWaived = true
	case TypeBuyXGetY:
		res.Discount = buyXGetYDiscount(eligible, p.BuyQuantity, p.GetQuantity)
	}
	if p.MaxDiscount != nil && res.Discount.GreaterThan(*p.MaxDiscount) {
		res.Discount = *p.MaxDiscount
	}
	if res.Discount.GreaterThan(eligibleTotal) {
		res.Discount = eligibleTotal
	}
	return res, nil
}

// buyXGetYDiscount makes the cheapest units free: for every buy+get units
// across eligible lines, get units are free.
func buyXGetYDiscount(lines []Line, buy, get int) decimal.Decimal {
	units := make([]decimal.Decimal, 0)
	for _, l := range lines {
		for i := 0; i < l.Quantity; i++ {
			units = append(units, l.UnitPrice)
		}
	}
	free := (len(units) / (buy + get)) * get
	if free == 0 {
		return decimal.Zero
	}
	slices.SortFunc(units, func(a, b decimal.Decimal) int { return a.Cmp(b) })
	total := decimal.Zero
	for _, u := range units[:free] {
		total = total.Add(u)
	}
	return total
}
