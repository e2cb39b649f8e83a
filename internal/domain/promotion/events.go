package promotion

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

const AggregateTypePromotion = "Promotion"

const EventTypePromotionCreated = "PromotionCreated"

// PromotionCreatedEvent is published when an admin creates a promotion
type PromotionCreatedEvent struct {
	shared.BaseDomainEvent
	PromotionID uuid.UUID `json:"promotion_id"`
	Code        string    `json:"code"`
	Type        Type      `json:"type"`
}

func NewPromotionCreatedEvent(p *Promotion) *PromotionCreatedEvent {
	return &PromotionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePromotionCreated, AggregateTypePromotion, p.ID),
		PromotionID:     p.ID,
		Code:            p.Code,
		Type:            p.Type,
	}
}
