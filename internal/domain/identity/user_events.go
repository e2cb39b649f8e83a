package identity

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

const AggregateTypeUser = "User"

const EventTypeUserRegistered = "UserRegistered"

// UserRegisteredEvent is published when a shopper creates an account
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

func NewUserRegisteredEvent(u *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, u.ID),
		UserID:          u.ID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
	}
}
