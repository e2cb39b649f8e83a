package marketing

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// SubscriberStatus tracks newsletter consent
type SubscriberStatus string

const (
	SubscriberStatusSubscribed   SubscriberStatus = "subscribed"
	SubscriberStatusUnsubscribed SubscriberStatus = "unsubscribed"
)

// Subscriber is an email address on the newsletter list
type Subscriber struct {
	shared.BaseEntity
	Email          string           `gorm:"type:varchar(255);not null;uniqueIndex"`
	Status         SubscriberStatus `gorm:"type:varchar(20);not null;default:'subscribed';index"`
	Source         string           `gorm:"type:varchar(50)"`
	Token          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	SubscribedAt   time.Time        `gorm:"not null"`
	UnsubscribedAt *time.Time
}

// TableName returns the table name for GORM
func (Subscriber) TableName() string {
	return "newsletter_subscribers"
}

// NewSubscriber adds email to the list
func NewSubscriber(email, source string) (*Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	return &Subscriber{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        email,
		Status:       SubscriberStatusSubscribed,
		Source:       strings.TrimSpace(source),
		Token:        uuid.New(),
		SubscribedAt: time.Now(),
	}, nil
}

// Resubscribe restores consent; it reports false if already subscribed
func (s *Subscriber) Resubscribe() bool {
	if s.Status == SubscriberStatusSubscribed {
		return false
	}
	s.Status = SubscriberStatusSubscribed
	s.SubscribedAt = time.Now()
	s.UnsubscribedAt = nil
	s.Touch()
	return true
}

// Unsubscribe withdraws consent; it reports false if already unsubscribed
func (s *Subscriber) Unsubscribe() bool {
	if s.Status == SubscriberStatusUnsubscribed {
		return false
	}
	now := time.Now()
	s.Status = SubscriberStatusUnsubscribed
	s.UnsubscribedAt = &now
	s.Touch()
	return true
}

// SubscriberRepository defines the interface for subscriber persistence
type SubscriberRepository interface {
	FindByEmail(ctx context.Context, email string) (*Subscriber, error)
	FindByToken(ctx context.Context, token uuid.UUID) (*Subscriber, error)
	CountByStatus(ctx context.Context, status SubscriberStatus) (int64, error)
	Save(ctx context.Context, subscriber *Subscriber) error
}
