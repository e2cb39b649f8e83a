// Package marketing serves the newsletter and the about page.
package marketing

import (
	"context"
	"errors"
	"strings"

	"github.com/shopfront/backend/internal/domain/marketing"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles newsletter subscriptions and the store profile
type Service struct {
	subscribers marketing.SubscriberRepository
	store       StoreProfile
	shipping    ShippingInfo
	logger      *zap.Logger
}

// NewService creates a new marketing Service
func NewService(subscribers marketing.SubscriberRepository, store StoreProfile, shipping ShippingInfo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{subscribers: subscribers, store: store, shipping: shipping, logger: logger}
}

// Subscribe adds the address or restores an earlier consent. Subscribing
// twice is not an error; Changed reports whether anything happened.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscriptionResponse, error) {
	candidate, err := marketing.NewSubscriber(req.Email, req.Source)
	if err != nil {
		return nil, err
	}

	existing, err := s.subscribers.FindByEmail(ctx, candidate.Email)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		if err := s.subscribers.Save(ctx, candidate); err != nil {
			return nil, err
		}
		s.logger.Info("Newsletter subscription", zap.String("source", candidate.Source))
		return toSubscriptionResponse(candidate, true), nil
	case err != nil:
		return nil, err
	}

	changed := existing.Resubscribe()
	if changed {
		if err := s.subscribers.Save(ctx, existing); err != nil {
			return nil, err
		}
	}
	return toSubscriptionResponse(existing, changed), nil
}

// Unsubscribe withdraws consent. Unknown addresses are reported as not
// found; a token takes precedence over an email.
func (s *Service) Unsubscribe(ctx context.Context, req UnsubscribeRequest) (*SubscriptionResponse, error) {
	var (
		sub *marketing.Subscriber
		err error
	)
	switch {
	case req.Token != nil:
		sub, err = s.subscribers.FindByToken(ctx, *req.Token)
	case req.Email != "":
		sub, err = s.subscribers.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Email or token is required")
	}
	if err != nil {
		return nil, err
	}

	changed := sub.Unsubscribe()
	if changed {
		if err := s.subscribers.Save(ctx, sub); err != nil {
			return nil, err
		}
	}
	return toSubscriptionResponse(sub, changed), nil
}

// About returns the store profile with the shipping terms. A failing
// subscriber count is logged and reported as zero.
func (s *Service) About(ctx context.Context) *AboutResponse {
	count, err := s.subscribers.CountByStatus(ctx, marketing.SubscriberStatusSubscribed)
	if err != nil {
		s.logger.Warn("Failed to count newsletter subscribers", zap.Error(err))
		count = 0
	}
	return &AboutResponse{Store: s.store, Shipping: s.shipping, Subscribers: count}
}
