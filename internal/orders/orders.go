// Package orders shows the signed-in user's order history.
package orders

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fjod/freshfruit-storefront/internal/domain"
	"github.com/fjod/freshfruit-storefront/pkg/logger"
)

const MsgLoadFailed = "Failed to load your orders. Please try again later."

type Lister interface {
	ListOrders(ctx context.Context, token string) ([]domain.Order, error)
}

type TokenSource interface {
	Token() string
}

type Service struct {
	api     Lister
	session TokenSource
	logger  *zap.Logger
}

func NewService(api Lister, session TokenSource, log *zap.Logger) *Service {
	return &Service{api: api, session: session, logger: logger.OrNop(log)}
}

// List returns domain.ErrNotAuthenticated without calling the backend when
// nobody is signed in.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	token := s.session.Token()
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	orders, err := s.api.ListOrders(ctx, token)
	if err != nil {
		s.logger.Warn("failed to load orders", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Tone is a presentation hint for a status badge.
type Tone string

const (
	ToneAmber Tone = "amber"
	ToneBlue  Tone = "blue"
	ToneGreen Tone = "green"
	ToneRed   Tone = "red"
	ToneGray  Tone = "gray"
)

type StatusInfo struct {
	Message string
	Tone    Tone
	// Cancellable and Reorderable drive the order card's action.
	Cancellable bool
	Reorderable bool
}

func StatusInfoFor(status domain.OrderStatus) StatusInfo {
	switch status {
	case domain.OrderStatusPreparing:
		return StatusInfo{Message: "We're preparing your fresh food!", Tone: ToneAmber, Cancellable: true}
	case domain.OrderStatusShipped:
		return StatusInfo{Message: "Your food is on the way!", Tone: ToneBlue}
	case domain.OrderStatusDelivered:
		return StatusInfo{Message: "Enjoy your meal!", Tone: ToneGreen, Reorderable: true}
	case domain.OrderStatusCancelled:
		return StatusInfo{Message: "Order cancelled", Tone: ToneRed}
	default:
		return StatusInfo{Message: "Order received", Tone: ToneGray}
	}
}

func PaymentTone(status domain.PaymentStatus) Tone {
	if status.IsPaid() {
		return ToneGreen
	}
	return ToneAmber
}
