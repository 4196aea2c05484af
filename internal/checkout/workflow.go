// Package checkout turns the cart into a paid order: it validates the delivery
// form, creates the order, runs the payment widget and verifies the payment.
package checkout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/freshfruit-storefront/internal/backend"
	"github.com/fjod/freshfruit-storefront/internal/domain"
	"github.com/fjod/freshfruit-storefront/internal/forms"
	"github.com/fjod/freshfruit-storefront/internal/payment"
	"github.com/fjod/freshfruit-storefront/internal/pricing"
	"github.com/fjod/freshfruit-storefront/pkg/logger"
)

// Cart is the read side of the cart store plus the reload after payment.
type Cart interface {
	LineItems() []domain.LineItem
	Token() string
	LoadCartData(ctx context.Context, token string) error
}

type OrderAPI interface {
	CreateOrder(ctx context.Context, token string, req backend.OrderRequest) (*domain.Order, error)
	VerifyPayment(ctx context.Context, token string, v backend.PaymentVerification) error
	DeleteOrder(ctx context.Context, token, orderID string) error
	ClearCart(ctx context.Context, token string) error
}

type Config struct {
	RazorpayKey string
	// CleanupTimeout bounds the best-effort calls made after the customer is done.
	CleanupTimeout time.Duration
}

// Quote is what the checkout view shows before submission.
type Quote struct {
	Lines           []domain.LineItem
	Totals          pricing.Totals
	DeliveryMinutes int
}

type Result struct {
	OrderID         string
	RazorpayOrderID string
	PaymentID       string
	Totals          pricing.Totals
}

type Workflow struct {
	cart      Cart
	api       OrderAPI
	widget    payment.Widget
	cfg       Config
	validator *forms.Validator
	logger    *zap.Logger

	mu    sync.Mutex
	state State
}

func NewWorkflow(cart Cart, api OrderAPI, widget payment.Widget, cfg Config, log *zap.Logger) *Workflow {
	if cfg.CleanupTimeout <= 0 {
		cfg.CleanupTimeout = 10 * time.Second
	}
	return &Workflow{
		cart:      cart,
		api:       api,
		widget:    widget,
		cfg:       cfg,
		validator: forms.New(),
		logger:    logger.OrNop(log),
		state:     StateEditing,
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) transition(to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !CanTransitionTo(w.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, w.state, to)
	}
	w.logger.Debug("checkout state", zap.Stringer("from", w.state), zap.Stringer("to", to))
	w.state = to
	return nil
}

// DeliveryEstimate is a cosmetic delivery time in minutes, uniform in [30, 45].
func DeliveryEstimate() int {
	return rand.IntN(16) + 30
}

func (w *Workflow) Quote() Quote {
	lines := w.cart.LineItems()
	return Quote{
		Lines:           lines,
		Totals:          pricing.ForLineItems(lines),
		DeliveryMinutes: DeliveryEstimate(),
	}
}

// Submit runs the whole checkout for form. Validation failures return
// forms.FieldErrors without any network call. Stage failures return *Error and
// leave the workflow in Editing so the customer can retry.
func (w *Workflow) Submit(ctx context.Context, form DeliveryForm) (*Result, error) {
	if state := w.State(); state != StateEditing {
		return nil, fmt.Errorf("%w: submit while %s", ErrIllegalTransition, state)
	}

	form.normalize()
	if err := w.validator.Struct(form, deliveryMessages); err != nil {
		return nil, err
	}

	token := w.cart.Token()
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}
	lines := w.cart.LineItems()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	totals := pricing.ForLineItems(lines)

	if err := w.transition(StateSubmitting); err != nil {
		return nil, err
	}

	order, err := w.createOrder(ctx, token, form, lines, totals)
	if err != nil {
		w.reset()
		return nil, &Error{Stage: StageCreateOrder, Err: err}
	}
	if err := w.transition(StateAwaitingPayment); err != nil {
		return nil, err
	}

	opts := payment.NewOptions(w.cfg.RazorpayKey, totals.MinorUnits(), order.RazorpayOrderID,
		payment.Prefill{Name: form.Name, Email: form.Email, Contact: form.Phone},
		form.Address)

	outcome, err := w.widget.Open(ctx, opts)
	if err != nil {
		w.logger.Warn("payment widget failed", zap.Error(err), zap.String("order_id", order.ID))
		w.deleteOrder(ctx, token, order.ID)
		w.cancel()
		return nil, &Error{Stage: StagePayment, Err: err}
	}
	if outcome.Dismissed() {
		w.logger.Info("payment dismissed", zap.String("order_id", order.ID))
		w.deleteOrder(ctx, token, order.ID)
		w.cancel()
		return nil, &Error{Stage: StagePayment, Err: ErrPaymentCancelled}
	}

	if err := w.transition(StateVerifying); err != nil {
		return nil, err
	}
	completion := outcome.Completed
	err = w.api.VerifyPayment(ctx, token, backend.PaymentVerification{
		PaymentID: completion.PaymentID,
		OrderID:   completion.OrderID,
		Signature: completion.Signature,
	})
	if err != nil {
		w.logger.Warn("payment verification failed",
			zap.Error(err),
			zap.String("order_id", order.ID),
			zap.String("payment_id", completion.PaymentID))
		w.reset()
		return nil, &Error{Stage: StageVerify, Err: err}
	}

	w.finishCart(ctx, token)
	if err := w.transition(StateCompleted); err != nil {
		return nil, err
	}

	return &Result{
		OrderID:         order.ID,
		RazorpayOrderID: order.RazorpayOrderID,
		PaymentID:       completion.PaymentID,
		Totals:          totals,
	}, nil
}

func (w *Workflow) createOrder(ctx context.Context, token string, form DeliveryForm, lines []domain.LineItem, totals pricing.Totals) (*domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			FoodID:              line.Item.ID,
			Name:                line.Item.Name,
			Quantity:            line.Quantity,
			Price:               line.Total(),
			Category:            line.Item.Category,
			ImageURL:            line.Item.ImageURL,
			Description:         line.Item.Description,
			SpecialInstructions: form.SpecialInstructions,
		})
	}

	order, err := w.api.CreateOrder(ctx, token, backend.OrderRequest{
		UserAddress:  form.UserAddress(),
		PhoneNumber:  form.Phone,
		Email:        form.Email,
		OrderedItems: items,
		Amount:       totals.Amount(),
		OrderStatus:  domain.OrderStatusPreparing,
	})
	if err != nil {
		return nil, err
	}
	if order == nil || order.RazorpayOrderID == "" {
		return nil, ErrMissingGatewayOrder
	}
	return order, nil
}

// deleteOrder removes the pending order; failures are logged only.
func (w *Workflow) deleteOrder(ctx context.Context, token, orderID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.CleanupTimeout)
	defer cancel()
	if err := w.api.DeleteOrder(ctx, token, orderID); err != nil {
		w.logger.Warn("failed to delete pending order", zap.Error(err), zap.String("order_id", orderID))
	}
}

// finishCart clears the server cart and reloads the local one from it.
func (w *Workflow) finishCart(ctx context.Context, token string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.CleanupTimeout)
	defer cancel()
	if err := w.api.ClearCart(ctx, token); err != nil {
		w.logger.Warn("failed to clear cart after payment", zap.Error(err))
	}
	if err := w.cart.LoadCartData(ctx, token); err != nil {
		w.logger.Warn("failed to reload cart after payment", zap.Error(err))
	}
}

func (w *Workflow) cancel() {
	if err := w.transition(StateCancelled); err != nil {
		w.logger.Error("cancel checkout", zap.Error(err))
	}
	w.reset()
}

func (w *Workflow) reset() {
	if err := w.transition(StateEditing); err != nil {
		w.logger.Error("reset checkout", zap.Error(err))
	}
}
