package checkout

import (
	"context"
	"sync"

	"github.com/fjod/freshfruit-storefront/internal/backend"
	"github.com/fjod/freshfruit-storefront/internal/domain"
	"github.com/fjod/freshfruit-storefront/internal/payment"
)

type mockCart struct {
	m          sync.Mutex
	catalog    []domain.CatalogItem
	quantities domain.QuantityMap
	token      string
	serverCart domain.QuantityMap
	loads      int
}

func (m *mockCart) LineItems() []domain.LineItem {
	m.m.Lock()
	defer m.m.Unlock()
	return domain.LineItems(m.catalog, m.quantities)
}

func (m *mockCart) Token() string {
	m.m.Lock()
	defer m.m.Unlock()
	return m.token
}

func (m *mockCart) LoadCartData(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.loads++
	m.quantities = m.serverCart.Clone()
	return nil
}

type apiCall struct {
	Op     string
	Token  string
	Arg    string
	CtxErr error
}

type mockOrderAPI struct {
	m         sync.Mutex
	order     *domain.Order
	createErr error
	verifyErr error
	deleteErr error
	clearErr  error

	calls        []apiCall
	created      []backend.OrderRequest
	verification []backend.PaymentVerification
}

func (m *mockOrderAPI) record(ctx context.Context, op, token, arg string) {
	m.calls = append(m.calls, apiCall{Op: op, Token: token, Arg: arg, CtxErr: ctx.Err()})
}

func (m *mockOrderAPI) CreateOrder(ctx context.Context, token string, req backend.OrderRequest) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.record(ctx, "create", token, "")
	m.created = append(m.created, req)
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.order, nil
}

func (m *mockOrderAPI) VerifyPayment(ctx context.Context, token string, v backend.PaymentVerification) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.record(ctx, "verify", token, v.PaymentID)
	m.verification = append(m.verification, v)
	return m.verifyErr
}

func (m *mockOrderAPI) DeleteOrder(ctx context.Context, token, orderID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.record(ctx, "delete", token, orderID)
	return m.deleteErr
}

func (m *mockOrderAPI) ClearCart(ctx context.Context, token string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.record(ctx, "clear", token, "")
	return m.clearErr
}

func (m *mockOrderAPI) Ops() []string {
	m.m.Lock()
	defer m.m.Unlock()
	ops := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		ops = append(ops, c.Op)
	}
	return ops
}

type mockWidget struct {
	outcome payment.Outcome
	err     error
	opened  []payment.Options
	// onOpen runs while the widget is "showing".
	onOpen func(ctx context.Context)
}

func (m *mockWidget) Open(ctx context.Context, opts payment.Options) (payment.Outcome, error) {
	m.opened = append(m.opened, opts)
	if m.onOpen != nil {
		m.onOpen(ctx)
	}
	return m.outcome, m.err
}
