package store

import (
	"context"
	"sync"

	"github.com/fjod/freshfruit-storefront/internal/domain"
	"github.com/fjod/freshfruit-storefront/internal/session"
)

type mockCatalog struct {
	m     sync.Mutex
	items []domain.CatalogItem
	err   error
	calls int
	gate  chan struct{}
}

func (m *mockCatalog) ListFoods(ctx context.Context) ([]domain.CatalogItem, error) {
	m.m.Lock()
	m.calls++
	gate := m.gate
	m.m.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockCatalog) Calls() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

type cartCall struct {
	Op     string
	Token  string
	FoodID string
}

type mockCartSync struct {
	m       sync.Mutex
	cart    domain.QuantityMap
	getErr  error
	syncErr error
	calls   []cartCall
	gate    chan struct{}
}

func (m *mockCartSync) GetCart(_ context.Context, token string) (domain.QuantityMap, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls = append(m.calls, cartCall{Op: "get", Token: token})
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.cart.Clone(), nil
}

func (m *mockCartSync) AddToCart(ctx context.Context, token, foodID string) error {
	return m.mutate(ctx, "add", token, foodID)
}

func (m *mockCartSync) RemoveFromCart(ctx context.Context, token, foodID string) error {
	return m.mutate(ctx, "remove", token, foodID)
}

func (m *mockCartSync) mutate(ctx context.Context, op, token, foodID string) error {
	m.m.Lock()
	gate := m.gate
	m.m.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.m.Lock()
	defer m.m.Unlock()
	m.calls = append(m.calls, cartCall{Op: op, Token: token, FoodID: foodID})
	return m.syncErr
}

func (m *mockCartSync) Calls() []cartCall {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]cartCall(nil), m.calls...)
}

type mockTokens struct {
	m       sync.Mutex
	token   string
	err     error
	deleted bool
}

func (m *mockTokens) Get(context.Context) (string, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if m.token == "" {
		return "", session.ErrNoToken
	}
	return m.token, nil
}

func (m *mockTokens) Delete(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deleted = true
	m.token = ""
	return m.err
}
