package auth

import (
	"context"
	"sync"

	"github.com/fjod/freshfruit-storefront/internal/backend"
	"github.com/fjod/freshfruit-storefront/internal/domain"
)

type mockAPI struct {
	m           sync.Mutex
	token       string
	loginErr    error
	registerErr error
	logins      []backend.LoginRequest
	registers   []backend.RegisterRequest
}

func (m *mockAPI) Login(_ context.Context, req backend.LoginRequest) (string, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.logins = append(m.logins, req)
	if m.loginErr != nil {
		return "", m.loginErr
	}
	return m.token, nil
}

func (m *mockAPI) Register(_ context.Context, req backend.RegisterRequest) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.registers = append(m.registers, req)
	return m.registerErr
}

type mockTokens struct {
	token string
	err   error
}

func (m *mockTokens) Set(_ context.Context, token string) error {
	if m.err != nil {
		return m.err
	}
	m.token = token
	return nil
}

type mockCart struct {
	token      string
	quantities domain.QuantityMap
	loadedWith []string
	loadErr    error
	logoutErr  error
	loggedOut  bool
}

func (m *mockCart) SetToken(token string) { m.token = token }

func (m *mockCart) Token() string { return m.token }

func (m *mockCart) LoadCartData(_ context.Context, token string) error {
	m.loadedWith = append(m.loadedWith, token)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.quantities = domain.QuantityMap{"A": 1}
	return nil
}

func (m *mockCart) Logout(context.Context) error {
	m.loggedOut = true
	m.token = ""
	m.quantities = domain.QuantityMap{}
	return m.logoutErr
}
