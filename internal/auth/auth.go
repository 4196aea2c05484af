// Package auth drives login, registration and logout.
package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fjod/freshfruit-storefront/internal/backend"
	"github.com/fjod/freshfruit-storefront/internal/domain"
	"github.com/fjod/freshfruit-storefront/internal/forms"
	"github.com/fjod/freshfruit-storefront/pkg/logger"
)

const (
	MsgInvalidCredentials = "Invalid email or password. Please try again."
	MsgRegistrationFailed = "Registration failed"
)

// FormError is a form-level failure reported by the backend.
type FormError struct {
	Message string
	Err     error
}

func (e *FormError) Error() string { return e.Message }

func (e *FormError) Unwrap() error { return e.Err }

type API interface {
	Login(ctx context.Context, req backend.LoginRequest) (string, error)
	Register(ctx context.Context, req backend.RegisterRequest) error
}

type TokenWriter interface {
	Set(ctx context.Context, token string) error
}

// CartSession is the part of the cart store that follows the signed-in user.
type CartSession interface {
	SetToken(token string)
	Token() string
	LoadCartData(ctx context.Context, token string) error
	Logout(ctx context.Context) error
}

type Service struct {
	api       API
	tokens    TokenWriter
	cart      CartSession
	validator *forms.Validator
	logger    *zap.Logger
}

func NewService(api API, tokens TokenWriter, cart CartSession, log *zap.Logger) *Service {
	return &Service{
		api:       api,
		tokens:    tokens,
		cart:      cart,
		validator: forms.New(),
		logger:    logger.OrNop(log),
	}
}

// Login validates the form, exchanges the credentials for a token, persists
// it, adopts it and loads the user's cart.
func (s *Service) Login(ctx context.Context, form LoginForm) (domain.Session, error) {
	forms.Trim(&form.Email)
	if err := s.validator.Struct(form, loginMessages); err != nil {
		return domain.Session{}, err
	}

	token, err := s.api.Login(ctx, backend.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		s.logger.Info("login rejected", zap.Error(err))
		return domain.Session{}, &FormError{Message: MsgInvalidCredentials, Err: err}
	}

	if err := s.tokens.Set(ctx, token); err != nil {
		s.logger.Warn("failed to persist token", zap.Error(err))
	}
	s.cart.SetToken(token)
	if err := s.cart.LoadCartData(ctx, token); err != nil {
		s.logger.Warn("failed to load cart after login", zap.Error(err))
	}

	return domain.Session{Token: token, Name: DisplayName(token)}, nil
}

// Register creates the account. The user logs in afterwards.
func (s *Service) Register(ctx context.Context, form RegisterForm) error {
	forms.Trim(&form.FullName, &form.Email, &form.Phone)
	if err := s.validator.Struct(form, registerMessages); err != nil {
		return err
	}

	err := s.api.Register(ctx, backend.RegisterRequest{
		Name:     form.FullName,
		Email:    form.Email,
		Phone:    form.Phone,
		Password: form.Password,
	})
	if err != nil {
		return &FormError{Message: backend.Message(err, MsgRegistrationFailed), Err: err}
	}
	return nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.cart.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Service) Current() domain.Session {
	token := s.cart.Token()
	return domain.Session{Token: token, Name: DisplayName(token)}
}

// RequireSession returns domain.ErrNotAuthenticated when nobody is signed in.
func (s *Service) RequireSession() (domain.Session, error) {
	sess := s.Current()
	if !sess.IsAuthenticated() {
		return domain.Session{}, domain.ErrNotAuthenticated
	}
	return sess, nil
}
