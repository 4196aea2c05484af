// Package store holds the storefront's shared state: the catalog, the cart
// quantities and the bearer token.
//
// Cart mutations are applied locally first and then synced to the backend on
// a background goroutine. A failed sync is reported through OnSyncError but is
// never rolled back, so local and server state can diverge until the next
// LoadCartData.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/freshfruit-storefront/internal/domain"
	"github.com/fjod/freshfruit-storefront/internal/session"
	"github.com/fjod/freshfruit-storefront/pkg/logger"
)

type CatalogSource interface {
	ListFoods(ctx context.Context) ([]domain.CatalogItem, error)
}

type CartSync interface {
	GetCart(ctx context.Context, token string) (domain.QuantityMap, error)
	AddToCart(ctx context.Context, token, foodID string) error
	RemoveFromCart(ctx context.Context, token, foodID string) error
}

// TokenSource is the read/delete side of the persisted token slot.
type TokenSource interface {
	Get(ctx context.Context) (string, error)
	Delete(ctx context.Context) error
}

// SyncError describes a background cart sync that failed.
type SyncError struct {
	Op     string
	FoodID string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.FoodID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

const defaultSyncTimeout = 10 * time.Second

type Store struct {
	catalogSource CatalogSource
	cartSync      CartSync
	tokens        TokenSource

	mu         sync.RWMutex
	catalog    []domain.CatalogItem
	quantities domain.QuantityMap
	token      string

	inflight    sync.WaitGroup
	sfg         singleflight.Group
	syncTimeout time.Duration
	onSyncError func(*SyncError)
	logger      *zap.Logger
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = logger.OrNop(l) }
}

// WithSyncTimeout bounds each background backend call.
func WithSyncTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.syncTimeout = d
		}
	}
}

// OnSyncError registers an observer for failed background syncs. It does not
// change local state.
func OnSyncError(fn func(*SyncError)) Option {
	return func(s *Store) { s.onSyncError = fn }
}

func New(catalogSource CatalogSource, cartSync CartSync, tokens TokenSource, opts ...Option) *Store {
	s := &Store{
		catalogSource: catalogSource,
		cartSync:      cartSync,
		tokens:        tokens,
		quantities:    domain.QuantityMap{},
		syncTimeout:   defaultSyncTimeout,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the catalog and, when a token is persisted, adopts it and loads
// the cart under it. The two loads run concurrently and fail independently; the
// returned error is informational and leaves the store usable.
func (s *Store) Start(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		if err := s.ReloadCatalog(ctx); err != nil {
			s.logger.Warn("catalog load failed, catalog stays empty", zap.Error(err))
			return err
		}
		return nil
	})

	g.Go(func() error {
		token, err := s.tokens.Get(ctx)
		if errors.Is(err, session.ErrNoToken) || (err == nil && token == "") {
			return nil
		}
		if err != nil {
			s.logger.Warn("failed to read persisted token", zap.Error(err))
			return err
		}
		s.SetToken(token)
		if err := s.LoadCartData(ctx, token); err != nil {
			s.logger.Warn("cart load failed", zap.Error(err))
			return err
		}
		return nil
	})

	return g.Wait()
}

// ReloadCatalog replaces the catalog wholesale. Concurrent calls share one fetch.
func (s *Store) ReloadCatalog(ctx context.Context) error {
	_, err, _ := s.sfg.Do("catalog", func() (interface{}, error) {
		items, err := s.catalogSource.ListFoods(ctx)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		s.mu.Lock()
		s.catalog = items
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// LoadCartData replaces the local quantities with the backend's map. A late
// response overwrites any local edits made while it was in flight.
func (s *Store) LoadCartData(ctx context.Context, token string) error {
	items, err := s.cartSync.GetCart(ctx, token)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	s.mu.Lock()
	s.quantities = items.Clone()
	s.mu.Unlock()
	return nil
}

func (s *Store) Increment(foodID string) {
	s.mu.Lock()
	s.quantities[foodID]++
	token := s.token
	s.mu.Unlock()

	s.sync("add to cart", foodID, func(ctx context.Context) error {
		return s.cartSync.AddToCart(ctx, token, foodID)
	})
}

func (s *Store) Decrement(foodID string) {
	s.mu.Lock()
	if s.quantities[foodID] > 0 {
		s.quantities[foodID]--
	} else {
		s.quantities[foodID] = 0
	}
	token := s.token
	s.mu.Unlock()

	s.sync("remove from cart", foodID, func(ctx context.Context) error {
		return s.cartSync.RemoveFromCart(ctx, token, foodID)
	})
}

// RemoveFromCart zeroes the quantity locally and never calls the backend.
func (s *Store) RemoveFromCart(foodID string) {
	s.mu.Lock()
	s.quantities[foodID] = 0
	s.mu.Unlock()
}

// SetQuantities replaces the local map without contacting the backend.
func (s *Store) SetQuantities(q domain.QuantityMap) {
	s.mu.Lock()
	s.quantities = q.Clone()
	s.mu.Unlock()
}

// SetToken replaces the token. It does not reload the cart.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Store) ClearSession() {
	s.SetToken("")
}

// Logout deletes the persisted token and clears the token and the quantities.
func (s *Store) Logout(ctx context.Context) error {
	err := s.tokens.Delete(ctx)

	s.mu.Lock()
	s.token = ""
	s.quantities = domain.QuantityMap{}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("delete persisted token: %w", err)
	}
	return nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Catalog() []domain.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CatalogItem(nil), s.catalog...)
}

// Quantities returns a copy of the quantity map.
func (s *Store) Quantities() domain.QuantityMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quantities.Clone()
}

func (s *Store) Quantity(foodID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quantities.Get(foodID)
}

// LineItems derives the cart from the current catalog; stale ids are skipped.
func (s *Store) LineItems() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.LineItems(s.catalog, s.quantities)
}

// CartCount is the number of distinct items in the cart.
func (s *Store) CartCount() int {
	return len(s.LineItems())
}

// Wait blocks until every background sync has finished.
func (s *Store) Wait() {
	s.inflight.Wait()
}

func (s *Store) sync(op, foodID string, call func(ctx context.Context) error) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
		defer cancel()

		if err := call(ctx); err != nil {
			syncErr := &SyncError{Op: op, FoodID: foodID, Err: err}
			s.logger.Warn("cart sync failed, local state kept",
				zap.String("op", op),
				zap.String("food_id", foodID),
				zap.Error(err))
			if s.onSyncError != nil {
				s.onSyncError(syncErr)
			}
		}
	}()
}
