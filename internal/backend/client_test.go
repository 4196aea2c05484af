package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/freshfruit-storefront/internal/domain"
	"github.com/fjod/freshfruit-storefront/pkg/circuitbreaker"
)

type recordedRequest struct {
	Method    string
	Path      string
	Auth      string
	RequestID string
	Body      map[string]any
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeBackend) record(r *http.Request) {
	rec := recordedRequest{
		Method:    r.Method,
		Path:      r.URL.Path,
		Auth:      r.Header.Get("Authorization"),
		RequestID: r.Header.Get("X-Request-ID"),
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
}

func (f *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func setupBackend(t *testing.T, routes func(r chi.Router)) (*Client, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			fb.record(req)
			next.ServeHTTP(w, req)
		})
	})
	routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	breaker := circuitbreaker.DefaultConfig("test-backend")
	breaker.ConsecutiveFailures = 2
	breaker.Timeout = time.Hour

	client := New(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second, Breaker: breaker}, nil)
	return client, fb
}

func TestListFoods(t *testing.T) {
	client, fb := setupBackend(t, func(r chi.Router) {
		r.Get("/api/foods", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `[
				{"id":"f1","name":"Kiwi","category":"Exotic","price":120.5,"imageUrl":"k.png","nutrition":["Vitamin C"],"isOrganic":true},
				{"id":"f2","name":"Plum","category":"Stonefruits","price":"80"}
			]`)
		})
	})

	foods, err := client.ListFoods(context.Background())

	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, "Kiwi", foods[0].Name)
	assert.True(t, decimal.RequireFromString("120.5").Equal(foods[0].Price))
	assert.Equal(t, []string{"Vitamin C"}, foods[0].Nutrition)
	assert.True(t, foods[0].IsOrganic)
	assert.True(t, decimal.NewFromInt(80).Equal(foods[1].Price))

	req := fb.last(t)
	assert.Empty(t, req.Auth)
	assert.NotEmpty(t, req.RequestID)
}

func TestLogin(t *testing.T) {
	client, fb := setupBackend(t, func(r chi.Router) {
		r.Post("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"token":"jwt-token"}`)
		})
	})

	token, err := client.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "secret"})

	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	req := fb.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "a@b.co", req.Body["email"])
	assert.Equal(t, "secret", req.Body["password"])
}

func TestLogin_EmptyToken(t *testing.T) {
	client, _ := setupBackend(t, func(r chi.Router) {
		r.Post("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{}`)
		})
	})

	_, err := client.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "x"})
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestLogin_BadCredentials(t *testing.T) {
	client, _ := setupBackend(t, func(r chi.Router) {
		r.Post("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Bad credentials"}`)
		})
	})

	_, err := client.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "x"})

	require.ErrorIs(t, err, ErrUnauthorized)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Bad credentials", Message(err, "Login failed"))
}

func TestRegister_BackendMessage(t *testing.T) {
	client, fb := setupBackend(t, func(r chi.Router) {
		r.Post("/api/auth/register", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusConflict, `{"message":"Email already registered"}`)
		})
	})

	err := client.Register(context.Background(), RegisterRequest{Name: "Asha", Email: "a@b.co", Phone: "9876543210", Password: "longenough"})

	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, "Email already registered", Message(err, "Registration failed"))
	assert.Equal(t, "Asha", fb.last(t).Body["fullName"])
	assert.Equal(t, "9876543210", fb.last(t).Body["phone"])
}

func TestGetCart(t *testing.T) {
	client, fb := setupBackend(t, func(r chi.Router) {
		r.Get("/api/carts", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"items":{"f1":2,"f2":0}}`)
		})
	})

	items, err := client.GetCart(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, domain.QuantityMap{"f1": 2, "f2": 0}, items)
	assert.Equal(t, "Bearer tok", fb.last(t).Auth)
}

func TestGetCart_NullItems(t *testing.T) {
	client, _ := setupBackend(t, func(r chi.Router) {
		r.Get("/api/carts", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"items":null}`)
		})
	})

	items, err := client.GetCart(context.Background(), "tok")

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCartMutations(t *testing.T) {
	client, fb := setupBackend(t, func(r chi.Router) {
		ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
		r.Post("/api/carts", ok)
		r.Post("/api/carts/remove", ok)
		r.Delete("/api/carts", ok)
	})
	ctx := context.Background()

	require.NoError(t, client.AddToCart(ctx, "tok", "f1"))
	req := fb.last(t)
	assert.Equal(t, "/api/carts", req.Path)
	assert.Equal(t, "f1", req.Body["foodId"])

	require.NoError(t, client.RemoveFromCart(ctx, "tok", "f2"))
	req = fb.last(t)
	assert.Equal(t, "/api/carts/remove", req.Path)
	assert.Equal(t, "f2", req.Body["foodId"])

	require.NoError(t, client.ClearCart(ctx, "tok"))
	req = fb.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "Bearer tok", req.Auth)
}

func TestOrders(t *testing.T) {
	client, fb := setupBackend(t, func(r chi.Router) {
		r.Post("/api/orders", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"id":"o-1","razorpayOrderId":"order_RZP1","amount":605.0}`)
		})
		r.Post("/api/orders/verify", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Delete("/api/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/api/orders", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `[{"id":"o-1","orderStatus":"Shipped","paymentStatus":"Paid","amount":"605.00",
				"orderItems":[{"name":"Kiwi","quantity":2,"price":240}]}]`)
		})
	})
	ctx := context.Background()

	order, err := client.CreateOrder(ctx, "tok", OrderRequest{
		UserAddress: "Asha, 1 Main St, Pune, 411001",
		Amount:      "605.00",
		OrderStatus: domain.OrderStatusPreparing,
		OrderedItems: []domain.OrderItem{
			{FoodID: "f1", Name: "Kiwi", Quantity: 2, Price: decimal.NewFromInt(240)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "o-1", order.ID)
	assert.Equal(t, "order_RZP1", order.RazorpayOrderID)
	assert.True(t, decimal.NewFromInt(605).Equal(order.Amount))
	req := fb.last(t)
	assert.Equal(t, "605.00", req.Body["amount"])
	assert.Equal(t, "Preparing", req.Body["orderStatus"])
	assert.Len(t, req.Body["orderedItems"], 1)

	require.NoError(t, client.VerifyPayment(ctx, "tok", PaymentVerification{PaymentID: "pay_1", OrderID: "order_RZP1", Signature: "sig"}))
	req = fb.last(t)
	assert.Equal(t, "pay_1", req.Body["razorpay_payment_id"])
	assert.Equal(t, "order_RZP1", req.Body["razorpay_order_id"])
	assert.Equal(t, "sig", req.Body["razorpay_signature"])

	require.NoError(t, client.DeleteOrder(ctx, "tok", "o-1"))
	assert.Equal(t, "/api/orders/o-1", fb.last(t).Path)

	orders, err := client.ListOrders(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusShipped, orders[0].OrderStatus)
	assert.True(t, orders[0].PaymentStatus.IsPaid())
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
}

func TestDeleteOrder_EmptyID(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	err := client.DeleteOrder(context.Background(), "tok", "")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestDo_BadJSON(t *testing.T) {
	client, _ := setupBackend(t, func(r chi.Router) {
		r.Get("/api/foods", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"not":"a list"`)
		})
	})

	_, err := client.ListFoods(context.Background())
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestDo_ServerErrorsOpenBreaker(t *testing.T) {
	client, fb := setupBackend(t, func(r chi.Router) {
		r.Get("/api/foods", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "database down", http.StatusInternalServerError)
		})
	})
	ctx := context.Background()

	_, err := client.ListFoods(ctx)
	require.ErrorIs(t, err, ErrServer)
	assert.Contains(t, err.Error(), "database down")
	_, err = client.ListFoods(ctx)
	require.ErrorIs(t, err, ErrServer)

	_, err = client.ListFoods(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Len(t, fb.requests, 2, "open breaker must not reach the backend")
}

func TestDo_ClientErrorsKeepBreakerClosed(t *testing.T) {
	client, fb := setupBackend(t, func(r chi.Router) {
		r.Get("/api/carts", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"error":"token expired"}`)
		})
	})

	for i := 0; i < 4; i++ {
		_, err := client.GetCart(context.Background(), "old")
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, "token expired", Message(err, ""))
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Len(t, fb.requests, 4)
}

func TestDo_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(Config{BaseURL: url, Timeout: time.Second}, nil)
	_, err := client.ListFoods(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDo_CanceledContext(t *testing.T) {
	client, _ := setupBackend(t, func(r chi.Router) {
		r.Get("/api/foods", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `[]`)
		})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListFoods(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestExtractMessage(t *testing.T) {
	assert.Equal(t, "m", extractMessage([]byte(`{"message":"m","error":"e"}`)))
	assert.Equal(t, "e", extractMessage([]byte(`{"error":"e"}`)))
	assert.Equal(t, "", extractMessage([]byte(`{}`)))
	assert.Equal(t, "plain text", extractMessage([]byte("  plain text\n")))
}
