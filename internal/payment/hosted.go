package payment

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/freshfruit-storefront/pkg/logger"
)

const DefaultScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

//go:embed templates/checkout.html.tmpl
var templatesFS embed.FS

var checkoutPage = template.Must(template.ParseFS(templatesFS, "templates/checkout.html.tmpl"))

type HostedConfig struct {
	// ListenAddr defaults to a random loopback port.
	ListenAddr      string
	ScriptURL       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	// OnReady receives the page URL once the server is listening.
	OnReady func(url string)
}

// HostedWidget serves the gateway checkout page from a local HTTP server and
// waits for the page to report completion or dismissal.
type HostedWidget struct {
	cfg    HostedConfig
	logger *zap.Logger
}

func NewHostedWidget(cfg HostedConfig, log *zap.Logger) *HostedWidget {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:0"
	}
	if cfg.ScriptURL == "" {
		cfg.ScriptURL = DefaultScriptURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &HostedWidget{cfg: cfg, logger: logger.OrNop(log)}
}

func (h *HostedWidget) Open(ctx context.Context, opts Options) (Outcome, error) {
	if err := opts.Validate(); err != nil {
		return Outcome{}, err
	}

	ln, err := net.Listen("tcp", h.cfg.ListenAddr)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to listen on %s: %w", h.cfg.ListenAddr, err)
	}

	sess := newWidgetSession(uuid.NewString(), opts, h.cfg.ScriptURL, h.logger)
	srv := &http.Server{
		Handler:           otelhttp.NewHandler(sess.routes(h.cfg.RequestTimeout, h.logger), "payment-widget"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	url := "http://" + ln.Addr().String() + "/"
	h.logger.Info("payment page ready", zap.String("url", url), zap.String("order_id", opts.OrderID))
	if h.cfg.OnReady != nil {
		h.cfg.OnReady(url)
	}

	var outcome Outcome
	select {
	case outcome = <-sess.result:
	case <-ctx.Done():
		h.logger.Info("payment abandoned", zap.Error(ctx.Err()))
		outcome = Dismissed()
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.cfg.ShutdownTimeout)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		h.logger.Warn("payment page shutdown failed", zap.Error(shutdownErr))
	}

	if err != nil {
		return Outcome{}, fmt.Errorf("payment page server: %w", err)
	}
	return outcome, nil
}

// widgetSession is the state behind one Open call.
type widgetSession struct {
	id        string
	opts      Options
	scriptURL string
	logger    *zap.Logger

	once   sync.Once
	result chan Outcome
}

func newWidgetSession(id string, opts Options, scriptURL string, log *zap.Logger) *widgetSession {
	return &widgetSession{
		id:        id,
		opts:      opts,
		scriptURL: scriptURL,
		logger:    log,
		result:    make(chan Outcome, 1),
	}
}

func (s *widgetSession) routes(timeout time.Duration, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(middleware.Timeout(timeout))

	r.Get("/", s.page)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/payment", func(r chi.Router) {
		r.Post("/complete", s.complete)
		r.Post("/dismiss", s.dismiss)
	})

	return r
}

// finish records the first outcome; later reports are ignored.
func (s *widgetSession) finish(o Outcome) bool {
	accepted := false
	s.once.Do(func() {
		s.result <- o
		accepted = true
	})
	return accepted
}

func (s *widgetSession) page(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	data := struct {
		Session   string
		ScriptURL string
		Options   Options
	}{s.id, s.scriptURL, s.opts}
	if err := checkoutPage.Execute(w, data); err != nil {
		s.logger.Error("failed to render payment page", zap.Error(err))
	}
}

type callbackRequest struct {
	Session string `json:"session"`
	Completion
}

const maxCallbackBody = 16 << 10

func (s *widgetSession) decodeCallback(w http.ResponseWriter, r *http.Request) (callbackRequest, bool) {
	var req callbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCallbackBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return req, false
	}
	if req.Session != s.id {
		respondError(w, http.StatusForbidden, "unknown_session", "payment session does not match")
		return req, false
	}
	return req, true
}

// POST /payment/complete
func (s *widgetSession) complete(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCallback(w, r)
	if !ok {
		return
	}
	if !req.Completion.Valid() {
		respondError(w, http.StatusBadRequest, "incomplete_payment",
			"razorpay_payment_id, razorpay_order_id and razorpay_signature are required")
		return
	}
	if req.Completion.OrderID != s.opts.OrderID {
		respondError(w, http.StatusBadRequest, "order_mismatch", "payment is for a different order")
		return
	}

	if !s.finish(CompletedWith(req.Completion)) {
		respondError(w, http.StatusConflict, "already_finished", "payment session already finished")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// POST /payment/dismiss
func (s *widgetSession) dismiss(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.decodeCallback(w, r); !ok {
		return
	}
	if !s.finish(Dismissed()) {
		respondError(w, http.StatusConflict, "already_finished", "payment session already finished")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
