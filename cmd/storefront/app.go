package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fjod/freshfruit-storefront/internal/auth"
	"github.com/fjod/freshfruit-storefront/internal/backend"
	"github.com/fjod/freshfruit-storefront/internal/checkout"
	"github.com/fjod/freshfruit-storefront/internal/config"
	"github.com/fjod/freshfruit-storefront/internal/orders"
	"github.com/fjod/freshfruit-storefront/internal/payment"
	"github.com/fjod/freshfruit-storefront/internal/session"
	"github.com/fjod/freshfruit-storefront/internal/store"
	"github.com/fjod/freshfruit-storefront/pkg/circuitbreaker"
	"github.com/fjod/freshfruit-storefront/pkg/logger"
	"github.com/fjod/freshfruit-storefront/pkg/tracing"
)

const serviceName = "freshfruit-storefront"

// app is everything one CLI invocation needs.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	out    io.Writer
	errOut io.Writer

	client *backend.Client
	tokens session.TokenStore
	store  *store.Store
	auth   *auth.Service
	orders *orders.Service

	shutdownTracing tracing.ShutdownFunc
	span            trace.Span
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("backend-url"); v != "" {
		cfg.BackendURL = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(c *cli.Context, out, errOut io.Writer) (*app, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	var traceOut io.Writer
	if cfg.TraceStdout {
		traceOut = os.Stderr
	}
	shutdownTracing, err := tracing.Setup(serviceName, version, traceOut)
	if err != nil {
		return nil, err
	}

	tokens, err := session.Open(c.Context, cfg.SessionStore())
	if err != nil {
		_ = shutdownTracing(c.Context)
		return nil, fmt.Errorf("open session store: %w", err)
	}

	client := backend.New(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout,
		Breaker: circuitbreaker.DefaultConfig("backend"),
	}, log.Named("backend"))

	a := &app{
		cfg:             cfg,
		log:             log,
		out:             out,
		errOut:          errOut,
		client:          client,
		tokens:          tokens,
		shutdownTracing: shutdownTracing,
	}

	a.store = store.New(client, client, tokens,
		store.WithLogger(log.Named("store")),
		store.WithSyncTimeout(cfg.RequestTimeout),
		store.OnSyncError(func(e *store.SyncError) {
			fmt.Fprintf(errOut, "warning: %s for %s did not reach the server: %s\n",
				e.Op, e.FoodID, backend.Message(e.Err, e.Err.Error()))
		}))
	a.auth = auth.NewService(client, tokens, a.store, log.Named("auth"))
	a.orders = orders.NewService(client, a.store, log.Named("orders"))

	return a, nil
}

// start runs the store startup sequence inside the command's span.
func (a *app) start(ctx context.Context, command string) context.Context {
	ctx, a.span = otel.Tracer(serviceName).Start(ctx, "cli."+command)
	if err := a.store.Start(ctx); err != nil {
		logger.WithTrace(ctx, a.log).Debug("startup incomplete", zap.Error(err))
	}
	return ctx
}

func (a *app) checkout() *checkout.Workflow {
	widget := payment.NewHostedWidget(payment.HostedConfig{
		ListenAddr:     a.cfg.Payment.ListenAddr,
		ScriptURL:      a.cfg.Payment.ScriptURL,
		RequestTimeout: a.cfg.RequestTimeout,
		OnReady: func(url string) {
			fmt.Fprintf(a.out, "Open %s in your browser to pay. Press Ctrl-C to cancel.\n", url)
		},
	}, a.log.Named("payment"))

	return checkout.NewWorkflow(a.store, a.client, widget, checkout.Config{
		RazorpayKey:    a.cfg.RazorpayKey,
		CleanupTimeout: a.cfg.RequestTimeout,
	}, a.log.Named("checkout"))
}

// close waits for background cart syncs before releasing resources.
func (a *app) close(ctx context.Context) {
	a.store.Wait()
	if a.span != nil {
		a.span.End()
	}
	if err := a.tokens.Close(); err != nil {
		a.log.Warn("failed to close session store", zap.Error(err))
	}
	if err := a.shutdownTracing(context.WithoutCancel(ctx)); err != nil {
		a.log.Warn("failed to flush traces", zap.Error(err))
	}
	_ = a.log.Sync()
}

type action func(ctx context.Context, a *app, c *cli.Context) error

func withApp(out, errOut io.Writer, fn action) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := newApp(c, out, errOut)
		if err != nil {
			return err
		}
		ctx := a.start(c.Context, c.Command.FullName())
		defer a.close(ctx)
		return fn(ctx, a, c)
	}
}
