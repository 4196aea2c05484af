// Package backend is the REST client for the storefront backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/freshfruit-storefront/pkg/circuitbreaker"
	"github.com/fjod/freshfruit-storefront/pkg/logger"
)

const maxResponseSize = 4 << 20 // 4MB

type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker circuitbreaker.Config
	// HTTPClient overrides the default instrumented client.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*response]
	logger  *zap.Logger
}

type response struct {
	status int
	body   []byte
}

func New(cfg Config, log *zap.Logger) *Client {
	log = logger.OrNop(log)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	breakerCfg := cfg.Breaker
	if breakerCfg.Name == "" {
		breakerCfg = circuitbreaker.DefaultConfig("backend")
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		http:    httpClient,
		breaker: circuitbreaker.New[*response](breakerCfg, countsAsSuccess, log),
		logger:  log,
	}
}

// countsAsSuccess keeps client errors and caller cancellations out of the breaker counts.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrServer)
}

// do sends in as JSON and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		payload = b
	}

	requestID := uuid.NewString()
	start := time.Now()

	res, err := c.breaker.Execute(func() (*response, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, fmt.Errorf("%s: %w", op, ctx.Err())
			}
			return nil, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("%s: %w: failed to read response: %v", op, ErrUnavailable, err)
		}
		if resp.StatusCode >= 500 {
			return nil, newAPIError(op, resp.StatusCode, data)
		}
		return &response{status: resp.StatusCode, body: data}, nil
	})

	log := c.logger.With(
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
		}
		log.Debug("backend request failed", zap.Error(err))
		return err
	}

	log.Debug("backend request done", zap.Int("status", res.status))

	if res.status < 200 || res.status > 299 {
		return newAPIError(op, res.status, res.body)
	}
	if out == nil || len(bytes.TrimSpace(res.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrBadResponse, err)
	}
	return nil
}
