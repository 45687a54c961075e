package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	infraconfig "fxrates-etl/internal/infrastructure/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const maxBodyBytes = 32 << 20

var ErrCircuitOpen = errors.New("circuit breaker open")

// StatusError is returned for a non-2xx response once retries are exhausted.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Cache stores raw response bodies keyed by request URL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
}

type Client struct {
	HTTP      *http.Client
	Token     string
	UserAgent string
	// MaxRetries is the number of extra attempts after a network error, 429 or 5xx.
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Breaker         *gobreaker.CircuitBreaker
	Cache           Cache
	Log             *zap.Logger
}

// NewBreaker returns a breaker that opens after five consecutive failures.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
	})
}

type response struct {
	status int
	body   []byte
}

// DoJSON executes req and decodes a 2xx JSON body into out. Only GET responses are cached.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any) error {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	var key string
	if c.Cache != nil && req.Method == http.MethodGet {
		key = "httpx:" + req.URL.String()
		body, ok, err := c.Cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn("httpx.cache_get_failed", zap.Error(err))
		case ok:
			if err := json.Unmarshal(body, out); err == nil {
				log.Debug("httpx.cache_hit", zap.String("url", req.URL.String()))
				return nil
			}
		}
	}

	var body []byte
	op := func() error {
		b, err := c.roundTrip(ctx, req)
		if err != nil {
			return err
		}
		body = b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("httpx.retry", zap.String("url", req.URL.Redacted()), zap.Duration("wait", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(op, c.policy(ctx), notify); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if key != "" {
		if err := c.Cache.Set(ctx, key, body); err != nil {
			log.Warn("httpx.cache_set_failed", zap.Error(err))
		}
	}
	return nil
}

func (c *Client) policy(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = infraconfig.DefaultRetryInitial
	if c.InitialInterval > 0 {
		exp.InitialInterval = c.InitialInterval
	}
	exp.MaxInterval = infraconfig.DefaultRetryMax
	if c.MaxInterval > 0 {
		exp.MaxInterval = c.MaxInterval
	}
	exp.MaxElapsedTime = 0
	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

func (c *Client) roundTrip(ctx context.Context, req *http.Request) ([]byte, error) {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	exec := func() (interface{}, error) {
		resp, err := hc.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &StatusError{Code: resp.StatusCode, Body: snippet(b)}
		}
		return response{status: resp.StatusCode, body: b}, nil
	}

	var res interface{}
	var err error
	if c.Breaker != nil {
		res, err = c.Breaker.Execute(exec)
	} else {
		res, err = exec()
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrCircuitOpen, err))
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	r := res.(response)
	if r.status < 200 || r.status >= 300 {
		return nil, backoff.Permanent(&StatusError{Code: r.status, Body: snippet(r.body)})
	}
	return r.body, nil
}

func snippet(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
