// Package resilience wraps outbound HTTP requests with retries and a circuit breaker
package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Config controls the HTTP client and backoff behaviour.
type Config struct {
	Client          *http.Client
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	ErrRateLimited  = errors.New("rate limited")
	ErrServerError  = errors.New("server error")
	ErrStatus       = errors.New("unexpected status code")
	ErrCircuitOpen  = errors.New("circuit breaker open")
	ErrNoHTTPClient = errors.New("http client not configured")
	ErrInvalidRetry = errors.New("invalid backoff configuration")
)

// DefaultConfig returns the settings both API clients use
func DefaultConfig(timeout time.Duration) Config {
	return Config{
		Client:          &http.Client{Timeout: timeout},
		MaxRetries:      2,
		InitialInterval: 300 * time.Millisecond,
		MaxInterval:     3 * time.Second,
	}
}

// NewBreaker returns a circuit breaker that opens after five consecutive failures
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
}

// Do executes the request built by build. Transport errors, 429 and 5xx
// responses are retried with exponential backoff; other non-2xx statuses
// fail immediately. The caller closes the returned body.
func Do(ctx context.Context, cfg Config, cb *gobreaker.CircuitBreaker, build func() (*http.Request, error)) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, ErrNoHTTPClient
	}
	if cfg.MaxRetries < 0 || cfg.InitialInterval <= 0 {
		return nil, ErrInvalidRetry
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := build()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, err := cfg.Client.Do(req)
			if err != nil {
				return nil, err
			}
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				drain(resp)
				return nil, ErrRateLimited
			case resp.StatusCode >= 500:
				drain(resp)
				return nil, fmt.Errorf("%w: %d", ErrServerError, resp.StatusCode)
			}
			return resp, nil
		})

		if err == nil {
			resp := result.(*http.Response)
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				drain(resp)
				return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if attempt >= cfg.MaxRetries {
			return nil, lastErr
		}

		delay := cfg.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if cfg.MaxInterval > 0 && delay > cfg.MaxInterval {
			delay = cfg.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
