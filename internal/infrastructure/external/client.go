package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/recipehub/backend/internal/domain"
)

// Config holds tunables for the external recipes client
type Config struct {
	URL              string
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration
	BreakerFailures  int
	BreakerCooldown  time.Duration
}

// Client fetches the full recipe dataset from the external provider.
// Retry is the outer layer; the circuit breaker gates each individual
// attempt. An open breaker aborts the retry loop immediately.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	cfg        Config
}

// NewClient creates a new external recipes client
func NewClient(cfg Config) *Client {
	if cfg.RetryMaxAttempts < 1 {
		cfg.RetryMaxAttempts = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 2 * time.Second
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.BreakerFailures < 1 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	failures := uint32(cfg.BreakerFailures)
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "externalRecipes",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[external] circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.ReadTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.ConnectTimeout,
				}).DialContext,
			},
		},
		breaker: breaker,
		cfg:     cfg,
	}
}

// Fetch retrieves the upstream dataset. It never returns an error: on
// exhausted retries or an open breaker it falls back to the empty
// payload and logs the triggering cause.
func (c *Client) Fetch(ctx context.Context) *domain.RawPayload {
	log.Printf("[external] calling recipes API: %s", c.cfg.URL)

	var payload *domain.RawPayload
	operation := func() error {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx)
		})
		if err != nil {
			// An open breaker will not recover within this retry loop,
			// so stop retrying and fall back right away
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			return err
		}
		payload = result.(*domain.RawPayload)
		return nil
	}

	if err := backoff.Retry(operation, c.newBackOff(ctx)); err != nil {
		log.Printf("[external] recipes API fallback engaged: %v", err)
		return &domain.RawPayload{Recipes: []domain.RawRecipe{}}
	}

	return payload
}

// newBackOff builds the exponential retry policy: base delay, doubling,
// capped at RetryMaxAttempts total attempts.
func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryBaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.RetryMaxAttempts-1)), ctx)
}

// doFetch performs one GET against the source URL
func (c *Client) doFetch(ctx context.Context) (*domain.RawPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "RecipeHub/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalAPIFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[external] API error - status: %d, body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrExternalAPIFailure, resp.StatusCode)
	}

	var payload domain.RawPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrExternalAPIFailure, err)
	}

	return &payload, nil
}
