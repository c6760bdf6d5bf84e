package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chat-service/internal/util"
)

// Pinger is anything with a connectivity health check; the Redis client
// satisfies it.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// APIStatus is a point-in-time view of the generation provider and its
// supporting backends.
type APIStatus struct {
	IsAvailable     bool      `json:"is_available"`
	IsOverloaded    bool      `json:"is_overloaded"`
	IsQuotaExceeded bool      `json:"is_quota_exceeded"`
	LastChecked     time.Time `json:"last_checked"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// StatusChecker probes the provider and optional backends, caching the
// latest result for the status endpoint.
type StatusChecker struct {
	provider Provider
	pinger   Pinger
	clock    util.Clock
	logger   *zap.Logger

	mu     sync.RWMutex
	status APIStatus
}

func NewStatusChecker(provider Provider, pinger Pinger, logger *zap.Logger) *StatusChecker {
	clock := util.SystemClock{}
	return &StatusChecker{
		provider: provider,
		pinger:   pinger,
		clock:    clock,
		logger:   logger,
		// Optimistic until the first probe completes.
		status: APIStatus{IsAvailable: true, LastChecked: clock.Now()},
	}
}

// Check probes the provider and the pinger concurrently and caches the
// combined result.
func (c *StatusChecker) Check(ctx context.Context) APIStatus {
	var provErr, pingErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, provErr = c.provider.Complete(gctx, "ping")
		return nil
	})
	if c.pinger != nil {
		g.Go(func() error {
			pingErr = c.pinger.HealthCheck(gctx)
			return nil
		})
	}
	_ = g.Wait()

	status := APIStatus{
		IsAvailable: provErr == nil && pingErr == nil,
		LastChecked: c.clock.Now(),
	}
	if provErr != nil {
		kind := ClassifyFailure(provErr)
		status.IsOverloaded = kind == FailureOverloaded
		status.IsQuotaExceeded = kind == FailureQuota
		status.ErrorMessage = provErr.Error()
	} else if pingErr != nil {
		status.ErrorMessage = pingErr.Error()
	}

	if !status.IsAvailable {
		c.logger.Warn("API status check failed",
			util.Bool("overloaded", status.IsOverloaded),
			util.Bool("quota_exceeded", status.IsQuotaExceeded),
			util.String("error", status.ErrorMessage),
		)
	}

	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	return status
}

// Status returns the most recent probe result without probing.
func (c *StatusChecker) Status() APIStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Start runs periodic checks until ctx is cancelled.
func (c *StatusChecker) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Check(ctx)
			}
		}
	}()
}
