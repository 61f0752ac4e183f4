// Package notify dispatches the generated digest to every enabled delivery
// channel. Dispatch is fire-and-forget: each channel gets its own goroutine
// behind a bounded worker pool, and a per-channel circuit breaker takes a
// failing channel out of rotation for a cooldown period.
package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"event-radar/internal/infra/notifier"
)

type contextKey string

const requestIDKey contextKey = "request_id"

const (
	circuitBreakerThreshold = 5               // consecutive failures before opening
	circuitBreakerTimeout   = 5 * time.Minute // how long the breaker stays open
	workerPoolTimeout       = 5 * time.Second // max wait for a worker slot
	deliveryTimeout         = 30 * time.Second
)

// Service dispatches digests to delivery channels.
type Service interface {
	// Dispatch sends the digest to all enabled channels. It is non-blocking:
	// deliveries run in background goroutines and failures are logged, not
	// returned.
	Dispatch(ctx context.Context, digest *notifier.Digest) error

	// ChannelHealth returns circuit breaker status per channel, for the
	// readiness endpoint.
	ChannelHealth() []ChannelHealthStatus

	// Shutdown waits for in-flight deliveries to finish or the context to
	// expire.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus is the delivery health of a single channel.
type ChannelHealthStatus struct {
	Name               string
	Enabled            bool
	CircuitBreakerOpen bool
	DisabledUntil      *time.Time
}

type service struct {
	channels       []notifier.Channel
	workerPool     chan struct{}
	channelHealth  map[string]*channelHealth
	healthMu       sync.RWMutex
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

type channelHealth struct {
	consecutiveFailures int
	disabledUntil       time.Time
	mu                  sync.Mutex
}

// NewService creates a dispatch service over the given channels.
func NewService(channels []notifier.Channel, maxConcurrent int) Service {
	if maxConcurrent < 1 {
		maxConcurrent = len(channels) + 1
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &service{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		channelHealth:  make(map[string]*channelHealth),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
	for _, ch := range channels {
		svc.channelHealth[ch.Name()] = &channelHealth{}
	}
	return svc
}

// Dispatch implements Service.
func (s *service) Dispatch(ctx context.Context, digest *notifier.Digest) error {
	if digest == nil {
		slog.Warn("Nil digest, nothing to dispatch")
		return nil
	}

	requestID := digest.RunID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	enabledCount := 0
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			enabledCount++
		}
	}
	SetChannelsEnabled(float64(enabledCount))

	if enabledCount == 0 {
		slog.InfoContext(ctx, "No delivery channels enabled",
			slog.String("request_id", requestID))
		return nil
	}

	slog.InfoContext(ctx, "Dispatching digest",
		slog.String("request_id", requestID),
		slog.String("subject", digest.Subject),
		slog.Int("event_count", digest.EventCount),
		slog.Int("enabled_channels", enabledCount))

	for _, ch := range s.channels {
		if ch.IsEnabled() {
			s.wg.Add(1)
			go s.deliver(requestID, ch, digest)
		}
	}

	return nil
}

// deliver sends the digest to a single channel in its own goroutine.
func (s *service) deliver(requestID string, channel notifier.Channel, digest *notifier.Digest) {
	defer s.wg.Done()

	IncrementActiveDeliveries()
	defer DecrementActiveDeliveries()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in delivery channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("Delivery dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		RecordDropped(channel.Name(), "pool_full")
		return
	}

	health := s.getChannelHealth(channel.Name())
	health.mu.Lock()
	if time.Now().Before(health.disabledUntil) {
		slog.Warn("Channel temporarily disabled by circuit breaker",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Time("disabled_until", health.disabledUntil))
		health.mu.Unlock()
		RecordDropped(channel.Name(), "circuit_open")
		return
	}
	health.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.shutdownCtx, deliveryTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	startTime := time.Now()
	RecordDispatch(channel.Name())

	err := channel.Send(ctx, digest)
	duration := time.Since(startTime)

	health.mu.Lock()
	if err != nil {
		health.consecutiveFailures++
		if health.consecutiveFailures >= circuitBreakerThreshold {
			health.disabledUntil = time.Now().Add(circuitBreakerTimeout)
			slog.Error("Circuit breaker opened for channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Int("consecutive_failures", health.consecutiveFailures))
			RecordCircuitBreakerOpen(channel.Name())
		}
	} else {
		health.consecutiveFailures = 0
	}
	health.mu.Unlock()

	if err != nil {
		RecordFailure(channel.Name(), duration)
		slog.Warn("Digest delivery failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
	} else {
		RecordSuccess(channel.Name(), duration)
		slog.Info("Digest delivered",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Duration("send_duration", duration))
	}
}

func (s *service) getChannelHealth(channelName string) *channelHealth {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()
	return s.channelHealth[channelName]
}

// ChannelHealth implements Service.
func (s *service) ChannelHealth() []ChannelHealthStatus {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()

	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		health := s.channelHealth[ch.Name()]

		health.mu.Lock()
		var disabledUntil *time.Time
		open := false
		if time.Now().Before(health.disabledUntil) {
			open = true
			until := health.disabledUntil
			disabledUntil = &until
		}
		health.mu.Unlock()

		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: open,
			DisabledUntil:      disabledUntil,
		})
	}
	return statuses
}

// Shutdown implements Service.
func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down delivery service")

	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Delivery service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("Delivery service shutdown timeout")
		return ctx.Err()
	}
}
