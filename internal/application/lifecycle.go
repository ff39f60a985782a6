package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/ports"
	"github.com/rs/zerolog"
)

const DefaultTeardownTimeout = 10 * time.Second

// Lifecycle owns one page load: it registers the player, starts the session
// once and ends it on teardown.
type Lifecycle struct {
	backend         ports.Backend
	sessions        ports.SessionStore
	clock           ports.Clock
	resolution      domain.Resolution
	logger          zerolog.Logger
	teardownTimeout time.Duration

	started  atomic.Bool
	inflight sync.WaitGroup
}

func NewLifecycle(backend ports.Backend, sessions ports.SessionStore, clock ports.Clock, resolution domain.Resolution, logger zerolog.Logger) *Lifecycle {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Lifecycle{
		backend:         backend,
		sessions:        sessions,
		clock:           clock,
		resolution:      resolution,
		logger:          logger.With().Str("component", "lifecycle").Logger(),
		teardownTimeout: DefaultTeardownTimeout,
	}
}

// WithTeardownTimeout bounds detached end calls.
func (l *Lifecycle) WithTeardownTimeout(timeout time.Duration) *Lifecycle {
	if timeout > 0 {
		l.teardownTimeout = timeout
	}
	return l
}

func (l *Lifecycle) Resolution() domain.Resolution {
	return l.resolution
}

func (l *Lifecycle) State() domain.LifecycleState {
	if l.started.Load() {
		return domain.StateStarted
	}
	return domain.StateNotStarted
}

// Boot issues the registration and then the initial start trigger. The start
// waits only until the register call is in flight, not for its answer.
// Neither failure is returned.
func (l *Lifecycle) Boot(ctx context.Context) {
	if !l.resolution.Available() {
		l.logger.Info().Msg("player identity unavailable, skipping registration")
		l.Trigger(ctx, domain.TriggerInit)
		return
	}

	issued := make(chan struct{})
	var signal sync.Once
	markIssued := func() { signal.Do(func() { close(issued) }) }

	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		defer markIssued()
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error().Interface("panic", r).Msg("register player panicked")
			}
		}()

		if _, err := l.register(ctx, markIssued); err != nil {
			l.logger.Warn().Err(err).Msg("register player failed")
		}
	}()

	<-issued
	l.Trigger(ctx, domain.TriggerInit)
}

// Trigger performs the start call for the first trigger only and reports
// whether this call was that first one.
func (l *Lifecycle) Trigger(ctx context.Context, trigger domain.StartTrigger) bool {
	if !l.started.CompareAndSwap(false, true) {
		return false
	}

	if _, err := l.start(ctx, trigger); err != nil {
		l.logger.Warn().Err(err).Str("trigger", string(trigger)).Msg("start session failed")
	}
	return true
}

func (l *Lifecycle) StartSession(ctx context.Context) (domain.SessionRecord, error) {
	if !l.started.CompareAndSwap(false, true) {
		return domain.SessionRecord{}, domain.ErrAlreadyStarted
	}

	return l.start(ctx, domain.TriggerExternal)
}

// RequestStart is the host-facing start: a request after the session has
// already started yields the stored session, if any, instead of an error.
func (l *Lifecycle) RequestStart(ctx context.Context) (domain.SessionRecord, bool) {
	record, err := l.StartSession(ctx)
	switch {
	case err == nil:
		return record, true
	case errors.Is(err, domain.ErrAlreadyStarted):
		return l.sessions.Load(ctx)
	default:
		l.logger.Warn().Err(err).Msg("start session failed")
		return domain.SessionRecord{}, false
	}
}

func (l *Lifecycle) start(ctx context.Context, trigger domain.StartTrigger) (domain.SessionRecord, error) {
	record := domain.SessionRecord{StartedAt: l.clock.Now()}

	result, err := l.backend.StartSession(ctx, domain.StartRequest{
		UserID:     l.resolution.Identity.UserID,
		StartedAt:  record.StartedAt,
		StartParam: l.resolution.StartParam,
	})
	if err != nil {
		return domain.SessionRecord{}, err
	}

	record.ID = result.SessionID
	l.sessions.Save(ctx, record)

	l.logger.Info().
		Str("session_id", record.ID).
		Str("trigger", string(trigger)).
		Msg("session started")

	return record, nil
}

// End sends the end call for whatever session is stored (possibly none) and
// clears storage afterwards, whether or not the call succeeded.
func (l *Lifecycle) End(ctx context.Context, trigger domain.EndTrigger, reason string) domain.EndResult {
	if reason == "" {
		reason = string(trigger)
	}

	record, ok := l.sessions.Load(ctx)
	result := domain.EndResult{Trigger: trigger, SessionID: record.ID, HadSession: ok}

	resp, err := l.backend.EndSession(ctx, domain.EndRequest{
		SessionID: record.ID,
		UserID:    l.resolution.Identity.UserID,
		EndedAt:   l.clock.Now(),
		Reason:    reason,
	})

	l.sessions.Clear(context.WithoutCancel(ctx))

	if err != nil {
		l.logger.Warn().Err(err).Str("trigger", string(trigger)).Msg("end session failed")
		result.Error = err.Error()
		return result
	}

	result.Delivered = true
	result.Status = resp.Status
	l.logger.Info().
		Str("session_id", record.ID).
		Str("trigger", string(trigger)).
		Str("status", resp.Status).
		Msg("session ended")

	return result
}

// EndDetached is the teardown path: the call runs on its own bounded context
// and the caller does not wait for it.
func (l *Lifecycle) EndDetached(trigger domain.EndTrigger, reason string) <-chan domain.EndResult {
	done := make(chan domain.EndResult, 1)

	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error().Interface("panic", r).Msg("detached end session panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), l.teardownTimeout)
		defer cancel()

		done <- l.End(ctx, trigger, reason)
	}()

	return done
}

// Drain waits up to timeout for detached calls, boot registration included,
// and reports whether they all finished.
func (l *Lifecycle) Drain(timeout time.Duration) bool {
	finished := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (l *Lifecycle) RegisterPlayer(ctx context.Context) (domain.RegisterResult, error) {
	return l.register(ctx, nil)
}

// register calls onIssue right before the request goes out.
func (l *Lifecycle) register(ctx context.Context, onIssue func()) (domain.RegisterResult, error) {
	if !l.resolution.Available() {
		return domain.RegisterResult{}, domain.ErrIdentityUnavailable
	}

	if onIssue != nil {
		onIssue()
	}
	result, err := l.backend.RegisterPlayer(ctx, domain.RegisterRequest{Identity: l.resolution.Identity})
	if err != nil {
		return domain.RegisterResult{}, err
	}

	l.logger.Info().
		Int64("telegram_id", int64(l.resolution.Identity.UserID)).
		Str("response", result.Raw).
		Msg("player registered")

	return result, nil
}

func (l *Lifecycle) LoadSession(ctx context.Context) (domain.SessionRecord, bool) {
	return l.sessions.Load(ctx)
}
