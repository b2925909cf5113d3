// Package session periodically re-validates the stored auth token.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/R3E-Network/courseclient/internal/api"
	"github.com/R3E-Network/courseclient/internal/logging"
	"github.com/R3E-Network/courseclient/internal/tokenstore"
)

// DefaultSchedule re-checks the session every 15 minutes.
const DefaultSchedule = "@every 15m"

// Config configures a Watcher.
type Config struct {
	// Schedule is a cron spec or descriptor such as "@every 5m".
	Schedule string
	// Verify asks the server whether the stored token is valid. A failure
	// envelope means the answer is unknown.
	Verify func(ctx context.Context) api.Result[bool]
	Tokens tokenstore.Store
	// OnExpired runs when the server rejects a token that was present.
	OnExpired func()
	Logger    *logging.Logger
}

// Watcher runs session checks on a cron schedule.
type Watcher struct {
	schedule  cron.Schedule
	spec      string
	verify    func(ctx context.Context) api.Result[bool]
	tokens    tokenstore.Store
	onExpired func()
	logger    *logging.Logger

	mu        sync.Mutex
	cron      *cron.Cron
	cancel    context.CancelFunc
	lastValid bool
	lastCheck time.Time
}

// New validates cfg and returns a stopped watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Verify == nil {
		return nil, fmt.Errorf("session: Verify is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("session: token store is required")
	}
	spec := cfg.Schedule
	if spec == "" {
		spec = DefaultSchedule
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("session: parse schedule %q: %w", spec, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Watcher{
		schedule:  schedule,
		spec:      spec,
		verify:    cfg.Verify,
		tokens:    cfg.Tokens,
		onExpired: cfg.OnExpired,
		logger:    logger,
	}, nil
}

// Check verifies the session once and reports whether it is valid. When the
// server cannot give an answer the error is returned, the last outcome is
// kept and OnExpired does not run.
func (w *Watcher) Check(ctx context.Context) (bool, error) {
	_, hadToken := w.tokens.Get(ctx)
	res := w.verify(ctx)
	if !res.Success {
		w.logger.WithContext(ctx).WithError(res.Err()).Warn("session check inconclusive")
		return false, fmt.Errorf("session: verify: %w", res.Err())
	}
	valid := res.Data

	w.mu.Lock()
	w.lastValid = valid
	w.lastCheck = time.Now()
	w.mu.Unlock()

	entry := w.logger.WithContext(ctx).WithField("valid", valid)
	if hadToken && !valid {
		entry.Info("session expired")
		if w.onExpired != nil {
			w.onExpired()
		}
		return false, nil
	}
	entry.Debug("session checked")
	return valid, nil
}

// Last returns the outcome and time of the most recent check.
func (w *Watcher) Last() (valid bool, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastValid, w.lastCheck
}

// Start schedules checks until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return fmt.Errorf("session: watcher already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New()
	c.Schedule(w.schedule, cron.FuncJob(func() {
		_, _ = w.Check(logging.WithTraceID(runCtx, logging.NewTraceID()))
	}))
	c.Start()

	w.cron = c
	w.cancel = cancel
	w.logger.WithContext(ctx).WithField("schedule", w.spec).Info("session watcher started")

	go func() {
		<-runCtx.Done()
		w.Stop()
	}()
	return nil
}

// Stop halts scheduling and waits for a running check to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	c, cancel := w.cron, w.cancel
	w.cron, w.cancel = nil, nil
	w.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	w.logger.Info("session watcher stopped")
}
