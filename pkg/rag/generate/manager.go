package generate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrBusy is returned when a session already has a generation in flight.
var ErrBusy = errors.New("a response is already being generated for this session")

// ErrStalled is returned when the backend stopped producing fragments for
// longer than the idle timeout.
var ErrStalled = errors.New("generation stalled before completing")

type Outcome string

const (
	OutcomeFinalized Outcome = "finalized"
	OutcomeAborted   Outcome = "aborted"
)

// ProduceFunc drives the model backend. emit is invoked once per fragment in
// arrival order; returning an error from emit must stop production.
type ProduceFunc func(ctx context.Context, emit func(fragment string) error) (int, error)

type Result struct {
	Text          string
	FragmentCount int
	Outcome       Outcome
	Err           error
}

type Config struct {
	FragmentBuffer int
	IdleTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		FragmentBuffer: 64,
		IdleTimeout:    60 * time.Second,
	}
}

// Manager enforces at most one in-flight generation per session. Locks are
// per-session weighted semaphores so an occupied session rejects immediately
// instead of queueing.
type Manager struct {
	cfg Config

	mu     sync.Mutex
	locks  map[string]*semaphore.Weighted
	active map[string]struct{}
}

func NewManager(cfg Config) *Manager {
	if cfg.FragmentBuffer <= 0 {
		cfg.FragmentBuffer = DefaultConfig().FragmentBuffer
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	return &Manager{
		cfg:    cfg,
		locks:  make(map[string]*semaphore.Weighted),
		active: make(map[string]struct{}),
	}
}

func (m *Manager) sessionLock(sessionId string) *semaphore.Weighted {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[sessionId]
	if !ok {
		lock = semaphore.NewWeighted(1)
		m.locks[sessionId] = lock
	}
	return lock
}

// Busy reports whether a generation is currently running for the session.
func (m *Manager) Busy(sessionId string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, busy := m.active[sessionId]
	return busy
}

// Generation is one in-flight response. Fragments() yields deltas in order;
// Wait() blocks until the producer goroutine has fully settled.
type Generation struct {
	fragments chan string
	cancel    context.CancelFunc
	done      chan struct{}
	stalled   atomic.Bool

	mu     sync.Mutex
	result Result
}

func (g *Generation) Fragments() <-chan string {
	return g.fragments
}

// Abort cancels the generation. The partial transcript accumulated so far is
// kept and surfaces in the final Result.
func (g *Generation) Abort() {
	g.cancel()
}

func (g *Generation) Wait() Result {
	<-g.done
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

func (g *Generation) setResult(r Result) {
	g.mu.Lock()
	g.result = r
	g.mu.Unlock()
}

// Start begins a generation for the session, or returns ErrBusy when one is
// already in flight. The caller owns draining Fragments() and must call
// Wait() to collect the outcome; the session lock is released on every exit
// path of the producer goroutine.
func (m *Manager) Start(ctx context.Context, sessionId string, produce ProduceFunc) (*Generation, error) {
	lock := m.sessionLock(sessionId)
	if !lock.TryAcquire(1) {
		return nil, ErrBusy
	}

	m.mu.Lock()
	m.active[sessionId] = struct{}{}
	m.mu.Unlock()

	genCtx, cancel := context.WithCancel(ctx)
	g := &Generation{
		fragments: make(chan string, m.cfg.FragmentBuffer),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	// Watchdog: a backend that goes quiet gets aborted rather than holding
	// the session lock indefinitely.
	watchdog := time.AfterFunc(m.cfg.IdleTimeout, func() {
		g.stalled.Store(true)
		cancel()
	})

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.active, sessionId)
			m.mu.Unlock()
			lock.Release(1)
			cancel()
			close(g.done)
		}()

		var transcript strings.Builder
		count, err := produce(genCtx, func(fragment string) error {
			watchdog.Reset(m.cfg.IdleTimeout)
			transcript.WriteString(fragment)
			select {
			case g.fragments <- fragment:
				return nil
			case <-genCtx.Done():
				return genCtx.Err()
			}
		})
		watchdog.Stop()
		close(g.fragments)

		result := Result{
			Text:          transcript.String(),
			FragmentCount: count,
			Outcome:       OutcomeFinalized,
		}
		switch {
		case err == nil:
			// A zero-fragment run that completed cleanly is still a valid,
			// empty response.
		case g.stalled.Load():
			result.Outcome = OutcomeAborted
			result.Err = ErrStalled
		case errors.Is(err, context.Canceled):
			result.Outcome = OutcomeAborted
			result.Err = context.Canceled
		default:
			result.Outcome = OutcomeAborted
			result.Err = err
		}
		g.setResult(result)
	}()

	return g, nil
}
