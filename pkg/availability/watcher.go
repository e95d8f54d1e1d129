package availability

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/username"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

const DefaultDebounce = 500 * time.Millisecond

type Checker interface {
	Check(ctx context.Context, raw string) (*username.Candidate, error)
}

// Update is the verdict for one keystroke sequence number.
type Update struct {
	Seq       uint64
	Candidate username.Candidate
	Err       error
}

// Watcher debounces username input. Each Input gets a higher sequence number,
// cancels the check in flight and restarts the timer; only the verdict for the
// latest sequence is ever delivered.
type Watcher struct {
	checker Checker
	delay   time.Duration
	logger  logger.Logger
	base    context.Context

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	closed  bool
	updates chan Update
}

func NewWatcher(ctx context.Context, checker Checker, delay time.Duration, log logger.Logger) *Watcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Watcher{
		checker: checker,
		delay:   delay,
		logger:  log,
		base:    ctx,
		updates: make(chan Update, 1),
	}
}

// Updates yields at most one pending verdict; a newer one replaces it.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

// Input records a keystroke and returns its sequence number.
func (w *Watcher) Input(raw string) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return w.seq
	}

	w.seq++
	seq := w.seq
	w.stopLocked()

	w.timer = time.AfterFunc(w.delay, func() { w.fire(seq, raw) })
	return seq
}

// Latest is the sequence number of the most recent Input.
func (w *Watcher) Latest() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seq
}

func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.stopLocked()
	close(w.updates)
}

func (w *Watcher) stopLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Watcher) fire(seq uint64, raw string) {
	w.mu.Lock()
	if w.closed || seq != w.seq {
		w.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(w.base)
	w.cancel = cancel
	w.mu.Unlock()

	cand, err := w.checker.Check(ctx, raw)
	cancel()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || seq != w.seq {
		w.logger.Debug("Dropping stale username verdict", zap.Uint64("seq", seq), zap.Uint64("latest", w.seq))
		return
	}

	u := Update{Seq: seq, Err: err}
	if err != nil {
		u.Candidate = username.Candidate{Name: username.Sanitize(raw), Verdict: username.VerdictError, Message: err.Error()}
	} else {
		u.Candidate = *cand
	}

	select {
	case <-w.updates:
	default:
	}
	w.updates <- u
}
