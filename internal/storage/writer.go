package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/model"
)

const defaultWriteTimeout = 10 * time.Second

// Writer persists patches for one user in submission order on a single
// goroutine. Submit never blocks. Failed writes are logged and reported on
// Errors; they are not retried.
type Writer struct {
	store   DocumentStore
	uid     string
	logger  *zap.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	queue  []model.Patch
	closed bool

	wake chan struct{}
	done chan struct{}
	errs chan error
}

type WriterOption func(*Writer)

func WithWriteTimeout(d time.Duration) WriterOption {
	return func(w *Writer) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func NewWriter(store DocumentStore, uid string, logger *zap.Logger, opts ...WriterOption) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Writer{
		store:   store,
		uid:     uid,
		logger:  logger,
		timeout: defaultWriteTimeout,
		ctx:     ctx,
		cancel:  cancel,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		errs:    make(chan error, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w
}

// Errors delivers write failures as *PersistenceError. Failures are dropped
// from the channel, but still logged, when nobody keeps up with it.
func (w *Writer) Errors() <-chan error {
	return w.errs
}

// Submit queues p and reports whether it was accepted.
func (w *Writer) Submit(p model.Patch) bool {
	if p.IsEmpty() {
		return false
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	w.queue = append(w.queue, p)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

// Close stops accepting patches and waits for the queue to drain. When ctx
// ends first, whatever is still queued is dropped.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	already := w.closed
	w.closed = true
	w.mu.Unlock()
	if !already {
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}

	select {
	case <-w.done:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		<-w.done
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		if w.ctx.Err() != nil {
			dropped := len(w.queue)
			w.queue = nil
			w.mu.Unlock()
			if dropped > 0 {
				w.logger.Warn("dropped queued patches", zap.String("uid", w.uid), zap.Int("count", dropped))
			}
			return
		}
		if len(w.queue) == 0 {
			closed := w.closed
			w.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-w.wake:
			case <-w.ctx.Done():
			}
			continue
		}
		p := w.queue[0]
		w.queue[0] = model.Patch{}
		w.queue = w.queue[1:]
		w.mu.Unlock()

		w.write(p)
	}
}

func (w *Writer) write(p model.Patch) {
	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	defer cancel()

	err := w.store.Patch(ctx, w.uid, p)
	if err == nil {
		return
	}
	err = wrapErr("patch", w.uid, err)
	fields := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		fields = append(fields, string(f))
	}
	w.logger.Error("persist patch failed",
		zap.String("uid", w.uid),
		zap.Strings("fields", fields),
		zap.Bool("not_found", errors.Is(err, ErrNotFound)),
		zap.Error(err),
	)
	select {
	case w.errs <- err:
	default:
	}
}
