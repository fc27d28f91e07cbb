package activity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/georgemunganga/account-service/internal/logging"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// Recorder delivers activity entries to a Store off the request path.
//
// Record never blocks and never fails the caller. Entries are buffered and
// appended by a small worker pool with exponential backoff; an entry that
// still fails after the last retry is logged at error level and counted.
// When the buffer is full, or after Close, entries are dropped with a warning.
type Recorder struct {
	store         Store
	logger        logging.Logger
	queue         chan Entry
	workers       int
	maxRetries    uint64
	baseDelay     time.Duration
	appendTimeout time.Duration
	now           func() time.Time

	mu      sync.RWMutex
	closed  bool
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	dropped atomic.Int64
	failed  atomic.Int64
}

type recorderOptions struct {
	queueSize     int
	workers       int
	maxRetries    int
	baseDelay     time.Duration
	appendTimeout time.Duration
	now           func() time.Time
}

// Option configures a Recorder.
type Option func(*recorderOptions)

func WithQueueSize(n int) Option { return func(o *recorderOptions) { o.queueSize = n } }

func WithWorkers(n int) Option { return func(o *recorderOptions) { o.workers = n } }

// WithMaxRetries sets how many times a failed append is retried.
func WithMaxRetries(n int) Option { return func(o *recorderOptions) { o.maxRetries = n } }

// WithBaseDelay sets the first backoff interval; later ones double.
func WithBaseDelay(d time.Duration) Option { return func(o *recorderOptions) { o.baseDelay = d } }

// WithAppendTimeout bounds a single append attempt.
func WithAppendTimeout(d time.Duration) Option { return func(o *recorderOptions) { o.appendTimeout = d } }

func withClock(now func() time.Time) Option { return func(o *recorderOptions) { o.now = now } }

// NewRecorder creates a Recorder. Call Start to launch the workers and Close
// to drain them.
func NewRecorder(store Store, logger logging.Logger, opts ...Option) *Recorder {
	o := recorderOptions{
		queueSize:     256,
		workers:       2,
		maxRetries:    3,
		baseDelay:     100 * time.Millisecond,
		appendTimeout: 5 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.queueSize < 1 {
		o.queueSize = 1
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.maxRetries < 0 {
		o.maxRetries = 0
	}
	if o.baseDelay <= 0 {
		o.baseDelay = 100 * time.Millisecond
	}
	if o.appendTimeout <= 0 {
		o.appendTimeout = 5 * time.Second
	}

	return &Recorder{
		store:         store,
		logger:        logger.With("component", "activity_recorder"),
		queue:         make(chan Entry, o.queueSize),
		workers:       o.workers,
		maxRetries:    uint64(o.maxRetries),
		baseDelay:     o.baseDelay,
		appendTimeout: o.appendTimeout,
		now:           o.now,
	}
}

// Start launches the delivery workers. Calling it more than once is a no-op.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.run(ctx)
	}
}

// Record stamps e with an event id and timestamp when missing and queues it.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.drop(ctx, e, "recorder closed")
		return
	}
	select {
	case r.queue <- e:
	default:
		r.drop(ctx, e, "queue full")
	}
}

// Close stops accepting entries and waits for queued ones to be delivered.
// If ctx expires first, in-flight deliveries are cancelled and ctx.Err() is
// returned.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	cancel := r.cancel
	if !r.started {
		if n := len(r.queue); n > 0 {
			r.logger.Warn(ctx, "recorder closed before start, discarding entries", "count", n)
			r.dropped.Add(int64(n))
		}
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if cancel != nil {
			cancel()
		}
		return nil
	case <-ctx.Done():
		if cancel != nil {
			cancel()
		}
		return ctx.Err()
	}
}

// Dropped is the number of entries discarded without a delivery attempt.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// Failed is the number of entries that exhausted their retries.
func (r *Recorder) Failed() int64 { return r.failed.Load() }

func (r *Recorder) run(ctx context.Context) {
	defer r.wg.Done()
	for e := range r.queue {
		r.deliver(ctx, e)
	}
}

func (r *Recorder) deliver(ctx context.Context, e Entry) {
	attempts := 0
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(r.baseDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		actx, cancel := context.WithTimeout(ctx, r.appendTimeout)
		defer cancel()
		if err := r.store.Append(actx, e); err != nil {
			r.logger.Debug(ctx, "activity append attempt failed", "event_id", e.EventID, "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		r.failed.Add(1)
		r.logger.Error(ctx, "activity entry not recorded",
			"event_id", e.EventID,
			"action", string(e.Action),
			"email", e.Email,
			"attempts", attempts,
			"error", err,
		)
	}
}

func (r *Recorder) drop(ctx context.Context, e Entry, reason string) {
	r.dropped.Add(1)
	r.logger.Warn(ctx, "activity entry dropped",
		"reason", reason,
		"event_id", e.EventID,
		"action", string(e.Action),
		"email", e.Email,
	)
}
