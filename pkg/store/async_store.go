package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AsyncStore wraps a Store so that writes return immediately and are flushed
// by a background worker. Pending writes to the same key coalesce; only the
// latest value is written. Reads see pending writes.
type AsyncStore struct {
	inner        Store
	logger       *slog.Logger
	writeTimeout time.Duration

	mu       sync.Mutex
	pending  map[string]*string // nil marks a pending delete
	inflight map[string]*string

	flushMu  sync.Mutex
	wake     chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewAsyncStore starts the flush worker. Call Close to drain and stop it.
func NewAsyncStore(inner Store, writeTimeout time.Duration, logger *slog.Logger) *AsyncStore {
	s := &AsyncStore{
		inner:        inner,
		logger:       logger,
		writeTimeout: writeTimeout,
		pending:      make(map[string]*string),
		wake:         make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	go s.run()
	return s
}

// Get returns a pending value if one exists, otherwise reads through.
func (s *AsyncStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	v, ok := s.pending[key]
	if !ok {
		v, ok = s.inflight[key]
	}
	s.mu.Unlock()

	if ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}
	return s.inner.Get(ctx, key)
}

// Set queues the write and returns without waiting for it.
func (s *AsyncStore) Set(_ context.Context, key, value string) error {
	s.enqueue(key, &value)
	return nil
}

// Delete queues the delete and returns without waiting for it.
func (s *AsyncStore) Delete(_ context.Context, key string) error {
	s.enqueue(key, nil)
	return nil
}

func (s *AsyncStore) enqueue(key string, value *string) {
	s.mu.Lock()
	s.pending[key] = value
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued keys not yet handed to the worker.
func (s *AsyncStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush synchronously writes everything queued so far.
func (s *AsyncStore) Flush(ctx context.Context) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string]*string)
	s.inflight = batch
	s.mu.Unlock()

	failed := 0
	for key, value := range batch {
		if err := s.write(ctx, key, value); err != nil {
			failed++
			s.logger.Error("async store write failed", "key", key, "error", err)
		}
	}

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()

	if len(batch) > 0 {
		s.logger.Debug("async store flushed", "keys", len(batch), "failed", failed)
	}
}

func (s *AsyncStore) write(ctx context.Context, key string, value *string) error {
	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if value == nil {
		return s.inner.Delete(ctx, key)
	}
	return s.inner.Set(ctx, key, *value)
}

// Close drains pending writes and stops the worker.
func (s *AsyncStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
	return nil
}

// run is the main worker loop
func (s *AsyncStore) run() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			s.Flush(context.Background())
			return
		case <-s.wake:
			s.Flush(context.Background())
		}
	}
}
