package ledger

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// writer persists serialized state in the background. Only the newest pending blob is
// kept, so a burst of mutations results in at most one queued write.
type writer struct {
	storage Storage
	key     string
	logger  zerolog.Logger

	mu      sync.Mutex
	pending []byte
	running bool
	done    chan struct{}
}

func newWriter(storage Storage, key string, logger zerolog.Logger) *writer {
	return &writer{
		storage: storage,
		key:     key,
		logger:  logger,
	}
}

// enqueue schedules blob to be written and returns immediately.
func (w *writer) enqueue(blob []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = blob

	if w.running {
		return
	}

	w.running = true
	w.done = make(chan struct{})

	go w.run(w.done)
}

func (w *writer) run(done chan struct{}) {
	defer close(done)

	for {
		w.mu.Lock()
		blob := w.pending
		w.pending = nil

		if blob == nil {
			w.running = false
			w.mu.Unlock()

			return
		}
		w.mu.Unlock()

		// failures are not surfaced; the in-memory state stays authoritative
		if err := w.storage.Set(context.Background(), w.key, blob); err != nil {
			w.logger.Warn().Err(err).Str("key", w.key).Int("bytes", len(blob)).Msg("error persisting state")

			continue
		}

		w.logger.Debug().Str("key", w.key).Int("bytes", len(blob)).Msg("persisted state")
	}
}

// flush waits until every enqueued blob has been handed to the storage.
func (w *writer) flush(ctx context.Context) error {
	for {
		w.mu.Lock()
		if !w.running {
			w.mu.Unlock()

			return nil
		}

		done := w.done
		w.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
