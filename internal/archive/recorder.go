package archive

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/auteur/internal/shared"
	"github.com/eleven-am/auteur/internal/vision"
)

const (
	recorderQueueSize = 64
	saveTimeout       = 5 * time.Second
)

// Recorder persists accepted insights off the controller's callback path.
// When the queue is full the insight is dropped and logged.
type Recorder struct {
	store  *Store
	source string
	logger *slog.Logger

	mu      sync.Mutex
	session string
	closed  bool

	queue chan *Record
	done  chan struct{}
}

func NewRecorder(store *Store, source string, logger *slog.Logger) *Recorder {
	r := &Recorder{
		store:   store,
		source:  source,
		logger:  logger.With("component", "archive-recorder"),
		session: shared.NewID("ses_"),
		queue:   make(chan *Record, recorderQueueSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// BeginSession starts a new session id for subsequent records.
func (r *Recorder) BeginSession() string {
	id := shared.NewID("ses_")
	r.mu.Lock()
	r.session = id
	r.mu.Unlock()
	return id
}

func (r *Recorder) Session() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func (r *Recorder) ObserveInsight(ins vision.Insight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	select {
	case r.queue <- NewRecord(r.session, r.source, ins):
	default:
		r.logger.Warn("archive queue full, dropping insight", "timestamp", ins.Timestamp)
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for rec := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := r.store.Save(ctx, rec); err != nil {
			r.logger.Error("failed to archive insight", "error", err, "session", rec.SessionID)
		}
		cancel()
	}
}

// Close drains queued records and waits for them to be written or for ctx.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
