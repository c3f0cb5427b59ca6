package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/eleven-am/auteur/internal/lens"
	"github.com/eleven-am/auteur/internal/vision"
)

const MessageType = "vision_update"

// Publisher is the slice of a room connection the buffer needs.
type Publisher interface {
	Joined() bool
	PublishData(ctx context.Context, data []byte, reliable bool) error
}

type Payload struct {
	Type      string      `json:"type"`
	Mode      lens.Mode   `json:"mode"`
	Data      vision.Data `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

func NewPayload(ins vision.Insight) Payload {
	return Payload{
		Type:      MessageType,
		Mode:      ins.Lens,
		Data:      ins.Data,
		Timestamp: ins.Timestamp,
	}
}

type Config struct {
	Publisher Publisher
	// MaxPendingAge drops a buffered insight older than this instead of
	// flushing it. Zero keeps it until delivered.
	MaxPendingAge time.Duration
	Clock         clock.Clock
	Logger        *slog.Logger
}

// Buffer delivers insights to the remote agent and holds at most one
// undelivered insight; a newer insight always replaces the pending one.
type Buffer struct {
	publisher Publisher
	maxAge    time.Duration
	clock     clock.Clock
	logger    *slog.Logger

	mu        sync.Mutex
	connected bool
	pending   *vision.Insight
	pendingAt time.Time
	sent      uint64
	dropped   uint64
}

type Stats struct {
	Connected bool   `json:"connected"`
	Pending   bool   `json:"pending"`
	Sent      uint64 `json:"sent"`
	Dropped   uint64 `json:"dropped"`
}

func NewBuffer(cfg Config) *Buffer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Buffer{
		publisher: cfg.Publisher,
		maxAge:    cfg.MaxPendingAge,
		clock:     cfg.Clock,
		logger:    cfg.Logger.With("component", "relay"),
	}
}

// Relay sends ins when the room is joined and the connected flag is set (or
// forceNow). Anything not sent becomes the pending item. It never returns an
// error; false means the insight is buffered.
func (b *Buffer) Relay(ctx context.Context, ins vision.Insight, forceNow bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.relayLocked(ctx, ins, forceNow)
}

func (b *Buffer) relayLocked(ctx context.Context, ins vision.Insight, forceNow bool) bool {
	if !b.readyLocked(forceNow) {
		b.bufferLocked(ins)
		return false
	}

	data, err := json.Marshal(NewPayload(ins))
	if err != nil {
		b.logger.Error("failed to encode relay payload", "error", err)
		b.bufferLocked(ins)
		return false
	}

	if err := b.publisher.PublishData(ctx, data, true); err != nil {
		b.logger.Warn("relay send failed, buffering", "error", err, "timestamp", ins.Timestamp)
		b.bufferLocked(ins)
		return false
	}

	b.pending = nil
	b.pendingAt = time.Time{}
	b.sent++
	return true
}

func (b *Buffer) readyLocked(forceNow bool) bool {
	if b.publisher == nil || !b.publisher.Joined() {
		return false
	}
	return forceNow || b.connected
}

func (b *Buffer) bufferLocked(ins vision.Insight) {
	if b.pending != nil && b.pending.Timestamp != ins.Timestamp {
		b.dropped++
	}
	held := ins
	b.pending = &held
	b.pendingAt = b.clock.Now()
}

// SetConnected records the caller's connected flag. A false to true
// transition makes one forced attempt to flush the pending item.
func (b *Buffer) SetConnected(ctx context.Context, connected bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	was := b.connected
	b.connected = connected
	if !connected || was || b.pending == nil {
		return false
	}

	if b.maxAge > 0 && b.clock.Since(b.pendingAt) > b.maxAge {
		b.logger.Info("dropping expired pending insight",
			"timestamp", b.pending.Timestamp,
			"age", b.clock.Since(b.pendingAt))
		b.pending = nil
		b.pendingAt = time.Time{}
		b.dropped++
		return false
	}

	ins := *b.pending
	delivered := b.relayLocked(ctx, ins, true)
	if delivered {
		b.logger.Info("flushed pending insight", "timestamp", ins.Timestamp)
	}
	return delivered
}

func (b *Buffer) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *Buffer) Pending() (vision.Insight, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return vision.Insight{}, false
	}
	return *b.pending, true
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
	b.pendingAt = time.Time{}
}

func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Connected: b.connected,
		Pending:   b.pending != nil,
		Sent:      b.sent,
		Dropped:   b.dropped,
	}
}
