package agent

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/eleven-am/auteur/internal/lens"
	"github.com/eleven-am/auteur/internal/relay"
	"github.com/eleven-am/auteur/internal/vision"
)

type update struct {
	Type      string          `json:"type"`
	Mode      lens.Mode       `json:"mode"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Listener keeps the agent's visual context in step with the vision_update
// messages published into the room. Updates older than the one already held
// are ignored.
type Listener struct {
	logger   *slog.Logger
	onUpdate func(VisualContext, string)

	mu           sync.RWMutex
	current      VisualContext
	instructions string
	applied      uint64
	ignored      uint64
}

type ListenerStats struct {
	Applied uint64 `json:"applied"`
	Ignored uint64 `json:"ignored"`
}

func NewListener(logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	vc := NewVisualContext()
	return &Listener{
		logger:       logger.With("component", "agent-listener"),
		current:      vc,
		instructions: BuildInstructions(vc),
	}
}

// OnUpdate registers a hook called with the new context and instructions
// after each applied update. It must be set before messages arrive.
func (l *Listener) OnUpdate(fn func(VisualContext, string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onUpdate = fn
}

// HandleData matches transport.DataHandler.
func (l *Listener) HandleData(data []byte, sender string) {
	var msg update
	if err := json.Unmarshal(data, &msg); err != nil {
		l.logger.Warn("error processing room data", "error", err, "sender", sender)
		return
	}
	if msg.Type != relay.MessageType {
		return
	}

	var vd vision.Data
	if len(msg.Data) > 0 && string(msg.Data) != "null" {
		if err := json.Unmarshal(msg.Data, &vd); err != nil {
			l.logger.Warn("error processing vision update", "error", err, "sender", sender)
			return
		}
	}

	mode := msg.Mode
	if mode == "" {
		mode = lens.Geometry
	}
	vc := VisualContext{
		Mode:      mode,
		Analysis:  vd.Analysis,
		Score:     vd.Score,
		Overlays:  vd.Overlays,
		Timestamp: msg.Timestamp,
	}

	l.mu.Lock()
	if l.current.Timestamp != 0 && vc.Timestamp < l.current.Timestamp {
		l.ignored++
		l.mu.Unlock()
		l.logger.Debug("ignoring out of order vision update",
			"timestamp", vc.Timestamp,
			"current", l.current.Timestamp)
		return
	}
	l.current = vc
	l.instructions = BuildInstructions(vc)
	l.applied++
	instructions := l.instructions
	hook := l.onUpdate
	l.mu.Unlock()

	if vc.Analysis == "" {
		l.logger.Info("visual context received empty analysis", "sender", sender)
	} else {
		l.logger.Info("visual context updated",
			"mode", vc.Mode,
			"score", vc.Score,
			"analysis_len", len(vc.Analysis))
	}

	if hook != nil {
		hook(vc, instructions)
	}
}

func (l *Listener) Context() VisualContext {
	l.mu.RLock()
	defer l.mu.RUnlock()
	vc := l.current
	vc.Overlays = append([]vision.Overlay(nil), l.current.Overlays...)
	return vc
}

func (l *Listener) Instructions() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.instructions
}

func (l *Listener) Stats() ListenerStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return ListenerStats{Applied: l.applied, Ignored: l.ignored}
}
