package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/eleven-am/auteur/internal/lens"
)

var ErrSessionBusy = errors.New("vision session is stopping")

const defaultRelayTimeout = 5 * time.Second

type ControllerConfig struct {
	Inference         Inference
	Relay             Relayer
	Source            Source
	Processing        Processing
	InitialLens       lens.Mode
	StaleAfter        time.Duration
	HistoryLimit      int
	RelayTimeout      time.Duration
	Clock             clock.Clock
	Observers         []Observer
	OnStateChange     func(State)
	OnFreshnessChange func(Freshness)
	Logger            *slog.Logger
}

// Controller owns one camera analysis session. Operator calls (Start, Stop,
// SetLens) are serialized by opMu. Inference results are serialized by
// relayMu, which also orders relay hand-offs; mu guards state only and is
// never held across a collaborator call.
type Controller struct {
	inference     Inference
	relay         Relayer
	source        Source
	processing    Processing
	clock         clock.Clock
	relayTimeout  time.Duration
	observers     []Observer
	onStateChange func(State)
	logger        *slog.Logger

	freshness *FreshnessTracker
	history   *History
	dedup     *Deduplicator

	opMu    sync.Mutex
	relayMu sync.Mutex

	mu            sync.Mutex
	state         State
	lens          lens.Mode
	handle        Handle
	session       uint64
	current       *Insight
	lastError     string
	lastTimestamp int64
}

type Snapshot struct {
	State       State     `json:"state"`
	Lens        lens.Mode `json:"lens"`
	Freshness   Freshness `json:"freshness"`
	Current     *Insight  `json:"current,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	HistorySize int       `json:"history_size"`
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if !cfg.InitialLens.Valid() {
		cfg.InitialLens = lens.Geometry
	}
	if cfg.Processing == (Processing{}) {
		cfg.Processing = DefaultProcessing()
	}
	if cfg.RelayTimeout == 0 {
		cfg.RelayTimeout = defaultRelayTimeout
	}

	freshness := NewFreshnessTracker(cfg.Clock, cfg.StaleAfter)
	if cfg.OnFreshnessChange != nil {
		freshness.OnChange(cfg.OnFreshnessChange)
	}

	return &Controller{
		inference:     cfg.Inference,
		relay:         cfg.Relay,
		source:        cfg.Source,
		processing:    cfg.Processing,
		clock:         cfg.Clock,
		relayTimeout:  cfg.RelayTimeout,
		observers:     cfg.Observers,
		onStateChange: cfg.OnStateChange,
		logger:        cfg.Logger.With("component", "vision-controller"),
		freshness:     freshness,
		history:       NewHistory(cfg.HistoryLimit),
		dedup:         NewDeduplicator(),
		state:         StateIdle,
		lens:          cfg.InitialLens,
	}
}

func (c *Controller) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

func (c *Controller) SetEnabled(ctx context.Context, enabled bool) error {
	if enabled {
		return c.Start(ctx)
	}
	return c.Stop(ctx)
}

func (c *Controller) Start(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.relayMu.Lock()
	c.mu.Lock()
	switch c.state {
	case StateStarting, StateStreaming:
		c.mu.Unlock()
		c.relayMu.Unlock()
		return nil
	case StateStopping:
		c.mu.Unlock()
		c.relayMu.Unlock()
		return ErrSessionBusy
	}

	c.session++
	gen := c.session
	c.current = nil
	c.lastError = ""
	c.history.Reset()
	c.dedup.Reset()

	cfg := StartConfig{
		Prompt:     lens.Prompt(c.lens),
		Source:     c.source,
		Processing: c.processing,
		OnResult:   func(r Result) { c.handleResult(gen, r) },
		OnError:    func(err error) { c.handleError(gen, err) },
	}
	activeLens := c.lens
	c.mu.Unlock()

	if c.relay != nil {
		c.relay.Clear()
	}
	c.relayMu.Unlock()
	c.setState(StateStarting)

	h, err := c.inference.Start(ctx, cfg)
	if err != nil {
		c.mu.Lock()
		c.lastError = fmt.Sprintf("could not start vision: %v", err)
		c.mu.Unlock()
		c.setState(StateIdle)
		c.logger.Error("vision start failed", "error", err, "source", c.source.ID)
		return fmt.Errorf("%w: %w", ErrInferenceStart, err)
	}

	c.mu.Lock()
	c.handle = h
	c.mu.Unlock()
	c.setState(StateStreaming)

	c.logger.Info("vision session started",
		"source", c.source.ID,
		"lens", activeLens,
		"handle", h)
	return nil
}

// Stop is idempotent. It always releases the inference handle and clears the
// freshness timer and dedup memory, even when the collaborator's stop fails.
func (c *Controller) Stop(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state != StateStreaming {
		c.mu.Unlock()
		return nil
	}
	h := c.handle
	c.handle = ""
	c.session++
	c.mu.Unlock()
	c.setState(StateStopping)

	c.freshness.Reset()
	c.dedup.Reset()

	err := c.inference.Stop(ctx, h)
	c.setState(StateIdle)

	if err != nil {
		c.logger.Warn("inference stop failed", "error", err, "handle", h)
		return fmt.Errorf("stop inference: %w", err)
	}
	c.logger.Info("vision session stopped", "handle", h)
	return nil
}

// SetLens switches the active lens. While streaming the prompt is swapped in
// place; the dedup baseline is cleared so the first result under the new
// lens is never suppressed.
func (c *Controller) SetLens(ctx context.Context, m lens.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", lens.ErrUnknownMode, m)
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.lens == m {
		c.mu.Unlock()
		return nil
	}
	prev := c.lens
	c.lens = m
	c.dedup.Reset()
	streaming := c.state == StateStreaming
	h := c.handle
	c.mu.Unlock()

	if streaming {
		if err := c.inference.UpdatePrompt(ctx, h, lens.Prompt(m)); err != nil {
			// The runner still analyzes with the old prompt.
			c.mu.Lock()
			c.lens = prev
			c.lastError = fmt.Sprintf("could not switch lens: %v", err)
			c.mu.Unlock()
			c.logger.Warn("lens change failed", "from", prev, "to", m, "error", err)
			return fmt.Errorf("update prompt: %w", err)
		}
	}

	c.logger.Info("lens changed", "from", prev, "to", m, "streaming", streaming)
	return nil
}

func (c *Controller) Preview(ctx context.Context) (*Frame, error) {
	c.mu.Lock()
	if c.state != StateStreaming {
		c.mu.Unlock()
		return nil, ErrNotStreaming
	}
	h := c.handle
	c.mu.Unlock()

	return c.inference.Preview(ctx, h)
}

func (c *Controller) handleResult(gen uint64, r Result) {
	c.relayMu.Lock()
	defer c.relayMu.Unlock()

	c.mu.Lock()
	if gen != c.session || (c.state != StateStarting && c.state != StateStreaming) {
		c.mu.Unlock()
		return
	}

	if !r.OK {
		msg := r.Error
		if msg == "" {
			msg = "inference returned an error"
		}
		c.lastError = msg
		c.mu.Unlock()
		c.logger.Warn("inference result error", "error", msg)
		return
	}

	data, err := ParseResponse(r.Text)
	if err != nil {
		c.mu.Unlock()
		c.logger.Debug("discarding model output", "error", err, "raw_len", len(r.Text))
		return
	}

	if !c.dedup.Accept(data.Analysis) {
		active := c.lens
		c.mu.Unlock()
		c.logger.Debug("duplicate analysis suppressed", "lens", active)
		return
	}

	ins := Insight{
		Data:        *data,
		Annotations: Annotate(data.Overlays),
		Lens:        c.lens,
		Timestamp:   c.nextTimestamp(),
	}
	c.current = &ins
	c.lastError = ""
	c.history.Push(ins)
	c.freshness.Touch()
	observers := c.observers
	c.mu.Unlock()

	delivered := false
	if c.relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.relayTimeout)
		delivered = c.relay.Relay(ctx, ins, false)
		cancel()
	}

	c.logger.Debug("insight accepted",
		"lens", ins.Lens,
		"score", ins.Data.Score,
		"overlays", len(ins.Data.Overlays),
		"timestamp", ins.Timestamp,
		"relayed", delivered)

	for _, o := range observers {
		o.ObserveInsight(ins)
	}
}

func (c *Controller) handleError(gen uint64, err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	if gen != c.session {
		c.mu.Unlock()
		return
	}
	c.lastError = err.Error()
	c.mu.Unlock()
	c.logger.Warn("inference error", "error", err)
}

// nextTimestamp returns the capture instant in ms, bumped so it never repeats.
func (c *Controller) nextTimestamp() int64 {
	ts := c.clock.Now().UnixMilli()
	if ts <= c.lastTimestamp {
		ts = c.lastTimestamp + 1
	}
	c.lastTimestamp = ts
	return ts
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	hook := c.onStateChange
	c.mu.Unlock()

	if hook != nil {
		hook(s)
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Lens() lens.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lens
}

func (c *Controller) Current() *Insight {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	ins := *c.current
	return &ins
}

func (c *Controller) History() []Insight {
	return c.history.Items()
}

func (c *Controller) Freshness() Freshness {
	return c.freshness.Status()
}

func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		State:     c.state,
		Lens:      c.lens,
		LastError: c.lastError,
	}
	if c.current != nil {
		ins := *c.current
		snap.Current = &ins
	}
	c.mu.Unlock()

	snap.Freshness = c.freshness.Status()
	snap.HistorySize = c.history.Len()
	return snap
}
