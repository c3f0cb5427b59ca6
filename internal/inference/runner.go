package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/eleven-am/auteur/internal/vision"
	"github.com/sony/gobreaker"
)

// Generator is the model endpoint a Runner drives.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	IsAvailable(ctx context.Context) bool
}

// FrameSource supplies the frames a clip is sampled from.
type FrameSource interface {
	LatestFrame(ctx context.Context, source string) (*vision.Frame, error)
	Frames(ctx context.Context, source string, since, until int64, limit int) ([]*vision.Frame, error)
}

type RunnerConfig struct {
	Generator Generator
	Frames    FrameSource
	Clock     clock.Clock
	// CallTimeout bounds one model call. Defaults to the clip cadence.
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// Runner analyzes a camera source on a fixed cadence. Each handle owns one
// loop that samples the last clip window, sends it to the model with the
// handle's current prompt and reports the raw reply.
type Runner struct {
	generator   Generator
	frames      FrameSource
	clock       clock.Clock
	callTimeout time.Duration
	breaker     *gobreaker.CircuitBreaker
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[vision.Handle]*runSession
	seq      uint64
}

type runSession struct {
	handle     vision.Handle
	source     vision.Source
	processing vision.Processing
	onResult   func(vision.Result)
	onError    func(error)

	mu     sync.Mutex
	prompt string

	cancel context.CancelFunc
	done   chan struct{}
}

func (s *runSession) currentPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

func (s *runSession) setPrompt(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = p
}

type RunnerStats struct {
	Sessions int    `json:"sessions"`
	Breaker  string `json:"breaker"`
}

func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	logger := cfg.Logger.With("component", "inference-runner")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "vision-model",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Runner{
		generator:   cfg.Generator,
		frames:      cfg.Frames,
		clock:       cfg.Clock,
		callTimeout: cfg.CallTimeout,
		breaker:     breaker,
		logger:      logger,
		sessions:    make(map[vision.Handle]*runSession),
	}
}

func (r *Runner) Start(ctx context.Context, cfg vision.StartConfig) (vision.Handle, error) {
	if r.generator == nil || r.frames == nil {
		return "", ErrNotConfigured
	}
	if cfg.Source.ID == "" {
		return "", ErrSourceMissing
	}
	if cfg.OnResult == nil {
		return "", fmt.Errorf("%w: result callback is required", ErrNotConfigured)
	}
	if !r.generator.IsAvailable(ctx) {
		return "", ErrUnavailable
	}

	proc := normalizeProcessing(cfg.Processing)

	r.mu.Lock()
	r.seq++
	h := vision.Handle(cfg.Source.ID + "-" + strconv.FormatUint(r.seq, 10))
	loopCtx, cancel := context.WithCancel(context.Background())
	s := &runSession{
		handle:     h,
		source:     cfg.Source,
		processing: proc,
		onResult:   cfg.OnResult,
		onError:    cfg.OnError,
		prompt:     cfg.Prompt,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	r.sessions[h] = s
	r.mu.Unlock()

	ticker := r.clock.Ticker(proc.ClipLength + proc.Delay)
	go r.loop(loopCtx, s, ticker)

	r.logger.Info("inference session started",
		"handle", h,
		"source", cfg.Source.ID,
		"interval", proc.ClipLength+proc.Delay,
		"frames_per_clip", framesPerClip(proc))
	return h, nil
}

func (r *Runner) UpdatePrompt(_ context.Context, h vision.Handle, prompt string) error {
	s := r.session(h)
	if s == nil {
		return ErrUnknownHandle
	}
	s.setPrompt(prompt)
	r.logger.Debug("prompt updated", "handle", h)
	return nil
}

// Stop cancels the handle's loop and waits for an in-flight cycle to finish.
// Stopping an unknown handle is a no-op.
func (r *Runner) Stop(ctx context.Context, h vision.Handle) error {
	r.mu.Lock()
	s, ok := r.sessions[h]
	delete(r.sessions, h)
	r.mu.Unlock()
	if !ok {
		return nil
	}

	s.cancel()
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.logger.Info("inference session stopped", "handle", h)
	return nil
}

func (r *Runner) Preview(ctx context.Context, h vision.Handle) (*vision.Frame, error) {
	s := r.session(h)
	if s == nil {
		return nil, ErrUnknownHandle
	}
	return r.frames.LatestFrame(ctx, s.source.ID)
}

// Close stops every running handle.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	handles := make([]vision.Handle, 0, len(r.sessions))
	for h := range r.sessions {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := r.Stop(ctx, h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) Stats() RunnerStats {
	r.mu.Lock()
	n := len(r.sessions)
	r.mu.Unlock()
	return RunnerStats{Sessions: n, Breaker: r.breaker.State().String()}
}

func (r *Runner) session(h vision.Handle) *runSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[h]
}

func (r *Runner) loop(ctx context.Context, s *runSession, ticker *clock.Ticker) {
	defer close(s.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cycle(ctx, s)
		}
	}
}

func (r *Runner) cycle(ctx context.Context, s *runSession) {
	images, err := r.sampleClip(ctx, s)
	if err != nil {
		if errors.Is(err, ErrNoFrames) {
			r.logger.Debug("skipping cycle", "handle", s.handle, "reason", err)
			return
		}
		if ctx.Err() == nil && s.onError != nil {
			s.onError(fmt.Errorf("read frames: %w", err))
		}
		return
	}

	timeout := r.callTimeout
	if timeout == 0 {
		timeout = s.processing.ClipLength + s.processing.Delay
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := s.currentPrompt()
	out, err := r.breaker.Execute(func() (interface{}, error) {
		return r.generator.Generate(callCtx, GenerateRequest{Prompt: prompt, Images: images})
	})

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		r.logger.Warn("vision model call failed", "handle", s.handle, "error", err)
		s.onResult(vision.Result{OK: false, Error: err.Error()})
		return
	}

	s.onResult(vision.Result{OK: true, Text: out.(string)})
}

// sampleClip picks frames evenly across the clip window ending now.
func (r *Runner) sampleClip(ctx context.Context, s *runSession) ([][]byte, error) {
	until := r.clock.Now().UnixMilli()
	since := until - s.processing.ClipLength.Milliseconds()

	frames, err := r.frames.Frames(ctx, s.source.ID, since, until, 0)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	picked := sample(frames, framesPerClip(s.processing))
	images := make([][]byte, 0, len(picked))
	for _, f := range picked {
		images = append(images, f.Data)
	}
	return images, nil
}

func sample(frames []*vision.Frame, n int) []*vision.Frame {
	if n <= 0 || len(frames) <= n {
		return frames
	}
	out := make([]*vision.Frame, 0, n)
	for i := range n {
		out = append(out, frames[i*len(frames)/n])
	}
	return out
}

func framesPerClip(p vision.Processing) int {
	n := int(math.Ceil(p.ClipLength.Seconds() * p.FPS * p.SamplingRatio))
	return max(n, 1)
}

func normalizeProcessing(p vision.Processing) vision.Processing {
	def := vision.DefaultProcessing()
	if p.FPS <= 0 {
		p.FPS = def.FPS
	}
	if p.SamplingRatio <= 0 || p.SamplingRatio > 1 {
		p.SamplingRatio = def.SamplingRatio
	}
	if p.ClipLength <= 0 {
		p.ClipLength = def.ClipLength
	}
	if p.Delay < 0 {
		p.Delay = def.Delay
	}
	return p
}
