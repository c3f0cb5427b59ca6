package vision

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/eleven-am/auteur/internal/lens"
)

type fakeInference struct {
	mu        sync.Mutex
	startErr  error
	stopErr   error
	updateErr error
	cfg       StartConfig
	started   int
	stopped   int
	prompts   []string
	next      int
}

func (f *fakeInference) Start(_ context.Context, cfg StartConfig) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	if f.startErr != nil {
		return "", f.startErr
	}
	f.cfg = cfg
	f.next++
	return Handle("handle-" + string(rune('0'+f.next))), nil
}

func (f *fakeInference) UpdatePrompt(_ context.Context, _ Handle, prompt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.prompts = append(f.prompts, prompt)
	return nil
}

func (f *fakeInference) Stop(_ context.Context, _ Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return f.stopErr
}

func (f *fakeInference) Preview(_ context.Context, _ Handle) (*Frame, error) {
	return &Frame{Source: "cam", Width: 4, Height: 3}, nil
}

func (f *fakeInference) config() StartConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

type fakeRelay struct {
	mu      sync.Mutex
	relayed []Insight
	cleared int

	// block, when set, stalls Relay until it is closed or ctx expires.
	block chan struct{}
}

func (r *fakeRelay) Relay(ctx context.Context, ins Insight, _ bool) bool {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return false
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relayed = append(r.relayed, ins)
	return true
}

func (r *fakeRelay) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared++
}

func (r *fakeRelay) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.relayed)
}

func newTestController(inf *fakeInference, rel *fakeRelay) (*Controller, *clock.Mock) {
	mock := clock.NewMock()
	c := NewController(ControllerConfig{
		Inference: inf,
		Relay:     rel,
		Source:    Source{ID: "cam"},
		Clock:     mock,
	})
	return c, mock
}

const centeredJSON = `{"analysis":"Subject centered nicely","score":7,"overlays":[{"type":"rule_of_thirds","status":"match"}]}`

func TestController_StartStreamsAndAcceptsResults(t *testing.T) {
	inf := &fakeInference{}
	rel := &fakeRelay{}
	c, _ := newTestController(inf, rel)

	var states []State
	c.onStateChange = func(s State) { states = append(states, s) }

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State() != StateStreaming {
		t.Fatalf("expected streaming, got %s", c.State())
	}
	if len(states) != 2 || states[0] != StateStarting || states[1] != StateStreaming {
		t.Errorf("unexpected state transitions %v", states)
	}
	if !strings.Contains(inf.config().Prompt, "JSON only") {
		t.Error("start should send the lens prompt")
	}

	inf.config().OnResult(Result{OK: true, Text: "```json\n" + centeredJSON + "\n```"})

	cur := c.Current()
	if cur == nil {
		t.Fatal("expected current insight")
	}
	if cur.Data.Analysis != "Subject centered nicely" || cur.Data.Score != 7 {
		t.Errorf("unexpected insight %+v", cur.Data)
	}
	if cur.Lens != lens.Geometry {
		t.Errorf("expected geometry lens, got %s", cur.Lens)
	}
	if len(cur.Annotations) != 1 {
		t.Errorf("expected annotations to be derived, got %d", len(cur.Annotations))
	}
	if len(c.History()) != 1 {
		t.Errorf("expected 1 history item, got %d", len(c.History()))
	}
	if c.Freshness() != FreshnessFresh {
		t.Errorf("expected fresh, got %s", c.Freshness())
	}
	if rel.count() != 1 {
		t.Errorf("expected 1 relayed insight, got %d", rel.count())
	}
}

func TestController_IgnoresUnparseableAndDuplicates(t *testing.T) {
	inf := &fakeInference{}
	rel := &fakeRelay{}
	c, _ := newTestController(inf, rel)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	onResult := inf.config().OnResult

	onResult(Result{OK: true, Text: centeredJSON})
	first := c.Current()

	onResult(Result{OK: true, Text: "not json at all"})
	onResult(Result{OK: true, Text: centeredJSON})

	if got := c.Current(); got == nil || got.Timestamp != first.Timestamp {
		t.Error("current insight should be unchanged")
	}
	if len(c.History()) != 1 {
		t.Errorf("expected history to stay at 1, got %d", len(c.History()))
	}
	if rel.count() != 1 {
		t.Errorf("expected no further relays, got %d", rel.count())
	}
	if c.State() != StateStreaming {
		t.Errorf("expected still streaming, got %s", c.State())
	}
	if c.LastError() != "" {
		t.Errorf("parse failures should not surface as errors, got %q", c.LastError())
	}
}

func TestController_TimestampsStrictlyIncrease(t *testing.T) {
	inf := &fakeInference{}
	c, _ := newTestController(inf, &fakeRelay{})
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	onResult := inf.config().OnResult

	onResult(Result{OK: true, Text: `{"analysis":"first distinct analysis here"}`})
	onResult(Result{OK: true, Text: `{"analysis":"second completely different reading"}`})

	h := c.History()
	if len(h) != 2 {
		t.Fatalf("expected 2 history items, got %d", len(h))
	}
	if h[0].Timestamp <= h[1].Timestamp {
		t.Errorf("expected newer timestamp first and strictly greater, got %d and %d", h[0].Timestamp, h[1].Timestamp)
	}
}

func TestController_StartFailureReturnsToIdle(t *testing.T) {
	inf := &fakeInference{startErr: errors.New("camera busy")}
	c, _ := newTestController(inf, &fakeRelay{})

	err := c.Start(context.Background())
	if !errors.Is(err, ErrInferenceStart) {
		t.Fatalf("expected ErrInferenceStart, got %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle, got %s", c.State())
	}
	if !strings.Contains(c.LastError(), "camera busy") {
		t.Errorf("expected error to surface, got %q", c.LastError())
	}

	inf.mu.Lock()
	inf.startErr = nil
	inf.mu.Unlock()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("restart should succeed: %v", err)
	}
	if c.State() != StateStreaming {
		t.Errorf("expected streaming, got %s", c.State())
	}
	if c.LastError() != "" {
		t.Errorf("restart should clear last error, got %q", c.LastError())
	}
}

func TestController_RuntimeErrorsSurface(t *testing.T) {
	inf := &fakeInference{}
	c, _ := newTestController(inf, &fakeRelay{})
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	inf.config().OnResult(Result{OK: false, Error: "model overloaded"})
	if c.LastError() != "model overloaded" {
		t.Errorf("expected result error, got %q", c.LastError())
	}

	inf.config().OnError(errors.New("socket closed"))
	if c.LastError() != "socket closed" {
		t.Errorf("expected transport error, got %q", c.LastError())
	}
	if c.State() != StateStreaming {
		t.Errorf("runtime errors should not stop the session, got %s", c.State())
	}

	inf.config().OnResult(Result{OK: true, Text: centeredJSON})
	if c.LastError() != "" {
		t.Errorf("accepted insight should clear error, got %q", c.LastError())
	}
}

func TestController_LensChangeResetsDedup(t *testing.T) {
	inf := &fakeInference{}
	c, _ := newTestController(inf, &fakeRelay{})
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	onResult := inf.config().OnResult

	onResult(Result{OK: true, Text: centeredJSON})

	if err := c.SetLens(context.Background(), lens.Story); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inf.prompts) != 1 || inf.prompts[0] != lens.Prompt(lens.Story) {
		t.Errorf("expected story prompt to be pushed, got %d prompts", len(inf.prompts))
	}

	onResult(Result{OK: true, Text: centeredJSON})

	h := c.History()
	if len(h) != 2 {
		t.Fatalf("identical text after a lens change should be accepted, got %d", len(h))
	}
	if h[0].Lens != lens.Story {
		t.Errorf("expected insight tagged with new lens, got %s", h[0].Lens)
	}

	if err := c.SetLens(context.Background(), lens.Story); err != nil {
		t.Fatal(err)
	}
	if len(inf.prompts) != 1 {
		t.Error("setting the same lens should be a no-op")
	}
}

func TestController_SetLensWhileIdle(t *testing.T) {
	inf := &fakeInference{}
	c, _ := newTestController(inf, &fakeRelay{})

	if err := c.SetLens(context.Background(), lens.Light); err != nil {
		t.Fatal(err)
	}
	if len(inf.prompts) != 0 {
		t.Error("idle lens change should not contact inference")
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if inf.config().Prompt != lens.Prompt(lens.Light) {
		t.Error("start should use the selected lens")
	}

	if err := c.SetLens(context.Background(), lens.Mode("fisheye")); !errors.Is(err, lens.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestController_SetLensFailureKeepsPreviousLens(t *testing.T) {
	inf := &fakeInference{}
	c, _ := newTestController(inf, &fakeRelay{})
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	inf.mu.Lock()
	inf.updateErr = errors.New("runner gone")
	inf.mu.Unlock()

	if err := c.SetLens(context.Background(), lens.Story); err == nil {
		t.Fatal("expected prompt update error")
	}
	if c.Lens() != lens.Geometry {
		t.Errorf("failed switch should keep geometry, got %s", c.Lens())
	}
	if !strings.Contains(c.LastError(), "could not switch lens") {
		t.Errorf("expected lens error to surface, got %q", c.LastError())
	}

	inf.config().OnResult(Result{OK: true, Text: centeredJSON})
	if cur := c.Current(); cur == nil || cur.Lens != lens.Geometry {
		t.Errorf("results should stay tagged with the active prompt's lens, got %+v", cur)
	}
}

func TestController_SlowRelayDoesNotBlockReads(t *testing.T) {
	inf := &fakeInference{}
	rel := &fakeRelay{block: make(chan struct{})}
	c, _ := newTestController(inf, rel)
	c.relayTimeout = time.Minute
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	handled := make(chan struct{})
	go func() {
		inf.config().OnResult(Result{OK: true, Text: centeredJSON})
		close(handled)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.Current() == nil {
		if time.Now().After(deadline) {
			t.Fatal("insight was never accepted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	read := make(chan Snapshot, 1)
	go func() { read <- c.Snapshot() }()
	select {
	case snap := <-read:
		if snap.State != StateStreaming || snap.Current == nil {
			t.Errorf("unexpected snapshot %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("Snapshot blocked behind a stalled relay")
	}

	close(rel.block)
	<-handled
	if rel.count() != 1 {
		t.Errorf("expected 1 relayed insight, got %d", rel.count())
	}
}

func TestController_FreshnessHook(t *testing.T) {
	inf := &fakeInference{}
	mock := clock.NewMock()
	changes := make(chan Freshness, 8)
	c := NewController(ControllerConfig{
		Inference:         inf,
		Relay:             &fakeRelay{},
		Source:            Source{ID: "cam"},
		Clock:             mock,
		OnFreshnessChange: func(f Freshness) { changes <- f },
	})
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	inf.config().OnResult(Result{OK: true, Text: centeredJSON})
	expectChange(t, changes, FreshnessFresh)

	mock.Add(DefaultStaleAfter)
	expectChange(t, changes, FreshnessStale)

	if err := c.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	expectChange(t, changes, FreshnessIdle)
}

func TestController_StopIsIdempotent(t *testing.T) {
	inf := &fakeInference{}
	c, _ := newTestController(inf, &fakeRelay{})

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop while idle should be a no-op: %v", err)
	}
	if inf.stopped != 0 {
		t.Error("stop while idle should not call inference")
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	inf.config().OnResult(Result{OK: true, Text: centeredJSON})

	if err := c.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if inf.stopped != 1 {
		t.Errorf("expected 1 inference stop, got %d", inf.stopped)
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle, got %s", c.State())
	}
	if c.Freshness() != FreshnessIdle {
		t.Errorf("expected idle freshness after stop, got %s", c.Freshness())
	}
}

func TestController_LateResultsAfterStopAreDropped(t *testing.T) {
	inf := &fakeInference{}
	rel := &fakeRelay{}
	c, _ := newTestController(inf, rel)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	stale := inf.config().OnResult

	if err := c.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	stale(Result{OK: true, Text: centeredJSON})

	if c.Current() != nil || rel.count() != 0 {
		t.Error("results from a stopped session should be ignored")
	}
}

func TestController_RestartClearsSessionState(t *testing.T) {
	inf := &fakeInference{}
	rel := &fakeRelay{}
	c, _ := newTestController(inf, rel)

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	inf.config().OnResult(Result{OK: true, Text: centeredJSON})
	if err := c.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(c.History()) != 1 {
		t.Fatal("history should survive stop until next start")
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(c.History()) != 0 || c.Current() != nil {
		t.Error("start should clear history and current insight")
	}
	if rel.cleared != 2 {
		t.Errorf("expected relay cleared on each start, got %d", rel.cleared)
	}

	inf.config().OnResult(Result{OK: true, Text: centeredJSON})
	if c.Current() == nil {
		t.Error("dedup memory should not carry across sessions")
	}
}

func TestController_StopErrorStillReleases(t *testing.T) {
	inf := &fakeInference{stopErr: errors.New("already gone")}
	c, _ := newTestController(inf, &fakeRelay{})
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := c.Stop(context.Background()); err == nil {
		t.Error("expected stop error to be returned")
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle, got %s", c.State())
	}
}

func TestController_ObserversAndSnapshot(t *testing.T) {
	inf := &fakeInference{}
	c, _ := newTestController(inf, &fakeRelay{})

	var seen []Insight
	c.AddObserver(ObserverFunc(func(ins Insight) { seen = append(seen, ins) }))

	if err := c.SetEnabled(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	inf.config().OnResult(Result{OK: true, Text: centeredJSON})

	if len(seen) != 1 {
		t.Fatalf("expected observer to see 1 insight, got %d", len(seen))
	}

	snap := c.Snapshot()
	if snap.State != StateStreaming || snap.Lens != lens.Geometry || snap.HistorySize != 1 || snap.Current == nil {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	frame, err := c.Preview(context.Background())
	if err != nil || frame == nil {
		t.Errorf("expected preview frame, got %v", err)
	}

	if err := c.SetEnabled(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Preview(context.Background()); !errors.Is(err, ErrNotStreaming) {
		t.Errorf("expected ErrNotStreaming, got %v", err)
	}
}
