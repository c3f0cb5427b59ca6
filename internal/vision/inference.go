package vision

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInferenceStart = errors.New("inference start failed")
	ErrNotStreaming   = errors.New("vision session is not streaming")
)

type Handle string

type Source struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

type Processing struct {
	FPS           float64       `json:"fps"`
	SamplingRatio float64       `json:"sampling_ratio"`
	ClipLength    time.Duration `json:"clip_length"`
	Delay         time.Duration `json:"delay"`
}

func DefaultProcessing() Processing {
	return Processing{
		FPS:           1,
		SamplingRatio: 1,
		ClipLength:    3 * time.Second,
		Delay:         time.Second,
	}
}

type Result struct {
	OK    bool   `json:"ok"`
	Text  string `json:"result,omitempty"`
	Error string `json:"error,omitempty"`
}

type StartConfig struct {
	Prompt     string
	Source     Source
	Processing Processing
	OnResult   func(Result)
	OnError    func(error)
}

// Inference is the remote clip-analysis service: a prompt and a camera source
// in, free text out, on its own cadence.
type Inference interface {
	Start(ctx context.Context, cfg StartConfig) (Handle, error)
	UpdatePrompt(ctx context.Context, h Handle, prompt string) error
	Stop(ctx context.Context, h Handle) error
	Preview(ctx context.Context, h Handle) (*Frame, error)
}

// Relayer forwards accepted insights to the remote agent.
type Relayer interface {
	Relay(ctx context.Context, ins Insight, forceNow bool) bool
	Clear()
}

type Observer interface {
	ObserveInsight(ins Insight)
}

type ObserverFunc func(ins Insight)

func (f ObserverFunc) ObserveInsight(ins Insight) {
	f(ins)
}
