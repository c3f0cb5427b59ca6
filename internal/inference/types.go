package inference

import (
	"errors"
	"time"
)

var (
	ErrNotConfigured = errors.New("inference is not configured")
	ErrSourceMissing = errors.New("camera source is required")
	ErrUnavailable   = errors.New("vision model is unavailable")
	ErrUnknownHandle = errors.New("unknown inference handle")
	ErrNoFrames      = errors.New("no frames in clip window")
)

type Config struct {
	OllamaURL string
	Model     string
	Timeout   time.Duration
	FrameTTL  time.Duration
}

type GenerateRequest struct {
	Prompt string
	Images [][]byte
}
