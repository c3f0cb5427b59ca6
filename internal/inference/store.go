package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/eleven-am/auteur/internal/vision"
	"github.com/redis/go-redis/v9"
)

const frameKey = "camera:%s:frames"

// FrameStore keeps a rolling window of JPEG frames per camera source in a
// Redis sorted set scored by capture time.
type FrameStore struct {
	redis    *redis.Client
	frameTTL time.Duration
}

type storedFrame struct {
	Timestamp int64  `json:"ts"`
	Width     int    `json:"w,omitempty"`
	Height    int    `json:"h,omitempty"`
	Data      []byte `json:"data"`
}

func NewFrameStore(redisClient *redis.Client, frameTTL time.Duration) *FrameStore {
	if frameTTL == 0 {
		frameTTL = 60 * time.Second
	}
	return &FrameStore{
		redis:    redisClient,
		frameTTL: frameTTL,
	}
}

func (s *FrameStore) StoreFrame(ctx context.Context, frame *vision.Frame) error {
	if frame == nil || frame.Source == "" {
		return ErrSourceMissing
	}

	member, err := json.Marshal(storedFrame{
		Timestamp: frame.Timestamp,
		Width:     frame.Width,
		Height:    frame.Height,
		Data:      frame.Data,
	})
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	key := fmt.Sprintf(frameKey, frame.Source)
	cutoff := frame.Timestamp - s.frameTTL.Milliseconds()

	pipe := s.redis.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(frame.Timestamp), Member: member})
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
	pipe.Expire(ctx, key, s.frameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// LatestFrame returns nil without error when the source has no frames.
func (s *FrameStore) LatestFrame(ctx context.Context, source string) (*vision.Frame, error) {
	key := fmt.Sprintf(frameKey, source)
	results, err := s.redis.ZRevRangeWithScores(ctx, key, 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return decodeFrame(source, results[0])
}

// Frames returns frames captured in [since, until] oldest first. A limit of
// zero means no limit.
func (s *FrameStore) Frames(ctx context.Context, source string, since, until int64, limit int) ([]*vision.Frame, error) {
	key := fmt.Sprintf(frameKey, source)

	opt := &redis.ZRangeBy{
		Min:   strconv.FormatInt(since, 10),
		Max:   strconv.FormatInt(until, 10),
		Count: int64(limit),
	}

	results, err := s.redis.ZRangeByScoreWithScores(ctx, key, opt).Result()
	if err != nil {
		return nil, err
	}

	frames := make([]*vision.Frame, 0, len(results))
	for _, r := range results {
		f, err := decodeFrame(source, r)
		if err != nil {
			continue
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func (s *FrameStore) DeleteFrames(ctx context.Context, source string) error {
	return s.redis.Del(ctx, fmt.Sprintf(frameKey, source)).Err()
}

func decodeFrame(source string, z redis.Z) (*vision.Frame, error) {
	raw, ok := z.Member.(string)
	if !ok {
		return nil, fmt.Errorf("invalid frame data type")
	}

	var sf storedFrame
	if err := json.Unmarshal([]byte(raw), &sf); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	return &vision.Frame{
		Source:    source,
		Timestamp: int64(z.Score),
		Data:      sf.Data,
		Width:     sf.Width,
		Height:    sf.Height,
	}, nil
}
