package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	roomDataChannel     = "room:%s:data"
	redisHealthInterval = 5 * time.Second
)

// RedisRoom joins a room through a Redis pub/sub channel. go-redis resubscribes
// on its own after a dropped connection; a periodic ping drives the
// reconnecting/connected state seen by callers.
type RedisRoom struct {
	roomState

	redis    *redis.Client
	room     string
	identity string
	channel  string
	logger   *slog.Logger

	lifeMu sync.Mutex
	pubsub *redis.PubSub
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisRoom(redisClient *redis.Client, room, identity string, logger *slog.Logger) *RedisRoom {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRoom{
		roomState: newRoomState(),
		redis:     redisClient,
		room:      room,
		identity:  identity,
		channel:   fmt.Sprintf(roomDataChannel, room),
		logger:    logger.With("component", "redis-room", "room", room, "identity", identity),
	}
}

func (r *RedisRoom) Identity() string {
	return r.identity
}

func (r *RedisRoom) Connect(ctx context.Context) error {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()

	if r.pubsub != nil {
		return nil
	}

	r.setState(StateConnecting)

	pubsub := r.redis.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		r.setState(StateFailed)
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	r.pubsub = pubsub
	r.cancel = cancel

	r.wg.Add(2)
	go r.receiveLoop(loopCtx, pubsub)
	go r.healthLoop(loopCtx)

	r.setState(StateConnected)
	r.logger.Info("joined room", "channel", r.channel)
	return nil
}

func (r *RedisRoom) PublishData(ctx context.Context, data []byte, reliable bool) error {
	if !r.Joined() {
		return ErrNotJoined
	}

	pkt, err := EncodePacket(r.identity, data, reliable)
	if err != nil {
		return err
	}

	if err := r.redis.Publish(ctx, r.channel, pkt).Err(); err != nil {
		return fmt.Errorf("publish room data: %w", err)
	}
	return nil
}

func (r *RedisRoom) Close() error {
	r.lifeMu.Lock()
	pubsub := r.pubsub
	cancel := r.cancel
	r.pubsub = nil
	r.cancel = nil
	r.lifeMu.Unlock()

	if pubsub == nil {
		return nil
	}

	cancel()
	err := pubsub.Close()
	r.wg.Wait()
	r.setState(StateDisconnected)
	r.logger.Info("left room")
	return err
}

func (r *RedisRoom) receiveLoop(ctx context.Context, pubsub *redis.PubSub) {
	defer r.wg.Done()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			payload, sender, err := DecodePacket([]byte(msg.Payload))
			if err != nil {
				r.logger.Warn("dropping undecodable room packet", "error", err)
				continue
			}
			if sender == r.identity {
				continue
			}
			r.deliver(payload, sender)
		}
	}
}

func (r *RedisRoom) healthLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(redisHealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := r.redis.Ping(pingCtx).Err()
			cancel()

			if ctx.Err() != nil {
				return
			}
			if err != nil {
				if r.State() == StateConnected {
					r.logger.Warn("room connection lost", "error", err)
				}
				r.setState(StateReconnecting)
				continue
			}
			if r.State() != StateConnected {
				r.logger.Info("room connection restored")
			}
			r.setState(StateConnected)
		}
	}
}
