package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eleven-am/auteur/internal/archive"
	"github.com/eleven-am/auteur/internal/health"
	"github.com/eleven-am/auteur/internal/inference"
	"github.com/eleven-am/auteur/internal/relay"
	"github.com/eleven-am/auteur/internal/transport"
	"github.com/eleven-am/auteur/internal/vision"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const roomStateTimeout = 5 * time.Second

func ProvideInferenceConfig(cfg *Config) inference.Config {
	return inference.Config{
		OllamaURL: cfg.OllamaURL,
		Model:     cfg.VisionModel,
		Timeout:   cfg.VisionTimeout,
		FrameTTL:  cfg.FrameTTL,
	}
}

func ProvideOllamaClient(cfg inference.Config, logger *slog.Logger) *inference.Client {
	return inference.NewClient(cfg, logger)
}

func ProvideFrameStore(client *redis.Client, cfg inference.Config) *inference.FrameStore {
	return inference.NewFrameStore(client, cfg.FrameTTL)
}

func ProvideRunner(client *inference.Client, frames *inference.FrameStore, cfg inference.Config, logger *slog.Logger) *inference.Runner {
	return inference.NewRunner(inference.RunnerConfig{
		Generator:   client,
		Frames:      frames,
		CallTimeout: cfg.Timeout,
		Logger:      logger,
	})
}

func ProvideTokenSource(cfg *Config) *transport.TokenSource {
	return transport.NewTokenSource(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, 0)
}

func newRoom(cfg *Config, client *redis.Client, tokens *transport.TokenSource, identity string, logger *slog.Logger) (transport.Room, error) {
	switch cfg.RoomTransport {
	case TransportRedis:
		return transport.NewRedisRoom(client, cfg.RoomName, identity, logger), nil
	case TransportWS:
		token, err := tokens.Token(identity, cfg.RoomName)
		if err != nil {
			return nil, fmt.Errorf("mint room token: %w", err)
		}
		return transport.NewWSRoom(transport.WSRoomConfig{
			URL:      cfg.RoomURL,
			Identity: identity,
			Token:    token,
			Logger:   logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown room transport %q", cfg.RoomTransport)
	}
}

func ProvideRoom(cfg *Config, client *redis.Client, tokens *transport.TokenSource, logger *slog.Logger) (transport.Room, error) {
	return newRoom(cfg, client, tokens, cfg.RoomIdentity, logger)
}

func ProvideRelayBuffer(room transport.Room, cfg *Config, logger *slog.Logger) *relay.Buffer {
	buf := relay.NewBuffer(relay.Config{
		Publisher:     room,
		MaxPendingAge: cfg.RelayMaxPendingAge,
		Logger:        logger,
	})

	room.OnStateChange(func(s transport.State) {
		ctx, cancel := context.WithTimeout(context.Background(), roomStateTimeout)
		defer cancel()
		buf.SetConnected(ctx, s == transport.StateConnected)
	})
	return buf
}

// ProvideRecorder returns nil when the archive is disabled.
func ProvideRecorder(store *archive.Store, cfg *Config, logger *slog.Logger) *archive.Recorder {
	if store == nil {
		return nil
	}
	return archive.NewRecorder(store, cfg.CameraSource, logger)
}

type ControllerParams struct {
	fx.In

	Config   *Config
	Runner   *inference.Runner
	Relay    *relay.Buffer
	Recorder *archive.Recorder
	Reporter *health.Reporter
	Logger   *slog.Logger
}

func ProvideController(p ControllerParams) *vision.Controller {
	cfg := p.Config

	var observers []vision.Observer
	if p.Recorder != nil {
		observers = append(observers, p.Recorder)
	}

	return vision.NewController(vision.ControllerConfig{
		Inference: p.Runner,
		Relay:     p.Relay,
		Source:    vision.Source{ID: cfg.CameraSource},
		Processing: vision.Processing{
			FPS:           cfg.CaptureFPS,
			SamplingRatio: cfg.SamplingRatio,
			ClipLength:    cfg.ClipLength,
			Delay:         cfg.ClipDelay,
		},
		InitialLens: cfg.InitialLens,
		Observers:   observers,
		OnStateChange: func(s vision.State) {
			if s == vision.StateStarting && p.Recorder != nil {
				p.Recorder.BeginSession()
			}
			p.Reporter.ObserveState(s)
		},
		OnFreshnessChange: p.Reporter.ObserveFreshness,
		Logger:            p.Logger,
	})
}

type PipelineParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Config     *Config
	Controller *vision.Controller
	Runner     *inference.Runner
	Room       transport.Room
	Recorder   *archive.Recorder
	Logger     *slog.Logger
}

func StartPipeline(p PipelineParams) {
	joinCtx, cancelJoin := context.WithCancel(context.Background())
	joined := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(joined)
				if err := transport.Join(joinCtx, p.Room, p.Logger); err != nil {
					return
				}
				p.Logger.Info("relay room joined", "identity", p.Room.Identity(), "transport", p.Config.RoomTransport)
			}()

			if p.Config.AutoStart {
				if err := p.Controller.Start(ctx); err != nil {
					p.Logger.Warn("vision autostart failed", "error", err)
				}
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancelJoin()
			<-joined

			if err := p.Controller.Stop(ctx); err != nil {
				p.Logger.Warn("vision stop failed", "error", err)
			}
			if err := p.Runner.Close(ctx); err != nil {
				p.Logger.Warn("inference shutdown failed", "error", err)
			}
			if err := p.Room.Close(); err != nil {
				p.Logger.Warn("room close failed", "error", err)
			}
			if p.Recorder != nil {
				return p.Recorder.Close(ctx)
			}
			return nil
		},
	})
}

var PipelineModule = fx.Options(
	fx.Provide(
		ProvideInferenceConfig,
		ProvideOllamaClient,
		ProvideFrameStore,
		ProvideRunner,
		ProvideTokenSource,
		ProvideRoom,
		ProvideRelayBuffer,
		ProvideRecorder,
		ProvideController,
	),
	fx.Invoke(StartPipeline),
)
