package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/auteur/internal/agent"
	"github.com/eleven-am/auteur/internal/transport"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type AgentRoom struct {
	fx.Out

	Room transport.Room `name:"agent_room"`
}

func ProvideAgentRoom(cfg *Config, client *redis.Client, tokens *transport.TokenSource, logger *slog.Logger) (AgentRoom, error) {
	room, err := newRoom(cfg, client, tokens, cfg.AgentIdentity, logger)
	return AgentRoom{Room: room}, err
}

type AgentParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Room      transport.Room `name:"agent_room"`
	Listener  *agent.Listener
	Logger    *slog.Logger
}

func ProvideListener(logger *slog.Logger) *agent.Listener {
	l := agent.NewListener(logger)
	l.OnUpdate(func(vc agent.VisualContext, instructions string) {
		logger.Debug("agent instructions updated",
			"mode", vc.Mode,
			"timestamp", vc.Timestamp,
			"instructions_len", len(instructions))
	})
	return l
}

func StartAgent(p AgentParams) {
	p.Room.OnData(p.Listener.HandleData)

	joinCtx, cancelJoin := context.WithCancel(context.Background())
	joined := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(joined)
				if err := transport.Join(joinCtx, p.Room, p.Logger); err == nil {
					p.Logger.Info("agent joined room", "identity", p.Room.Identity())
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancelJoin()
			<-joined
			return p.Room.Close()
		},
	})
}

var AgentModule = fx.Options(
	fx.Provide(
		ProvideRedisClient,
		ProvideTokenSource,
		ProvideAgentRoom,
		ProvideListener,
	),
	fx.Invoke(StartAgent),
)

// RunAgent starts the conversational agent's context listener against the
// configured room.
func RunAgent() {
	fx.New(
		LoggingModule,
		AgentModule,
	).Run()
}
