package bootstrap

import (
	"context"
	"log/slog"
	"net"

	"github.com/eleven-am/auteur/internal/health"
	"go.uber.org/fx"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func NewGRPCServer() *grpc.Server {
	return grpc.NewServer()
}

func ProvideGRPCHealth(server *grpc.Server) *grpchealth.Server {
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	return hs
}

func ProvideHealthReporter(hs *grpchealth.Server, logger *slog.Logger) *health.Reporter {
	return health.NewReporter(hs, logger)
}

func StartGRPCServer(lc fx.Lifecycle, server *grpc.Server, reporter *health.Reporter, cfg *Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}
			go func() {
				logger.Info("gRPC server starting", "addr", cfg.GRPCAddr)
				if err := server.Serve(lis); err != nil {
					logger.Error("gRPC server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			reporter.Shutdown()
			server.GracefulStop()
			return nil
		},
	})
}

var GRPCModule = fx.Options(
	fx.Provide(
		NewGRPCServer,
		ProvideGRPCHealth,
		ProvideHealthReporter,
	),
	fx.Invoke(StartGRPCServer),
)
