package bootstrap

import (
	"log/slog"
	"time"

	"github.com/eleven-am/auteur/docs"
	"github.com/eleven-am/auteur/internal/api"
	"github.com/eleven-am/auteur/internal/archive"
	"github.com/eleven-am/auteur/internal/gateway"
	"github.com/eleven-am/auteur/internal/inference"
	"github.com/eleven-am/auteur/internal/transport"
	"github.com/eleven-am/auteur/internal/vision"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"
)

func ProvideHub(logger *slog.Logger) *gateway.Hub {
	return gateway.NewHub(logger)
}

func ProvideRoomHandler(hub *gateway.Hub, tokens *transport.TokenSource) *gateway.Handler {
	return gateway.NewHandler(hub, tokens)
}

func ProvideVisionHandler(
	controller *vision.Controller,
	frames *inference.FrameStore,
	store *archive.Store,
	cfg *Config,
	logger *slog.Logger,
) *api.Handler {
	apiCfg := api.Config{
		Pipeline: controller,
		Frames:   frames,
		Source:   cfg.CameraSource,
		Logger:   logger,
	}
	if store != nil {
		apiCfg.Archive = store
	}
	return api.NewHandler(apiCfg)
}

type HandlerParams struct {
	fx.In

	VisionHandler *api.Handler
	RoomHandler   *gateway.Handler
	Config        *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	v1 := e.Group("/v1")

	frameLimit := gateway.RateLimiter(gateway.RateLimiterConfig{
		RequestsPerSecond: params.Config.FrameRateLimit,
		Burst:             int(params.Config.FrameRateLimit * 2),
		CleanupInterval:   5 * time.Minute,
	})
	params.VisionHandler.RegisterRoutes(v1.Group("/vision"), frameLimit)

	rooms := v1.Group("/rooms")
	rooms.Use(gateway.RateLimiter(gateway.DefaultRateLimiterConfig()))
	params.RoomHandler.RegisterRoutes(rooms)

	docs.SwaggerInfo.Version = version
	e.GET("/swagger/*", echoSwagger.EchoWrapHandlerV3())
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideHub,
		ProvideRoomHandler,
		ProvideVisionHandler,
	),
	fx.Invoke(RegisterRoutes),
)
