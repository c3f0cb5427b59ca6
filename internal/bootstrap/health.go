package bootstrap

import (
	"github.com/eleven-am/auteur/internal/gateway"
	"github.com/eleven-am/auteur/internal/health"
	"github.com/eleven-am/auteur/internal/inference"
	"github.com/eleven-am/auteur/internal/relay"
	"github.com/eleven-am/auteur/internal/transport"
	"github.com/eleven-am/auteur/internal/vision"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const version = "1.0.0"

type HealthParams struct {
	fx.In

	DB         *gorm.DB
	Redis      *redis.Client
	Client     *inference.Client
	Runner     *inference.Runner
	Room       transport.Room
	Controller *vision.Controller
	Relay      *relay.Buffer
	Hub        *gateway.Hub
}

func ProvideHealthHandler(p HealthParams) *health.Handler {
	return health.NewHandler(health.Deps{
		DB:        p.DB,
		Redis:     p.Redis,
		Model:     p.Client,
		Room:      p.Room,
		Pipeline:  p.Controller,
		Relay:     p.Relay,
		Inference: p.Runner,
		Hub:       p.Hub,
		Version:   version,
	})
}

func metricsMiddleware(h *health.Handler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.IncrementRequests()
			h.IncrementConnections()
			defer h.DecrementConnections()
			return next(c)
		}
	}
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(metricsMiddleware(h))
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
