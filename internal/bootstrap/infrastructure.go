package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/eleven-am/auteur/internal/archive"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ProvideRedisClient(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// ProvideDatabase returns nil when no DSN is configured; the insight archive
// is then disabled.
func ProvideDatabase(cfg *Config) (*gorm.DB, error) {
	if cfg.DatabaseDSN == "" {
		return nil, nil
	}
	return gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func ProvideArchiveStore(db *gorm.DB, log *slog.Logger) (*archive.Store, error) {
	if db == nil {
		log.Info("insight archive disabled, no database configured")
		return nil, nil
	}
	store := archive.NewStore(db)
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return store, nil
}

var InfrastructureModule = fx.Options(
	fx.Provide(
		ProvideRedisClient,
		ProvideDatabase,
		ProvideArchiveStore,
	),
)
