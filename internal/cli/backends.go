package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/bank"
	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/docstore"
	"quiz-attempt-service/internal/infra/memory"
	pgstore "quiz-attempt-service/internal/infra/postgres"
	infraredis "quiz-attempt-service/internal/infra/redis"
)

// backends holds the storage clients selected by configuration.
type backends struct {
	store docstore.Store
	redis *redis.Client
	pool  *pgxpool.Pool
}

func openBackends(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*backends, error) {
	b := &backends{}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
	}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			b.Close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.pool = pool
		b.store = pgstore.NewDocumentStore(pool)
	case config.DriverRedis:
		b.store = infraredis.NewDocumentStore(b.redis)
	default:
		b.store = memory.NewDocumentStore()
	}
	logger.Info().Str("driver", cfg.Store.Driver).Msg("document store ready")
	return b, nil
}

// quizRepository caches quizzes in redis when available, in process otherwise.
func (b *backends) quizRepository(cfg config.Config, logger zerolog.Logger) app.QuizRepository {
	loader := bank.NewDocumentLoader(b.store)
	ttl := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if b.redis != nil {
		return infraredis.NewQuizRepository(b.redis, loader, ttl, logger)
	}
	return memory.NewQuizRepository(loader, ttl)
}

func (b *backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}
