package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/medeuamangeldi/quiz-maker-api/internal/app"
	"github.com/medeuamangeldi/quiz-maker-api/internal/config"
	"github.com/medeuamangeldi/quiz-maker-api/internal/infra/memory"
	"github.com/medeuamangeldi/quiz-maker-api/internal/infra/postgres"
	"github.com/medeuamangeldi/quiz-maker-api/internal/infra/rabbitmq"
	rediscache "github.com/medeuamangeldi/quiz-maker-api/internal/infra/redis"
	"github.com/medeuamangeldi/quiz-maker-api/internal/infra/sqlite"
	"github.com/redis/go-redis/v9"
)

// services bundles the use cases built from one Config.
type services struct {
	catalog     *app.CatalogService
	submissions *app.SubmissionService
	rankings    *app.RankingService
	users       *app.UserService

	closers []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

type stores struct {
	tests       app.TestRepository
	submissions app.SubmissionStore
	users       app.UserRepository
}

func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	svc := &services{}

	st, err := openStores(ctx, cfg, svc)
	if err != nil {
		svc.Close()
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = connectRedis(cfg)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.closers = append(svc.closers, func() { _ = redisClient.Close() })
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.TestCatalog
	if redisClient != nil {
		catalog = rediscache.NewTestCache(redisClient, st.tests, catalogTTL)
	} else {
		catalog = memory.NewTestCache(st.tests, catalogTTL)
	}

	var (
		notifiers    []app.Notifier
		rankingCache app.RankingCache
	)
	if redisClient != nil {
		rankingTTL := config.TTLDuration(cfg.Ranking.CacheTTL, config.TTLDuration(cfg.Redis.TTL, time.Minute))
		rc := rediscache.NewRankingCache(redisClient, rankingTTL)
		rankingCache = rc
		notifiers = append(notifiers, rc)
	}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.closers = append(svc.closers, func() { _ = publisher.Close() })
		notifiers = append(notifiers, publisher)
	}

	svc.catalog = app.NewCatalogService(st.tests, catalog, st.submissions)
	svc.submissions = app.NewSubmissionService(catalog, st.submissions, notifiers...)
	svc.rankings = app.NewRankingService(st.submissions, rankingCache, cfg.Ranking.TopLimit)
	svc.users = app.NewUserService(st.users, st.submissions)
	return svc, nil
}

func openStores(ctx context.Context, cfg config.Config, svc *services) (stores, error) {
	switch driver := cfg.StorageDriver(); driver {
	case config.DriverMemory:
		log.Printf("using in-memory storage")
		users := memory.NewUserStore()
		return stores{
			tests:       memory.NewTestStore(),
			submissions: memory.NewSubmissionStore(users),
			users:       users,
		}, nil

	case config.DriverPostgres:
		if cfg.Postgres.URL == "" {
			return stores{}, fmt.Errorf("postgres url not configured")
		}
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return stores{}, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return stores{}, err
		}
		svc.closers = append(svc.closers, pool.Close)
		return stores{
			tests:       postgres.NewTestRepository(pool),
			submissions: postgres.NewSubmissionStore(pool),
			users:       postgres.NewUserRepository(pool),
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.NewStore(cfg.SQLite.Path)
		if err != nil {
			return stores{}, err
		}
		svc.closers = append(svc.closers, func() { _ = store.Close() })
		return stores{tests: store, submissions: store, users: store}, nil

	default:
		return stores{}, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func connectRedis(cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
