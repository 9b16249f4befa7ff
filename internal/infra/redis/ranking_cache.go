package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	rankingGenKey    = "ranking:gen"
	rankingKeyPrefix = "ranking:global:"
)

// RankingCache keeps the last computed global ranking under a key suffixed
// with the current generation. Every recorded submission bumps the
// generation, so a ranking computed before that submission lands under a
// key nobody reads any more.
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRankingCache(client *redis.Client, ttl time.Duration) *RankingCache {
	return &RankingCache{client: client, ttl: ttl}
}

func (c *RankingCache) GetRanking(ctx context.Context) ([]domain.RankingEntry, int64, bool, error) {
	gen, err := c.client.Get(ctx, rankingGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, err
	}

	data, err := c.client.Get(ctx, rankingKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, err
	}
	var ranking []domain.RankingEntry
	if err := json.Unmarshal(data, &ranking); err != nil {
		return nil, gen, false, err
	}
	return ranking, gen, true, nil
}

func (c *RankingCache) SetRanking(ctx context.Context, gen int64, ranking []domain.RankingEntry) error {
	data, err := json.Marshal(ranking)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rankingKey(gen), data, c.ttl).Err()
}

// SubmissionRecorded moves the cache to a new generation.
func (c *RankingCache) SubmissionRecorded(ctx context.Context, _ domain.SubmissionResult) error {
	return c.client.Incr(ctx, rankingGenKey).Err()
}

func rankingKey(gen int64) string {
	return rankingKeyPrefix + strconv.FormatInt(gen, 10)
}
