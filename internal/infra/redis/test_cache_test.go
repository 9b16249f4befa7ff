package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
	"github.com/medeuamangeldi/quiz-maker-api/internal/infra/memory"
	"github.com/redis/go-redis/v9"
)

func TestTestCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{TestLoader: memory.NewTestStore(sampleTest())}
	cache := NewTestCache(newClient(mr), loader, time.Minute)

	got, err := cache.GetTest(context.Background(), "test-1")
	if err != nil {
		t.Fatalf("get test: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls.Load())
	}
	if !mr.Exists("test:test-1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("test:test-1"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	again, err := cache.GetTest(context.Background(), "test-1")
	if err != nil {
		t.Fatalf("get cached test: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls.Load())
	}
	if again.Questions[0].Type != got.Questions[0].Type || again.Questions[0].CorrectAnswers[0] != "4" {
		t.Fatalf("cached test differs: %+v", again)
	}
}

func TestTestCacheDoesNotCacheMisses(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewTestCache(newClient(mr), memory.NewTestStore(), time.Minute)

	if _, err := cache.GetTest(context.Background(), "missing"); !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
	if mr.Exists("test:missing") {
		t.Fatalf("miss should not be cached")
	}
}

func TestTestCacheFallsBackWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	loader := &countingLoader{TestLoader: memory.NewTestStore(sampleTest())}
	cache := NewTestCache(client, loader, time.Minute)

	if _, err := cache.GetTest(context.Background(), "test-1"); err != nil {
		t.Fatalf("expected loader fallback, got %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls.Load())
	}
}

type countingLoader struct {
	TestLoader
	calls atomic.Int32
}

func (l *countingLoader) GetTest(ctx context.Context, testID string) (domain.Test, error) {
	l.calls.Add(1)
	return l.TestLoader.GetTest(ctx, testID)
}

func sampleTest() domain.Test {
	return domain.Test{
		ID:    "test-1",
		Title: "Arithmetic",
		Tags:  []string{},
		Questions: []domain.Question{
			{
				ID:             "q1",
				Text:           "What is 2 + 2?",
				Type:           domain.QuestionSingle,
				Options:        []string{"3", "4"},
				CorrectAnswers: []string{"4"},
				Points:         1,
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
