package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/medeuamangeldi/quiz-maker-api/internal/app"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
	"github.com/medeuamangeldi/quiz-maker-api/internal/infra/memory"
)

func TestRankingCacheGenerations(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewRankingCache(newClient(mr), time.Minute)
	ctx := context.Background()

	_, gen, ok, err := cache.GetRanking(ctx)
	if err != nil || ok || gen != 0 {
		t.Fatalf("expected empty cache at generation 0, gen=%d ok=%v err=%v", gen, ok, err)
	}

	ranking := []domain.RankingEntry{
		{UserID: "u1", Username: "alice", TotalEarned: 8, TotalPossible: 10, AverageScore: 80},
	}
	if err := cache.SetRanking(ctx, gen, ranking); err != nil {
		t.Fatalf("set ranking: %v", err)
	}
	if !mr.Exists("ranking:global:0") {
		t.Fatalf("expected redis key to be set")
	}

	got, _, ok, err := cache.GetRanking(ctx)
	if err != nil || !ok {
		t.Fatalf("get ranking: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Username != "alice" || got[0].AverageScore != 80 {
		t.Fatalf("unexpected ranking: %+v", got)
	}

	if err := cache.SubmissionRecorded(ctx, domain.SubmissionResult{UserID: "u2"}); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, gen, ok, err = cache.GetRanking(ctx)
	if err != nil || ok || gen != 1 {
		t.Fatalf("expected miss at generation 1, gen=%d ok=%v err=%v", gen, ok, err)
	}

	// A ranking computed under the old generation is never served again.
	if err := cache.SetRanking(ctx, 0, ranking); err != nil {
		t.Fatalf("set stale ranking: %v", err)
	}
	if _, _, ok, _ := cache.GetRanking(ctx); ok {
		t.Fatalf("stale generation served")
	}
}

// submitDuringRead records a submission right after the ranking read, the
// window in which a cached ranking could go stale.
type submitDuringRead struct {
	*memory.SubmissionStore
	submit func()
	once   bool
}

func (s *submitDuringRead) ListUsersWithSubmissions(ctx context.Context) ([]domain.UserSubmissions, error) {
	users, err := s.SubmissionStore.ListUsersWithSubmissions(ctx)
	if !s.once {
		s.once = true
		s.submit()
	}
	return users, err
}

func TestRankingCacheSubmissionDuringRecompute(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	cache := NewRankingCache(newClient(mr), time.Minute)
	tests := memory.NewTestStore(sampleTest())
	users := memory.NewUserStore(domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"})
	inner := memory.NewSubmissionStore(users)

	submissions := app.NewSubmissionService(tests, inner, cache)
	store := &submitDuringRead{SubmissionStore: inner}
	store.submit = func() {
		answers := []domain.Answer{{QuestionID: "q1", Answers: []string{"4"}}}
		if _, err := submissions.Submit(ctx, "u1", "test-1", answers); err != nil {
			t.Errorf("submit: %v", err)
		}
	}
	rankings := app.NewRankingService(store, cache, 0)

	ranking, err := rankings.GlobalRanking(ctx)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(ranking) != 0 {
		t.Fatalf("expected ranking computed before the submission, got %+v", ranking)
	}

	mine, err := rankings.MyRanking(ctx, "u1")
	if err != nil {
		t.Fatalf("my ranking after committed submit: %v", err)
	}
	if mine.Rank != 1 || mine.TotalEarned != 1 {
		t.Fatalf("unexpected ranking %+v", mine)
	}

	ranking, err = rankings.GlobalRanking(ctx)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(ranking) != 1 || ranking[0].Username != "alice" {
		t.Fatalf("expected fresh ranking, got %+v", ranking)
	}
}
