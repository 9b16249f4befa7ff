package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

func TestSubmissionStoreRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewSubmissionStore(nil)

	first := domain.SubmissionResult{UserID: "u1", TestID: "t1", EarnedPoints: 3, TotalPoints: 5}
	if _, err := store.CreateSubmission(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := store.CreateSubmission(ctx, domain.SubmissionResult{UserID: "u1", TestID: "t1", EarnedPoints: 5, TotalPoints: 5})
	if !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	got, found, err := store.FindSubmission(ctx, "u1", "t1")
	if err != nil || !found {
		t.Fatalf("expected stored submission, found=%v err=%v", found, err)
	}
	if got.EarnedPoints != 3 {
		t.Fatalf("expected original result kept, got %+v", got)
	}
}

func TestSubmissionStoreConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	store := NewSubmissionStore(nil)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateSubmission(ctx, domain.SubmissionResult{UserID: "u1", TestID: "t1"})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrAlreadySubmitted) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one success, got %d", successes)
	}
	all, _ := store.ListSubmissions(ctx, domain.SubmissionFilter{})
	if len(all) != 1 {
		t.Fatalf("expected one stored submission, got %d", len(all))
	}
}

func TestSubmissionStoreGroupsByUser(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(domain.User{ID: "u1", Username: "alice"}, domain.User{ID: "u2", Username: "bob"})
	store := NewSubmissionStore(users)
	now := time.Now()

	for _, r := range []domain.SubmissionResult{
		{UserID: "u1", TestID: "t1", EarnedPoints: 1, CreatedAt: now},
		{UserID: "u2", TestID: "t1", EarnedPoints: 2, CreatedAt: now},
		{UserID: "u1", TestID: "t2", EarnedPoints: 3, CreatedAt: now},
		{UserID: "ghost", TestID: "t2", EarnedPoints: 4, CreatedAt: now},
	} {
		if _, err := store.CreateSubmission(ctx, r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	grouped, err := store.ListUsersWithSubmissions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(grouped) != 3 {
		t.Fatalf("expected 3 users, got %d", len(grouped))
	}
	if grouped[0].Username != "alice" || len(grouped[0].Submissions) != 2 {
		t.Fatalf("unexpected first group %+v", grouped[0])
	}
	if grouped[2].Username != "ghost" {
		t.Fatalf("expected unknown user to fall back to id, got %q", grouped[2].Username)
	}

	byTest, _ := store.ListSubmissions(ctx, domain.SubmissionFilter{TestID: "t2"})
	if len(byTest) != 2 {
		t.Fatalf("expected 2 submissions for t2, got %d", len(byTest))
	}
}

func TestUserStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	if err := store.CreateUser(ctx, domain.User{ID: "u1", Username: "alice", Email: "a@x.io"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateUser(ctx, domain.User{ID: "u2", Username: "alice", Email: "b@x.io"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for username, got %v", err)
	}
	if err := store.CreateUser(ctx, domain.User{ID: "u3", Username: "carol", Email: "a@x.io"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for email, got %v", err)
	}
	if _, err := store.FindByUsername(ctx, "alice"); err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if _, err := store.FindByEmail(ctx, "nobody@x.io"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
