package app

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

// DefaultTopPerformersLimit is used when callers pass a non-positive limit.
const DefaultTopPerformersLimit = 10

// RankingCache stores the last computed global ranking (Redis, etc).
// GetRanking also reports the cache generation; a ranking computed after that
// call is stored with SetRanking under the same generation, and is dropped by
// the cache if a submission was recorded in between.
type RankingCache interface {
	GetRanking(ctx context.Context) (ranking []domain.RankingEntry, generation int64, ok bool, err error)
	SetRanking(ctx context.Context, generation int64, ranking []domain.RankingEntry) error
}

// RankingService derives leaderboards from stored submissions.
type RankingService struct {
	store SubmissionStore
	cache RankingCache
	limit int
}

// NewRankingService builds a ranking service. cache may be nil.
func NewRankingService(store SubmissionStore, cache RankingCache, topLimit int) *RankingService {
	if topLimit <= 0 {
		topLimit = DefaultTopPerformersLimit
	}
	return &RankingService{store: store, cache: cache, limit: topLimit}
}

// GlobalRanking lists every user with at least one submission, best total first.
func (s *RankingService) GlobalRanking(ctx context.Context) ([]domain.RankingEntry, error) {
	ranking, _, err := s.globalRanking(ctx)
	return ranking, err
}

func (s *RankingService) globalRanking(ctx context.Context) (ranking []domain.RankingEntry, cached bool, err error) {
	if s.cache == nil {
		ranking, err = s.computeRanking(ctx)
		return ranking, false, err
	}

	ranking, gen, ok, err := s.cache.GetRanking(ctx)
	if err != nil {
		log.Printf("ranking cache read failed: %v", err)
		ranking, err = s.computeRanking(ctx)
		return ranking, false, err
	}
	if ok {
		return ranking, true, nil
	}

	ranking, err = s.computeRanking(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.SetRanking(ctx, gen, ranking); err != nil {
		log.Printf("ranking cache write failed: %v", err)
	}
	return ranking, false, nil
}

func (s *RankingService) computeRanking(ctx context.Context) ([]domain.RankingEntry, error) {
	users, err := s.store.ListUsersWithSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	return BuildRanking(users), nil
}

// TopPerformers lists the best results for one test. A non-positive limit
// falls back to the configured default.
func (s *RankingService) TopPerformers(ctx context.Context, testID string, limit int) ([]domain.TopPerformer, error) {
	if limit <= 0 {
		limit = s.limit
	}
	users, err := s.store.ListUsersWithSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTopPerformers(users, testID, limit), nil
}

// MyRanking locates userID in the global ranking. A user missing from a
// cached ranking is looked up again in a freshly computed one.
func (s *RankingService) MyRanking(ctx context.Context, userID string) (domain.UserRanking, error) {
	ranking, cached, err := s.globalRanking(ctx)
	if err != nil {
		return domain.UserRanking{}, err
	}
	if entry, ok := findRanking(ranking, userID); ok {
		return entry, nil
	}
	if cached {
		ranking, err = s.computeRanking(ctx)
		if err != nil {
			return domain.UserRanking{}, err
		}
		if entry, ok := findRanking(ranking, userID); ok {
			return entry, nil
		}
	}
	return domain.UserRanking{}, domain.ErrUserNotInRanking
}

func findRanking(ranking []domain.RankingEntry, userID string) (domain.UserRanking, bool) {
	for i, entry := range ranking {
		if entry.UserID == userID {
			return domain.UserRanking{
				Rank:         i + 1,
				TotalUsers:   len(ranking),
				RankingEntry: entry,
			}, true
		}
	}
	return domain.UserRanking{}, false
}

// BuildRanking aggregates per-user totals. Users without submissions are left out.
// Ties on TotalEarned go to whoever reached the total first, then by username.
func BuildRanking(users []domain.UserSubmissions) []domain.RankingEntry {
	type row struct {
		entry      domain.RankingEntry
		lastSubmit time.Time
	}
	rows := make([]row, 0, len(users))
	for _, u := range users {
		if len(u.Submissions) == 0 {
			continue
		}
		r := row{entry: domain.RankingEntry{UserID: u.UserID, Username: u.Username}}
		for _, sub := range u.Submissions {
			r.entry.TotalEarned += sub.EarnedPoints
			r.entry.TotalPossible += sub.TotalPoints
			if sub.CreatedAt.After(r.lastSubmit) {
				r.lastSubmit = sub.CreatedAt
			}
		}
		r.entry.AverageScore = averageScore(r.entry.TotalEarned, r.entry.TotalPossible)
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].entry.TotalEarned != rows[j].entry.TotalEarned {
			return rows[i].entry.TotalEarned > rows[j].entry.TotalEarned
		}
		if !rows[i].lastSubmit.Equal(rows[j].lastSubmit) {
			return rows[i].lastSubmit.Before(rows[j].lastSubmit)
		}
		if rows[i].entry.Username != rows[j].entry.Username {
			return rows[i].entry.Username < rows[j].entry.Username
		}
		return rows[i].entry.UserID < rows[j].entry.UserID
	})

	ranking := make([]domain.RankingEntry, len(rows))
	for i, r := range rows {
		ranking[i] = r.entry
	}
	return ranking
}

// BuildTopPerformers returns at most limit results for testID, highest score
// first, earlier submissions first on ties.
func BuildTopPerformers(users []domain.UserSubmissions, testID string, limit int) []domain.TopPerformer {
	performers := make([]domain.TopPerformer, 0)
	for _, u := range users {
		for _, sub := range u.Submissions {
			if sub.TestID != testID {
				continue
			}
			performers = append(performers, domain.TopPerformer{
				UserID:       u.UserID,
				Username:     u.Username,
				EarnedPoints: sub.EarnedPoints,
				TotalPoints:  sub.TotalPoints,
				SubmittedAt:  sub.CreatedAt,
			})
		}
	}

	sort.SliceStable(performers, func(i, j int) bool {
		if performers[i].EarnedPoints != performers[j].EarnedPoints {
			return performers[i].EarnedPoints > performers[j].EarnedPoints
		}
		if !performers[i].SubmittedAt.Equal(performers[j].SubmittedAt) {
			return performers[i].SubmittedAt.Before(performers[j].SubmittedAt)
		}
		return performers[i].UserID < performers[j].UserID
	})

	if limit > 0 && len(performers) > limit {
		performers = performers[:limit]
	}
	return performers
}

// averageScore is the earned percentage rounded to two decimals.
func averageScore(earned, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return math.Round(float64(earned)*100*100/float64(possible)) / 100
}
