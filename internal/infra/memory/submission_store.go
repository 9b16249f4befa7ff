package memory

import (
	"context"
	"sync"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

type submissionKey struct {
	userID string
	testID string
}

// SubmissionStore is an in-memory implementation of app.SubmissionStore.
// The uniqueness check and insert happen under one lock.
type SubmissionStore struct {
	users *UserStore

	mu      sync.RWMutex
	byKey   map[submissionKey]int
	results []domain.SubmissionResult
}

// NewSubmissionStore creates an empty store. users supplies display names for
// rankings and may be nil, in which case the user id is used.
func NewSubmissionStore(users *UserStore) *SubmissionStore {
	return &SubmissionStore{
		users: users,
		byKey: make(map[submissionKey]int),
	}
}

func (s *SubmissionStore) FindSubmission(_ context.Context, userID, testID string) (domain.SubmissionResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byKey[submissionKey{userID: userID, testID: testID}]
	if !ok {
		return domain.SubmissionResult{}, false, nil
	}
	return s.results[idx], true, nil
}

func (s *SubmissionStore) CreateSubmission(_ context.Context, result domain.SubmissionResult) (domain.SubmissionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := submissionKey{userID: result.UserID, testID: result.TestID}
	if _, exists := s.byKey[key]; exists {
		return domain.SubmissionResult{}, domain.ErrAlreadySubmitted
	}
	s.byKey[key] = len(s.results)
	s.results = append(s.results, result)
	return result, nil
}

// ListSubmissions returns matching results in insertion order.
func (s *SubmissionStore) ListSubmissions(_ context.Context, filter domain.SubmissionFilter) ([]domain.SubmissionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SubmissionResult, 0)
	for _, r := range s.results {
		if filter.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListUsersWithSubmissions groups results by user in order of first submission.
func (s *SubmissionStore) ListUsersWithSubmissions(ctx context.Context) ([]domain.UserSubmissions, error) {
	s.mu.RLock()
	order := make([]string, 0)
	grouped := make(map[string][]domain.SubmissionResult)
	for _, r := range s.results {
		if _, seen := grouped[r.UserID]; !seen {
			order = append(order, r.UserID)
		}
		grouped[r.UserID] = append(grouped[r.UserID], r)
	}
	s.mu.RUnlock()

	out := make([]domain.UserSubmissions, 0, len(order))
	for _, userID := range order {
		out = append(out, domain.UserSubmissions{
			UserID:      userID,
			Username:    s.username(ctx, userID),
			Submissions: grouped[userID],
		})
	}
	return out, nil
}

func (s *SubmissionStore) username(ctx context.Context, userID string) string {
	if s.users == nil {
		return userID
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return userID
	}
	return user.Username
}
