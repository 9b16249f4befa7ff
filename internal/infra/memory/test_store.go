package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

// TestStore is an in-memory implementation of app.TestRepository (useful for tests/demos).
type TestStore struct {
	mu    sync.RWMutex
	tests map[string]domain.Test
}

func NewTestStore(tests ...domain.Test) *TestStore {
	s := &TestStore{tests: make(map[string]domain.Test, len(tests))}
	for _, t := range tests {
		s.tests[t.ID] = t
	}
	return s
}

func (s *TestStore) GetTest(_ context.Context, testID string) (domain.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if test, ok := s.tests[testID]; ok {
		return test, nil
	}
	return domain.Test{}, domain.ErrTestNotFound
}

func (s *TestStore) CreateTest(_ context.Context, test domain.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tests[test.ID]; ok {
		return fmt.Errorf("test %s already exists", test.ID)
	}
	s.tests[test.ID] = test
	return nil
}

// ListTests returns tests oldest first.
func (s *TestStore) ListTests(_ context.Context) ([]domain.Test, error) {
	s.mu.RLock()
	out := make([]domain.Test, 0, len(s.tests))
	for _, t := range s.tests {
		out = append(out, t)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
