package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

// TestRepository is the durable home of test definitions.
type TestRepository interface {
	TestCatalog
	CreateTest(ctx context.Context, test domain.Test) error
	ListTests(ctx context.Context) ([]domain.Test, error)
}

// CatalogService creates tests and shows them alongside the caller's submission.
type CatalogService struct {
	repo        TestRepository
	catalog     TestCatalog
	submissions SubmissionStore
	now         func() time.Time
}

// NewCatalogService wires the catalog. catalog is the read path used for
// single-test lookups and may be a cache in front of repo.
func NewCatalogService(repo TestRepository, catalog TestCatalog, submissions SubmissionStore) *CatalogService {
	if catalog == nil {
		catalog = repo
	}
	return &CatalogService{repo: repo, catalog: catalog, submissions: submissions, now: time.Now}
}

// CreateTest validates the definition, assigns missing ids and stores it.
func (s *CatalogService) CreateTest(ctx context.Context, test domain.Test) (domain.Test, error) {
	if err := test.Validate(); err != nil {
		return domain.Test{}, err
	}

	if test.ID == "" {
		test.ID = uuid.NewString()
	}
	questions := make([]domain.Question, len(test.Questions))
	for i, q := range test.Questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.Options == nil {
			q.Options = []string{}
		}
		questions[i] = q
	}
	test.Questions = questions
	if test.Tags == nil {
		test.Tags = []string{}
	}
	test.CreatedAt = s.now().UTC()

	if err := s.repo.CreateTest(ctx, test); err != nil {
		return domain.Test{}, err
	}
	return test, nil
}

// ListTests returns every test with userID's submission attached where present.
func (s *CatalogService) ListTests(ctx context.Context, userID string) ([]domain.TestView, error) {
	tests, err := s.repo.ListTests(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListSubmissions(ctx, domain.SubmissionFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	byTest := make(map[string]domain.SubmissionResult, len(subs))
	for _, sub := range subs {
		byTest[sub.TestID] = sub
	}

	views := make([]domain.TestView, 0, len(tests))
	for _, t := range tests {
		view := domain.TestView{Test: t}
		if sub, ok := byTest[t.ID]; ok {
			sub := sub
			view.Submission = &sub
		}
		views = append(views, view)
	}
	return views, nil
}

// GetTest returns one test with userID's submission attached where present.
func (s *CatalogService) GetTest(ctx context.Context, testID, userID string) (domain.TestView, error) {
	test, err := s.catalog.GetTest(ctx, testID)
	if err != nil {
		return domain.TestView{}, err
	}
	view := domain.TestView{Test: test}
	sub, found, err := s.submissions.FindSubmission(ctx, userID, testID)
	if err != nil {
		return domain.TestView{}, err
	}
	if found {
		view.Submission = &sub
	}
	return view, nil
}
