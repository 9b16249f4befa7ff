package app

import (
	"context"
	"log"
	"time"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

// TestCatalog loads test definitions (from cache/backing store).
type TestCatalog interface {
	GetTest(ctx context.Context, testID string) (domain.Test, error)
}

// SubmissionStore persists graded submissions.
// CreateSubmission must enforce (userID, testID) uniqueness atomically and
// report a duplicate as domain.ErrAlreadySubmitted.
type SubmissionStore interface {
	FindSubmission(ctx context.Context, userID, testID string) (domain.SubmissionResult, bool, error)
	CreateSubmission(ctx context.Context, result domain.SubmissionResult) (domain.SubmissionResult, error)
	ListSubmissions(ctx context.Context, filter domain.SubmissionFilter) ([]domain.SubmissionResult, error)
	ListUsersWithSubmissions(ctx context.Context) ([]domain.UserSubmissions, error)
}

// Notifier is told about every newly recorded submission.
type Notifier interface {
	SubmissionRecorded(ctx context.Context, result domain.SubmissionResult) error
}

// SubmissionService grades submissions and records them once per user and test.
type SubmissionService struct {
	catalog   TestCatalog
	store     SubmissionStore
	notifiers []Notifier
	now       func() time.Time
}

func NewSubmissionService(catalog TestCatalog, store SubmissionStore, notifiers ...Notifier) *SubmissionService {
	return NewSubmissionServiceWithClock(catalog, store, time.Now, notifiers...)
}

// NewSubmissionServiceWithClock uses now for CreatedAt timestamps.
func NewSubmissionServiceWithClock(catalog TestCatalog, store SubmissionStore, now func() time.Time, notifiers ...Notifier) *SubmissionService {
	return &SubmissionService{catalog: catalog, store: store, notifiers: notifiers, now: now}
}

// Submit grades answers against the test and stores the result.
// Only answered questions count toward the totals.
func (s *SubmissionService) Submit(ctx context.Context, userID, testID string, answers []domain.Answer) (domain.SubmissionReport, error) {
	if _, found, err := s.store.FindSubmission(ctx, userID, testID); err != nil {
		return domain.SubmissionReport{}, err
	} else if found {
		return domain.SubmissionReport{}, domain.ErrAlreadySubmitted
	}

	test, err := s.catalog.GetTest(ctx, testID)
	if err != nil {
		return domain.SubmissionReport{}, err
	}

	report := gradeSubmission(test, answers)

	result, err := s.store.CreateSubmission(ctx, domain.SubmissionResult{
		UserID:       userID,
		TestID:       testID,
		Answers:      answers,
		EarnedPoints: report.EarnedPoints,
		TotalPoints:  report.TotalPoints,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return domain.SubmissionReport{}, err
	}

	for _, n := range s.notifiers {
		if err := n.SubmissionRecorded(ctx, result); err != nil {
			log.Printf("submission notifier failed for user %s test %s: %v", userID, testID, err)
		}
	}
	return report, nil
}

// gradeSubmission produces one DetailedResult per answer, in input order.
func gradeSubmission(test domain.Test, answers []domain.Answer) domain.SubmissionReport {
	questions := make(map[string]domain.Question, len(test.Questions))
	for _, q := range test.Questions {
		questions[q.ID] = q
	}

	report := domain.SubmissionReport{
		TestID:          test.ID,
		DetailedResults: make([]domain.DetailedResult, 0, len(answers)),
	}
	for _, answer := range answers {
		question, ok := questions[answer.QuestionID]
		if !ok {
			report.DetailedResults = append(report.DetailedResults, domain.DetailedResult{
				QuestionID: answer.QuestionID,
				Correct:    false,
				Message:    domain.ErrUnknownQuestion.Error(),
			})
			continue
		}

		verdict := GradeQuestion(question, answer.Answers)
		report.TotalPoints += verdict.TotalPoints
		report.EarnedPoints += verdict.EarnedPoints
		earned, total := verdict.EarnedPoints, verdict.TotalPoints
		report.DetailedResults = append(report.DetailedResults, domain.DetailedResult{
			QuestionID:   question.ID,
			Correct:      verdict.Correct,
			EarnedPoints: &earned,
			TotalPoints:  &total,
		})
	}
	return report
}
