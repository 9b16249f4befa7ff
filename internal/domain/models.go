package domain

import (
	"fmt"
	"time"
)

// QuestionType selects the grading rule for a question.
type QuestionType int

const (
	QuestionSingle QuestionType = iota + 1
	QuestionMultiple
	QuestionText
)

// ParseQuestionType maps the wire name of a question type to its enum value.
func ParseQuestionType(raw string) (QuestionType, error) {
	switch raw {
	case "single":
		return QuestionSingle, nil
	case "multiple":
		return QuestionMultiple, nil
	case "text":
		return QuestionText, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidQuestionType, raw)
}

func (t QuestionType) String() string {
	switch t {
	case QuestionSingle:
		return "single"
	case QuestionMultiple:
		return "multiple"
	case QuestionText:
		return "text"
	}
	return fmt.Sprintf("QuestionType(%d)", int(t))
}

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	return t == QuestionSingle || t == QuestionMultiple || t == QuestionText
}

func (t QuestionType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuestionType, int(t))
	}
	return []byte(t.String()), nil
}

func (t *QuestionType) UnmarshalText(text []byte) error {
	parsed, err := ParseQuestionType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Question is a single gradable item of a test.
type Question struct {
	ID             string       `json:"id" yaml:"id"`
	Text           string       `json:"text" yaml:"text"`
	Type           QuestionType `json:"type" yaml:"type"`
	Options        []string     `json:"options" yaml:"options"`
	CorrectAnswers []string     `json:"correctAnswers" yaml:"correctAnswers"`
	Points         int          `json:"points" yaml:"points"`
}

// Test is an immutable collection of questions.
type Test struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Tags      []string   `json:"tags" yaml:"tags"`
	Questions []Question `json:"questions" yaml:"questions"`
	CreatedAt time.Time  `json:"createdAt" yaml:"-"`
}

// Answer is the user's response to one question.
type Answer struct {
	QuestionID string   `json:"questionId"`
	Answers    []string `json:"answers"`
}

// SubmissionResult is the persisted outcome of one (user, test) submission.
type SubmissionResult struct {
	UserID       string    `json:"userId"`
	TestID       string    `json:"testId"`
	Answers      []Answer  `json:"answers"`
	EarnedPoints int       `json:"earnedPoints"`
	TotalPoints  int       `json:"totalPoints"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SubmissionFilter narrows ListSubmissions; empty fields match everything.
type SubmissionFilter struct {
	TestID string
	UserID string
}

// Match reports whether result satisfies the filter.
func (f SubmissionFilter) Match(result SubmissionResult) bool {
	if f.TestID != "" && f.TestID != result.TestID {
		return false
	}
	if f.UserID != "" && f.UserID != result.UserID {
		return false
	}
	return true
}

// DetailedResult is the verdict for one submitted answer.
type DetailedResult struct {
	QuestionID   string `json:"questionId"`
	Correct      bool   `json:"correct"`
	EarnedPoints *int   `json:"earnedPoints,omitempty"`
	TotalPoints  *int   `json:"totalPoints,omitempty"`
	Message      string `json:"message,omitempty"`
}

// SubmissionReport is returned to the caller after grading.
type SubmissionReport struct {
	TestID          string           `json:"testId"`
	TotalPoints     int              `json:"totalPoints"`
	EarnedPoints    int              `json:"earnedPoints"`
	DetailedResults []DetailedResult `json:"detailedResults"`
}

// User is a known participant.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSubmissions groups a user's submissions for ranking.
type UserSubmissions struct {
	UserID      string
	Username    string
	Submissions []SubmissionResult
}

// RankingEntry is one row of the global leaderboard.
type RankingEntry struct {
	UserID        string  `json:"userId"`
	Username      string  `json:"username"`
	TotalEarned   int     `json:"totalEarned"`
	TotalPossible int     `json:"totalPossible"`
	AverageScore  float64 `json:"averageScore"`
}

// UserRanking places one user within the global leaderboard.
type UserRanking struct {
	Rank       int `json:"rank"`
	TotalUsers int `json:"totalUsers"`
	RankingEntry
}

// TopPerformer is one row of a per-test leaderboard.
type TopPerformer struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	EarnedPoints int       `json:"earnedPoints"`
	TotalPoints  int       `json:"totalPoints"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// TestView is a test together with the caller's submission, if any.
type TestView struct {
	Test
	Submission *SubmissionResult `json:"submission,omitempty"`
}

// Profile is the caller's own account with their submissions.
type Profile struct {
	User
	Submissions []SubmissionResult `json:"submissions"`
}
