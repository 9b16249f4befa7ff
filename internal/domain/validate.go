package domain

import (
	"fmt"
	"strings"
)

// Validate checks the invariants a test must satisfy before it can be stored.
func (t Test) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTest)
	}
	if len(t.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrInvalidTest)
	}
	seen := make(map[string]struct{}, len(t.Questions))
	for i, q := range t.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		if q.ID == "" {
			continue
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidTest, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// Validate checks a single question.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text is required", ErrInvalidTest)
	}
	if !q.Type.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidTest, ErrInvalidQuestionType)
	}
	if q.Points < 1 {
		return fmt.Errorf("%w: points must be at least 1", ErrInvalidTest)
	}
	if len(q.CorrectAnswers) == 0 {
		return fmt.Errorf("%w: correct answers are required", ErrInvalidTest)
	}
	if q.Type != QuestionText && len(q.Options) == 0 {
		return fmt.Errorf("%w: %s question needs options", ErrInvalidTest, q.Type)
	}
	return nil
}
