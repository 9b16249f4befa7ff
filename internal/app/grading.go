package app

import (
	"strings"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

// Verdict is the outcome of grading one question.
type Verdict struct {
	Correct      bool
	EarnedPoints int
	TotalPoints  int
}

// Normalize reduces an answer to the form used for comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GradeQuestion applies the rule for the question's type to the submitted answers.
// There is no partial credit: a correct verdict earns all of the question's points.
func GradeQuestion(question domain.Question, answers []string) Verdict {
	correctSet := normalizedSet(question.CorrectAnswers)
	given := make([]string, 0, len(answers))
	for _, a := range answers {
		given = append(given, Normalize(a))
	}

	var correct bool
	switch question.Type {
	case domain.QuestionText:
		for _, a := range given {
			if _, ok := correctSet[a]; ok {
				correct = true
				break
			}
		}
	case domain.QuestionSingle, domain.QuestionMultiple:
		correct = len(given) == len(question.CorrectAnswers)
		for _, a := range given {
			if _, ok := correctSet[a]; !ok {
				correct = false
				break
			}
		}
	}

	verdict := Verdict{Correct: correct, TotalPoints: question.Points}
	if correct {
		verdict.EarnedPoints = question.Points
	}
	return verdict
}

func normalizedSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[Normalize(v)] = struct{}{}
	}
	return set
}
