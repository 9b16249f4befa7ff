package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateTest(t *testing.T) {
	valid := Test{
		Title: "Colors",
		Questions: []Question{
			{ID: "q1", Text: "Pick red", Type: QuestionSingle, Options: []string{"red", "blue"}, CorrectAnswers: []string{"red"}, Points: 2},
			{ID: "q2", Text: "Sky color?", Type: QuestionText, CorrectAnswers: []string{"blue"}, Points: 1},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid test, got %v", err)
	}

	cases := map[string]func(*Test){
		"empty title":      func(tt *Test) { tt.Title = "  " },
		"no questions":     func(tt *Test) { tt.Questions = nil },
		"zero points":      func(tt *Test) { tt.Questions[0].Points = 0 },
		"no answers":       func(tt *Test) { tt.Questions[1].CorrectAnswers = nil },
		"unknown type":     func(tt *Test) { tt.Questions[0].Type = 0 },
		"missing options":  func(tt *Test) { tt.Questions[0].Options = nil },
		"duplicate id":     func(tt *Test) { tt.Questions[1].ID = "q1" },
		"blank text field": func(tt *Test) { tt.Questions[1].Text = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			broken := valid
			broken.Questions = append([]Question(nil), valid.Questions...)
			mutate(&broken)
			if err := broken.Validate(); !errors.Is(err, ErrInvalidTest) {
				t.Fatalf("expected ErrInvalidTest, got %v", err)
			}
		})
	}
}

func TestQuestionTypeJSON(t *testing.T) {
	var q Question
	if err := json.Unmarshal([]byte(`{"id":"q1","type":"multiple","points":3}`), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Type != QuestionMultiple {
		t.Fatalf("expected multiple, got %v", q.Type)
	}

	if err := json.Unmarshal([]byte(`{"type":"essay"}`), &q); !errors.Is(err, ErrInvalidQuestionType) {
		t.Fatalf("expected ErrInvalidQuestionType, got %v", err)
	}
}
