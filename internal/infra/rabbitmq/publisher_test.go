package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

func TestNewSubmissionEvent(t *testing.T) {
	submittedAt := time.Date(2024, 11, 22, 9, 30, 0, 0, time.UTC)
	event := NewSubmissionEvent(domain.SubmissionResult{
		UserID:       "u1",
		TestID:       "t1",
		EarnedPoints: 8,
		TotalPoints:  8,
		CreatedAt:    submittedAt,
	})

	if _, err := uuid.Parse(event.ID); err != nil {
		t.Fatalf("expected uuid id, got %q: %v", event.ID, err)
	}
	if event.Type != EventSubmissionRecorded {
		t.Fatalf("unexpected type %q", event.Type)
	}

	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["userId"] != "u1" || decoded["testId"] != "t1" || decoded["earnedPoints"] != float64(8) {
		t.Fatalf("unexpected payload: %s", body)
	}
	if decoded["submittedAt"] != "2024-11-22T09:30:00Z" {
		t.Fatalf("unexpected timestamp: %v", decoded["submittedAt"])
	}
}

func TestNewSubmissionEventIDsAreUnique(t *testing.T) {
	a := NewSubmissionEvent(domain.SubmissionResult{UserID: "u1", TestID: "t1"})
	b := NewSubmissionEvent(domain.SubmissionResult{UserID: "u1", TestID: "t1"})
	if a.ID == b.ID {
		t.Fatalf("expected distinct event ids")
	}
}
