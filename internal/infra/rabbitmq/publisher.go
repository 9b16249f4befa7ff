package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultQueue = "quiz.submissions"

	EventSubmissionRecorded = "submission.recorded"
)

// SubmissionEvent is the message body published for every stored submission.
type SubmissionEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	UserID       string    `json:"userId"`
	TestID       string    `json:"testId"`
	EarnedPoints int       `json:"earnedPoints"`
	TotalPoints  int       `json:"totalPoints"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// NewSubmissionEvent builds the event for result with a fresh id.
func NewSubmissionEvent(result domain.SubmissionResult) SubmissionEvent {
	return SubmissionEvent{
		ID:           uuid.NewString(),
		Type:         EventSubmissionRecorded,
		UserID:       result.UserID,
		TestID:       result.TestID,
		EarnedPoints: result.EarnedPoints,
		TotalPoints:  result.TotalPoints,
		SubmittedAt:  result.CreatedAt,
	}
}

// Publisher sends submission events to a durable queue on the default exchange.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex
}

func NewPublisher(url, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{conn: conn, channel: channel, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// SubmissionRecorded publishes a submission.recorded event.
func (p *Publisher) SubmissionRecorded(ctx context.Context, result domain.SubmissionResult) error {
	event := NewSubmissionEvent(result)
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Type:         event.Type,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}
