package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/forkliftia/case-service/internal/model"
	"github.com/segmentio/kafka-go"
)

// Producer writes case lifecycle events to a Kafka topic (best-effort, never
// blocks the API). A nil or unconfigured Producer is a no-op.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a producer. With empty brokers or topic all methods
// are no-ops.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

type caseEvent struct {
	Event        string `json:"event"`
	CaseID       int64  `json:"case_id"`
	Brand        string `json:"brand,omitempty"`
	Model        string `json:"model,omitempty"`
	Series       string `json:"series,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	Status       string `json:"status"`
	Source       string `json:"source,omitempty"`
	CreatedByUID string `json:"created_by_uid,omitempty"`
}

// ProduceCaseEvent sends one case lifecycle event. Failures are logged, not
// returned: event delivery never fails a request.
func (p *Producer) ProduceCaseEvent(ctx context.Context, event string, c *model.Case) {
	if p == nil || p.writer == nil {
		return
	}
	body, err := json.Marshal(caseEvent{
		Event:        event,
		CaseID:       c.ID,
		Brand:        c.Brand,
		Model:        c.Model,
		Series:       c.Series,
		ErrorCode:    c.ErrorCode,
		Status:       string(c.Status),
		Source:       string(c.Source),
		CreatedByUID: c.CreatedByUID,
	})
	if err != nil {
		log.Printf("kafka: marshal case event: %v", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: body}); err != nil {
		log.Printf("kafka: write case event: %v", err)
	}
}

// ProduceCaseEventAsync sends the event in its own goroutine so the API
// response is not delayed.
func (p *Producer) ProduceCaseEventAsync(event string, c *model.Case) {
	if p == nil || p.writer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		p.ProduceCaseEvent(ctx, event, c)
	}()
}

// Close closes the writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
