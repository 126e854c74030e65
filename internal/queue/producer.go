package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer publishes task envelopes to the notifications topic. Publish
// errors surface to the caller so endpoints can fall back to synchronous
// delivery in debug deployments.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(broker, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (p *Producer) publish(t Task) error {
	if p == nil || p.writer == nil {
		return fmt.Errorf("producer not configured")
	}
	value, err := t.Marshal()
	if err != nil {
		return fmt.Errorf("task marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   t.Key(),
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Producer) DispatchVerificationEmail(userID int) error {
	t := Task{Type: TaskVerificationEmail, UserID: userID}
	if err := p.publish(t); err != nil {
		return fmt.Errorf("dispatch verification email user=%d: %w", userID, err)
	}
	return nil
}

func (p *Producer) DispatchOrderConfirmation(orderID string) error {
	t := Task{Type: TaskOrderConfirmation, OrderID: orderID}
	if err := p.publish(t); err != nil {
		return fmt.Errorf("dispatch order confirmation order=%s: %w", orderID, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
