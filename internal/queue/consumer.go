package queue

import (
	"context"
	"log"

	"github.com/segmentio/kafka-go"
)

// TaskHandler processes one task envelope. A returned error is logged; the
// message is not redelivered by the consumer itself (retry policy lives in
// the handlers).
type TaskHandler interface {
	HandleTask(ctx context.Context, t Task) error
}

type Consumer struct {
	Reader  *kafka.Reader
	Handler TaskHandler
}

func NewConsumer(broker, topic, groupID string, handler TaskHandler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{Reader: reader, Handler: handler}
}

// Listen blocks consuming messages until ctx is cancelled. Malformed
// envelopes are logged and skipped so a poison message cannot wedge the
// worker.
func (c *Consumer) Listen(ctx context.Context) {
	for {
		msg, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("[queue][consumer] shutting down")
				return
			}
			log.Printf("[queue][consumer] read error: %v", err)
			continue
		}

		task, err := UnmarshalTask(msg.Value)
		if err != nil {
			log.Printf("[queue][consumer] bad envelope, skipping: %v", err)
			continue
		}

		if err := c.Handler.HandleTask(ctx, task); err != nil {
			log.Printf("[queue][consumer] task %s failed: %v", task.Type, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.Reader.Close()
}
