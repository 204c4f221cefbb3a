package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic as part of a consumer group. Offsets are
// committed only after the handler accepted a message, so a crash replays
// the message instead of losing it.
type Consumer struct {
	reader messageReader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume hands messages to handler until ctx is canceled, the reader
// fails, or handler returns an error. A failed message is left uncommitted.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// EventHandler adapts a LedgerEvent handler to raw messages. Messages that do
// not decode are logged and skipped.
func EventHandler(handle func(context.Context, LedgerEvent) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var event LedgerEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("decode event error: %v", err)
			return nil
		}
		return handle(ctx, event)
	}
}

// Retry calls handle up to attempts times, waiting backoff between tries. The
// last error is returned so the caller leaves the message uncommitted.
func Retry(handle func(context.Context, LedgerEvent) error, attempts int, backoff time.Duration) func(context.Context, LedgerEvent) error {
	attempts = max(attempts, 1)
	return func(ctx context.Context, event LedgerEvent) error {
		var err error
		for i := 1; i <= attempts; i++ {
			if err = handle(ctx, event); err == nil {
				return nil
			}
			if i == attempts {
				break
			}
			log.Printf("WARNING: event %s attempt %d/%d failed: %v", event.ID, i, attempts, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		return fmt.Errorf("event %s failed after %d attempts: %w", event.ID, attempts, err)
	}
}
