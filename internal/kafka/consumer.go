package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// Handler must return nil only when the message was processed and its
// offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
	log     *log.Entry
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:       r,
		workers: workers,
		log:     log.WithFields(log.Fields{"component": "kafka-consumer", "topic": topic, "group": group}),
	}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	errs := make(chan error, c.workers)

	for i := 0; i < c.workers; i++ {
		go c.worker(ctx, jobs, errs, h, c.r.CommitMessages)
	}

	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			close(jobs)
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}

		// drain worker errors without blocking the dispatch loop
		select {
		case e := <-errs:
			c.log.WithError(e).Warn("worker error")
			time.Sleep(200 * time.Millisecond)
		default:
		}
	}
}

func (c *Consumer) worker(ctx context.Context, jobs <-chan kafka.Message, errs chan<- error, h Handler, commit func(context.Context, ...kafka.Message) error) {
	for m := range jobs {
		if err := h(ctx, m); err != nil {
			c.report(errs, err)
			continue
		}
		if err := commit(ctx, m); err != nil {
			c.report(errs, err)
		}
	}
}

// report never blocks: a full error queue means the dispatcher is behind on
// draining, and a stalled worker would stall consumption with it. Overflow
// goes straight to the log instead.
func (c *Consumer) report(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
		c.log.WithError(err).Warn("worker error (queue full)")
	}
}
