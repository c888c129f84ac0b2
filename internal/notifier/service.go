package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/afterclass/lessons-api/internal/events"
	kafkax "github.com/afterclass/lessons-api/internal/kafka"
	"github.com/afterclass/lessons-api/internal/redisx"
)

// Service consumes order events and emits customer notifications. Delivery
// here is a structured log line; the shape matters more than the channel.
type Service struct {
	Redis       *redis.Client
	ServiceName string
	Log         *log.Entry
}

func New(rdb *redis.Client, serviceName string) *Service {
	return &Service{
		Redis:       rdb,
		ServiceName: serviceName,
		Log:         log.WithField("component", "notifier"),
	}
}

// HandleOrderEvent is the consumer handler for both order topics. Events are
// deduped by event_id so a redelivered message never notifies twice.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
		if n, _ := s.Redis.Exists(ctx, dkey).Result(); n > 0 {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	switch env.EventType {
	case events.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[events.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.Log.WithFields(log.Fields{
			"order_id":    p.OrderID,
			"name":        p.Name,
			"items":       len(p.Items),
			"total_cents": p.TotalCents,
		}).Info("order confirmation queued")
	case events.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[events.OrderCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		s.Log.WithFields(log.Fields{
			"order_id": p.OrderID,
			"items":    len(p.Items),
		}).Info("cancellation notice queued")
	default:
		// not ours, commit and move on
	}
	return nil
}
