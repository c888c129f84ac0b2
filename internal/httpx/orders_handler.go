package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/afterclass/lessons-api/internal/domain"
	"github.com/afterclass/lessons-api/internal/events"
	kafkax "github.com/afterclass/lessons-api/internal/kafka"
	"github.com/afterclass/lessons-api/internal/redisx"
)

// EventPublisher is satisfied by *kafka.Producer; tests swap in a capture.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Cache is satisfied by *redisx.Cache. A Get miss is any non-nil error or
// an empty value; cache failures never fail the request.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// OrderService is the workflow + lifecycle surface the handler needs.
type OrderService interface {
	Create(ctx context.Context, in domain.NewOrderInput) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	Update(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error)
	Delete(ctx context.Context, id string) error
}

// One producer per topic, the writer is bound to it.
type OrdersHandler struct {
	Svc               OrderService
	ProducerCreated   EventPublisher
	ProducerCancelled EventPublisher
	Cache             Cache
	Service           string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}", h.updateOrder)
	r.Delete("/orders/{id}", h.deleteOrder)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain taxonomy onto status codes; anything
// unrecognised becomes a generic 500 so store internals never leak.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyItems),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrLessonIDRequired),
		errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientSpaces):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrLessonNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in domain.NewOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Svc.Create(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheOrder(ctx, order)
	h.publish(h.ProducerCreated, events.EventOrderCreated, order.ID,
		r.Header.Get("X-Request-Id"),
		events.OrderCreatedPayload{
			OrderID:    order.ID,
			Name:       order.Name,
			Items:      order.Items,
			TotalCents: order.TotalCents,
		})

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Cache != nil {
		if s, err := h.Cache.Get(ctx, fmt.Sprintf(redisx.KeyOrder, orderID)); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	order, err := h.Svc.Get(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheOrder(ctx, order)
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var patch domain.OrderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Svc.Update(ctx, orderID, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheOrder(ctx, order)
	if patch.Status != nil && *patch.Status == domain.StatusCancelled {
		h.publish(h.ProducerCancelled, events.EventOrderCancelled, order.ID,
			r.Header.Get("X-Request-Id"),
			events.OrderCancelledPayload{OrderID: order.ID, Items: order.Items})
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.Delete(ctx, orderID); err != nil {
		writeError(w, err)
		return
	}
	if h.Cache != nil {
		_ = h.Cache.Del(ctx, fmt.Sprintf(redisx.KeyOrder, orderID))
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": orderID})
}

// cacheOrder stores the full order record, the same JSON the handler
// returns, so getOrder can serve a hit without touching the store.
func (h *OrdersHandler) cacheOrder(ctx context.Context, order domain.Order) {
	if h.Cache == nil {
		return
	}
	body, err := json.Marshal(order)
	if err != nil {
		return
	}
	_ = h.Cache.Set(ctx, fmt.Sprintf(redisx.KeyOrder, order.ID), string(body), redisx.TTLOrderCache)
}

func (h *OrdersHandler) publish(p EventPublisher, eventType, orderID, traceID string, payload any) {
	if p == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: orderID,
	}
	ev.Payload = kafkax.MustMarshal(payload)
	p.Publish(events.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
