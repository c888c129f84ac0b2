package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts the ledger-relevant order events.
type OrderMetrics struct {
	ordersCreated        prometheus.Counter
	ordersCancelled      prometheus.Counter
	reservationConflicts prometheus.Counter
	spacesReleased       prometheus.Counter
}

func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "lessons_orders_created_total",
			Help: "Total number of orders persisted",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "lessons_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		reservationConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "lessons_reservation_conflicts_total",
			Help: "Total number of reservations rejected for insufficient spaces",
		}),
		spacesReleased: registerCounter(registerer, prometheus.CounterOpts{
			Name: "lessons_spaces_released_total",
			Help: "Total number of spaces returned to the ledger",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector.(prometheus.Counter)
		}
		panic(err)
	}
	return collector
}

func (m *OrderMetrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *OrderMetrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

func (m *OrderMetrics) ReservationConflict() {
	if m == nil {
		return
	}
	m.reservationConflicts.Inc()
}

func (m *OrderMetrics) SpacesReleased(n int) {
	if m == nil {
		return
	}
	m.spacesReleased.Add(float64(n))
}
