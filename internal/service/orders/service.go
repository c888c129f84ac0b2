package orders

import (
	log "github.com/sirupsen/logrus"

	"github.com/afterclass/lessons-api/internal/domain"
	"github.com/afterclass/lessons-api/internal/metrics"
)

// Service is the order workflow plus lifecycle manager. It is the only
// caller of the ledger: spaces move exactly once per reservation and once
// per release, never through raw field edits.
type Service struct {
	lessons domain.LessonRepository
	orders  domain.OrderRepository
	ledger  domain.Ledger
	metrics *metrics.OrderMetrics
	log     *log.Entry
}

func NewService(lessons domain.LessonRepository, orders domain.OrderRepository, ledger domain.Ledger, m *metrics.OrderMetrics) *Service {
	return &Service{
		lessons: lessons,
		orders:  orders,
		ledger:  ledger,
		metrics: m,
		log:     log.WithField("component", "orders"),
	}
}
