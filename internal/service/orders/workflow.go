package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/afterclass/lessons-api/internal/domain"
)

// Create turns a submitted cart into a persisted pending order. Pricing is
// always recomputed from the catalog; reservation is all-or-nothing — on the
// first failed item every reservation already taken for this order is
// released before the error surfaces, so no unrecorded order ever holds
// capacity.
func (s *Service) Create(ctx context.Context, in domain.NewOrderInput) (domain.Order, error) {
	if err := in.Validate(); err != nil {
		return domain.Order{}, err
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	total := 0
	for _, it := range in.Items {
		lesson, err := s.lessons.Get(ctx, it.LessonID)
		if err != nil {
			if errors.Is(err, domain.ErrLessonNotFound) {
				return domain.Order{}, fmt.Errorf("lesson %s: %w", it.LessonID, domain.ErrLessonNotFound)
			}
			return domain.Order{}, err
		}
		items = append(items, domain.OrderItem{
			LessonID:   it.LessonID,
			Quantity:   it.Quantity,
			PriceCents: lesson.PriceCents,
		})
		total += lesson.PriceCents * it.Quantity
	}

	reserved := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		if _, err := s.ledger.Reserve(ctx, it.LessonID, it.Quantity); err != nil {
			if errors.Is(err, domain.ErrInsufficientSpaces) {
				s.metrics.ReservationConflict()
			}
			s.rollback(ctx, reserved)
			return domain.Order{}, err
		}
		reserved = append(reserved, it)
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Phone:      in.Phone,
		Email:      in.Email,
		Items:      items,
		TotalCents: total,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		// the reservations have no persisted order backing them, give the
		// capacity back before surfacing the store failure
		s.rollback(ctx, reserved)
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}

	s.metrics.OrderCreated()
	s.log.WithFields(map[string]any{
		"order_id":    order.ID,
		"items":       len(order.Items),
		"total_cents": order.TotalCents,
	}).Info("order created")
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *Service) rollback(ctx context.Context, reserved []domain.OrderItem) {
	for _, it := range reserved {
		if _, err := s.ledger.Release(ctx, it.LessonID, it.Quantity); err != nil {
			s.log.WithError(err).WithField("lesson_id", it.LessonID).
				Error("rollback release failed, spaces may be undercounted")
			continue
		}
		s.metrics.SpacesReleased(it.Quantity)
	}
}
