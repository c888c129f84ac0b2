package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/afterclass/lessons-api/internal/domain"
)

// Update merges a partial patch into an existing order. A status change is
// claimed through the repository's guarded write before any side effect
// runs, so of two concurrent cancellations exactly one wins the claim and
// releases the reserved spaces; the loser sees ErrInvalidTransition.
// pending -> fulfilled leaves the ledger alone (capacity was spent at
// creation).
func (s *Service) Update(ctx context.Context, orderID string, patch domain.OrderPatch) (domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if patch.Name != nil {
		order.Name = *patch.Name
	}
	if patch.Phone != nil {
		order.Phone = *patch.Phone
	}
	if patch.Email != nil {
		order.Email = *patch.Email
	}

	if patch.Status != nil && *patch.Status != order.Status {
		next := *patch.Status
		if !domain.ValidStatus(next) || !domain.CanTransition(order.Status, next) {
			return domain.Order{}, fmt.Errorf("%s -> %s: %w", order.Status, next, domain.ErrInvalidTransition)
		}
		if err := s.orders.ClaimStatus(ctx, orderID, order.Status, next); err != nil {
			return domain.Order{}, err
		}
		if next == domain.StatusCancelled {
			if err := s.releaseAll(ctx, order); err != nil {
				return domain.Order{}, err
			}
			s.metrics.OrderCancelled()
		}
		order.Status = next
	}

	order.UpdatedAt = time.Now().UTC()
	if err := s.orders.Save(ctx, order); err != nil {
		return domain.Order{}, err
	}
	s.log.WithFields(map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	}).Info("order updated")
	return order, nil
}

// Delete removes an order. A still-pending order must give its capacity
// back first, and the release has to be claimed the same way a
// cancellation is: losing the claim means a concurrent cancel or delete
// already returned the spaces, so this caller must not release again.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status == domain.StatusPending {
		switch err := s.orders.ClaimStatus(ctx, orderID, domain.StatusPending, domain.StatusCancelled); {
		case err == nil:
			if err := s.releaseAll(ctx, order); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrInvalidTransition):
			// lost the race, the winner already handled the ledger
		default:
			return err
		}
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		return err
	}
	s.log.WithField("order_id", orderID).Info("order deleted")
	return nil
}

// releaseAll returns every item's quantity to the ledger. It only ever runs
// after a won claim, so it executes at most once per order. On a mid-loop
// failure the error is surfaced immediately: the remaining releases are not
// retried here because a blind retry could double-release the ones that
// already went through.
func (s *Service) releaseAll(ctx context.Context, order domain.Order) error {
	for _, it := range order.Items {
		if _, err := s.ledger.Release(ctx, it.LessonID, it.Quantity); err != nil {
			return fmt.Errorf("release lesson %s: %w", it.LessonID, err)
		}
		s.metrics.SpacesReleased(it.Quantity)
	}
	return nil
}
