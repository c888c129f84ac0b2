package orders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterclass/lessons-api/internal/domain"
)

func statusPtr(s domain.Status) *domain.Status { return &s }
func strPtr(s string) *string                  { return &s }

func createOrder(t *testing.T, f *fixture, items ...domain.ItemInput) domain.Order {
	t.Helper()
	order, err := f.svc.Create(context.Background(), domain.NewOrderInput{
		Name:  "Maria",
		Phone: "0123456789",
		Items: items,
	})
	require.NoError(t, err)
	return order
}

func TestUpdate_CancelReleasesSpacesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addLesson(t, "l1", 1000, 5)
	f.addLesson(t, "l2", 500, 5)

	order := createOrder(t, f,
		domain.ItemInput{LessonID: "l1", Quantity: 2},
		domain.ItemInput{LessonID: "l2", Quantity: 1},
	)
	assert.Equal(t, 3, f.spaces(t, "l1"))
	assert.Equal(t, 4, f.spaces(t, "l2"))

	updated, err := f.svc.Update(ctx, order.ID, domain.OrderPatch{Status: statusPtr(domain.StatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.True(t, updated.UpdatedAt.After(order.UpdatedAt) || updated.UpdatedAt.Equal(order.UpdatedAt))

	assert.Equal(t, 5, f.spaces(t, "l1"))
	assert.Equal(t, 5, f.spaces(t, "l2"))

	// cancelling twice is rejected and must not release again
	_, err = f.svc.Update(ctx, order.ID, domain.OrderPatch{Status: statusPtr(domain.StatusCancelled)})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 5, f.spaces(t, "l1"))
}

// Two replicas cancelling the same order both observe it pending; only the
// one that wins the status claim may release, otherwise spaces inflate past
// what was ever reserved.
func TestUpdate_ConcurrentCancelReleasesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addLesson(t, "l1", 1000, 5)

	order := createOrder(t, f, domain.ItemInput{LessonID: "l1", Quantity: 2})
	assert.Equal(t, 3, f.spaces(t, "l1"))

	const cancellers = 8
	results := make(chan error, cancellers)
	for i := 0; i < cancellers; i++ {
		go func() {
			_, err := f.svc.Update(ctx, order.ID, domain.OrderPatch{Status: statusPtr(domain.StatusCancelled)})
			results <- err
		}()
	}

	var won int
	for i := 0; i < cancellers; i++ {
		if err := <-results; err == nil {
			won++
		} else {
			require.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 5, f.spaces(t, "l1"))
}

// A concurrent cancel and delete must settle on a single release between
// them, whichever one wins the claim.
func TestConcurrentCancelAndDeleteReleaseOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addLesson(t, "l1", 1000, 5)

	order := createOrder(t, f, domain.ItemInput{LessonID: "l1", Quantity: 2})

	done := make(chan struct{}, 2)
	go func() {
		_, _ = f.svc.Update(ctx, order.ID, domain.OrderPatch{Status: statusPtr(domain.StatusCancelled)})
		done <- struct{}{}
	}()
	go func() {
		_ = f.svc.Delete(ctx, order.ID)
		done <- struct{}{}
	}()
	<-done
	<-done

	assert.Equal(t, 5, f.spaces(t, "l1"))
}

func TestUpdate_FulfilKeepsCapacitySpent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addLesson(t, "l1", 1000, 5)

	order := createOrder(t, f, domain.ItemInput{LessonID: "l1", Quantity: 2})

	updated, err := f.svc.Update(ctx, order.ID, domain.OrderPatch{Status: statusPtr(domain.StatusFulfilled)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, updated.Status)
	assert.Equal(t, 3, f.spaces(t, "l1"))

	// fulfilled is terminal
	_, err = f.svc.Update(ctx, order.ID, domain.OrderPatch{Status: statusPtr(domain.StatusCancelled)})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 3, f.spaces(t, "l1"))
}

func TestUpdate_MergesCustomerFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addLesson(t, "l1", 1000, 5)

	order := createOrder(t, f, domain.ItemInput{LessonID: "l1", Quantity: 1})

	updated, err := f.svc.Update(ctx, order.ID, domain.OrderPatch{Name: strPtr("Ana")})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, "0123456789", updated.Phone)
	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Equal(t, 4, f.spaces(t, "l1"))
}

func TestUpdate_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Update(context.Background(), "ghost", domain.OrderPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdate_RejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addLesson(t, "l1", 1000, 5)
	order := createOrder(t, f, domain.ItemInput{LessonID: "l1", Quantity: 1})

	bogus := domain.Status("shipped")
	_, err := f.svc.Update(ctx, order.ID, domain.OrderPatch{Status: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDelete_PendingReleasesCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addLesson(t, "l1", 1000, 5)

	order := createOrder(t, f, domain.ItemInput{LessonID: "l1", Quantity: 3})
	assert.Equal(t, 2, f.spaces(t, "l1"))

	require.NoError(t, f.svc.Delete(ctx, order.ID))
	assert.Equal(t, 5, f.spaces(t, "l1"))

	// second delete is NotFound and does not touch the ledger
	err := f.svc.Delete(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Equal(t, 5, f.spaces(t, "l1"))
}

func TestDelete_CancelledOrderDoesNotReleaseAgain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addLesson(t, "l1", 1000, 5)

	order := createOrder(t, f, domain.ItemInput{LessonID: "l1", Quantity: 2})
	_, err := f.svc.Update(ctx, order.ID, domain.OrderPatch{Status: statusPtr(domain.StatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, 5, f.spaces(t, "l1"))

	require.NoError(t, f.svc.Delete(ctx, order.ID))
	assert.Equal(t, 5, f.spaces(t, "l1"))
}
