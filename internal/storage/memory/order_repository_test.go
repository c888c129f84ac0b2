package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterclass/lessons-api/internal/domain"
	"github.com/afterclass/lessons-api/internal/storage/memory"
)

func newOrder(id string) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:     id,
		Name:   "Maria",
		Phone:  "0123456789",
		Status: domain.StatusPending,
		Items: []domain.OrderItem{
			{LessonID: "l1", Quantity: 2, PriceCents: 1000},
		},
		TotalCents: 2000,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	order := newOrder("o1")

	require.NoError(t, repo.Create(ctx, order))

	stored, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, order.Items, stored.Items)
	assert.Equal(t, order.TotalCents, stored.TotalCents)

	// stored copy is isolated from later mutation of the input
	order.Items[0].Quantity = 99
	again, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Items[0].Quantity)
}

func TestOrderRepository_Save(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o1")))

	stored, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	stored.Status = domain.StatusCancelled
	require.NoError(t, repo.Save(ctx, stored))

	updated, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)

	assert.ErrorIs(t, repo.Save(ctx, newOrder("ghost")), domain.ErrOrderNotFound)
}

func TestOrderRepository_ClaimStatus(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o1")))

	require.NoError(t, repo.ClaimStatus(ctx, "o1", domain.StatusPending, domain.StatusCancelled))

	stored, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	// precondition no longer holds, a second claim loses
	err = repo.ClaimStatus(ctx, "o1", domain.StatusPending, domain.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	err = repo.ClaimStatus(ctx, "ghost", domain.StatusPending, domain.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_ClaimStatusSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o1")))

	const claimants = 16
	results := make(chan error, claimants)
	for i := 0; i < claimants; i++ {
		go func() {
			results <- repo.ClaimStatus(ctx, "o1", domain.StatusPending, domain.StatusCancelled)
		}()
	}

	var won int
	for i := 0; i < claimants; i++ {
		if err := <-results; err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, won)
}

func TestOrderRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o1")))

	require.NoError(t, repo.Delete(ctx, "o1"))
	assert.ErrorIs(t, repo.Delete(ctx, "o1"), domain.ErrOrderNotFound)

	_, err := repo.Get(ctx, "o1")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
