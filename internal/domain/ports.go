package domain

import "context"

// Ledger owns the spaces counter. Reserve must be a single atomic
// conditional write (guard: spaces >= qty) so that concurrent reservations
// cannot oversell; an in-process lock is not enough because the API runs as
// multiple replicas. Release is not idempotent — callers invoke it at most
// once per reservation.
type Ledger interface {
	// Reserve decrements spaces by qty and returns the remaining count.
	// Fails with ErrLessonNotFound or a *CapacityError, in which case the
	// counter is untouched.
	Reserve(ctx context.Context, lessonID string, qty int) (remaining int, err error)
	// Release increments spaces by qty and returns the remaining count.
	Release(ctx context.Context, lessonID string, qty int) (remaining int, err error)
}

type LessonRepository interface {
	List(ctx context.Context) ([]Lesson, error)
	Get(ctx context.Context, id string) (Lesson, error)
	Insert(ctx context.Context, l Lesson) error
}

type OrderRepository interface {
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, error)
	// Save persists mutable fields (customer info, status, updated_at).
	// Items are immutable after creation.
	Save(ctx context.Context, o Order) error
	// ClaimStatus is a guarded status write: the transition applies only
	// if the order is still in `from`, as a single atomic store operation.
	// Exactly one of any set of concurrent claimants wins; the rest get
	// ErrInvalidTransition. This is what keeps release at-most-once across
	// replicas, where an in-process lock would not help.
	ClaimStatus(ctx context.Context, id string, from, to Status) error
	Delete(ctx context.Context, id string) error
}

// CredentialStore backs the login route. Only the bcrypt hash ever leaves
// the store; plaintext comparison is deliberately impossible.
type CredentialStore interface {
	PasswordHash(ctx context.Context, username string) (string, error)
}
