package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusFulfilled Status = "fulfilled"
)

// cancelled and fulfilled are terminal.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCancelled: true, StatusFulfilled: true},
	StatusCancelled: {},
	StatusFulfilled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

// OrderItem holds a weak reference to a lesson by id. The lesson may be
// deleted later; the item keeps the price captured at creation time.
type OrderItem struct {
	LessonID   string `json:"lesson_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int    `json:"price_cents"`
}

type Order struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Phone      string      `json:"phone,omitempty"`
	Email      string      `json:"email,omitempty"`
	Items      []OrderItem `json:"items"`
	TotalCents int         `json:"total_cents"`
	Status     Status      `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewOrderInput is a client-submitted cart. Any client-supplied price or
// total is ignored; the workflow recomputes both from the catalog.
type NewOrderInput struct {
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
	Email string      `json:"email"`
	Items []ItemInput `json:"items"`
}

type ItemInput struct {
	LessonID string `json:"lesson_id"`
	Quantity int    `json:"quantity"`
	// PriceCents is accepted on the wire for backwards compatibility but
	// never trusted.
	PriceCents int `json:"price_cents,omitempty"`
}

// OrderPatch carries a partial update; nil fields are left untouched.
type OrderPatch struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
	Status *Status `json:"status"`
}

func (in NewOrderInput) Validate() error {
	if len(in.Items) == 0 {
		return ErrEmptyItems
	}
	for _, it := range in.Items {
		if it.LessonID == "" {
			return ErrLessonIDRequired
		}
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}
