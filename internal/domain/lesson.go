package domain

import "time"

// Lesson is a catalog entry with a mutable capacity counter.
// Spaces is only ever changed through the availability ledger
// (Reserve/Release); nothing else writes it.
type Lesson struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	PriceCents  int       `json:"price_cents"`
	Spaces      int       `json:"spaces"`
	Category    string    `json:"category,omitempty"`
	Location    string    `json:"location,omitempty"`
	Image       string    `json:"image,omitempty"`
	Rating      int       `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
