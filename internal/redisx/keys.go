package redisx

import "time"

const (
	// Catalog cache: lessons:all -> JSON array of lessons
	KeyLessonList = "lessons:all"

	// Order cache: order:{order_id} -> full order JSON
	KeyOrder = "order:%s"

	// Dedup for event consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLLessonList = 30 * time.Second
	TTLOrderCache = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
