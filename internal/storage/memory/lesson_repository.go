package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/afterclass/lessons-api/internal/domain"
)

// LessonRepository is a mutex-guarded map with the same reserve/release
// semantics as the Postgres implementation. The mutex stands in for the
// store's atomic conditional update; it is enough here because the memory
// store never outlives a single process.
type LessonRepository struct {
	mu      sync.Mutex
	lessons map[string]domain.Lesson
}

func NewLessonRepository() *LessonRepository {
	return &LessonRepository{lessons: make(map[string]domain.Lesson)}
}

func (r *LessonRepository) List(ctx context.Context) ([]domain.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Lesson, 0, len(r.lessons))
	for _, l := range r.lessons {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}

func (r *LessonRepository) Get(ctx context.Context, id string) (domain.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.lessons[id]
	if !ok {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	return l, nil
}

func (r *LessonRepository) Insert(ctx context.Context, l domain.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lessons[l.ID] = l
	return nil
}

func (r *LessonRepository) Reserve(ctx context.Context, lessonID string, qty int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.lessons[lessonID]
	if !ok {
		return 0, domain.ErrLessonNotFound
	}
	if l.Spaces < qty {
		return 0, &domain.CapacityError{LessonID: lessonID, Requested: qty, Available: l.Spaces}
	}
	l.Spaces -= qty
	l.UpdatedAt = time.Now().UTC()
	r.lessons[lessonID] = l
	return l.Spaces, nil
}

func (r *LessonRepository) Release(ctx context.Context, lessonID string, qty int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.lessons[lessonID]
	if !ok {
		return 0, domain.ErrLessonNotFound
	}
	l.Spaces += qty
	l.UpdatedAt = time.Now().UTC()
	r.lessons[lessonID] = l
	return l.Spaces, nil
}
