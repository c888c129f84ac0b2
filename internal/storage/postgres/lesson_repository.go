package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afterclass/lessons-api/internal/domain"
)

type LessonRepository struct{ DB *pgxpool.Pool }

func NewLessonRepository(db *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{DB: db}
}

const lessonColumns = `id, subject, description, price_cents, spaces, category, location, image, rating, created_at, updated_at`

func (r *LessonRepository) List(ctx context.Context) ([]domain.Lesson, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+lessonColumns+` FROM lessons ORDER BY subject`)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var out []domain.Lesson
	for rows.Next() {
		var l domain.Lesson
		if err := rows.Scan(&l.ID, &l.Subject, &l.Description, &l.PriceCents, &l.Spaces,
			&l.Category, &l.Location, &l.Image, &l.Rating, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LessonRepository) Get(ctx context.Context, id string) (domain.Lesson, error) {
	var l domain.Lesson
	err := r.DB.QueryRow(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id=$1`, id).
		Scan(&l.ID, &l.Subject, &l.Description, &l.PriceCents, &l.Spaces,
			&l.Category, &l.Location, &l.Image, &l.Rating, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lesson{}, domain.ErrLessonNotFound
		}
		return domain.Lesson{}, fmt.Errorf("get lesson: %w", err)
	}
	return l, nil
}

func (r *LessonRepository) Insert(ctx context.Context, l domain.Lesson) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO lessons(id, subject, description, price_cents, spaces, category, location, image, rating, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		l.ID, l.Subject, l.Description, l.PriceCents, l.Spaces,
		l.Category, l.Location, l.Image, l.Rating, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

// Reserve is a single guarded update: the WHERE clause carries the capacity
// check, so two concurrent reservations can never both read a stale counter
// and oversell. No row matched means either the lesson is gone or the guard
// failed; one follow-up read tells the two apart.
func (r *LessonRepository) Reserve(ctx context.Context, lessonID string, qty int) (int, error) {
	var remaining int
	err := r.DB.QueryRow(ctx, `
		UPDATE lessons
		SET spaces = spaces - $2, updated_at = now()
		WHERE id = $1 AND spaces >= $2
		RETURNING spaces`, lessonID, qty).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("reserve spaces: %w", err)
	}

	var available int
	lookupErr := r.DB.QueryRow(ctx, `SELECT spaces FROM lessons WHERE id=$1`, lessonID).Scan(&available)
	if errors.Is(lookupErr, pgx.ErrNoRows) {
		return 0, domain.ErrLessonNotFound
	}
	if lookupErr != nil {
		return 0, fmt.Errorf("reserve spaces: %w", lookupErr)
	}
	return 0, &domain.CapacityError{LessonID: lessonID, Requested: qty, Available: available}
}

func (r *LessonRepository) Release(ctx context.Context, lessonID string, qty int) (int, error) {
	var remaining int
	err := r.DB.QueryRow(ctx, `
		UPDATE lessons
		SET spaces = spaces + $2, updated_at = now()
		WHERE id = $1
		RETURNING spaces`, lessonID, qty).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrLessonNotFound
		}
		return 0, fmt.Errorf("release spaces: %w", err)
	}
	return remaining, nil
}
