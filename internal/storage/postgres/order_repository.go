package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afterclass/lessons-api/internal/domain"
)

type OrderRepository struct{ DB *pgxpool.Pool }

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) Create(ctx context.Context, o domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, name, phone, email, status, total_cents, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.Name, o.Phone, o.Email, string(o.Status), o.TotalCents, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		if _, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, lesson_id, quantity, price_cents)
			VALUES ($1,$2,$3,$4)`,
			o.ID, it.LessonID, it.Quantity, it.PriceCents); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, phone, email, status, total_cents, created_at, updated_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Name, &o.Phone, &o.Email, &status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	o.Status = domain.Status(status)

	rows, err := r.DB.Query(ctx, `
		SELECT lesson_id, quantity, price_cents
		FROM order_items WHERE order_id=$1`, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.LessonID, &it.Quantity, &it.PriceCents); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (r *OrderRepository) Save(ctx context.Context, o domain.Order) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET name=$2, phone=$3, email=$4, status=$5, updated_at=$6
		WHERE id=$1`,
		o.ID, o.Name, o.Phone, o.Email, string(o.Status), o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ClaimStatus carries the precondition in the WHERE clause, mirroring the
// spaces guard on lessons: concurrent claimants race on one conditional
// write and the store picks a single winner.
func (r *OrderRepository) ClaimStatus(ctx context.Context, id string, from, to domain.Status) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2`,
		id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("claim status: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var current string
	lookupErr := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&current)
	if errors.Is(lookupErr, pgx.ErrNoRows) {
		return domain.ErrOrderNotFound
	}
	if lookupErr != nil {
		return fmt.Errorf("claim status: %w", lookupErr)
	}
	return fmt.Errorf("%s -> %s: %w", current, to, domain.ErrInvalidTransition)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return tx.Commit(ctx)
}
