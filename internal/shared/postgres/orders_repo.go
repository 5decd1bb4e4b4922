package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrOrderNotFound is returned when an order id does not exist.
var ErrOrderNotFound = errors.New("order not found")

// Order is the persisted order record the producer side works with.
type Order struct {
	ID              int64
	UserID          int64
	RestaurantID    int64
	TotalAmount     decimal.Decimal
	Status          string
	DeliveryAddress string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrdersRepo implements order persistence with pgx and SQL.
type OrdersRepo struct {
	pool *pgxpool.Pool
}

// NewOrdersRepo constructs a repository on the given pool.
func NewOrdersRepo(pool *pgxpool.Pool) *OrdersRepo {
	return &OrdersRepo{pool: pool}
}

// Create inserts a new order and fills the generated id and timestamps.
// total_amount is NUMERIC(10,2); amounts travel as fixed two-decimal strings.
func (r *OrdersRepo) Create(ctx context.Context, order *Order) error {
	var total string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO orders (user_id, restaurant_id, total_amount, status, delivery_address)
		VALUES ($1, $2, $3::numeric, $4, $5)
		RETURNING id, total_amount::text, created_at, updated_at`,
		order.UserID,
		order.RestaurantID,
		order.TotalAmount.StringFixed(2),
		order.Status,
		order.DeliveryAddress,
	).Scan(&order.ID, &total, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}

	order.TotalAmount, err = decimal.NewFromString(total)
	return errors.Wrap(err, "parse stored amount")
}

// Get fetches one order by id.
func (r *OrdersRepo) Get(ctx context.Context, id int64) (*Order, error) {
	var (
		order Order
		total string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, restaurant_id, total_amount::text, status, delivery_address, created_at, updated_at
		FROM orders
		WHERE id = $1`, id,
	).Scan(&order.ID, &order.UserID, &order.RestaurantID, &total,
		&order.Status, &order.DeliveryAddress, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select order")
	}

	order.TotalAmount, err = decimal.NewFromString(total)
	if err != nil {
		return nil, errors.Wrap(err, "parse stored amount")
	}
	return &order, nil
}

// UpdateStatus moves an order from an expected status to the next one,
// compare-and-swap style. Returns false when the current status no longer
// matches expected.
func (r *OrdersRepo) UpdateStatus(ctx context.Context, id int64, expected, next string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`,
		id, expected, next,
	)
	if err != nil {
		return false, errors.Wrap(err, "update order status")
	}
	return tag.RowsAffected() == 1, nil
}
