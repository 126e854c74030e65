package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"shopcore/internal/models"
)

// ErrInsufficientStock is returned when an order would drive a variant's
// stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

type OrderRepository interface {
	// CreateWithItems inserts the order and its items and decrements variant
	// stock, all in one transaction.
	CreateWithItems(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetByOrderNumber(number string) (*models.Order, error)
	ListByUser(userID int, limit, offset int) ([]*models.Order, error)
	ListAll(limit, offset int) ([]*models.Order, error)
	UpdateStatus(id, status string) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

const orderColumns = `
	id, order_number, user_id, status,
	total_amount, tax_amount, shipping_amount, discount_amount,
	billing_first_name, billing_last_name, billing_email, billing_phone, billing_address,
	shipping_first_name, shipping_last_name, shipping_address,
	notes, created_at, updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	o := &models.Order{}
	var (
		billingAddr  []byte
		shippingAddr []byte
		notes        sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status,
		&o.TotalAmount, &o.TaxAmount, &o.ShipAmount, &o.Discount,
		&o.BillingFirstName, &o.BillingLastName, &o.BillingEmail, &o.BillingPhone, &billingAddr,
		&o.ShippingFirstName, &o.ShippingLastName, &shippingAddr,
		&notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.BillingAddress = billingAddr
	o.ShippingAddress = shippingAddr
	if notes.Valid {
		o.Notes = notes.String
	}
	return o, nil
}

func (r *orderRepository) CreateWithItems(order *models.Order) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("order tx begin: %w", err)
	}
	defer tx.Rollback()

	const insertOrder = `
		INSERT INTO orders (
			id, order_number, user_id, status,
			total_amount, tax_amount, shipping_amount, discount_amount,
			billing_first_name, billing_last_name, billing_email, billing_phone, billing_address,
			shipping_first_name, shipping_last_name, shipping_address,
			notes, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW(),NOW())
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(insertOrder,
		order.ID, order.OrderNumber, order.UserID, order.Status,
		order.TotalAmount, order.TaxAmount, order.ShipAmount, order.Discount,
		order.BillingFirstName, order.BillingLastName, order.BillingEmail, order.BillingPhone,
		rawOrEmptyObject(order.BillingAddress),
		order.ShippingFirstName, order.ShippingLastName, rawOrEmptyObject(order.ShippingAddress),
		order.Notes,
	).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("order insert: %w", err)
	}

	const insertItem = `
		INSERT INTO order_items (id, order_id, product_variant_id, quantity, unit_price, total_price, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`
	// Guarded decrement keeps stock non-negative under concurrent orders.
	const decrementStock = `
		UPDATE product_variants
		SET stock = stock - $1
		WHERE id = $2 AND stock >= $1
	`
	for _, item := range order.Items {
		if _, err := tx.Exec(insertItem,
			item.ID, order.ID, item.VariantID, item.Quantity, item.UnitPrice, item.TotalPrice,
		); err != nil {
			return fmt.Errorf("order item insert: %w", err)
		}
		res, err := tx.Exec(decrementStock, item.Quantity, item.VariantID)
		if err != nil {
			return fmt.Errorf("order stock decrement: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("order stock decrement result: %w", err)
		}
		if affected == 0 {
			return ErrInsufficientStock
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("order tx commit: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByID(id string) (*models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("order get: %w", err)
	}
	if err := r.attachItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetByOrderNumber(number string) (*models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	o, err := scanOrder(r.DB.QueryRow(q, number))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("order get by number: %w", err)
	}
	if err := r.attachItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) attachItems(o *models.Order) error {
	const q = `
		SELECT id, order_id, product_variant_id, quantity, unit_price, total_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`
	rows, err := r.DB.Query(q, o.ID)
	if err != nil {
		return fmt.Errorf("order items load: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.VariantID,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.CreatedAt,
		); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (r *orderRepository) ListByUser(userID int, limit, offset int) ([]*models.Order, error) {
	q := `SELECT ` + orderColumns + `
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listOrders(q, userID, limit, offset)
}

func (r *orderRepository) ListAll(limit, offset int) ([]*models.Order, error) {
	q := `SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.listOrders(q, limit, offset)
}

func (r *orderRepository) listOrders(q string, args ...any) ([]*models.Order, error) {
	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("order list: %w", err)
	}
	defer rows.Close()

	var res []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (r *orderRepository) UpdateStatus(id, status string) error {
	_, err := r.DB.Exec(
		`UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("order status update: %w", err)
	}
	return nil
}
