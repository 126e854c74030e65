package repositories

import (
	"database/sql"
	"fmt"

	"shopcore/internal/models"
)

type PaymentRepository interface {
	Create(p *models.Payment) error
	GetByID(id string) (*models.Payment, error)
	ListByOrder(orderID string) ([]*models.Payment, error)
	List(limit, offset int) ([]*models.Payment, error)
	UpdateStatus(id, status string) error
}

type paymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{DB: db}
}

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var ref sql.NullString
	if err := row.Scan(
		&p.ID, &p.OrderID, &p.Gateway, &p.Amount, &p.Currency, &p.Status, &ref, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if ref.Valid {
		p.Reference = ref.String
	}
	return p, nil
}

func (r *paymentRepository) Create(p *models.Payment) error {
	const q = `
		INSERT INTO payments (id, order_id, gateway, amount, currency, status, reference, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		RETURNING created_at
	`
	var ref any
	if p.Reference != "" {
		ref = p.Reference
	}
	if err := r.DB.QueryRow(q,
		p.ID, p.OrderID, p.Gateway, p.Amount, p.Currency, p.Status, ref,
	).Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("payment create: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(id string) (*models.Payment, error) {
	const q = `
		SELECT id, order_id, gateway, amount, currency, status, reference, created_at
		FROM payments WHERE id = $1
	`
	p, err := scanPayment(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("payment get: %w", err)
	}
	return p, nil
}

func (r *paymentRepository) ListByOrder(orderID string) ([]*models.Payment, error) {
	const q = `
		SELECT id, order_id, gateway, amount, currency, status, reference, created_at
		FROM payments WHERE order_id = $1 ORDER BY created_at DESC
	`
	return r.listPayments(q, orderID)
}

func (r *paymentRepository) List(limit, offset int) ([]*models.Payment, error) {
	const q = `
		SELECT id, order_id, gateway, amount, currency, status, reference, created_at
		FROM payments ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`
	return r.listPayments(q, limit, offset)
}

func (r *paymentRepository) listPayments(q string, args ...any) ([]*models.Payment, error) {
	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("payment list: %w", err)
	}
	defer rows.Close()

	var res []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *paymentRepository) UpdateStatus(id, status string) error {
	_, err := r.DB.Exec(`UPDATE payments SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return fmt.Errorf("payment status update: %w", err)
	}
	return nil
}
