package repositories

import (
	"context"
	"fmt"

	"restaurant_pos_backend/internal/models"
)

type PaymentRepository interface {
	CreatePayment(ctx context.Context, executor SQLExecutor, payment *models.Payment) (int64, error)
	GetPaymentsByOrderID(ctx context.Context, executor SQLExecutor, orderID int64) ([]models.Payment, error)
}

type paymentRepository struct{}

func NewPaymentRepository() PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) CreatePayment(ctx context.Context, executor SQLExecutor, payment *models.Payment) (int64, error) {
	query := `INSERT INTO payments (order_id, method, amount)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query, payment.OrderID, payment.Method, payment.Amount).
		Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("%w: creating payment for order %d: %v", ErrDatabaseError, payment.OrderID, err)
	}
	return payment.ID, nil
}

func (r *paymentRepository) GetPaymentsByOrderID(ctx context.Context, executor SQLExecutor, orderID int64) ([]models.Payment, error) {
	query := `SELECT id, order_id, method, amount, created_at FROM payments WHERE order_id = $1 ORDER BY id`
	rows, err := executor.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying payments for order %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning payment: %v", ErrDatabaseError, err)
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payments: %v", ErrDatabaseError, err)
	}
	return payments, nil
}
