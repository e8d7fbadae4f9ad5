package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant_pos_backend/internal/models"
)

// CustomerRepository persists the optional customer attached to an order.
type CustomerRepository interface {
	// UpsertCustomer inserts the customer, or refreshes the existing row with the same phone number.
	UpsertCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) (int64, error)
	GetCustomerByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Customer, error)
}

type customerRepository struct{}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository() CustomerRepository {
	return &customerRepository{}
}

func (r *customerRepository) UpsertCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) (int64, error) {
	query := `INSERT INTO customers (full_name, phone_number, email)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (phone_number) DO UPDATE
	          SET full_name = EXCLUDED.full_name,
	              email = COALESCE(EXCLUDED.email, customers.email),
	              updated_at = NOW()
	          RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, customer.FullName, customer.PhoneNumber, customer.Email).
		Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		if pqCode(err) == pgUniqueViolation {
			return 0, fmt.Errorf("%w: upserting customer: %v", ErrDuplicateKey, err)
		}
		return 0, fmt.Errorf("%w: upserting customer: %v", ErrDatabaseError, err)
	}
	return customer.ID, nil
}

func (r *customerRepository) GetCustomerByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Customer, error) {
	query := `SELECT id, full_name, phone_number, email, created_at FROM customers WHERE id = $1`

	c := &models.Customer{}
	var phone, email sql.NullString
	err := executor.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.FullName, &phone, &email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer by ID %d: %v", ErrDatabaseError, id, err)
	}
	if phone.Valid {
		c.PhoneNumber = &phone.String
	}
	if email.Valid {
		c.Email = &email.String
	}
	return c, nil
}
