package postgres

import (
	"context"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/infrastructure/monitoring"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

const customerColumns = `id, rep_id, username, first_name, last_name, identification, tax_office, address,
        subscription_type_id, subscription_duration_id, subscription_start_date, payment_type_id,
        amount::text, description, agreement_status, created_at`

// Save inserts new customers; records are never updated through this API.
func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) (err error) {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if cust.ID != 0 {
		return fmt.Errorf("%w: customer %d already persisted", apperrors.ErrInvalidArgument, cust.ID)
	}
	defer func(start time.Time) { monitoring.RecordDBQuery("customer_insert", start, err) }(time.Now())

	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("username", cust.Username))

	query := `
        INSERT INTO customers (rep_id, username, first_name, last_name, identification, tax_office, address,
            subscription_type_id, subscription_duration_id, subscription_start_date, payment_type_id,
            amount, description, agreement_status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::numeric, $13, $14, NOW())
        RETURNING id, created_at`

	err = r.db.QueryRow(ctx, query,
		cust.Rep,
		cust.Username,
		cust.FirstName,
		cust.LastName,
		cust.Identification,
		cust.TaxOffice,
		cust.Address,
		cust.SubscriptionType,
		cust.SubscriptionDuration,
		cust.SubscriptionStartDate.Time(),
		cust.PaymentType,
		cust.Amount.StringFixed(2),
		cust.Description,
		string(cust.AgreementStatus),
	).Scan(&cust.ID, &cust.CreatedAt)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation")
			return fmt.Errorf("%w: %w", customer.ErrDuplicateUsername, translatedErr)
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return translatedErr
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (c *customer.Customer, err error) {
	defer func(start time.Time) { monitoring.RecordDBQuery("customer_by_id", start, err) }(time.Now())

	c, err = scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, customerID))
	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrNotFound) {
			return nil, customer.ErrNotFound
		}
		return nil, translated
	}
	return c, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) (customers []*customer.Customer, err error) {
	defer func(start time.Time) { monitoring.RecordDBQuery("customer_list", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id DESC`)
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	customers = []*customer.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, translateDBError(err, r.logger)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return customers, nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var (
		c         customer.Customer
		startDate time.Time
		amount    string
		status    string
	)
	err := row.Scan(
		&c.ID,
		&c.Rep,
		&c.Username,
		&c.FirstName,
		&c.LastName,
		&c.Identification,
		&c.TaxOffice,
		&c.Address,
		&c.SubscriptionType,
		&c.SubscriptionDuration,
		&startDate,
		&c.PaymentType,
		&amount,
		&c.Description,
		&status,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.SubscriptionStartDate = customer.DateOf(startDate)
	c.AgreementStatus = customer.AgreementStatus(status)
	if c.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q for customer %d: %w", amount, c.ID, err)
	}
	return &c, nil
}
