package postgres

import (
	"context"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v3"
)

// DBPool is the subset of *pgxpool.Pool the repositories use.
type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

// SQLSTATE codes the repositories react to.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// translateDBError maps driver errors onto apperrors sentinels. Constraint
// violations keep the constraint name so callers can tell which column broke.
func translateDBError(err error, logger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		logger.Error("Database call failed", "error", err)
		return fmt.Errorf("%w: %w", apperrors.ErrDatabase, err)
	}

	switch pgErr.Code {
	case uniqueViolation:
		logger.Warn("Unique constraint violated", "constraint", pgErr.ConstraintName, "detail", pgErr.Detail)
		return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
	case foreignKeyViolation, checkViolation:
		logger.Warn("Row rejected by constraint", "code", pgErr.Code, "constraint", pgErr.ConstraintName, "detail", pgErr.Detail)
		return fmt.Errorf("%w: constraint %s", apperrors.ErrInvalidArgument, pgErr.ConstraintName)
	default:
		logger.Error("PostgreSQL error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}
}
