package postgres

import (
	"context"
	"crm-rep/internal/domain/user"
	"crm-rep/internal/infrastructure/monitoring"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type UserRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db DBPool, logger *slog.Logger) *UserRepository {
	if db == nil {
		panic("DBPool cannot be nil for UserRepository")
	}
	return &UserRepository{db: db, logger: logger.With("component", "UserRepository")}
}

const userColumns = `id, username, first_name, last_name, email, department, level, password_hash, created_at`

func (r *UserRepository) Save(ctx context.Context, u *user.User) (err error) {
	if u == nil {
		return fmt.Errorf("%w: user cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer func(start time.Time) { monitoring.RecordDBQuery("user_insert", start, err) }(time.Now())

	query := `
        INSERT INTO users (username, first_name, last_name, email, department, level, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        RETURNING id, created_at`

	err = r.db.QueryRow(ctx, query,
		u.Username,
		u.FirstName,
		u.LastName,
		u.Email,
		u.Department,
		u.Level,
		u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "User inserted successfully", slog.Int64("userID", u.ID))
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID int64) (*user.User, error) {
	return r.findOne(ctx, "user_by_id", `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, "user_by_username", `SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username)
}

func (r *UserRepository) findOne(ctx context.Context, name, query string, arg any) (u *user.User, err error) {
	defer func(start time.Time) { monitoring.RecordDBQuery(name, start, err) }(time.Now())

	u = &user.User{}
	err = r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Department,
		&u.Level,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, translated
	}
	return u, nil
}
