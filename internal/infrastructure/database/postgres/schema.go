package postgres

import (
	"context"
	"crm-rep/internal/domain/customer"
	"fmt"
	"log/slog"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		first_name VARCHAR(150) NOT NULL DEFAULT '',
		last_name VARCHAR(150) NOT NULL DEFAULT '',
		email VARCHAR(254) NOT NULL DEFAULT '',
		department VARCHAR(100) NOT NULL DEFAULT '',
		level INTEGER NOT NULL DEFAULT 1,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS subscription_types (id BIGSERIAL PRIMARY KEY, name VARCHAR(100) NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS subscription_durations (id BIGSERIAL PRIMARY KEY, name VARCHAR(100) NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS payment_types (id BIGSERIAL PRIMARY KEY, name VARCHAR(100) NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		rep_id BIGINT NOT NULL REFERENCES users(id),
		username VARCHAR(150) NOT NULL UNIQUE,
		first_name VARCHAR(150) NOT NULL,
		last_name VARCHAR(150) NOT NULL,
		identification VARCHAR(100),
		tax_office VARCHAR(150),
		address TEXT NOT NULL,
		subscription_type_id BIGINT REFERENCES subscription_types(id),
		subscription_duration_id BIGINT REFERENCES subscription_durations(id),
		subscription_start_date DATE NOT NULL,
		payment_type_id BIGINT REFERENCES payment_types(id),
		amount NUMERIC(10, 2) NOT NULL,
		description TEXT,
		agreement_status VARCHAR(20) NOT NULL DEFAULT 'beklemede',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables the repositories expect if they are missing.
func EnsureSchema(ctx context.Context, db DBPool, logger *slog.Logger) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return translateDBError(err, logger)
		}
	}
	logger.InfoContext(ctx, "Database schema ensured", slog.Int("statements", len(schemaStatements)))
	return nil
}

// referenceTable maps a lookup kind to its table; the names never come from
// user input.
func referenceTable(kind customer.ReferenceKind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown reference kind %s", kind)
	}
	return kind.String(), nil
}

// SeedReferences inserts lookup rows, keeping any that already exist.
func SeedReferences(ctx context.Context, db DBPool, refs map[customer.ReferenceKind][]customer.ReferenceItem, logger *slog.Logger) error {
	for kind, items := range refs {
		table, err := referenceTable(kind)
		if err != nil {
			return err
		}
		for _, it := range items {
			query := fmt.Sprintf(`INSERT INTO %s (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, table)
			if _, err := db.Exec(ctx, query, it.ID, it.Name); err != nil {
				return translateDBError(err, logger)
			}
		}
	}
	return nil
}
