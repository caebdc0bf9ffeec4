package postgres

import (
	"context"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/infrastructure/monitoring"
	"fmt"
	"log/slog"
	"time"
)

type ReferenceRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.ReferenceRepository = (*ReferenceRepository)(nil)

func NewReferenceRepository(db DBPool, logger *slog.Logger) *ReferenceRepository {
	if db == nil {
		panic("DBPool cannot be nil for ReferenceRepository")
	}
	return &ReferenceRepository{db: db, logger: logger.With("component", "ReferenceRepository")}
}

func (r *ReferenceRepository) List(ctx context.Context, kind customer.ReferenceKind) (items []customer.ReferenceItem, err error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	defer func(start time.Time) { monitoring.RecordDBQuery("reference_list", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT id, name FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	items = []customer.ReferenceItem{}
	for rows.Next() {
		var it customer.ReferenceItem
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, translateDBError(err, r.logger)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return items, nil
}

func (r *ReferenceRepository) Exists(ctx context.Context, kind customer.ReferenceKind, id int64) (exists bool, err error) {
	table, err := referenceTable(kind)
	if err != nil {
		return false, err
	}
	defer func(start time.Time) { monitoring.RecordDBQuery("reference_exists", start, err) }(time.Now())

	if err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, table), id).Scan(&exists); err != nil {
		return false, translateDBError(err, r.logger)
	}
	return exists, nil
}
