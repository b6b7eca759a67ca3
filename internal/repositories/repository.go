package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dms/internal/store"
)

// DeletedAtColumn marks soft-deleted rows in tables that support it.
const DeletedAtColumn = "deleted_at"

// Record is a row type with a store-assigned integer primary key.
type Record interface {
	PrimaryKey() uint
}

// Table describes the physical table behind a Repository.
type Table struct {
	Name string
	// Columns projected by every read. Empty selects all columns.
	Columns []string
	// SoftDelete reports whether the table carries a deleted_at column.
	SoftDelete bool
	// Timestamps reports whether updates must stamp updated_at.
	Timestamps bool
}

// Repository implements table-agnostic create/read/exists/update/delete over
// the store. Entity repositories compose it and add their own query shapes.
type Repository[T Record] struct {
	store *store.Store
	table Table
}

// NewRepository creates a Repository for rows of type T stored in table.
func NewRepository[T Record](s *store.Store, table Table) *Repository[T] {
	return &Repository[T]{store: s, table: table}
}

// Table returns the table description.
func (r *Repository[T]) Table() Table { return r.table }

func (r *Repository[T]) query(db *gorm.DB) *gorm.DB {
	q := db.Table(r.table.Name)
	if len(r.table.Columns) > 0 {
		q = q.Select(r.table.Columns)
	}
	return q
}

// Create inserts row and returns the inserted row projected to the table columns.
func (r *Repository[T]) Create(ctx context.Context, row *T) (*T, error) {
	db, cancel := r.store.DB(ctx)
	defer cancel()

	if err := db.Table(r.table.Name).Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, store.Classify("create "+r.table.Name, err)
	}
	rows, err := r.Read(ctx, Where{Eq("id", (*row).PrimaryKey())}, Page{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return row, nil
	}
	return &rows[0], nil
}

// Read returns every row matching where, ordered by id and bounded by page.
// It returns an empty slice when nothing matches.
func (r *Repository[T]) Read(ctx context.Context, where Where, page Page) ([]T, error) {
	db, cancel := r.store.DB(ctx)
	defer cancel()

	rows := make([]T, 0)
	q := page.apply(where.apply(r.query(db))).Order("id")
	if err := q.Find(&rows).Error; err != nil {
		return nil, store.Classify("read "+r.table.Name, err)
	}
	return rows, nil
}

// First returns the first row matching where, or nil when nothing matches.
func (r *Repository[T]) First(ctx context.Context, where Where) (*T, error) {
	rows, err := r.Read(ctx, where, Page{Limit: 1})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// Exists reports whether at least one active row matches where. On tables
// with soft deletion a soft-deleted match does not count.
func (r *Repository[T]) Exists(ctx context.Context, where Where) (bool, error) {
	if r.table.SoftDelete {
		where = where.And(IsNull(DeletedAtColumn))
	}
	db, cancel := r.store.DB(ctx)
	defer cancel()

	var count int64
	if err := where.apply(db.Table(r.table.Name)).Count(&count).Error; err != nil {
		return false, store.Classify("exists "+r.table.Name, err)
	}
	return count > 0, nil
}

// Update applies values to every row matching where and returns the updated
// rows. Matching rows are resolved to ids first so the result is stable even
// when values change a column used in where.
func (r *Repository[T]) Update(ctx context.Context, where Where, values map[string]any) ([]T, error) {
	var updated []T
	err := r.store.WithinTransaction(ctx, func(ctx context.Context) error {
		ids, err := r.ids(ctx, where)
		if err != nil || len(ids) == 0 {
			updated = make([]T, 0)
			return err
		}

		set := make(map[string]any, len(values)+1)
		for k, v := range values {
			set[k] = v
		}
		if _, ok := set["updated_at"]; r.table.Timestamps && !ok {
			set["updated_at"] = time.Now().UTC()
		}

		db, cancel := r.store.DB(ctx)
		defer cancel()
		if err := db.Table(r.table.Name).Where("id IN ?", ids).Updates(set).Error; err != nil {
			return store.Classify("update "+r.table.Name, err)
		}

		updated, err = r.Read(ctx, Where{Eq("id", ids)}, Page{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes every row matching where and returns the number removed.
func (r *Repository[T]) Delete(ctx context.Context, where Where) (int64, error) {
	db, cancel := r.store.DB(ctx)
	defer cancel()

	var zero T
	res := where.apply(db.Table(r.table.Name)).Delete(&zero)
	if res.Error != nil {
		return 0, store.Classify("delete "+r.table.Name, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Repository[T]) ids(ctx context.Context, where Where) ([]uint, error) {
	db, cancel := r.store.DB(ctx)
	defer cancel()

	var ids []uint
	if err := where.apply(db.Table(r.table.Name)).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, store.Classify("read "+r.table.Name, err)
	}
	return ids, nil
}
