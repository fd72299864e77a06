package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// catalogTable описывает отображение простой сущности магазина на таблицу.
// Первые две колонки всегда id и store_id, последние две created_at и updated_at.
type catalogTable[T domain.Scoped] struct {
	name     string
	fields   []string
	values   func(T) []any
	scan     func(rowScanner) (T, error)
	notFound error
}

func (t catalogTable[T]) columns() []string {
	cols := append([]string{"id", "store_id"}, t.fields...)
	return append(cols, "created_at", "updated_at")
}

type catalogRepository[T domain.Scoped] struct {
	db    *sql.DB
	table catalogTable[T]
}

// NewBillboardRepository создаёт PostgreSQL-репозиторий билбордов.
func NewBillboardRepository(store *Store) domain.BillboardRepository {
	return &catalogRepository[domain.Billboard]{db: store.DB(), table: catalogTable[domain.Billboard]{
		name:   "billboards",
		fields: []string{"label", "image_url"},
		values: func(b domain.Billboard) []any {
			return []any{b.ID, b.StoreID, b.Label, b.ImageURL, b.CreatedAt, b.UpdatedAt}
		},
		scan: func(row rowScanner) (domain.Billboard, error) {
			var b domain.Billboard
			err := row.Scan(&b.ID, &b.StoreID, &b.Label, &b.ImageURL, &b.CreatedAt, &b.UpdatedAt)
			return b, err
		},
		notFound: domain.ErrBillboardNotFound,
	}}
}

// NewCategoryRepository создаёт PostgreSQL-репозиторий категорий.
func NewCategoryRepository(store *Store) domain.CategoryRepository {
	return &catalogRepository[domain.Category]{db: store.DB(), table: catalogTable[domain.Category]{
		name:   "categories",
		fields: []string{"billboard_id", "name"},
		values: func(c domain.Category) []any {
			return []any{c.ID, c.StoreID, c.BillboardID, c.Name, c.CreatedAt, c.UpdatedAt}
		},
		scan: func(row rowScanner) (domain.Category, error) {
			var c domain.Category
			err := row.Scan(&c.ID, &c.StoreID, &c.BillboardID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
			return c, err
		},
		notFound: domain.ErrCategoryNotFound,
	}}
}

// NewSizeRepository создаёт PostgreSQL-репозиторий размеров.
func NewSizeRepository(store *Store) domain.SizeRepository {
	return &catalogRepository[domain.Size]{db: store.DB(), table: catalogTable[domain.Size]{
		name:   "sizes",
		fields: []string{"name", "value"},
		values: func(s domain.Size) []any {
			return []any{s.ID, s.StoreID, s.Name, s.Value, s.CreatedAt, s.UpdatedAt}
		},
		scan: func(row rowScanner) (domain.Size, error) {
			var s domain.Size
			err := row.Scan(&s.ID, &s.StoreID, &s.Name, &s.Value, &s.CreatedAt, &s.UpdatedAt)
			return s, err
		},
		notFound: domain.ErrSizeNotFound,
	}}
}

// NewColorRepository создаёт PostgreSQL-репозиторий цветов.
func NewColorRepository(store *Store) domain.ColorRepository {
	return &catalogRepository[domain.Color]{db: store.DB(), table: catalogTable[domain.Color]{
		name:   "colors",
		fields: []string{"name", "value"},
		values: func(c domain.Color) []any {
			return []any{c.ID, c.StoreID, c.Name, c.Value, c.CreatedAt, c.UpdatedAt}
		},
		scan: func(row rowScanner) (domain.Color, error) {
			var c domain.Color
			err := row.Scan(&c.ID, &c.StoreID, &c.Name, &c.Value, &c.CreatedAt, &c.UpdatedAt)
			return c, err
		},
		notFound: domain.ErrColorNotFound,
	}}
}

func (r *catalogRepository[T]) Create(ctx context.Context, entity T) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cols := r.table.columns()
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		r.table.name, strings.Join(cols, ", "), placeholders(1, len(cols)))
	if _, err := r.db.ExecContext(ctx, query, r.table.values(entity)...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("insert into %s: %w", r.table.name, err)
	}
	return nil
}

func (r *catalogRepository[T]) Get(ctx context.Context, storeID, id string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND store_id = $2`,
		strings.Join(r.table.columns(), ", "), r.table.name)
	entity, err := r.table.scan(r.db.QueryRowContext(ctx, query, id, storeID))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, r.table.notFound
		}
		return zero, fmt.Errorf("select from %s: %w", r.table.name, err)
	}
	return entity, nil
}

func (r *catalogRepository[T]) List(ctx context.Context, storeID string) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE store_id = $1 ORDER BY created_at DESC, id DESC`,
		strings.Join(r.table.columns(), ", "), r.table.name)
	rows, err := r.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table.name, err)
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		entity, err := r.table.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", r.table.name, err)
		}
		result = append(result, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", r.table.name, err)
	}
	return result, nil
}

// Update перезаписывает поля сущности; id, store_id и created_at не меняются.
func (r *catalogRepository[T]) Update(ctx context.Context, entity T) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	values := r.table.values(entity)
	sets := make([]string, 0, len(r.table.fields)+1)
	args := make([]any, 0, len(r.table.fields)+3)
	for i, field := range r.table.fields {
		sets = append(sets, fmt.Sprintf("%s = $%d", field, i+1))
		args = append(args, values[i+2])
	}
	n := len(r.table.fields)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", n+1))
	args = append(args, values[len(values)-1], entity.EntityID(), entity.ScopeID())

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d AND store_id = $%d`,
		r.table.name, strings.Join(sets, ", "), n+2, n+3)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table.name, err)
	}
	affected, err := affectedRows(res)
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.table.notFound
	}
	return nil
}

func (r *catalogRepository[T]) Delete(ctx context.Context, storeID, id string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND store_id = $2`, r.table.name)
	res, err := r.db.ExecContext(ctx, query, id, storeID)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", r.table.name, err)
	}
	return affectedRows(res)
}

// placeholders возвращает "$from, ..., $(from+n-1)".
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

var (
	_ domain.BillboardRepository = (*catalogRepository[domain.Billboard])(nil)
	_ domain.CategoryRepository  = (*catalogRepository[domain.Category])(nil)
	_ domain.SizeRepository      = (*catalogRepository[domain.Size])(nil)
	_ domain.ColorRepository     = (*catalogRepository[domain.Color])(nil)
)
