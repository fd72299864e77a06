package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

type storeRepository struct {
	db *sql.DB
}

// NewStoreRepository создаёт PostgreSQL-реализацию StoreRepository.
func NewStoreRepository(store *Store) domain.StoreRepository {
	return &storeRepository{db: store.DB()}
}

const storeColumns = `id, user_id, name, created_at, updated_at`

func scanStore(row rowScanner) (domain.Store, error) {
	var s domain.Store
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *storeRepository) Create(ctx context.Context, store domain.Store) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO stores (`+storeColumns+`)
		VALUES ($1,$2,$3,$4,$5)
	`, store.ID, store.UserID, store.Name, store.CreatedAt, store.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

func (r *storeRepository) Get(ctx context.Context, id string) (domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.one(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
}

// FindByOwner ищет магазин по паре (id, user_id) одним запросом.
func (r *storeRepository) FindByOwner(ctx context.Context, id, userID string) (domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.one(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *storeRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+storeColumns+`
		FROM stores
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	stores := make([]domain.Store, 0)
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store row: %w", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store rows: %w", err)
	}
	return stores, nil
}

func (r *storeRepository) Rename(ctx context.Context, id, userID, name string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE stores
		SET name = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`, name, time.Now().UTC(), id, userID)
	if err != nil {
		return 0, fmt.Errorf("rename store: %w", err)
	}
	return affectedRows(res)
}

func (r *storeRepository) Delete(ctx context.Context, id, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete store: %w", err)
	}
	return affectedRows(res)
}

func (r *storeRepository) one(ctx context.Context, query string, args ...any) (domain.Store, error) {
	s, err := scanStore(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Store{}, domain.ErrStoreNotFound
		}
		return domain.Store{}, fmt.Errorf("select store: %w", err)
	}
	return s, nil
}

var _ domain.StoreRepository = (*storeRepository)(nil)
