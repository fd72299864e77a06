package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

const productColumns = `id, store_id, category_id, size_id, color_id, name, price, quantity,
	is_featured, is_archived, created_at, updated_at`

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.StoreID, &p.CategoryID, &p.SizeID, &p.ColorID, &p.Name, &p.Price, &p.Quantity,
		&p.IsFeatured, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`,
			product.ID, product.StoreID, product.CategoryID, product.SizeID, product.ColorID,
			product.Name, product.Price, product.Quantity, product.IsFeatured, product.IsArchived,
			product.CreatedAt, product.UpdatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateID
			}
			return fmt.Errorf("insert product: %w", err)
		}
		return insertImages(ctx, tx, product.ID, product.Images)
	})
}

func (r *productRepository) Get(ctx context.Context, storeID, id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	product, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1 AND store_id = $2
	`, id, storeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	products := []domain.Product{product}
	if err := r.attachImages(ctx, products); err != nil {
		return domain.Product{}, err
	}
	return products[0], nil
}

func (r *productRepository) List(ctx context.Context, storeID string, filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	conds := []string{"store_id = $1"}
	args := []any{storeID}
	addEq := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addEq("category_id", filter.CategoryID)
	addEq("color_id", filter.ColorID)
	addEq("size_id", filter.SizeID)
	if filter.FeaturedOnly {
		conds = append(conds, "is_featured = TRUE")
	}
	if !filter.IncludeArchived {
		conds = append(conds, "is_archived = FALSE")
	}

	return r.query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY created_at DESC, id DESC
	`, args...)
}

func (r *productRepository) FindByIDs(ctx context.Context, storeID string, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE store_id = $1 AND id = ANY($2)
	`, storeID, ids)
}

// Update перезаписывает поля товара и заменяет изображения в одной транзакции.
func (r *productRepository) Update(ctx context.Context, product domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET category_id = $1,
			    size_id = $2,
			    color_id = $3,
			    name = $4,
			    price = $5,
			    quantity = $6,
			    is_featured = $7,
			    is_archived = $8,
			    updated_at = $9
			WHERE id = $10 AND store_id = $11
		`,
			product.CategoryID, product.SizeID, product.ColorID, product.Name, product.Price,
			product.Quantity, product.IsFeatured, product.IsArchived, product.UpdatedAt,
			product.ID, product.StoreID,
		)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		affected, err := affectedRows(res)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrProductNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE product_id = $1`, product.ID); err != nil {
			return fmt.Errorf("delete product images: %w", err)
		}
		return insertImages(ctx, tx, product.ID, product.Images)
	})
}

func (r *productRepository) Delete(ctx context.Context, storeID, id string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1 AND store_id = $2`, id, storeID)
	if err != nil {
		return 0, fmt.Errorf("delete product: %w", err)
	}
	return affectedRows(res)
}

func (r *productRepository) ArchiveByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET is_archived = TRUE, updated_at = $1
		WHERE id = ANY($2)
	`, time.Now().UTC(), ids)
	if err != nil {
		return 0, fmt.Errorf("archive products: %w", err)
	}
	return affectedRows(res)
}

func (r *productRepository) CountAvailable(ctx context.Context, storeID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products WHERE store_id = $1 AND is_archived = FALSE
	`, storeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count available products: %w", err)
	}
	return count, nil
}

func (r *productRepository) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	if err := r.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// attachImages загружает изображения всех товаров одним запросом.
func (r *productRepository) attachImages(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, 0, len(products))
	index := make(map[string]int, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
		index[products[i].ID] = i
		products[i].Images = []domain.Image{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, url, created_at
		FROM images
		WHERE product_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("load product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.CreatedAt); err != nil {
			return fmt.Errorf("scan product image: %w", err)
		}
		i := index[img.ProductID]
		products[i].Images = append(products[i].Images, img)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate product images: %w", err)
	}
	return nil
}

func insertImages(ctx context.Context, tx *sql.Tx, productID string, images []domain.Image) error {
	for _, img := range images {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO images (id, product_id, url, created_at)
			VALUES ($1,$2,$3,$4)
		`, img.ID, productID, img.URL, img.CreatedAt); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}
	return nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
