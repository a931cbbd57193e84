package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/product"
)

const productColumns = "id, name, price, stock, category, description, image, created_at"

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// sortColumns whitelists user-supplied sort keys against the schema.
var sortColumns = map[string]string{
	"name":       "name ASC",
	"-name":      "name DESC",
	"price":      "price ASC",
	"-price":     "price DESC",
	"created_at": "created_at ASC",
	"":           "created_at DESC",
}

// List returns a page of products matching the filter, plus the total number
// of matching rows.
func (r *ProductRepository) List(ctx context.Context, params product.ListParams) ([]product.Product, int, error) {
	params.Normalize()

	var (
		where []string
		args  []any
	)
	if params.Category != "" {
		args = append(args, params.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM products"+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	orderBy, ok := sortColumns[params.Sort]
	if !ok {
		orderBy = sortColumns[""]
	}

	args = append(args, params.Limit, params.Offset())
	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY %s LIMIT $%d OFFSET $%d",
		productColumns, filter, orderBy, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}
	return products, total, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (id, name, price, stock, category, description, image)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		p.ID, p.Name, p.Price, p.Stock, p.Category, p.Description, p.Image,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Upsert inserts a product or refreshes its catalog fields when it already
// exists. Stock is only set on first insert so reseeding never clobbers
// inventory adjusted by checkouts.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, name, price, stock, category, description, image)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   price = EXCLUDED.price,
		   category = EXCLUDED.category,
		   description = EXCLUDED.description,
		   image = EXCLUDED.image`,
		p.ID, p.Name, p.Price, p.Stock, p.Category, p.Description, p.Image,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

// Update applies the non-nil fields of upd and returns the updated row.
func (r *ProductRepository) Update(ctx context.Context, id string, upd product.Update) (*product.Product, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Price != nil {
		set("price", *upd.Price)
	}
	if upd.Stock != nil {
		set("stock", *upd.Stock)
	}
	if upd.Category != nil {
		set("category", *upd.Category)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Image != nil {
		set("image", *upd.Image)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), productColumns)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating product %q: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("updating product %q: %w", id, err)
	}
	return &p, nil
}

// Delete removes a product from the catalog.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// AdjustStock applies a signed stock delta as a single conditional update.
// A decrement only succeeds when enough stock remains, which serializes
// concurrent checkouts on the row and keeps stock from ever going negative.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE products SET stock = stock + $2 WHERE id = $1 AND stock + $2 >= 0",
		id, delta)
	if err != nil {
		return fmt.Errorf("adjusting stock for %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)", id).Scan(&exists); err != nil {
			return fmt.Errorf("adjusting stock for %q: %w", id, err)
		}
		if !exists {
			return product.ErrNotFound
		}
		return product.ErrInsufficientStock
	}
	return nil
}

// ListLowStock returns products at or below the stock threshold.
func (r *ProductRepository) ListLowStock(ctx context.Context, threshold int) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE stock <= $1 ORDER BY stock, name", threshold)
	if err != nil {
		return nil, fmt.Errorf("listing low stock: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Count returns the total number of catalog products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Stock,
		&p.Category, &p.Description, &p.Image, &p.CreatedAt,
	)
	return p, err
}
