package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sagesilk/internal/models"
)

type ProductSQLite struct {
	db *sql.DB
}

func NewProductSQLite(db *sql.DB) *ProductSQLite {
	return &ProductSQLite{db: db}
}

var _ Products = (*ProductSQLite)(nil)

// imageSeparator joins image URLs inside GROUP_CONCAT; URLs never contain a newline.
const imageSeparator = "\n"

const (
	selectProductsSQL = `
		SELECT p.id, p.name, COALESCE(p.description, ''), p.price, p.stock, p.subcategory_id,
		       s.name, c.name, COALESCE(GROUP_CONCAT(i.image_url, char(10)), '')
		FROM products p
		JOIN subcategories s ON p.subcategory_id = s.id
		JOIN categories c ON s.category_id = c.id
		LEFT JOIN product_images i ON p.id = i.product_id`

	groupProductsSQL = ` GROUP BY p.id ORDER BY p.id`

	listProductsSQL              = selectProductsSQL + groupProductsSQL
	listProductsByCategorySQL    = selectProductsSQL + ` WHERE c.name = ? COLLATE NOCASE` + groupProductsSQL
	listProductsBySubcategorySQL = selectProductsSQL + ` WHERE c.name = ? COLLATE NOCASE AND s.name = ? COLLATE NOCASE` + groupProductsSQL
	selectProductByIDSQL         = selectProductsSQL + ` WHERE p.id = ?` + groupProductsSQL

	insertProductSQL      = `INSERT INTO products (name, description, price, stock, subcategory_id) VALUES (?, ?, ?, ?, ?)`
	insertProductImageSQL = `INSERT INTO product_images (product_id, image_url) VALUES (?, ?)`
	subcategoryExistsSQL  = `SELECT EXISTS(SELECT 1 FROM subcategories WHERE id = ?)`
)

func (r *ProductSQLite) List(ctx context.Context) ([]models.Product, error) {
	return r.query(ctx, listProductsSQL)
}

// ListByCategory returns products whose category matches name, case-insensitively.
func (r *ProductSQLite) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.query(ctx, listProductsByCategorySQL, category)
}

func (r *ProductSQLite) ListBySubcategory(ctx context.Context, category, subcategory string) ([]models.Product, error) {
	return r.query(ctx, listProductsBySubcategorySQL, category, subcategory)
}

// GetByID returns (nil, nil) when the product does not exist.
func (r *ProductSQLite) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	out, err := r.query(ctx, selectProductByIDSQL, id)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// Create inserts the product and its images atomically and returns the product ID.
func (r *ProductSQLite) Create(ctx context.Context, p models.NewProduct) (int64, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, subcategoryExistsSQL, p.SubcategoryID)
		if err != nil {
			return fmt.Errorf("check subcategory %d: %w", p.SubcategoryID, err)
		}
		if !ok {
			return ErrUnknownSubcategory
		}

		res, err := tx.ExecContext(ctx, insertProductSQL, p.Name, p.Description, p.Price, p.Stock, p.SubcategoryID)
		if err != nil {
			return fmt.Errorf("insert product %q: %w", p.Name, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("get last insert id for product %q: %w", p.Name, err)
		}

		for _, img := range p.Images {
			if _, err := tx.ExecContext(ctx, insertProductImageSQL, id, img); err != nil {
				return fmt.Errorf("insert image for product %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ProductSQLite) query(ctx context.Context, q string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	out := make([]models.Product, 0, 16)
	for rows.Next() {
		var (
			p      models.Product
			images string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.SubcategoryID,
			&p.SubcategoryName, &p.CategoryName, &images); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Images = splitImages(images)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func splitImages(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, imageSeparator)
}
