package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"shopcore/internal/models"
)

type ProductRepository interface {
	Create(p *models.Product) error
	GetByID(id string) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	List(filter models.ProductFilter) ([]*models.Product, error)
	Update(p *models.Product) error
	Delete(id string) error

	CreateVariant(v *models.ProductVariant) error
	GetVariant(id string) (*models.ProductVariant, error)
	ListVariants(productID string) ([]*models.ProductVariant, error)
	UpdateVariant(v *models.ProductVariant) error
	DeleteVariant(id string) error

	// low-stock sweep
	ListLowStock(threshold int) ([]*models.ProductVariant, error)
	MarkLowStockAlerted(variantID string) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

func rawOrEmptyObject(m json.RawMessage) []byte {
	if len(m) == 0 {
		return []byte(`{}`)
	}
	return m
}

func (r *productRepository) Create(p *models.Product) error {
	const q = `
		INSERT INTO products (
			id, name, slug, description, short_description, sku,
			price, compare_price, attributes, is_active, is_digital,
			weight, dimensions, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())
		RETURNING created_at, updated_at
	`
	if err := r.DB.QueryRow(q,
		p.ID, p.Name, p.Slug, p.Description, p.ShortDescription, p.SKU,
		p.Price, p.ComparePrice, rawOrEmptyObject(p.Attributes), p.IsActive, p.IsDigital,
		p.Weight, rawOrEmptyObject(p.Dimensions),
	).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("product create: %w", err)
	}
	return r.replaceCategories(p.ID, p.CategoryIDs)
}

func (r *productRepository) replaceCategories(productID string, categoryIDs []string) error {
	if _, err := r.DB.Exec(`DELETE FROM product_categories WHERE product_id=$1`, productID); err != nil {
		return fmt.Errorf("product categories clear: %w", err)
	}
	for _, cid := range categoryIDs {
		if _, err := r.DB.Exec(
			`INSERT INTO product_categories (product_id, category_id) VALUES ($1,$2)`,
			productID, cid,
		); err != nil {
			return fmt.Errorf("product categories set: %w", err)
		}
	}
	return nil
}

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	var (
		comparePrice sql.NullFloat64
		weight       sql.NullFloat64
		attrs        []byte
		dims         []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.ShortDescription, &p.SKU,
		&p.Price, &comparePrice, &attrs, &p.IsActive, &p.IsDigital,
		&weight, &dims, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if comparePrice.Valid {
		v := comparePrice.Float64
		p.ComparePrice = &v
	}
	if weight.Valid {
		v := weight.Float64
		p.Weight = &v
	}
	p.Attributes = attrs
	p.Dimensions = dims
	return p, nil
}

const productColumns = `
	id, name, slug, description, short_description, sku,
	price, compare_price, attributes, is_active, is_digital,
	weight, dimensions, created_at, updated_at
`

func (r *productRepository) GetByID(id string) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("product get: %w", err)
	}
	if err := r.attachRelations(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) GetBySlug(slug string) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	p, err := scanProduct(r.DB.QueryRow(q, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("product get by slug: %w", err)
	}
	if err := r.attachRelations(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) attachRelations(p *models.Product) error {
	rows, err := r.DB.Query(`SELECT category_id FROM product_categories WHERE product_id=$1`, p.ID)
	if err != nil {
		return fmt.Errorf("product categories load: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cid string
		if err := rows.Scan(&cid); err != nil {
			return err
		}
		p.CategoryIDs = append(p.CategoryIDs, cid)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	variants, err := r.ListVariants(p.ID)
	if err != nil {
		return err
	}
	p.Variants = variants
	return nil
}

// List applies the public catalog filters. Conditions are ANDed; the search
// term matches name or sku case-insensitively.
func (r *productRepository) List(filter models.ProductFilter) ([]*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p`
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.CategorySlug != "" {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM product_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.product_id = p.id AND c.slug = `+arg(filter.CategorySlug)+`)`)
	}
	if filter.Search != "" {
		ph := arg("%" + filter.Search + "%")
		conds = append(conds, `(p.name ILIKE `+ph+` OR p.sku ILIKE `+ph+`)`)
	}
	if filter.PriceMin != nil {
		conds = append(conds, `p.price >= `+arg(*filter.PriceMin))
	}
	if filter.PriceMax != nil {
		conds = append(conds, `p.price <= `+arg(*filter.PriceMax))
	}
	if filter.ActiveOnly {
		conds = append(conds, `p.is_active = TRUE`)
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	q += ` ORDER BY p.name`
	if filter.Limit > 0 {
		q += ` LIMIT ` + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		q += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("product list: %w", err)
	}
	defer rows.Close()

	var res []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *productRepository) Update(p *models.Product) error {
	const q = `
		UPDATE products
		SET name=$1, slug=$2, description=$3, short_description=$4, sku=$5,
		    price=$6, compare_price=$7, attributes=$8, is_active=$9,
		    is_digital=$10, weight=$11, dimensions=$12, updated_at=NOW()
		WHERE id=$13
	`
	if _, err := r.DB.Exec(q,
		p.Name, p.Slug, p.Description, p.ShortDescription, p.SKU,
		p.Price, p.ComparePrice, rawOrEmptyObject(p.Attributes), p.IsActive,
		p.IsDigital, p.Weight, rawOrEmptyObject(p.Dimensions), p.ID,
	); err != nil {
		return fmt.Errorf("product update: %w", err)
	}
	return r.replaceCategories(p.ID, p.CategoryIDs)
}

func (r *productRepository) Delete(id string) error {
	_, err := r.DB.Exec(`DELETE FROM products WHERE id=$1`, id)
	return err
}

// ===== variants =====

const variantColumns = `
	id, product_id, name, sku, price, attributes, stock,
	is_active, low_stock_alert_sent, created_at
`

func scanVariant(row interface{ Scan(...any) error }) (*models.ProductVariant, error) {
	v := &models.ProductVariant{}
	var attrs []byte
	err := row.Scan(
		&v.ID, &v.ProductID, &v.Name, &v.SKU, &v.Price, &attrs, &v.Stock,
		&v.IsActive, &v.LowStockAlertSent, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Attributes = attrs
	return v, nil
}

func (r *productRepository) CreateVariant(v *models.ProductVariant) error {
	const q = `
		INSERT INTO product_variants (
			id, product_id, name, sku, price, attributes, stock,
			is_active, low_stock_alert_sent, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE,NOW())
		RETURNING created_at
	`
	if err := r.DB.QueryRow(q,
		v.ID, v.ProductID, v.Name, v.SKU, v.Price,
		rawOrEmptyObject(v.Attributes), v.Stock, v.IsActive,
	).Scan(&v.CreatedAt); err != nil {
		return fmt.Errorf("variant create: %w", err)
	}
	return nil
}

func (r *productRepository) GetVariant(id string) (*models.ProductVariant, error) {
	q := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1`
	v, err := scanVariant(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("variant get: %w", err)
	}
	return v, nil
}

func (r *productRepository) ListVariants(productID string) ([]*models.ProductVariant, error) {
	q := `SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = $1 ORDER BY name`
	rows, err := r.DB.Query(q, productID)
	if err != nil {
		return nil, fmt.Errorf("variant list: %w", err)
	}
	defer rows.Close()

	var res []*models.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func (r *productRepository) UpdateVariant(v *models.ProductVariant) error {
	const q = `
		UPDATE product_variants
		SET name=$1, sku=$2, price=$3, attributes=$4, stock=$5, is_active=$6,
		    low_stock_alert_sent=$7
		WHERE id=$8
	`
	if _, err := r.DB.Exec(q,
		v.Name, v.SKU, v.Price, rawOrEmptyObject(v.Attributes), v.Stock, v.IsActive,
		v.LowStockAlertSent, v.ID,
	); err != nil {
		return fmt.Errorf("variant update: %w", err)
	}
	return nil
}

func (r *productRepository) DeleteVariant(id string) error {
	_, err := r.DB.Exec(`DELETE FROM product_variants WHERE id=$1`, id)
	return err
}

func (r *productRepository) ListLowStock(threshold int) ([]*models.ProductVariant, error) {
	q := `SELECT ` + variantColumns + `
		FROM product_variants
		WHERE stock <= $1 AND low_stock_alert_sent = FALSE AND is_active = TRUE`
	rows, err := r.DB.Query(q, threshold)
	if err != nil {
		return nil, fmt.Errorf("variant low stock list: %w", err)
	}
	defer rows.Close()

	var res []*models.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func (r *productRepository) MarkLowStockAlerted(variantID string) error {
	_, err := r.DB.Exec(
		`UPDATE product_variants SET low_stock_alert_sent = TRUE WHERE id=$1`,
		variantID,
	)
	return err
}
