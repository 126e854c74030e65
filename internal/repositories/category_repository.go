package repositories

import (
	"database/sql"
	"fmt"

	"shopcore/internal/models"
)

type CategoryRepository interface {
	Create(cat *models.Category) error
	GetByID(id string) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	List(activeOnly bool) ([]*models.Category, error)
	Update(cat *models.Category) error
	Delete(id string) error
}

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{DB: db}
}

func (r *categoryRepository) Create(cat *models.Category) error {
	const q = `
		INSERT INTO categories (id, name, slug, description, parent_id, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		RETURNING created_at
	`
	if err := r.DB.QueryRow(q,
		cat.ID, cat.Name, cat.Slug, cat.Description, cat.ParentID, cat.IsActive,
	).Scan(&cat.CreatedAt); err != nil {
		return fmt.Errorf("category create: %w", err)
	}
	return nil
}

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	c := &models.Category{}
	var (
		desc   sql.NullString
		parent sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &desc, &parent, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		c.Description = desc.String
	}
	if parent.Valid {
		s := parent.String
		c.ParentID = &s
	}
	return c, nil
}

func (r *categoryRepository) GetByID(id string) (*models.Category, error) {
	const q = `
		SELECT id, name, slug, description, parent_id, is_active, created_at
		FROM categories WHERE id = $1
	`
	c, err := scanCategory(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("category get: %w", err)
	}
	return c, nil
}

func (r *categoryRepository) GetBySlug(slug string) (*models.Category, error) {
	const q = `
		SELECT id, name, slug, description, parent_id, is_active, created_at
		FROM categories WHERE slug = $1
	`
	c, err := scanCategory(r.DB.QueryRow(q, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("category get by slug: %w", err)
	}
	return c, nil
}

func (r *categoryRepository) List(activeOnly bool) ([]*models.Category, error) {
	q := `
		SELECT id, name, slug, description, parent_id, is_active, created_at
		FROM categories
	`
	if activeOnly {
		q += ` WHERE is_active = TRUE`
	}
	q += ` ORDER BY name`

	rows, err := r.DB.Query(q)
	if err != nil {
		return nil, fmt.Errorf("category list: %w", err)
	}
	defer rows.Close()

	var res []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *categoryRepository) Update(cat *models.Category) error {
	const q = `
		UPDATE categories
		SET name=$1, slug=$2, description=$3, parent_id=$4, is_active=$5
		WHERE id=$6
	`
	_, err := r.DB.Exec(q, cat.Name, cat.Slug, cat.Description, cat.ParentID, cat.IsActive, cat.ID)
	if err != nil {
		return fmt.Errorf("category update: %w", err)
	}
	return nil
}

func (r *categoryRepository) Delete(id string) error {
	_, err := r.DB.Exec(`DELETE FROM categories WHERE id=$1`, id)
	return err
}
