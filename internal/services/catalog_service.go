package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
	"shopcore/internal/utils"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrVariantNotFound  = errors.New("product variant not found")
	ErrSlugTaken        = errors.New("slug already in use")
)

type CatalogService interface {
	CreateCategory(cat *models.Category) error
	GetCategory(id string) (*models.Category, error)
	GetCategoryBySlug(slug string) (*models.Category, error)
	ListCategories(activeOnly bool) ([]*models.Category, error)
	UpdateCategory(cat *models.Category) error
	DeleteCategory(id string) error

	CreateProduct(p *models.Product) error
	GetProduct(id string) (*models.Product, error)
	GetProductBySlug(slug string) (*models.Product, error)
	ListProducts(filter models.ProductFilter) ([]*models.Product, error)
	UpdateProduct(p *models.Product) error
	DeleteProduct(id string) error

	CreateVariant(v *models.ProductVariant) error
	GetVariant(id string) (*models.ProductVariant, error)
	UpdateVariant(v *models.ProductVariant) error
	DeleteVariant(id string) error
}

type catalogService struct {
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
}

func NewCatalogService(categories repositories.CategoryRepository, products repositories.ProductRepository) CatalogService {
	return &catalogService{categories: categories, products: products}
}

func slugFor(name, explicit string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	return utils.Slugify(name)
}

func (s *catalogService) CreateCategory(cat *models.Category) error {
	cat.ID = uuid.NewString()
	cat.Slug = slugFor(cat.Name, cat.Slug)
	if existing, err := s.categories.GetBySlug(cat.Slug); err != nil {
		return err
	} else if existing != nil {
		return ErrSlugTaken
	}
	return s.categories.Create(cat)
}

func (s *catalogService) GetCategory(id string) (*models.Category, error) {
	return s.categories.GetByID(id)
}

func (s *catalogService) GetCategoryBySlug(slug string) (*models.Category, error) {
	return s.categories.GetBySlug(slug)
}

func (s *catalogService) ListCategories(activeOnly bool) ([]*models.Category, error) {
	return s.categories.List(activeOnly)
}

func (s *catalogService) UpdateCategory(cat *models.Category) error {
	existing, err := s.categories.GetByID(cat.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCategoryNotFound
	}
	cat.Slug = slugFor(cat.Name, cat.Slug)
	return s.categories.Update(cat)
}

func (s *catalogService) DeleteCategory(id string) error {
	return s.categories.Delete(id)
}

func (s *catalogService) CreateProduct(p *models.Product) error {
	p.ID = uuid.NewString()
	p.Slug = slugFor(p.Name, p.Slug)
	if existing, err := s.products.GetBySlug(p.Slug); err != nil {
		return err
	} else if existing != nil {
		return ErrSlugTaken
	}
	if err := s.products.Create(p); err != nil {
		return err
	}
	for _, v := range p.Variants {
		v.ID = uuid.NewString()
		v.ProductID = p.ID
		if err := s.products.CreateVariant(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *catalogService) GetProduct(id string) (*models.Product, error) {
	return s.products.GetByID(id)
}

func (s *catalogService) GetProductBySlug(slug string) (*models.Product, error) {
	return s.products.GetBySlug(slug)
}

func (s *catalogService) ListProducts(filter models.ProductFilter) ([]*models.Product, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.products.List(filter)
}

func (s *catalogService) UpdateProduct(p *models.Product) error {
	existing, err := s.products.GetByID(p.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrProductNotFound
	}
	p.Slug = slugFor(p.Name, p.Slug)
	return s.products.Update(p)
}

func (s *catalogService) DeleteProduct(id string) error {
	return s.products.Delete(id)
}

func (s *catalogService) CreateVariant(v *models.ProductVariant) error {
	product, err := s.products.GetByID(v.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	v.ID = uuid.NewString()
	return s.products.CreateVariant(v)
}

func (s *catalogService) GetVariant(id string) (*models.ProductVariant, error) {
	return s.products.GetVariant(id)
}

func (s *catalogService) UpdateVariant(v *models.ProductVariant) error {
	existing, err := s.products.GetVariant(v.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrVariantNotFound
	}
	// Restocking re-arms the low-stock alert for the next sweep.
	v.LowStockAlertSent = existing.LowStockAlertSent
	if v.Stock > existing.Stock {
		v.LowStockAlertSent = false
	}
	return s.products.UpdateVariant(v)
}

func (s *catalogService) DeleteVariant(id string) error {
	return s.products.DeleteVariant(id)
}
