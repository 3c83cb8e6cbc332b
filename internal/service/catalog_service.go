package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
)

// ProductPage is one page of the filtered catalog.
type ProductPage struct {
	Count    int64
	Page     int
	PageSize int
	Results  []model.Product
}

func (p *ProductPage) HasNext() bool {
	return int64(p.Page*p.PageSize) < p.Count
}

func (p *ProductPage) HasPrevious() bool {
	return p.Page > 1
}

type ICatalogService interface {
	// ListProducts returns active products matching filter, newest first unless filter.Ordering says otherwise.
	// Page below 1 is treated as 1, page size comes from configuration.
	ListProducts(ctx context.Context, filter model.ProductFilter) (*ProductPage, error)
	// GetProduct errors:
	//   - apperr.NotFoundCode 404: no active product with that slug
	GetProduct(ctx context.Context, slug string) (*model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type CatalogService struct {
	catalog  db.ICatalogRepository
	pageSize int
}

func NewCatalogService(catalog db.ICatalogRepository, pageSize int) *CatalogService {
	mustNotNil(catalog, "catalog service initialization failed: catalog repository cannot be nil")
	if pageSize <= 0 {
		pageSize = constants.DefaultPagingSize
	}
	return &CatalogService{catalog: catalog, pageSize: pageSize}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter model.ProductFilter) (*ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = constants.DefaultPaging
	}
	filter.PageSize = s.pageSize

	products, count, err := s.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return &ProductPage{
		Count:    count,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Results:  products,
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*model.Product, error) {
	return s.catalog.GetProductBySlug(ctx, slug)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

var _ ICatalogService = (*CatalogService)(nil)
