package db

import (
	"context"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// read side of the catalog, writes only exist for seeding and admin tooling
type CatalogRepo struct {
	db *DbDao
}

func NewCatalogRepo(db *DbDao) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// filtered builds the joined, filtered product query shared by count and page.
func (r *CatalogRepo) filtered(ctx context.Context, f model.ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Product{}).
		Joins("JOIN categories ON categories.id = products.category_id").
		Joins("LEFT JOIN teams ON teams.id = products.team_id").
		Where("products.is_active = ?", true)

	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("(products.title ILIKE ? OR products.slug ILIKE ? OR teams.name ILIKE ? OR categories.name ILIKE ?)",
			like, like, like, like)
	}
	if f.CategorySlug != "" {
		q = q.Where("categories.slug = ?", f.CategorySlug)
	}
	if f.TeamID != nil {
		q = q.Where("products.team_id = ?", *f.TeamID)
	}
	if f.LeagueID != nil {
		q = q.Where("teams.league_id = ?", *f.LeagueID)
	}
	if f.PriceMin != nil {
		q = q.Where("products.price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("products.price <= ?", *f.PriceMax)
	}
	return q
}

// Read - filtered, ordered page of active products with category, team.league and variants
func (r *CatalogRepo) ListProducts(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPagingSize
	}
	f.PageSize = pageSize

	var products []model.Product
	err := r.filtered(ctx, f).
		Select("products.*").
		Preload("Category").
		Preload("Team.League").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("variants.id") }).
		Order(constants.OrderClause(f.Ordering)).
		Order("products.id").
		Offset(f.Offset()).
		Limit(pageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Read - active product by slug
func (r *CatalogRepo) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Team.League").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("variants.id") }).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		return nil, translateErr(err, "product")
	}
	return &product, nil
}

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

// Read - variant with its product
func (r *CatalogRepo) GetVariant(ctx context.Context, id uint) (*model.Variant, error) {
	var variant model.Variant
	err := r.db.WithContext(ctx).Preload("Product").First(&variant, id).Error
	if err != nil {
		return nil, translateErr(err, "variant")
	}
	return &variant, nil
}

func (r *CatalogRepo) CreateLeague(ctx context.Context, league *model.League) error {
	return translateErr(r.db.WithContext(ctx).Create(league).Error, "league")
}

func (r *CatalogRepo) CreateTeam(ctx context.Context, team *model.Team) error {
	return translateErr(r.db.WithContext(ctx).Omit("League").Create(team).Error, "team")
}

func (r *CatalogRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	return translateErr(r.db.WithContext(ctx).Create(category).Error, "category")
}

// Create - product together with its variants
func (r *CatalogRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return translateErr(r.db.WithContext(ctx).Omit("Category", "Team").Create(product).Error, "product")
}

func (r *CatalogRepo) UpdateProductPrice(ctx context.Context, productID uint, price decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID).Update("price", price)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translateErr(gorm.ErrRecordNotFound, "product")
	}
	return nil
}
