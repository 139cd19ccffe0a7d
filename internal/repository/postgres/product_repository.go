package postgres

import (
	"context"
	"fmt"
	"mySmartMarket/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	if err := r.DB.WithContext(ctx).Order("product_id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

// FindByIDs keeps the order of ids and skips unknown ones.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	var rows []domain.Product
	if err := r.DB.WithContext(ctx).Where("product_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by ids: %w", err)
	}

	byID := make(map[uint64]domain.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}

	return out, nil
}

// FindByCategory returns the most bought products of a category within a
// price band, at most limit rows.
func (r *ProductRepository) FindByCategory(ctx context.Context, category string, minPrice, maxPrice float64, limit int) ([]domain.ProductStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.ProductStats
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			p.product_id, p.name, p.category, p.brand, p.price,
			COUNT(ph.purchase_id) AS purchase_count,
			CAST(COALESCE(AVG(ph.rating), 0) AS DOUBLE PRECISION) AS avg_rating,
			COUNT(DISTINCT ph.customer_id) AS unique_customers
		FROM products p
		LEFT JOIN purchase_history ph ON ph.product_id = p.product_id
		WHERE p.category = ? AND p.price BETWEEN ? AND ?
		GROUP BY p.product_id, p.name, p.category, p.brand, p.price
		ORDER BY purchase_count DESC, avg_rating DESC, p.price ASC
		LIMIT ?`,
		category, minPrice, maxPrice, limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products by category: %w", err)
	}

	return rows, nil
}

func (r *ProductRepository) FindDistinctCategories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var categories []string
	err := r.DB.WithContext(ctx).
		Model(&domain.Product{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}

	return categories, nil
}

func (r *ProductRepository) FindCategorySummaries(ctx context.Context) ([]domain.CategorySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.CategorySummary
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			category,
			COUNT(*) AS product_count,
			CAST(MIN(price) AS DOUBLE PRECISION) AS min_price,
			CAST(MAX(price) AS DOUBLE PRECISION) AS max_price
		FROM products
		WHERE category IS NOT NULL AND category <> ''
		GROUP BY category
		ORDER BY category`,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarise categories: %w", err)
	}

	return rows, nil
}

// FindRandomInCategories samples products of the given categories that the
// customer has not bought, with their purchase aggregates.
func (r *ProductRepository) FindRandomInCategories(ctx context.Context, customerID uint, categories []string, limit int) ([]domain.ProductStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(categories) == 0 {
		return []domain.ProductStats{}, nil
	}

	var rows []domain.ProductStats
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			p.product_id, p.name, p.category, p.brand, p.price,
			COUNT(ph.purchase_id) AS purchase_count,
			CAST(COALESCE(AVG(ph.rating), 0) AS DOUBLE PRECISION) AS avg_rating,
			COUNT(DISTINCT ph.customer_id) AS unique_customers
		FROM products p
		LEFT JOIN purchase_history ph ON ph.product_id = p.product_id
		WHERE p.category IN ?
			AND p.product_id NOT IN (SELECT product_id FROM purchase_history WHERE customer_id = ?)
		GROUP BY p.product_id, p.name, p.category, p.brand, p.price
		ORDER BY RANDOM()
		LIMIT ?`,
		categories, customerID, limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sample products: %w", err)
	}

	return rows, nil
}
