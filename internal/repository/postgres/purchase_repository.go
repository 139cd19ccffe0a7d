package postgres

import (
	"context"
	"fmt"
	"mySmartMarket/domain"

	"gorm.io/gorm"
)

// defaultRating stands in for ratings on schemas without a rating column.
const defaultRating = "5"

type PurchaseRepository struct {
	DB         *gorm.DB
	ratingExpr string
}

// NewPurchaseRepository probes the schema once so older purchase tables
// without a rating column still serve reads.
func NewPurchaseRepository(db *gorm.DB, schema *SchemaRepository) *PurchaseRepository {
	ratingExpr := "COALESCE(ph.rating, 0)"
	if !schema.ColumnExists(context.Background(), "purchase_history", "rating") {
		ratingExpr = defaultRating
	}

	return &PurchaseRepository{
		DB:         db,
		ratingExpr: ratingExpr,
	}
}

func (r *PurchaseRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("purchase_history AS ph").
		Select(`ph.customer_id, ph.product_id, p.name, p.category, p.brand, p.price,
			ph.quantity, ` + r.ratingExpr + ` AS rating, ph.purchase_date`).
		Joins("JOIN products p ON p.product_id = ph.product_id")
}

func (r *PurchaseRepository) FindPurchaseHistory(ctx context.Context, customerID uint) ([]domain.PurchaseDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.PurchaseDetail
	err := r.detailQuery(ctx).
		Where("ph.customer_id = ?", customerID).
		Order("ph.purchase_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase history: %w", err)
	}

	return rows, nil
}

func (r *PurchaseRepository) FindPurchasedProductIDs(ctx context.Context, customerID uint) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint64
	err := r.DB.WithContext(ctx).
		Model(&domain.PurchaseRecord{}).
		Where("customer_id = ?", customerID).
		Distinct().
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find purchased products: %w", err)
	}

	return ids, nil
}

func (r *PurchaseRepository) FindRatedPurchases(ctx context.Context) ([]domain.PurchaseDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.PurchaseDetail
	err := r.detailQuery(ctx).
		Where(r.ratingExpr + " > 0").
		Order("ph.purchase_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find rated purchases: %w", err)
	}

	return rows, nil
}

func (r *PurchaseRepository) FindProductStats(ctx context.Context) ([]domain.ProductStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.ProductStats
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			p.product_id, p.name, p.category, p.brand, p.price,
			COUNT(ph.purchase_id) AS purchase_count,
			CAST(COALESCE(AVG(` + r.ratingExpr + `), 0) AS DOUBLE PRECISION) AS avg_rating,
			COUNT(DISTINCT ph.customer_id) AS unique_customers
		FROM products p
		JOIN purchase_history ph ON ph.product_id = p.product_id
		GROUP BY p.product_id, p.name, p.category, p.brand, p.price
		HAVING COUNT(ph.purchase_id) > 0
		ORDER BY p.product_id`,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate product stats: %w", err)
	}

	return rows, nil
}

func (r *PurchaseRepository) CustomerStats(ctx context.Context, customerID uint) (domain.CustomerStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.CustomerStats{}, fmt.Errorf("context error: %w", err)
	}

	var stats domain.CustomerStats
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_purchases,
			CAST(COALESCE(SUM(p.price * ph.quantity), 0) AS DOUBLE PRECISION) AS total_spent,
			CAST(COALESCE(AVG(`+r.ratingExpr+`), 0) AS DOUBLE PRECISION) AS avg_rating
		FROM purchase_history ph
		JOIN products p ON p.product_id = ph.product_id
		WHERE ph.customer_id = ?`,
		customerID,
	).Scan(&stats).Error
	if err != nil {
		return domain.CustomerStats{}, fmt.Errorf("failed to aggregate customer stats: %w", err)
	}

	return stats, nil
}
