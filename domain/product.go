package domain

import (
	"time"
)

// CREATE TABLE products (
//     product_id  BIGSERIAL PRIMARY KEY,
//     name        TEXT NOT NULL,
//     category    TEXT,
//     brand       TEXT,
//     price       NUMERIC,
//     created_at  TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID        uint64    `gorm:"primaryKey;column:product_id;autoIncrement" json:"product_id"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	Category  string    `gorm:"column:category;type:text;index" json:"category"`
	Brand     string    `gorm:"column:brand;type:text" json:"brand"`
	Price     float64   `gorm:"column:price;type:numeric" json:"price"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductStats is a product joined with its purchase aggregates.
type ProductStats struct {
	ProductID       uint64  `gorm:"column:product_id" json:"product_id"`
	Name            string  `gorm:"column:name" json:"name"`
	Category        string  `gorm:"column:category" json:"category"`
	Brand           string  `gorm:"column:brand" json:"brand"`
	Price           float64 `gorm:"column:price" json:"price"`
	PurchaseCount   int64   `gorm:"column:purchase_count" json:"purchase_count"`
	AvgRating       float64 `gorm:"column:avg_rating" json:"avg_rating"`
	UniqueCustomers int64   `gorm:"column:unique_customers" json:"unique_customers"`
}

// CategorySummary describes one category for listing endpoints.
type CategorySummary struct {
	Category     string  `gorm:"column:category" json:"category"`
	ProductCount int64   `gorm:"column:product_count" json:"product_count"`
	MinPrice     float64 `gorm:"column:min_price" json:"min_price"`
	MaxPrice     float64 `gorm:"column:max_price" json:"max_price"`
}
