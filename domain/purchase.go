package domain

import "time"

// CREATE TABLE purchase_history (
//     purchase_id   BIGSERIAL PRIMARY KEY,
//     customer_id   BIGINT REFERENCES customers(customer_id),
//     product_id    BIGINT REFERENCES products(product_id),
//     quantity      INTEGER DEFAULT 1,
//     rating        INTEGER DEFAULT 5,
//     purchase_date TIMESTAMPTZ DEFAULT NOW()
// );

type PurchaseRecord struct {
	ID           uint64    `gorm:"primaryKey;column:purchase_id;autoIncrement" json:"purchase_id"`
	CustomerID   uint      `gorm:"column:customer_id;index;not null" json:"customer_id"`
	ProductID    uint64    `gorm:"column:product_id;index;not null" json:"product_id"`
	Quantity     int       `gorm:"column:quantity;default:1" json:"quantity"`
	Rating       int       `gorm:"column:rating;default:5" json:"rating"`
	PurchaseDate time.Time `gorm:"column:purchase_date" json:"purchase_date"`
}

func (PurchaseRecord) TableName() string {
	return "purchase_history"
}

// PurchaseDetail is a purchase joined with the product it refers to.
// Rating 0 means the purchase was not rated.
type PurchaseDetail struct {
	CustomerID   uint      `gorm:"column:customer_id" json:"customer_id"`
	ProductID    uint64    `gorm:"column:product_id" json:"product_id"`
	Name         string    `gorm:"column:name" json:"name"`
	Category     string    `gorm:"column:category" json:"category"`
	Brand        string    `gorm:"column:brand" json:"brand"`
	Price        float64   `gorm:"column:price" json:"price"`
	Quantity     int       `gorm:"column:quantity" json:"quantity"`
	Rating       int       `gorm:"column:rating" json:"rating"`
	PurchaseDate time.Time `gorm:"column:purchase_date" json:"purchase_date"`
}
