package domain

import "time"

type Customer struct {
	ID        uint      `gorm:"primaryKey;column:customer_id" json:"customer_id"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	Phone     string    `gorm:"column:phone;type:text;index" json:"phone"`
	Email     string    `gorm:"column:email;type:text" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerStats aggregates a customer's purchase history.
type CustomerStats struct {
	TotalPurchases int64   `json:"total_purchases"`
	TotalSpent     float64 `json:"total_spent"`
	AvgRating      float64 `json:"avg_rating"`
}
