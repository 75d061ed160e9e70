package models

import "time"

// Review represents a product review written by a customer. It is not tied
// to an order: VerifiedPurchase is informational only.
type Review struct {
	ReviewID         uint      `json:"reviewId" gorm:"column:review_id;primaryKey;autoIncrement"`
	ProductID        uint      `json:"productId" gorm:"column:product_id;not null;index"`
	CustomerID       uint      `json:"customerId" gorm:"column:customer_id;not null;index"`
	Rating           int       `json:"rating" gorm:"column:rating;not null"`
	ReviewTitle      string    `json:"reviewTitle" gorm:"column:review_title;type:varchar(200)"`
	ReviewText       *string   `json:"reviewText,omitempty" gorm:"column:review_text;type:text"`
	ReviewDate       time.Time `json:"reviewDate" gorm:"column:review_date"`
	VerifiedPurchase bool      `json:"verifiedPurchase" gorm:"column:verified_purchase"`

	// Relationships
	Product  *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID;references:ProductID"`
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID;references:CustomerID"`
}

func (Review) TableName() string {
	return "reviews"
}
