package models

import "gorm.io/datatypes"

// CustomerSegment represents the marketing segment of a customer
type CustomerSegment string

const (
	// CustomerSegmentNew is the only segment assigned at generation time.
	CustomerSegmentNew CustomerSegment = "New"
)

// Customer represents a registered shopper
type Customer struct {
	CustomerID       uint            `json:"customerId" gorm:"column:customer_id;primaryKey;autoIncrement"`
	FirstName        string          `json:"firstName" gorm:"column:first_name;type:varchar(100);not null"`
	LastName         string          `json:"lastName" gorm:"column:last_name;type:varchar(100);not null"`
	Email            string          `json:"email" gorm:"column:email;type:varchar(200);not null;uniqueIndex"`
	Phone            string          `json:"phone" gorm:"column:phone;type:varchar(50)"`
	Country          string          `json:"country" gorm:"column:country;type:varchar(100)"`
	City             string          `json:"city" gorm:"column:city;type:varchar(100)"`
	RegistrationDate datatypes.Date  `json:"registrationDate" gorm:"column:registration_date"`
	Segment          CustomerSegment `json:"segment" gorm:"column:segment;type:varchar(50)"`
}

func (Customer) TableName() string {
	return "customers"
}
